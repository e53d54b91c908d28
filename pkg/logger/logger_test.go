package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fortidriver.log")
	require.NoError(t, Init(Config{Level: "debug", Format: "json", Output: "file", FilePath: path, MaxSize: 1}))
	defer func() { _ = Init(Config{Level: "info"}) }()

	assert.Equal(t, logrus.DebugLevel, GetLogger().GetLevel())
	WithField("host", "192.0.2.1").Infof("Connected")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"host":"192.0.2.1"`)
	assert.Contains(t, string(data), `"msg":"Connected"`)
}

func TestInitBadLevel(t *testing.T) {
	require.NoError(t, Init(Config{Level: "loud"}))
	assert.Equal(t, logrus.InfoLevel, GetLogger().GetLevel())
}
