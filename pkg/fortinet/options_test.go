package fortinet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConfigSnapshot(t *testing.T) {
	const show = "config system global\n    set hostname \"FGT-LAB\"\nend\n"

	all, err := BuildConfigSnapshot(show, RetrieveAll)
	require.NoError(t, err)
	assert.Equal(t, ConfigSnapshot{Running: show, Startup: show}, all)

	running, err := BuildConfigSnapshot(show, RetrieveRunning)
	require.NoError(t, err)
	startup, err := BuildConfigSnapshot(show, RetrieveStartup)
	require.NoError(t, err)
	assert.Equal(t, running.Running, startup.Startup, "running 与 startup 返回同一份文本")
	assert.Empty(t, running.Startup)
	assert.Empty(t, startup.Running)

	candidate, err := BuildConfigSnapshot(show, RetrieveCandidate)
	require.NoError(t, err)
	assert.Equal(t, ConfigSnapshot{}, candidate)

	_, err = BuildConfigSnapshot(show, "saved")
	assert.ErrorIs(t, err, ErrInvalidRetrieve)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, "ssh", opts.Transport)
	assert.Equal(t, 22, opts.Port)
	assert.Equal(t, 60*time.Second, opts.Timeout)
	assert.Equal(t, 30*time.Second, opts.Keepalive)
	assert.Equal(t, 1.0, opts.GlobalDelayFactor)
	assert.Equal(t, DefaultErrorMarkers, opts.ErrorMarkers)
	assert.False(t, opts.UseKeys)
	assert.False(t, opts.SSHStrict)
	assert.NoError(t, opts.Validate())
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{Port: 2222, GlobalDelayFactor: 2}.WithDefaults()

	assert.Equal(t, 2222, opts.Port, "显式设置的字段保持不变")
	assert.Equal(t, 2.0, opts.GlobalDelayFactor)
	assert.Equal(t, TransportSSH, opts.Transport)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.NotEmpty(t, opts.ErrorMarkers)
}

func TestOptionsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Options)
		errMsg string
	}{
		{"transport", func(o *Options) { o.Transport = "telnet" }, "unsupported transport"},
		{"port", func(o *Options) { o.Port = 70000 }, "out of range"},
		{"delay factor", func(o *Options) { o.GlobalDelayFactor = -1 }, "delay factor"},
		{"alt host keys", func(o *Options) { o.AltHostKeys = true }, "alt_key_file"},
		{"strict", func(o *Options) { o.SSHStrict = true }, "ssh_strict"},
		{"charset", func(o *Options) { o.OutputCharset = "no-such-charset" }, "charset"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			err := opts.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}

	opts := DefaultOptions()
	opts.SSHStrict = true
	opts.AltHostKeys = true
	opts.AltKeyFile = "/tmp/known_hosts"
	opts.OutputCharset = "gbk"
	assert.NoError(t, opts.Validate())
}
