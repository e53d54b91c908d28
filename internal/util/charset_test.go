package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestEnsureUTF8(t *testing.T) {
	assert.Equal(t, "", EnsureUTF8("", ""))
	assert.Equal(t, "FGT-上海", EnsureUTF8("FGT-上海", "gbk"))

	gbk, err := simplifiedchinese.GBK.NewEncoder().String("防火墙-01")
	assert.NoError(t, err)
	assert.Equal(t, "防火墙-01", EnsureUTF8(gbk, "gbk"))
	assert.Equal(t, "防火墙-01", EnsureUTF8(gbk, ""))

	latin := string([]byte{'c', 'a', 'f', 0xe9})
	assert.Equal(t, "café", EnsureUTF8(latin, "latin1"))
}

func TestValidCharset(t *testing.T) {
	assert.True(t, ValidCharset(""))
	assert.True(t, ValidCharset("gbk"))
	assert.True(t, ValidCharset("big5"))
	assert.False(t, ValidCharset("klingon"))
}
