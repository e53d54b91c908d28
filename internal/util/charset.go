package util

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// fallbackEncodings 未指定字符集时依次尝试
// 设备 hostname、接口描述中常见中文或西欧字符
var fallbackEncodings = []encoding.Encoding{
	simplifiedchinese.GB18030,
	traditionalchinese.Big5,
	charmap.Windows1252,
	charmap.ISO8859_1,
}

// EnsureUTF8 将设备输出转为 UTF-8
// charset 为 WHATWG 名称（如 gbk、big5、latin1），为空时自动探测；
// 已是合法 UTF-8 的输入原样返回
func EnsureUTF8(s, charset string) string {
	b := []byte(s)
	if len(b) == 0 || utf8.Valid(b) {
		return s
	}
	if charset != "" {
		if enc, err := htmlindex.Get(charset); err == nil {
			if decoded, ok := tryDecode(enc, b); ok {
				return decoded
			}
		}
	}
	for _, enc := range fallbackEncodings {
		if decoded, ok := tryDecode(enc, b); ok {
			return decoded
		}
	}
	return s
}

// ValidCharset 字符集名称是否可识别，空串视为自动探测
func ValidCharset(charset string) bool {
	if charset == "" {
		return true
	}
	_, err := htmlindex.Get(charset)
	return err == nil
}

func tryDecode(enc encoding.Encoding, b []byte) (string, bool) {
	reader := transform.NewReader(bytes.NewReader(b), enc.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}
