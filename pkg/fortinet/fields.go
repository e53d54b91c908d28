package fortinet

import (
	"strings"
)

// columnTable 语义字段名 -> 列序号（按空白切分后的位置）
// 固件调整列顺序时只需修改表，不改解析逻辑
type columnTable map[string]int

// pick 取出指定语义字段，越界返回空串
func (t columnTable) pick(fields []string, name string) string {
	idx, ok := t[name]
	if !ok || idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// width 表中最大列序号 + 1，即一行至少需要的列数
func (t columnTable) width() int {
	w := 0
	for _, idx := range t {
		if idx+1 > w {
			w = idx + 1
		}
	}
	return w
}

// keyTable 语义字段名 -> 设备输出中的 key（key=value 形式）
type keyTable map[string]string

// pick 从 key=value 映射中取出语义字段
func (t keyTable) pick(kv map[string]string, name string) string {
	key, ok := t[name]
	if !ok {
		return ""
	}
	return kv[key]
}

// keyValues 将一行 "a=1 b=2 c=" 切分为映射，非 key=value 的片段忽略
func keyValues(line string) map[string]string {
	out := make(map[string]string)
	for _, tok := range strings.Fields(line) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok || k == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// splitLines 统一换行符并按行切分，去掉末尾空行
func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	lines := strings.Split(raw, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// valueAfterLabel 若行以 label 开头，返回 label 之后去除空白与引号的值
func valueAfterLabel(line, label string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, label) {
		return "", false
	}
	return unquote(trimmed[len(label):]), true
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"' `)
}
