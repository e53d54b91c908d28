package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const defaultEchoLines = 5

// Excerpt 输出的首尾若干行
type Excerpt struct {
	Head  []string `json:"head_lines"`
	Tail  []string `json:"tail_lines"`
	Total int      `json:"total_lines"`
}

// Summarize 截取首尾各 maxLines 行；总行数不超过 maxLines 时 Tail 为空
func Summarize(output string, maxLines int) Excerpt {
	if maxLines <= 0 {
		maxLines = defaultEchoLines
	}
	output = strings.ReplaceAll(output, "\r\n", "\n")
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return Excerpt{}
	}

	lines := strings.Split(output, "\n")
	ex := Excerpt{Total: len(lines)}
	if len(lines) <= maxLines {
		ex.Head = lines
		return ex
	}
	ex.Head = lines[:maxLines]
	tailStart := len(lines) - maxLines
	if tailStart < maxLines {
		tailStart = maxLines
	}
	ex.Tail = lines[tailStart:]
	return ex
}

// String 日志中的单行形式
func (e Excerpt) String() string {
	if e.Total == 0 {
		return ""
	}
	parts := []string{"head-lines: [" + strings.Join(e.Head, " ⟩ ") + "]"}
	if len(e.Tail) > 0 {
		parts = append(parts, "tail-lines: ["+strings.Join(e.Tail, " ⟩ ")+"]")
	}
	return strings.Join(parts, ", ")
}

// DebugCommandOutput 在 debug 级别记录命令回显的首尾行
func DebugCommandOutput(entry *logrus.Entry, command, output string, maxLines int) {
	if !GetLogger().IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	ex := Summarize(output, maxLines)
	if ex.Total == 0 {
		return
	}
	if entry == nil {
		entry = logrus.NewEntry(GetLogger())
	}
	entry.WithFields(logrus.Fields{
		"command": command,
		"lines":   ex.Total,
	}).Debugf("Command echo: %s", ex)
}
