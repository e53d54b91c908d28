package fortinet

import (
	"strings"
)

// configNode FortiOS 配置树节点
// config 块与 edit 条目共用同一结构：config 块可同时包含 set 与 edit，
// edit 条目内部也可以再嵌套 config 块
type configNode struct {
	name     string
	settings map[string][]string
	blocks   map[string]*configNode
	entries  []*configNode
	isEdit   bool
}

func newConfigNode(name string, isEdit bool) *configNode {
	return &configNode{
		name:     name,
		settings: make(map[string][]string),
		blocks:   make(map[string]*configNode),
		isEdit:   isEdit,
	}
}

// block 按名称取子 config 块
func (n *configNode) block(name string) (*configNode, bool) {
	b, ok := n.blocks[name]
	return b, ok
}

// value set 参数拼接为一个字符串
func (n *configNode) value(key string) string {
	return strings.Join(n.settings[key], " ")
}

func (n *configNode) enabled(key string) bool {
	return strings.EqualFold(n.value(key), "enable")
}

// parseFortiOSConfig 解析 config/edit/set/next/end 结构的文本
// 不识别的行（注释、提示符、回显）一律忽略；缺少 end 时按已读内容返回
func parseFortiOSConfig(raw string) *configNode {
	root := newConfigNode("", false)
	stack := []*configNode{root}
	top := func() *configNode { return stack[len(stack)-1] }

	for _, line := range splitLines(raw) {
		tokens := tokenizeConfigLine(line)
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "config":
			if len(tokens) < 2 {
				continue
			}
			name := strings.Join(tokens[1:], " ")
			child := newConfigNode(name, false)
			top().blocks[name] = child
			stack = append(stack, child)
		case "edit":
			if len(tokens) < 2 {
				continue
			}
			child := newConfigNode(tokens[1], true)
			top().entries = append(top().entries, child)
			stack = append(stack, child)
		case "set":
			if len(tokens) < 2 {
				continue
			}
			top().settings[tokens[1]] = tokens[2:]
		case "unset":
			if len(tokens) >= 2 {
				delete(top().settings, tokens[1])
			}
		case "next":
			if len(stack) > 1 && top().isEdit {
				stack = stack[:len(stack)-1]
			}
		case "end":
			// 容忍 edit 后直接 end
			for len(stack) > 1 && top().isEdit {
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return root
}

// tokenizeConfigLine 按空白切分，双引号内的空白保留，支持 \" 与 \\ 转义
func tokenizeConfigLine(line string) []string {
	var (
		tokens  []string
		current strings.Builder
		inQuote bool
		quoted  bool
		escaped bool
	)
	flush := func() {
		if current.Len() > 0 || quoted {
			tokens = append(tokens, current.String())
		}
		current.Reset()
		quoted = false
	}

	for _, r := range strings.TrimSpace(line) {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
			quoted = true
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}
