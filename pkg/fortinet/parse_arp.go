package fortinet

import (
	"strconv"
	"strings"
)

// arpColumns get system arp 的列布局：
// Address           Age(min)   Hardware Addr      Interface
var arpColumns = columnTable{
	"ip":        0,
	"age":       1,
	"mac":       2,
	"interface": 3,
}

// ParseARPTable 解析 get system arp
// 第一行固定为表头，无论内容都跳过；列数不足的行忽略
func ParseARPTable(raw string) []ArpEntry {
	entries := make([]ArpEntry, 0)
	lines := splitLines(raw)
	if len(lines) <= 1 {
		return entries
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < arpColumns.width() {
			continue
		}
		entries = append(entries, ArpEntry{
			Interface: arpColumns.pick(fields, "interface"),
			MAC:       arpColumns.pick(fields, "mac"),
			IP:        arpColumns.pick(fields, "ip"),
			Age:       arpAgeSeconds(arpColumns.pick(fields, "age")),
		})
	}
	return entries
}

// arpAgeSeconds 设备以分钟显示，转换为秒；无法解析时为 -1
func arpAgeSeconds(v string) float64 {
	minutes, err := strconv.ParseFloat(v, 64)
	if err != nil || minutes < 0 {
		return -1
	}
	return minutes * 60
}
