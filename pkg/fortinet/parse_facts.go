package fortinet

import (
	"strconv"
	"strings"
)

const (
	labelVersion  = "Version: "
	labelSerial   = "Serial-Number: "
	labelHostname = "Hostname: "
	labelUptime   = "Uptime:"
	labelDomain   = "domain"
)

// uptimeSeparators 将 "2 days,  03 hours,  15 minutes" 统一为 "2|03|15|"
var uptimeSeparators = strings.NewReplacer(
	"days,", "|",
	"day,", "|",
	"hours,", "|",
	"hour,", "|",
	"minutes", "|",
	"minute", "|",
)

// ParseFacts 由四条查询的原始输出组装设备信息
// status 为 get system status，performance 为 Uptime 行，dns 为 domain 行，
// interfaces 为 get system interface | grep == 的输出
func ParseFacts(status, performance, dns, interfaces string) Facts {
	facts := Facts{
		Vendor:        Vendor,
		Uptime:        ParseUptime(performance),
		InterfaceList: parseInterfaceList(interfaces),
	}

	for _, line := range splitLines(status) {
		if v, ok := valueAfterLabel(line, labelVersion); ok {
			facts.Model, facts.OSVersion = parseVersionLine(v)
			continue
		}
		if v, ok := valueAfterLabel(line, labelSerial); ok {
			facts.SerialNumber = v
			continue
		}
		if v, ok := valueAfterLabel(line, labelHostname); ok {
			facts.Hostname = v
		}
	}

	facts.FQDN = facts.Hostname
	if domain := parseDomain(dns); domain != "" && facts.Hostname != "" {
		facts.FQDN = facts.Hostname + "." + domain
	}
	return facts
}

// parseVersionLine "FortiGate-VM64 v6.4.5,build1828,210217 (GA)" -> ("FortiGate-VM64", "6.4.5")
func parseVersionLine(v string) (model, version string) {
	fields := strings.Fields(v)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", cleanVersion(fields[0])
	default:
		return fields[0], cleanVersion(fields[1])
	}
}

func cleanVersion(v string) string {
	v, _, _ = strings.Cut(v, ",")
	return strings.TrimPrefix(v, "v")
}

// ParseUptime 解析 "Uptime: D days, H hours, M minutes"，返回秒
// 三个分量缺一不可，否则返回 UnknownUptime
func ParseUptime(raw string) int64 {
	for _, line := range splitLines(raw) {
		trimmed := strings.TrimSpace(line)
		idx := strings.Index(trimmed, labelUptime)
		if idx < 0 {
			continue
		}
		body := uptimeSeparators.Replace(trimmed[idx+len(labelUptime):])
		parts := strings.Split(body, "|")
		if len(parts) < 3 {
			return UnknownUptime
		}
		var units [3]int64
		for i := 0; i < 3; i++ {
			n, err := strconv.ParseInt(strings.TrimSpace(parts[i]), 10, 64)
			if err != nil || n < 0 {
				return UnknownUptime
			}
			units[i] = n
		}
		return units[0]*86400 + units[1]*3600 + units[2]*60
	}
	return UnknownUptime
}

// parseDomain 取 `domain : "example.com"` 中的域名
func parseDomain(raw string) string {
	for _, line := range splitLines(raw) {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, labelDomain) {
			continue
		}
		_, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		return unquote(value)
	}
	return ""
}

// parseInterfaceList 每行 "== [ port1 ]" 取出 port1
func parseInterfaceList(raw string) []string {
	names := make([]string, 0)
	for _, line := range splitLines(raw) {
		name := strings.TrimSpace(line)
		if !strings.HasPrefix(name, "==") {
			continue
		}
		name = strings.TrimSpace(strings.TrimPrefix(name, "=="))
		name = strings.TrimSpace(strings.TrimPrefix(name, "["))
		name = strings.TrimSpace(strings.TrimSuffix(name, "]"))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
