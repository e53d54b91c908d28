package fortinet

import (
	"net"
	"strconv"
	"strings"
)

// ipv4Fields diagnose ip address list:
// IP=10.0.0.1->10.0.0.1/255.255.255.0 index=3 devname=port1
var ipv4Fields = keyTable{
	"address":   "IP",
	"interface": "devname",
}

// ipv6Fields diagnose ipv6 address list:
// dev=3 devname=port1 flag= scope=0 prefix=64 addr=2001:db8::1 preferred=... valid=...
var ipv6Fields = keyTable{
	"interface": "devname",
	"address":   "addr",
	"prefix":    "prefix",
}

// ParseInterfacesIP 合并 IPv4 与 IPv6 两份输出
// 字段按 key 名读取，不依赖列位置；非法前缀的行丢弃
func ParseInterfacesIP(ipv4, ipv6 string) InterfacesIP {
	result := make(InterfacesIP)

	for _, line := range splitLines(ipv4) {
		kv := keyValues(line)
		iface := ipv4Fields.pick(kv, "interface")
		token := ipv4Fields.pick(kv, "address")
		if iface == "" || token == "" {
			continue
		}
		addr, prefix, ok := parseProbeCIDR(token)
		if !ok || net.ParseIP(addr).To4() == nil || prefix < 0 || prefix > 32 {
			continue
		}
		entry := result[iface]
		if entry.IPv4 == nil {
			entry.IPv4 = make(map[string]PrefixInfo)
		}
		entry.IPv4[addr] = PrefixInfo{PrefixLength: prefix}
		result[iface] = entry
	}

	for _, line := range splitLines(ipv6) {
		kv := keyValues(line)
		iface := ipv6Fields.pick(kv, "interface")
		addr := ipv6Fields.pick(kv, "address")
		if iface == "" || addr == "" {
			continue
		}
		prefix, err := strconv.Atoi(ipv6Fields.pick(kv, "prefix"))
		if err != nil || prefix < 0 || prefix > 128 {
			continue
		}
		entry := result[iface]
		if entry.IPv6 == nil {
			entry.IPv6 = make(map[string]PrefixInfo)
		}
		entry.IPv6[addr] = PrefixInfo{PrefixLength: prefix}
		result[iface] = entry
	}

	return result
}

// parseProbeCIDR "<probe>-><addr>/<len|netmask>" -> addr, len
// 不带 "->" 时整段视为 CIDR
func parseProbeCIDR(token string) (string, int, bool) {
	if _, after, ok := strings.Cut(token, "->"); ok {
		token = after
	}
	addr, mask, ok := strings.Cut(token, "/")
	if !ok || addr == "" {
		return "", 0, false
	}
	if n, err := strconv.Atoi(mask); err == nil {
		return addr, n, true
	}
	ip := net.ParseIP(mask).To4()
	if ip == nil {
		return "", 0, false
	}
	ones, bits := net.IPMask(ip).Size()
	if bits == 0 {
		// 非连续掩码
		return "", 0, false
	}
	return addr, ones, true
}
