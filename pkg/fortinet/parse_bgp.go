package fortinet

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	bgpBlock      = "router bgp"
	neighborBlock = "neighbor"

	familyInet  = "inet"
	familyInet6 = "inet6"
	safiUnicast = "unicast"
)

// prefixLimitKeys 每个地址族对应的上限与阈值设置名
var prefixLimitKeys = []struct {
	family    string
	limit     string
	threshold string
}{
	{familyInet, "maximum-prefix", "maximum-prefix-threshold"},
	{familyInet6, "maximum-prefix6", "maximum-prefix-threshold6"},
}

// ParseBGPConfig 解析 show full-configuration router bgp
// group 为空或 "_" 时返回默认实例，其他值返回空结果；
// neighbor 非空时只保留该邻居
func ParseBGPConfig(raw, group, neighbor string) (BGPConfig, error) {
	result := make(BGPConfig)
	if group != "" && group != DefaultInstance {
		return result, nil
	}

	tree := parseFortiOSConfig(raw)
	bgp, ok := tree.block(bgpBlock)
	if !ok {
		return nil, fmt.Errorf("config %s: %w", bgpBlock, ErrMissingBlock)
	}

	localAS := parseInt64(bgp.value("as"))
	instance := BGPGroup{
		RouterID:    bgp.value("router-id"),
		LocalAS:     localAS,
		Multipath:   bgp.enabled("ebgp-multipath") || bgp.enabled("ibgp-multipath"),
		ApplyGroups: make([]string, 0),
		PrefixLimit: make(PrefixLimit),
		Neighbors:   make(map[string]BGPNeighbor),
	}

	if block, ok := bgp.block(neighborBlock); ok {
		for _, entry := range block.entries {
			if neighbor != "" && entry.name != neighbor {
				continue
			}
			instance.Neighbors[entry.name] = buildNeighbor(entry, localAS)
		}
	}

	result[DefaultInstance] = instance
	return result, nil
}

func buildNeighbor(entry *configNode, groupAS int64) BGPNeighbor {
	n := BGPNeighbor{
		Description:          entry.value("description"),
		ImportPolicy:         entry.value("route-map-in"),
		ExportPolicy:         entry.value("route-map-out"),
		LocalAddress:         entry.value("update-source"),
		AuthenticationKey:    entry.value("password"),
		NHS:                  entry.enabled("next-hop-self"),
		RouteReflectorClient: entry.enabled("route-reflector-client"),
		LocalAS:              groupAS,
		RemoteAS:             parseInt64(entry.value("remote-as")),
		RemovePrivateAS:      entry.enabled("remove-private-as"),
		PrefixLimit:          make(PrefixLimit),
	}
	if as := parseInt64(entry.value("local-as")); as > 0 {
		n.LocalAS = as
	}
	if entry.enabled("ebgp-enforce-multihop") {
		n.MultihopTTL = int(parseInt64(entry.value("ebgp-multihop-ttl")))
	}

	for _, keys := range prefixLimitKeys {
		limit := int(parseInt64(entry.value(keys.limit)))
		if limit <= 0 {
			continue
		}
		n.PrefixLimit[keys.family] = map[string]PrefixLimitEntry{
			safiUnicast: {
				Limit: limit,
				Teardown: PrefixTeardown{
					Threshold: int(parseInt64(entry.value(keys.threshold))),
				},
			},
		}
	}
	return n
}

// parseInt64 无法解析时返回 0
func parseInt64(v string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
