package fortinet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleSystemStatus = `Version: FortiGate-VM64 v6.4.5,build1828,210217 (GA)
Virus-DB: 1.00000(2018-04-09 18:07)
Serial-Number: FGVMEV0000000000
BIOS version: 04000002
Log hard disk: Available
Hostname: FGT-LAB
Operation Mode: NAT
Current virtual domain: root
`

// TestParseFacts 四条查询完整时的解析结果
func TestParseFacts(t *testing.T) {
	facts := ParseFacts(
		sampleSystemStatus,
		"Uptime: 2 days,  03 hours,  15 minutes\n",
		`domain              : "example.com"`+"\n",
		"== [ port1 ]\n== [ port2 ]\n== [ ssl.root ]\n",
	)

	assert.Equal(t, Facts{
		Vendor:        "Fortinet",
		Model:         "FortiGate-VM64",
		SerialNumber:  "FGVMEV0000000000",
		OSVersion:     "6.4.5",
		Hostname:      "FGT-LAB",
		FQDN:          "FGT-LAB.example.com",
		Uptime:        2*86400 + 3*3600 + 15*60,
		InterfaceList: []string{"port1", "port2", "ssl.root"},
	}, facts)
}

// TestParseFactsDefaults 可选查询缺失时使用默认值
func TestParseFactsDefaults(t *testing.T) {
	facts := ParseFacts(sampleSystemStatus, "", "", "")

	assert.Equal(t, "FGT-LAB", facts.FQDN, "无 DNS 域时 FQDN 回退为主机名")
	assert.Equal(t, UnknownUptime, facts.Uptime)
	assert.NotNil(t, facts.InterfaceList)
	assert.Empty(t, facts.InterfaceList)
}

func TestParseFactsEmptyDomain(t *testing.T) {
	facts := ParseFacts(sampleSystemStatus, "", `domain : ""`, "")
	assert.Equal(t, "FGT-LAB", facts.FQDN)
}

func TestParseFactsCRLF(t *testing.T) {
	status := "Version: FortiGate-60F v7.2.4,build1396,230131 (GA.F)\r\nSerial-Number: FGT60F0000000001\r\nHostname: edge-01\r\n\r\n"
	facts := ParseFacts(status, "", "", "")

	assert.Equal(t, "FortiGate-60F", facts.Model)
	assert.Equal(t, "7.2.4", facts.OSVersion)
	assert.Equal(t, "FGT60F0000000001", facts.SerialNumber)
	assert.Equal(t, "edge-01", facts.Hostname)
}

func TestParseUptime(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int64
	}{
		{"完整", "Uptime: 2 days,  03 hours,  15 minutes", 184500},
		{"零", "Uptime: 0 days,  0 hours,  0 minutes", 0},
		{"单数", "Uptime: 1 day,  1 hour,  1 minute", 90060},
		{"多余空白", "   Uptime:   10 days,   0 hours,   7 minutes   \n", 864420},
		{"缺少天", "Uptime: 3 hours,  5 minutes", UnknownUptime},
		{"无法解析", "Uptime: forever", UnknownUptime},
		{"空", "", UnknownUptime},
		{"无标签", "2 days, 3 hours, 15 minutes", UnknownUptime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseUptime(tc.raw))
		})
	}
}

func TestParseUptimeNeverNegativeWhenParsed(t *testing.T) {
	got := ParseUptime("Uptime: 400 days,  23 hours,  59 minutes")
	assert.GreaterOrEqual(t, got, int64(0))
}
