package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
	"github.com/sshcollectorpro/fortidriver/simulate"
)

func startSim(t *testing.T) *simulate.Server {
	t.Helper()
	srv, err := simulate.Start(simulate.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(srv.Stop)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func deviceArgs(srv *simulate.Server, extra ...string) []string {
	args := []string{
		"-H", srv.Host(),
		"-P", strconv.Itoa(srv.Port()),
		"-u", "admin",
		"-p", "admin",
		"--timeout", "20s",
	}
	return append(args, extra...)
}

func TestRender(t *testing.T) {
	v := map[string]interface{}{"hostname": "FGT-SIM", "uptime": 3}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, formatJSON, v))
	assert.Equal(t, "{\n  \"hostname\": \"FGT-SIM\",\n  \"uptime\": 3\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, render(&buf, formatYAML, v))
	assert.Equal(t, "hostname: FGT-SIM\nuptime: 3\n", buf.String())

	assert.Error(t, render(&buf, "xml", v))
}

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, checkFormat("json"))
	assert.NoError(t, checkFormat("yaml"))
	assert.Error(t, checkFormat("table"))
}

func TestGettersCommand(t *testing.T) {
	out, err := execute(t, "getters")
	require.NoError(t, err)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, fortinet.GetterNames(), names)
}

func TestMissingHost(t *testing.T) {
	_, err := execute(t, "facts", "-u", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--host")
}

func TestUnknownGetter(t *testing.T) {
	_, err := execute(t, "get", "get_nothing", "-H", "127.0.0.1", "-u", "admin")
	assert.ErrorIs(t, err, fortinet.ErrUnknownGetter)
}

func TestFactsCommand(t *testing.T) {
	srv := startSim(t)

	out, err := execute(t, deviceArgs(srv, "facts")...)
	require.NoError(t, err)

	var facts fortinet.Facts
	require.NoError(t, json.Unmarshal([]byte(out), &facts))
	assert.Equal(t, fortinet.Vendor, facts.Vendor)
	assert.Equal(t, "FGT-SIM", facts.Hostname)
	assert.NotEmpty(t, facts.InterfaceList)
}

func TestARPCommandYAML(t *testing.T) {
	srv := startSim(t)

	out, err := execute(t, deviceArgs(srv, "arp", "-o", "yaml")...)
	require.NoError(t, err)

	var entries []fortinet.ArpEntry
	require.NoError(t, yaml.Unmarshal([]byte(out), &entries))
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.NotEmpty(t, e.IP)
		assert.NotEmpty(t, e.Interface)
	}
}

func TestGetCommandBGPNeighbor(t *testing.T) {
	srv := startSim(t)

	out, err := execute(t, deviceArgs(srv, "get", "get_bgp_config", "--group", "blue")...)
	require.NoError(t, err)

	var cfg fortinet.BGPConfig
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Empty(t, cfg)
}

func TestCLICommand(t *testing.T) {
	srv := startSim(t)
	srv.SetOutput("get system arp", "Address           Age(min)   Hardware Addr      Interface\n")

	out, err := execute(t, deviceArgs(srv, "cli", "get system arp")...)
	require.NoError(t, err)

	var result map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Contains(t, result["get system arp"], "Hardware Addr")
}

func TestConfigRaw(t *testing.T) {
	srv := startSim(t)

	out, err := execute(t, deviceArgs(srv, "config", "--raw", "--retrieve", "running")...)
	require.NoError(t, err)
	assert.Contains(t, out, "config system global")

	_, err = execute(t, deviceArgs(srv, "config", "--raw")...)
	assert.Error(t, err)

	_, err = execute(t, deviceArgs(srv, "config", "--retrieve", "bogus")...)
	assert.ErrorIs(t, err, fortinet.ErrInvalidRetrieve)
}

func TestBackupCommandLocal(t *testing.T) {
	srv := startSim(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("backup:\n  storage_backend: local\n  prefix: configs\n  local:\n    base_dir: %s\n    mkdir_if_missing: true\nlog:\n  level: warn\n", filepath.Join(dir, "backups"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	out, err := execute(t, deviceArgs(srv, "backup", "-c", cfgPath)...)
	require.NoError(t, err)

	var result struct {
		Retrieve string `json:"retrieve"`
		Object   struct {
			URI     string `json:"uri"`
			Backend string `json:"backend"`
		} `json:"object"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, fortinet.RetrieveRunning, result.Retrieve)
	assert.Equal(t, "local", result.Object.Backend)

	path := strings.TrimPrefix(result.Object.URI, "file://")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "config system global")
}
