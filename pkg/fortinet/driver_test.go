package fortinet

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rejectedOutput = "command parse error before 'bogus'\nCommand fail. Return code -61"

// fakeSession 按命令返回预置输出，未预置的命令视为被设备拒绝
type fakeSession struct {
	outputs    map[string]string
	errs       map[string]error
	sent       []string
	writes     [][]byte
	writeErr   error
	panicWrite bool
	inactive   bool
	closed     bool
}

func (f *fakeSession) SendCommand(ctx context.Context, command string) (string, error) {
	f.sent = append(f.sent, command)
	if err := f.errs[command]; err != nil {
		return "", err
	}
	if out, ok := f.outputs[command]; ok {
		return out, nil
	}
	return rejectedOutput, nil
}

func (f *fakeSession) WriteRaw(data []byte) error {
	if f.panicWrite {
		panic("write on torn down channel")
	}
	f.writes = append(f.writes, data)
	return f.writeErr
}

func (f *fakeSession) IsActive() bool { return !f.inactive && !f.closed }

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func newTestDriver(t *testing.T, session *fakeSession) *Driver {
	t.Helper()
	d, err := New("fgt.example.net", "admin", "secret", Options{})
	require.NoError(t, err)
	d.SetDialer(func(ctx context.Context, hostname, username, password string, opts Options) (Session, error) {
		return session, nil
	})
	return d
}

func openTestDriver(t *testing.T, session *fakeSession) *Driver {
	t.Helper()
	d := newTestDriver(t, session)
	require.NoError(t, d.Open(context.Background()))
	return d
}

func TestExecutorVariantFallback(t *testing.T) {
	session := &fakeSession{outputs: map[string]string{"get system arp": "ok"}}
	ex := &executor{session: session, markers: DefaultErrorMarkers, log: (&Driver{hostname: "x"}).logEntry()}

	out, err := ex.run(context.Background(), "get router info arp", "get system arp")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []string{"get router info arp", "get system arp"}, session.sent)
}

func TestExecutorAllRejected(t *testing.T) {
	session := &fakeSession{}
	ex := &executor{session: session, markers: DefaultErrorMarkers, log: (&Driver{hostname: "x"}).logEntry()}

	out, err := ex.run(context.Background(), "bogus one", "bogus two")
	require.Error(t, err)
	assert.Equal(t, rejectedOutput, out, "返回最后一个变体的输出")
	assert.ErrorIs(t, err, ErrCommandRejected)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, []string{"bogus one", "bogus two"}, cmdErr.Commands)
	assert.False(t, errors.Is(err, ErrConnectionClosed))
}

func TestExecutorTransportFailure(t *testing.T) {
	session := &fakeSession{errs: map[string]error{"get system status": io.EOF}}
	ex := &executor{session: session, markers: DefaultErrorMarkers, log: (&Driver{hostname: "x"}).logEntry()}

	_, err := ex.run(context.Background(), "get system status", "never sent")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionClosed)
	assert.ErrorIs(t, err, io.EOF)
	assert.False(t, errors.Is(err, ErrCommandRejected))
	assert.Equal(t, []string{"get system status"}, session.sent, "传输失败后不再尝试后续变体")
}

func TestExecutorCustomMarkers(t *testing.T) {
	session := &fakeSession{outputs: map[string]string{"diag x": "% Invalid input"}}
	ex := &executor{session: session, markers: []string{"% Invalid"}, log: (&Driver{hostname: "x"}).logEntry()}

	_, err := ex.run(context.Background(), "diag x")
	assert.ErrorIs(t, err, ErrCommandRejected)
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New("", "admin", "pw", Options{})
	assert.Error(t, err)

	_, err = New("fgt", "admin", "pw", Options{Transport: "telnet"})
	assert.Error(t, err)
}

func TestDriverLifecycle(t *testing.T) {
	session := &fakeSession{}
	d := newTestDriver(t, session)

	assert.ErrorIs(t, d.Close(), ErrNotConnected, "未打开时关闭返回 ErrNotConnected")
	assert.False(t, d.IsAlive().IsAlive)

	require.NoError(t, d.Open(context.Background()))
	assert.ErrorIs(t, d.Open(context.Background()), ErrAlreadyOpen)
	assert.True(t, d.IsAlive().IsAlive)
	assert.Equal(t, [][]byte{{0}}, session.writes, "存活探测写入空字节")

	require.NoError(t, d.Close())
	assert.True(t, session.closed)
	assert.False(t, d.IsAlive().IsAlive)
	assert.ErrorIs(t, d.Close(), ErrNotConnected)
}

func TestDriverOpenFailure(t *testing.T) {
	d, err := New("10.255.255.1", "admin", "pw", Options{})
	require.NoError(t, err)
	dialErr := errors.New("connection refused")
	d.SetDialer(func(ctx context.Context, hostname, username, password string, opts Options) (Session, error) {
		return nil, dialErr
	})

	err = d.Open(context.Background())
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "10.255.255.1", connErr.Host)
	assert.ErrorIs(t, err, dialErr)
}

func TestDriverDialerReceivesOptions(t *testing.T) {
	d, err := New("fgt", "admin", "pw", Options{Port: 2222, GlobalDelayFactor: 3})
	require.NoError(t, err)

	var got Options
	d.SetDialer(func(ctx context.Context, hostname, username, password string, opts Options) (Session, error) {
		got = opts
		return &fakeSession{}, nil
	})
	require.NoError(t, d.Open(context.Background()))
	assert.Equal(t, 2222, got.Port)
	assert.Equal(t, 3.0, got.GlobalDelayFactor)
	assert.Equal(t, DefaultKeepalive, got.Keepalive)
}

func TestLivenessProbeReasons(t *testing.T) {
	d := newTestDriver(t, &fakeSession{})
	assert.ErrorIs(t, d.probe().Reason, errNoSession)

	cases := []struct {
		name    string
		session *fakeSession
		reason  error
	}{
		{"写入失败", &fakeSession{writeErr: io.ErrClosedPipe}, errKeepaliveWrite},
		{"写入 panic", &fakeSession{panicWrite: true}, errKeepaliveWrite},
		{"传输层不可用", &fakeSession{inactive: true}, errTransportInactive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := openTestDriver(t, tc.session)
			p := d.probe()
			assert.False(t, p.Alive)
			assert.ErrorIs(t, p.Reason, tc.reason)
			assert.False(t, d.IsAlive().IsAlive)
		})
	}
}

func TestQueriesRequireOpenSession(t *testing.T) {
	d := newTestDriver(t, &fakeSession{})
	ctx := context.Background()

	_, err := d.GetFacts(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = d.GetARPTable(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = d.GetBGPConfig(ctx, "", "")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = d.GetConfig(ctx, RetrieveAll)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = d.GetInterfacesIP(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = d.CLI(ctx, []string{"get system status"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestGetFacts(t *testing.T) {
	session := &fakeSession{outputs: map[string]string{
		cmdSystemStatus:   sampleSystemStatus,
		cmdUptime:         "Uptime: 0 days,  1 hours,  0 minutes",
		cmdDNSDomain:      `domain : "lab.local"`,
		cmdInterfaceNames: "== [ port1 ]",
	}}
	d := openTestDriver(t, session)

	facts, err := d.GetFacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "FGT-LAB.lab.local", facts.FQDN)
	assert.Equal(t, int64(3600), facts.Uptime)
	assert.Equal(t, []string{"port1"}, facts.InterfaceList)
	assert.Equal(t, []string{cmdSystemStatus, cmdUptime, cmdDNSDomain, cmdInterfaceNames}, session.sent)
}

// TestGetFactsDegrades 只有 get system status 是必需的
func TestGetFactsDegrades(t *testing.T) {
	d := openTestDriver(t, &fakeSession{outputs: map[string]string{cmdSystemStatus: sampleSystemStatus}})

	facts, err := d.GetFacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "FGT-LAB", facts.FQDN)
	assert.Equal(t, UnknownUptime, facts.Uptime)
	assert.Empty(t, facts.InterfaceList)

	d = openTestDriver(t, &fakeSession{})
	_, err = d.GetFacts(context.Background())
	assert.ErrorIs(t, err, ErrCommandRejected)
}

func TestGetFactsTransportFailure(t *testing.T) {
	d := openTestDriver(t, &fakeSession{
		outputs: map[string]string{cmdSystemStatus: sampleSystemStatus},
		errs:    map[string]error{cmdUptime: io.EOF},
	})
	_, err := d.GetFacts(context.Background())
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestGetConfig(t *testing.T) {
	const show = "config system global\nend"
	session := &fakeSession{outputs: map[string]string{cmdShow: show}}
	d := openTestDriver(t, session)
	ctx := context.Background()

	running, err := d.GetConfig(ctx, RetrieveRunning)
	require.NoError(t, err)
	startup, err := d.GetConfig(ctx, RetrieveStartup)
	require.NoError(t, err)
	assert.Equal(t, running.Running, startup.Startup)

	session.sent = nil
	candidate, err := d.GetConfig(ctx, RetrieveCandidate)
	require.NoError(t, err)
	assert.Equal(t, ConfigSnapshot{}, candidate)
	assert.Empty(t, session.sent, "candidate 不访问设备")

	all, err := d.GetConfig(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, show, all.Running)
	assert.Equal(t, show, all.Startup)

	_, err = d.GetConfig(ctx, "bogus")
	assert.ErrorIs(t, err, ErrInvalidRetrieve)
}

func TestGetBGPConfig(t *testing.T) {
	session := &fakeSession{outputs: map[string]string{cmdBGPConfig: sampleBGPConfig}}
	d := openTestDriver(t, session)
	ctx := context.Background()

	cfg, err := d.GetBGPConfig(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, cfg[DefaultInstance].Neighbors, 2)

	session.sent = nil
	cfg, err = d.GetBGPConfig(ctx, "blue", "")
	require.NoError(t, err)
	assert.Empty(t, cfg)
	assert.Empty(t, session.sent)

	d = openTestDriver(t, &fakeSession{outputs: map[string]string{cmdBGPConfig: ""}})
	_, err = d.GetBGPConfig(ctx, "", "")
	assert.ErrorIs(t, err, ErrMissingBlock)
}

func TestGetARPTableAndInterfaces(t *testing.T) {
	d := openTestDriver(t, &fakeSession{outputs: map[string]string{
		cmdARP:             "Address Age(min) Hardware Addr Interface\n10.0.0.2 1 00:11:22:33:44:55 port1\n",
		cmdIPv4AddressList: sampleIPv4List,
	}})
	ctx := context.Background()

	arp, err := d.GetARPTable(ctx)
	require.NoError(t, err)
	require.Len(t, arp, 1)
	assert.Equal(t, 60.0, arp[0].Age)

	ifaces, err := d.GetInterfacesIP(ctx)
	require.NoError(t, err, "IPv6 查询被拒绝时只返回 IPv4")
	assert.Len(t, ifaces, 4)
	assert.Nil(t, ifaces["port1"].IPv6)
}

func TestCLI(t *testing.T) {
	d := openTestDriver(t, &fakeSession{outputs: map[string]string{cmdSystemStatus: sampleSystemStatus}})

	out, err := d.CLI(context.Background(), []string{cmdSystemStatus, "bogus"})
	require.NoError(t, err)
	assert.Equal(t, sampleSystemStatus, out[cmdSystemStatus])
	assert.Equal(t, rejectedOutput, out["bogus"], "被拒绝的命令同样返回原始输出")
}

func TestUnsupportedGetters(t *testing.T) {
	d := newTestDriver(t, &fakeSession{})
	ctx := context.Background()

	calls := map[string]func() (map[string]interface{}, error){
		"get_environment":           func() (map[string]interface{}, error) { return d.GetEnvironment(ctx) },
		"get_bgp_neighbors":         func() (map[string]interface{}, error) { return d.GetBGPNeighbors(ctx) },
		"get_bgp_neighbors_detail":  func() (map[string]interface{}, error) { return d.GetBGPNeighborsDetail(ctx, "") },
		"get_lldp_neighbors":        func() (map[string]interface{}, error) { return d.GetLLDPNeighbors(ctx) },
		"get_lldp_neighbors_detail": func() (map[string]interface{}, error) { return d.GetLLDPNeighborsDetail(ctx, "") },
		"get_mac_address_table":     func() (map[string]interface{}, error) { return d.GetMACAddressTable(ctx) },
		"get_network_instances":     func() (map[string]interface{}, error) { return d.GetNetworkInstances(ctx, "") },
		"get_ntp_servers":           func() (map[string]interface{}, error) { return d.GetNTPServers(ctx) },
		"get_ntp_peers":             func() (map[string]interface{}, error) { return d.GetNTPPeers(ctx) },
		"get_ntp_stats":             func() (map[string]interface{}, error) { return d.GetNTPStats(ctx) },
		"get_optics":                func() (map[string]interface{}, error) { return d.GetOptics(ctx) },
		"get_probes_config":         func() (map[string]interface{}, error) { return d.GetProbesConfig(ctx) },
		"get_probes_results":        func() (map[string]interface{}, error) { return d.GetProbesResults(ctx) },
		"get_route_to":              func() (map[string]interface{}, error) { return d.GetRouteTo(ctx, "0.0.0.0/0", "") },
		"get_snmp_information":      func() (map[string]interface{}, error) { return d.GetSNMPInformation(ctx) },
		"get_users":                 func() (map[string]interface{}, error) { return d.GetUsers(ctx) },
		"ping":                      func() (map[string]interface{}, error) { return d.Ping(ctx, "8.8.8.8") },
		"traceroute":                func() (map[string]interface{}, error) { return d.Traceroute(ctx, "8.8.8.8") },
	}
	for name, fn := range calls {
		result, err := fn()
		assert.Nil(t, result, name)
		assert.ErrorIs(t, err, ErrNotSupported, name)

		var nse *NotSupportedError
		require.ErrorAs(t, err, &nse, name)
		assert.Equal(t, name, nse.Getter)

		// 名称注册表给出同样的结果
		_, err = d.Get(ctx, name, GetterArgs{})
		assert.ErrorIs(t, err, ErrNotSupported, name)
	}
}

func TestGetByName(t *testing.T) {
	d := openTestDriver(t, &fakeSession{outputs: map[string]string{cmdShow: "config end"}})
	ctx := context.Background()

	v, err := d.Get(ctx, "get_config", GetterArgs{Retrieve: RetrieveRunning})
	require.NoError(t, err)
	assert.Equal(t, ConfigSnapshot{Running: "config end"}, v)

	v, err = d.Get(ctx, "is_alive", GetterArgs{})
	require.NoError(t, err)
	assert.Equal(t, AliveStatus{IsAlive: true}, v)

	_, err = d.Get(ctx, "get_everything", GetterArgs{})
	assert.ErrorIs(t, err, ErrUnknownGetter)

	names := GetterNames()
	assert.Contains(t, names, "get_facts")
	assert.Contains(t, names, "traceroute")
	assert.IsIncreasing(t, names)
	assert.True(t, HasGetter("get_arp_table"))
}
