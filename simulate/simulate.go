package simulate

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/crypto/ssh"

	"github.com/sshcollectorpro/fortidriver/pkg/logger"
)

// Config FortiGate 模拟器配置
type Config struct {
	Listen      string            `mapstructure:"listen"`
	Hostname    string            `mapstructure:"hostname"`
	Username    string            `mapstructure:"username"`
	Password    string            `mapstructure:"password"`
	PageLines   int               `mapstructure:"page_lines"`
	IdleSeconds int               `mapstructure:"idle_seconds"`
	MaxConn     int               `mapstructure:"max_conn"`
	HostKeyFile string            `mapstructure:"host_key_file"`
	CommandDir  string            `mapstructure:"command_dir"`
	Commands    map[string]string `mapstructure:"commands"`
}

// DefaultConfig 本地随机端口，admin/admin
func DefaultConfig() Config {
	return Config{
		Listen:   "127.0.0.1:0",
		Hostname: "FGT-SIM",
		Username: "admin",
		Password: "admin",
	}
}

// LoadConfig 读取 yaml 配置，未设置的字段取 DefaultConfig
// 注意 viper 会把 commands 的键转为小写，命令匹配因此不区分大小写
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)

	d := DefaultConfig()
	v.SetDefault("listen", d.Listen)
	v.SetDefault("hostname", d.Hostname)
	v.SetDefault("username", d.Username)
	v.SetDefault("password", d.Password)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read simulate config: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal simulate config: %w", err)
	}
	return &cfg, nil
}

// Server 单台 FortiGate 的 SSH 模拟
type Server struct {
	cfg      Config
	listener net.Listener
	hostKey  ssh.Signer
	log      *logrus.Entry

	mu       sync.Mutex
	commands map[string]string
	active   int
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// Start 监听并开始接受连接
func Start(cfg Config) (*Server, error) {
	d := DefaultConfig()
	if cfg.Listen == "" {
		cfg.Listen = d.Listen
	}
	if cfg.Hostname == "" {
		cfg.Hostname = d.Hostname
	}

	signer, err := loadOrCreateHostKey(cfg.HostKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to init host key: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		hostKey:  signer,
		log:      logger.WithFields(logrus.Fields{"component": "simulate", "hostname": cfg.Hostname}),
		commands: make(map[string]string),
		conns:    make(map[net.Conn]struct{}),
	}
	for cmd, out := range defaultCommands {
		s.commands[commandKey(cmd)] = strings.ReplaceAll(out, hostnamePlaceholder, cfg.Hostname)
	}
	for cmd, out := range cfg.Commands {
		s.commands[commandKey(cmd)] = out
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, err
	}
	s.listener = ln
	s.log.WithField("addr", ln.Addr().String()).Infof("Simulate: listener started")

	go s.acceptLoop()
	return s, nil
}

// Addr 实际监听地址
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Host 监听 IP
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.Addr())
	return host
}

// Port 监听端口
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.Addr())
	n, _ := strconv.Atoi(port)
	return n
}

// Hostname 提示符中的主机名
func (s *Server) Hostname() string { return s.cfg.Hostname }

// SetOutput 设置或覆盖某条命令的输出
func (s *Server) SetOutput(cmd, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[commandKey(cmd)] = output
}

// RemoveOutput 删除命令，之后该命令被设备拒绝
func (s *Server) RemoveOutput(cmd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.commands, commandKey(cmd))
}

// Stop 停止监听并断开所有连接
func (s *Server) Stop() {
	_ = s.listener.Close()
	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.log.Infof("Simulate: stopped")
}

// DropConnections 断开现有连接但继续监听，用于模拟传输中断
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		_ = c.Close()
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.WithError(err).Warnf("Simulate: accept error")
			continue
		}

		s.mu.Lock()
		if s.cfg.MaxConn > 0 && s.active >= s.cfg.MaxConn {
			s.mu.Unlock()
			_ = conn.Close()
			s.log.Warnf("Simulate: reject connection, max_conn exceeded")
			continue
		}
		s.active++
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			s.handleConn(c)
			s.mu.Lock()
			s.active--
			delete(s.conns, c)
			s.mu.Unlock()
		}(conn)
	}
}

func (s *Server) checkPassword(user, password string) bool {
	if s.cfg.Username != "" && user != s.cfg.Username {
		return false
	}
	return password == s.cfg.Password
}

func (s *Server) handleConn(nc net.Conn) {
	defer nc.Close()

	srvCfg := &ssh.ServerConfig{
		PasswordCallback: func(meta ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			if s.checkPassword(meta.User(), string(password)) {
				return nil, nil
			}
			s.log.WithField("user", meta.User()).Debugf("Simulate: auth failed (password)")
			return nil, fmt.Errorf("access denied")
		},
		KeyboardInteractiveCallback: func(meta ssh.ConnMetadata, challenge ssh.KeyboardInteractiveChallenge) (*ssh.Permissions, error) {
			answers, err := challenge(meta.User(), "", []string{"Password: "}, []bool{false})
			if err != nil {
				return nil, err
			}
			if len(answers) == 1 && s.checkPassword(meta.User(), answers[0]) {
				return nil, nil
			}
			return nil, fmt.Errorf("access denied")
		},
	}
	srvCfg.AddHostKey(s.hostKey)

	conn, chans, reqs, err := ssh.NewServerConn(nc, srvCfg)
	if err != nil {
		s.log.WithError(err).WithField("remote", nc.RemoteAddr().String()).Debugf("Simulate: SSH handshake failed")
		return
	}
	defer conn.Close()
	s.log.WithField("user", conn.User()).Debugf("Simulate: handshake success")

	go ssh.DiscardRequests(reqs)

	var sessions sync.WaitGroup
	for ch := range chans {
		if ch.ChannelType() != "session" {
			_ = ch.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}
		channel, requests, err := ch.Accept()
		if err != nil {
			s.log.WithError(err).Warnf("Simulate: channel accept failed")
			continue
		}
		sessions.Add(1)
		go func() {
			defer sessions.Done()
			s.handleSession(channel, requests)
		}()
	}
	sessions.Wait()
}

// exec 请求的负载格式
type execPayload struct {
	Command string
}

func (s *Server) handleSession(channel ssh.Channel, requests <-chan *ssh.Request) {
	defer channel.Close()

	for req := range requests {
		switch req.Type {
		case "pty-req", "env", "window-change":
			_ = req.Reply(true, nil)
		case "shell":
			_ = req.Reply(true, nil)
			newShell(s, channel).run()
			return
		case "exec":
			var payload execPayload
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			out, ok := s.lookup(payload.Command)
			if !ok {
				out = rejection(payload.Command)
			}
			_, _ = channel.Write([]byte(ensureCRLF(out)))
			_, _ = channel.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{0}))
			return
		default:
			_ = req.Reply(false, nil)
		}
	}
}

// lookup 先查内存表，再查 CommandDir 下的 <命令>.txt
func (s *Server) lookup(cmd string) (string, bool) {
	s.mu.Lock()
	out, ok := s.commands[commandKey(cmd)]
	s.mu.Unlock()
	if ok {
		return out, true
	}
	if s.cfg.CommandDir == "" {
		return "", false
	}
	for _, name := range []string{cmd, strings.ReplaceAll(cmd, " ", "_")} {
		if bs, err := os.ReadFile(filepath.Join(s.cfg.CommandDir, name+".txt")); err == nil {
			return string(bs), true
		}
	}
	return "", false
}

func commandKey(cmd string) string {
	return strings.ToLower(strings.Join(strings.Fields(cmd), " "))
}

// loadOrCreateHostKey path 为空时生成临时 ed25519 密钥，否则持久化到文件
func loadOrCreateHostKey(path string) (ssh.Signer, error) {
	if path != "" {
		if bs, err := os.ReadFile(path); err == nil {
			return ssh.ParsePrivateKey(bs)
		}
	}

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate host key: %w", err)
	}
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return signer, nil
	}

	block, err := ssh.MarshalPrivateKey(key, "fortidriver simulate")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal host key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write host key: %w", err)
	}
	return signer, nil
}

func ensureCRLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "\r\n")
	if s != "" && !strings.HasSuffix(s, "\r\n") {
		s += "\r\n"
	}
	return s
}
