package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// ErrSessionClosed 交互会话已结束
var ErrSessionClosed = errors.New("ssh session closed")

const (
	defaultTimeout = 60 * time.Second
	moreMarker     = "--More--"
	termWidth      = 511
	termHeight     = 24
)

// Config SSH配置
type Config struct {
	Timeout         time.Duration
	KeepAlive       time.Duration
	DelayFactor     float64 // 放大等待提示符的超时，慢速设备上调大
	HostKeyCallback ssh.HostKeyCallback
	UseKeys         bool // 未指定 KeyFile 时尝试 ~/.ssh 下的默认私钥
}

// ConnectionInfo SSH连接信息
type ConnectionInfo struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	KeyFile  string `json:"key_file,omitempty"`
}

// Client 单个持久 PTY Shell 会话
// 命令串行执行：发送命令，等待回显，再等待下一个提示符
type Client struct {
	config *Config

	mutex      sync.Mutex
	connection *ssh.Client
	session    *ssh.Session
	stdin      io.WriteCloser
	chunks     chan string
	prompt     string
	done       chan struct{}
	closeOnce  sync.Once
}

// NewClient 创建SSH客户端
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.DelayFactor <= 0 {
		config.DelayFactor = 1
	}
	return &Client{config: config}
}

// Connect 建立连接、打开 Shell 并等待首个提示符
func (c *Client) Connect(ctx context.Context, info *ConnectionInfo) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.connection != nil {
		return fmt.Errorf("already connected to %s", info.Host)
	}

	auth, err := authMethods(info, c.config.UseKeys)
	if err != nil {
		return err
	}

	hostKeyCallback := c.config.HostKeyCallback
	if hostKeyCallback == nil {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	}

	sshConfig := &ssh.ClientConfig{
		User:            info.Username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         c.config.Timeout,
		Config: ssh.Config{
			// 兼容旧版本 FortiOS 的密钥交换算法
			KeyExchanges: []string{
				"curve25519-sha256",
				"curve25519-sha256@libssh.org",
				"ecdh-sha2-nistp256",
				"ecdh-sha2-nistp384",
				"ecdh-sha2-nistp521",
				"diffie-hellman-group14-sha256",
				"diffie-hellman-group14-sha1",
				"diffie-hellman-group1-sha1",
			},
			Ciphers: []string{
				"aes128-gcm@openssh.com",
				"aes256-gcm@openssh.com",
				"chacha20-poly1305@openssh.com",
				"aes128-ctr",
				"aes192-ctr",
				"aes256-ctr",
				"aes128-cbc",
				"3des-cbc",
			},
			MACs: []string{
				"hmac-sha2-256-etm@openssh.com",
				"hmac-sha2-256",
				"hmac-sha1",
				"hmac-sha1-96",
			},
		},
		HostKeyAlgorithms: []string{
			"ssh-ed25519",
			"rsa-sha2-256",
			"rsa-sha2-512",
			"ssh-rsa",
			"ecdsa-sha2-nistp256",
			"ecdsa-sha2-nistp384",
			"ecdsa-sha2-nistp521",
		},
	}

	address := net.JoinHostPort(info.Host, strconv.Itoa(info.Port))
	dialer := &net.Dialer{Timeout: c.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to dial: %w", err)
	}

	// 握手阶段不受 ctx 控制，用连接级 deadline 兜底
	_ = conn.SetDeadline(time.Now().Add(c.config.Timeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, sshConfig)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SSH connection: %w", err)
	}
	_ = conn.SetDeadline(time.Time{})

	client := ssh.NewClient(sshConn, chans, reqs)
	c.done = make(chan struct{})
	c.closeOnce = sync.Once{}
	if err := c.openShell(client); err != nil {
		client.Close()
		return err
	}
	c.connection = client

	prompt, err := c.waitPrompt(ctx)
	if err != nil {
		c.teardown()
		return fmt.Errorf("failed to detect prompt: %w", err)
	}
	c.prompt = prompt

	go c.keepAlive(c.done)
	return nil
}

func (c *Client) openShell(client *ssh.Client) error {
	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	// 终端类型回退
	var ptyErr error
	for _, term := range []string{"vt100", "xterm", "ansi", "dumb"} {
		if ptyErr = session.RequestPty(term, termHeight, termWidth, modes); ptyErr == nil {
			break
		}
	}
	if ptyErr != nil {
		session.Close()
		return fmt.Errorf("failed to request pty: %w", ptyErr)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return fmt.Errorf("failed to get stdin: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return fmt.Errorf("failed to get stdout: %w", err)
	}
	if err := session.Shell(); err != nil {
		session.Close()
		return fmt.Errorf("failed to start shell: %w", err)
	}

	c.session = session
	c.stdin = stdin
	c.chunks = make(chan string, 256)
	go readLoop(stdout, c.chunks, c.done)
	return nil
}

// readLoop 将输出按块推入通道，读到 EOF 或错误时关闭通道
func readLoop(r io.Reader, out chan<- string, done <-chan struct{}) {
	defer close(out)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			select {
			case out <- string(buf[:n]):
			case <-done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// waitPrompt 登录后读取横幅直到出现提示符；静默时发送回车诱发
func (c *Client) waitPrompt(ctx context.Context) (string, error) {
	deadline := time.NewTimer(c.commandTimeout())
	defer deadline.Stop()
	inducer := time.NewTicker(time.Second)
	defer inducer.Stop()

	var acc strings.Builder
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			return "", fmt.Errorf("no prompt within %s", c.commandTimeout())
		case <-inducer.C:
			if _, err := c.stdin.Write([]byte("\n")); err != nil {
				return "", fmt.Errorf("%w: %v", ErrSessionClosed, err)
			}
		case chunk, ok := <-c.chunks:
			if !ok {
				return "", ErrSessionClosed
			}
			acc.WriteString(chunk)
			lines := strings.Split(normalize(acc.String()), "\n")
			last := strings.TrimSpace(lines[len(lines)-1])
			if looksLikePrompt(last) {
				return last, nil
			}
		}
	}
}

// Prompt 连接时识别到的提示符
func (c *Client) Prompt() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.prompt
}

// SendCommand 执行一条命令，返回去掉回显与提示符后的输出
// 遇到分页提示自动发送空格继续
func (c *Client) SendCommand(ctx context.Context, command string) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.connection == nil {
		return "", ErrSessionClosed
	}

	// 丢弃上一条命令之后残留的输出
	c.drain()

	if _, err := c.stdin.Write([]byte(command + "\n")); err != nil {
		return "", fmt.Errorf("failed to write command: %w", err)
	}

	timer := time.NewTimer(c.commandTimeout())
	defer timer.Stop()

	var acc string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
			return "", fmt.Errorf("timed out after %s waiting for prompt after %q", c.commandTimeout(), command)
		case chunk, ok := <-c.chunks:
			if !ok {
				return "", ErrSessionClosed
			}
			acc += normalize(chunk)
			if strings.Contains(acc, moreMarker) {
				acc = strings.ReplaceAll(acc, moreMarker+" ", "")
				acc = strings.ReplaceAll(acc, moreMarker, "")
				if _, err := c.stdin.Write([]byte(" ")); err != nil {
					return "", fmt.Errorf("failed to continue pager: %w", err)
				}
			}
			if output, complete := c.extractOutput(acc, command); complete {
				return output, nil
			}
		}
	}
}

// extractOutput 回显行之后、末尾提示符之前的内容
func (c *Client) extractOutput(acc, command string) (string, bool) {
	idx := strings.Index(acc, command)
	if idx < 0 {
		return "", false
	}
	rest := acc[idx+len(command):]
	nl := strings.Index(rest, "\n")
	if nl < 0 {
		return "", false
	}
	body := rest[nl+1:]
	cut := strings.LastIndex(body, "\n")
	if !c.isPrompt(strings.TrimSpace(body[cut+1:])) {
		return "", false
	}
	if cut < 0 {
		return "", true
	}
	return body[:cut], true
}

func (c *Client) drain() {
	for {
		select {
		case _, ok := <-c.chunks:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// isPrompt 以连接时的主机名为前缀且以 # 或 $ 结尾
// 进入 vdom/global 后提示符变为 "FGT (root) #"，仍视为同一提示符
func (c *Client) isPrompt(line string) bool {
	if !looksLikePrompt(line) {
		return false
	}
	base := promptBase(c.prompt)
	return base == "" || strings.HasPrefix(line, base)
}

func looksLikePrompt(line string) bool {
	return strings.HasSuffix(line, "#") || strings.HasSuffix(line, "$")
}

func promptBase(prompt string) string {
	base := strings.TrimRight(prompt, "#$ ")
	if i := strings.Index(base, " ("); i >= 0 {
		base = base[:i]
	}
	return strings.TrimSpace(base)
}

func (c *Client) commandTimeout() time.Duration {
	return time.Duration(float64(c.config.Timeout) * c.config.DelayFactor)
}

// WriteRaw 直接向 Shell 写入字节，不等待输出
func (c *Client) WriteRaw(data []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.stdin == nil {
		return ErrSessionClosed
	}
	_, err := c.stdin.Write(data)
	return err
}

// IsActive 检查连接状态
// 发送 keepalive 请求而不创建会话，避免触发设备的会话数量限制
func (c *Client) IsActive() bool {
	c.mutex.Lock()
	conn := c.connection
	c.mutex.Unlock()
	if conn == nil {
		return false
	}
	_, _, err := conn.SendRequest("keepalive@openssh.com", false, nil)
	return err == nil
}

// keepAlive 保持连接活跃，直到 Close
func (c *Client) keepAlive(done <-chan struct{}) {
	if c.config.KeepAlive <= 0 {
		return
	}
	ticker := time.NewTicker(c.config.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !c.IsActive() {
				return
			}
		}
	}
}

// Close 关闭SSH连接
func (c *Client) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.connection == nil {
		return nil
	}
	return c.teardown()
}

// teardown 调用方持有锁
func (c *Client) teardown() error {
	c.closeOnce.Do(func() {
		if c.done != nil {
			close(c.done)
		}
	})
	if c.session != nil {
		_ = c.session.Close()
		c.session = nil
	}
	c.stdin = nil
	var err error
	if c.connection != nil {
		err = c.connection.Close()
		c.connection = nil
	}
	return err
}

// normalize 去除 ANSI 转义序列与回车，统一为 \n 换行
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	b := make([]byte, 0, len(s))
	skip := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if skip {
			// CSI 序列以字母结尾
			if (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') {
				skip = false
			}
			continue
		}
		if ch == 0x1b {
			skip = true
			continue
		}
		if ch < 0x20 && ch != '\t' && ch != '\n' {
			continue
		}
		b = append(b, ch)
	}
	return string(b)
}
