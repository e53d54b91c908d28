package simulate

import (
	"bufio"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

const (
	pagerPrompt = "--More-- "
	// 回到行首并清除整行
	pagerErase = "\r\x1b[K"
)

// shell 逐字节读取输入，回显并在回车时执行命令
type shell struct {
	srv     *Server
	channel ssh.Channel
	in      *bufio.Reader
	idle    *time.Timer
}

func newShell(srv *Server, channel ssh.Channel) *shell {
	return &shell{
		srv:     srv,
		channel: channel,
		in:      bufio.NewReader(channel),
	}
}

func (sh *shell) prompt() string {
	return sh.srv.cfg.Hostname + " # "
}

func (sh *shell) write(s string) bool {
	_, err := io.WriteString(sh.channel, s)
	return err == nil
}

func (sh *shell) touch() {
	if sh.idle != nil {
		sh.idle.Reset(time.Duration(sh.srv.cfg.IdleSeconds) * time.Second)
	}
}

func (sh *shell) run() {
	if sh.srv.cfg.IdleSeconds > 0 {
		sh.idle = time.AfterFunc(time.Duration(sh.srv.cfg.IdleSeconds)*time.Second, func() {
			sh.srv.log.Debugf("Simulate: idle timeout, closing session")
			_ = sh.channel.Close()
		})
		defer sh.idle.Stop()
	}

	if !sh.write("\r\n" + sh.prompt()) {
		return
	}

	var line strings.Builder
	lastCR := false
	for {
		b, err := sh.in.ReadByte()
		if err != nil {
			return
		}
		sh.touch()

		switch b {
		case 0x00:
			// keepalive 空字节
			continue
		case '\n':
			if lastCR {
				lastCR = false
				continue
			}
		case '\r':
			lastCR = true
		default:
			lastCR = false
			line.WriteByte(b)
			if !sh.write(string(b)) {
				return
			}
			continue
		}

		cmd := strings.TrimSpace(line.String())
		line.Reset()
		if !sh.write("\r\n") {
			return
		}
		if cmd == "" {
			if !sh.write(sh.prompt()) {
				return
			}
			continue
		}
		if cmd == "exit" || cmd == "quit" {
			return
		}
		if !sh.execute(cmd) {
			return
		}
	}
}

// execute 输出命令结果并重新打印提示符，连接出错时返回 false
func (sh *shell) execute(cmd string) bool {
	out, ok := sh.srv.lookup(cmd)
	if !ok {
		sh.srv.log.WithField("command", cmd).Debugf("Simulate: command rejected")
		out = rejection(cmd)
	}

	if out != "" {
		if !sh.page(ensureCRLF(out)) {
			return false
		}
	}
	return sh.write(sh.prompt())
}

// page 按 PageLines 分页输出，空格继续，q 结束
func (sh *shell) page(out string) bool {
	size := sh.srv.cfg.PageLines
	if size <= 0 {
		return sh.write(out)
	}

	lines := strings.SplitAfter(out, "\r\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for start := 0; start < len(lines); start += size {
		end := start + size
		if end > len(lines) {
			end = len(lines)
		}
		if !sh.write(strings.Join(lines[start:end], "")) {
			return false
		}
		if end == len(lines) {
			break
		}

		if !sh.write(pagerPrompt) {
			return false
		}
		key, err := sh.waitKey()
		if err != nil {
			return false
		}
		if !sh.write(pagerErase) {
			return false
		}
		if key == 'q' || key == 'Q' {
			break
		}
	}
	return true
}

func (sh *shell) waitKey() (byte, error) {
	for {
		b, err := sh.in.ReadByte()
		if err != nil {
			return 0, err
		}
		sh.touch()
		if b != 0x00 {
			return b, nil
		}
	}
}
