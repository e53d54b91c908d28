package ssh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// defaultKeyFiles UseKeys 且未指定私钥时依次尝试
var defaultKeyFiles = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// authMethods 私钥优先，其次 password 与 keyboard-interactive
func authMethods(info *ConnectionInfo, useKeys bool) ([]ssh.AuthMethod, error) {
	methods := make([]ssh.AuthMethod, 0, 3)

	keyFiles := make([]string, 0, len(defaultKeyFiles))
	if info.KeyFile != "" {
		keyFiles = append(keyFiles, info.KeyFile)
	} else if useKeys {
		if home, err := os.UserHomeDir(); err == nil {
			for _, name := range defaultKeyFiles {
				keyFiles = append(keyFiles, filepath.Join(home, ".ssh", name))
			}
		}
	}

	signers := make([]ssh.Signer, 0, len(keyFiles))
	for _, path := range keyFiles {
		privkey, err := os.ReadFile(path)
		if err != nil {
			// 显式指定的私钥必须可读，默认私钥缺失则跳过
			if info.KeyFile != "" {
				return nil, fmt.Errorf("failed to read SSH private key %s: %w", path, err)
			}
			continue
		}
		signer, err := ssh.ParsePrivateKey(privkey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH private key %s: %w", path, err)
		}
		signers = append(signers, signer)
	}
	if len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}

	if info.Password != "" {
		password := info.Password
		methods = append(methods,
			ssh.Password(password),
			// 对所有提示统一使用密码响应
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = password
				}
				return answers, nil
			}),
		)
	}

	if len(methods) == 0 {
		return nil, errors.New("no SSH authentication method available")
	}
	return methods, nil
}

// HostKeyPolicy 主机密钥校验策略
// Strict 为 false 时接受任意主机密钥
type HostKeyPolicy struct {
	Strict     bool
	KnownHosts []string
}

// Callback 构造 HostKeyCallback
func (p HostKeyPolicy) Callback() (ssh.HostKeyCallback, error) {
	if !p.Strict {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if len(p.KnownHosts) == 0 {
		return nil, errors.New("strict host key checking requires at least one known_hosts file")
	}
	callback, err := knownhosts.New(p.KnownHosts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts: %w", err)
	}
	return callback, nil
}

// SystemKnownHosts 当前用户的 ~/.ssh/known_hosts
func SystemKnownHosts() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "known_hosts")
}
