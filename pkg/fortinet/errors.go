package fortinet

import (
	"errors"
	"fmt"
)

// 哨兵错误
var (
	ErrNotConnected     = errors.New("driver not connected")
	ErrAlreadyOpen      = errors.New("driver already open")
	ErrConnectionClosed = errors.New("connection closed")
	ErrCommandRejected  = errors.New("command rejected by device")
	ErrNotSupported     = errors.New("not supported for this vendor")
	ErrMissingBlock     = errors.New("required configuration block missing")
	ErrInvalidRetrieve  = errors.New("invalid retrieve option")

	// 配置下发相关，当前无写入路径，仅保留
	ErrSessionLocked = errors.New("configuration session locked")
	ErrMergeConfig   = errors.New("merge config failed")
	ErrReplaceConfig = errors.New("replace config failed")
)

// ConnectionError 建立会话失败
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ConnectionClosedError 会话在命令执行过程中中断
type ConnectionClosedError struct {
	Command string
	Err     error
}

func (e *ConnectionClosedError) Error() string {
	return fmt.Sprintf("connection closed while running %q: %v", e.Command, e.Err)
}

// Is 让 errors.Is(err, ErrConnectionClosed) 成立，同时保留底层错误链
func (e *ConnectionClosedError) Is(target error) bool { return target == ErrConnectionClosed }

func (e *ConnectionClosedError) Unwrap() error { return e.Err }

// CommandError 设备拒绝了所有命令变体
// Output 保留最后一个变体的原始回显
type CommandError struct {
	Commands []string
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("device rejected %q", e.Commands)
}

func (e *CommandError) Unwrap() error { return ErrCommandRejected }

// NotSupportedError 该厂商不支持的查询
type NotSupportedError struct {
	Getter string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Getter, ErrNotSupported)
}

func (e *NotSupportedError) Unwrap() error { return ErrNotSupported }
