package fortinet

import (
	"errors"
	"fmt"
	"time"

	"github.com/sshcollectorpro/fortidriver/internal/util"
)

// 默认值与 FortiOS 常见设置一致
const (
	TransportSSH             = "ssh"
	DefaultPort              = 22
	DefaultTimeout           = 60 * time.Second
	DefaultKeepalive         = 30 * time.Second
	DefaultGlobalDelayFactor = 1.0
)

// DefaultErrorMarkers FortiOS 拒绝命令时输出中的标志
var DefaultErrorMarkers = []string{
	"Command fail. Return code",
	"Unknown action",
	"command parse error",
}

// Options 会话参数
type Options struct {
	Transport string        `mapstructure:"transport" json:"transport" yaml:"transport"`
	Port      int           `mapstructure:"port" json:"port" yaml:"port"`
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	Keepalive time.Duration `mapstructure:"keepalive" json:"keepalive" yaml:"keepalive"`

	// GlobalDelayFactor 等待提示符超时 = Timeout * GlobalDelayFactor
	GlobalDelayFactor float64 `mapstructure:"global_delay_factor" json:"global_delay_factor" yaml:"global_delay_factor"`

	// Secret 特权口令，FortiOS 无 enable 模式，不会使用
	Secret string `mapstructure:"secret" json:"-" yaml:"-"`

	UseKeys        bool   `mapstructure:"use_keys" json:"use_keys" yaml:"use_keys"`
	KeyFile        string `mapstructure:"key_file" json:"key_file" yaml:"key_file"`
	SSHStrict      bool   `mapstructure:"ssh_strict" json:"ssh_strict" yaml:"ssh_strict"`
	SystemHostKeys bool   `mapstructure:"system_host_keys" json:"system_host_keys" yaml:"system_host_keys"`
	AltHostKeys    bool   `mapstructure:"alt_host_keys" json:"alt_host_keys" yaml:"alt_host_keys"`
	AltKeyFile     string `mapstructure:"alt_key_file" json:"alt_key_file" yaml:"alt_key_file"`

	ErrorMarkers []string `mapstructure:"error_markers" json:"error_markers" yaml:"error_markers"`
	// OutputCharset 设备输出字符集，空为自动探测
	OutputCharset string `mapstructure:"output_charset" json:"output_charset" yaml:"output_charset"`
}

// DefaultOptions 返回全部默认值
func DefaultOptions() Options {
	return Options{
		Transport:         TransportSSH,
		Port:              DefaultPort,
		Timeout:           DefaultTimeout,
		Keepalive:         DefaultKeepalive,
		GlobalDelayFactor: DefaultGlobalDelayFactor,
		ErrorMarkers:      append([]string(nil), DefaultErrorMarkers...),
	}
}

// WithDefaults 零值字段填充为默认值
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Transport == "" {
		o.Transport = d.Transport
	}
	if o.Port == 0 {
		o.Port = d.Port
	}
	if o.Timeout == 0 {
		o.Timeout = d.Timeout
	}
	if o.Keepalive == 0 {
		o.Keepalive = d.Keepalive
	}
	if o.GlobalDelayFactor == 0 {
		o.GlobalDelayFactor = d.GlobalDelayFactor
	}
	if len(o.ErrorMarkers) == 0 {
		o.ErrorMarkers = d.ErrorMarkers
	}
	return o
}

// Validate 校验参数组合
func (o Options) Validate() error {
	var errs []error
	if o.Transport != TransportSSH {
		errs = append(errs, fmt.Errorf("unsupported transport %q", o.Transport))
	}
	if o.Port < 1 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", o.Port))
	}
	if o.Timeout < 0 {
		errs = append(errs, fmt.Errorf("negative timeout %s", o.Timeout))
	}
	if o.Keepalive < 0 {
		errs = append(errs, fmt.Errorf("negative keepalive %s", o.Keepalive))
	}
	if o.GlobalDelayFactor <= 0 {
		errs = append(errs, fmt.Errorf("global delay factor must be positive, got %v", o.GlobalDelayFactor))
	}
	if o.AltHostKeys && o.AltKeyFile == "" {
		errs = append(errs, errors.New("alt_host_keys requires alt_key_file"))
	}
	if !util.ValidCharset(o.OutputCharset) {
		errs = append(errs, fmt.Errorf("unknown output charset %q", o.OutputCharset))
	}
	if o.SSHStrict && !o.SystemHostKeys && !o.AltHostKeys {
		errs = append(errs, errors.New("ssh_strict requires system_host_keys or alt_host_keys"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}
