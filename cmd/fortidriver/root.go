package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sshcollectorpro/fortidriver/internal/config"
	"github.com/sshcollectorpro/fortidriver/internal/service"
	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
	"github.com/sshcollectorpro/fortidriver/pkg/logger"
)

// PasswordEnv 未指定 --password 时读取的环境变量
const PasswordEnv = "FORTIDRIVER_PASSWORD"

// cliOptions 全局参数
type cliOptions struct {
	configPath string
	host       string
	port       int
	username   string
	password   string
	timeout    time.Duration
	output     string
	verbose    bool

	cfg *config.Config
	out io.Writer
}

func newRootCmd() *cobra.Command {
	o := &cliOptions{out: os.Stdout}

	root := &cobra.Command{
		Use:               "fortidriver",
		Short:             "Query FortiGate firewalls over SSH",
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		Long: `fortidriver opens an SSH session to a FortiGate, runs read-only
queries and prints structured results as JSON or YAML.

  fortidriver facts -H 192.0.2.1 -u admin
  fortidriver bgp -H 192.0.2.1 -u admin --neighbor 10.0.0.2 -o yaml`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.prepare(cmd)
		},
	}
	root.SetOut(os.Stdout)

	flags := root.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", "", "config file (ssh and log sections are used)")
	flags.StringVarP(&o.host, "host", "H", "", "device hostname or address")
	flags.IntVarP(&o.port, "port", "P", 0, "SSH port (default from config, 22)")
	flags.StringVarP(&o.username, "username", "u", "", "login username")
	flags.StringVarP(&o.password, "password", "p", "", "login password (or "+PasswordEnv+")")
	flags.DurationVar(&o.timeout, "timeout", 0, "overall timeout for the command, 0 for none")
	flags.StringVarP(&o.output, "output", "o", formatJSON, "output format: json or yaml")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging, including device output excerpts")

	root.AddCommand(
		newFactsCmd(o),
		newARPCmd(o),
		newBGPCmd(o),
		newConfigCmd(o),
		newInterfacesIPCmd(o),
		newAliveCmd(o),
		newCLICmd(o),
		newGetCmd(o),
		newGettersCmd(o),
		newBackupCmd(o),
		newSimulateCmd(o),
	)
	return root
}

// prepare 加载配置并初始化日志
func (o *cliOptions) prepare(cmd *cobra.Command) error {
	if err := checkFormat(o.output); err != nil {
		return err
	}
	o.out = cmd.OutOrStdout()

	if o.configPath != "" {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		o.cfg = cfg
		if err := logger.Init(cfg.Log); err != nil {
			return err
		}
	} else {
		o.cfg = &config.Config{
			SSH: fortinet.DefaultOptions(),
			Backup: config.BackupConfig{
				StorageBackend: config.BackendLocal,
				Prefix:         "configs",
				Local:          config.LocalBackupConfig{BaseDir: "./data/backups", MkdirIfMissing: true},
			},
		}
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetLevel(logrus.WarnLevel)
	}
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if o.password == "" {
		o.password = os.Getenv(PasswordEnv)
	}
	return nil
}

func (o *cliOptions) target() (service.Target, error) {
	if o.host == "" {
		return service.Target{}, fmt.Errorf("--host is required")
	}
	if o.username == "" {
		return service.Target{}, fmt.Errorf("--username is required")
	}
	return service.Target{Host: o.host, Port: o.port, Username: o.username, Password: o.password}, nil
}

func (o *cliOptions) newContext() (context.Context, context.CancelFunc) {
	if o.timeout > 0 {
		return context.WithTimeout(context.Background(), o.timeout)
	}
	return context.WithCancel(context.Background())
}

func (o *cliOptions) opener() service.Opener {
	return service.NewOpener(o.cfg.DriverOptions(), nil)
}

// withDriver 打开会话，执行 fn 并输出结果
func (o *cliOptions) withDriver(fn func(ctx context.Context, d *fortinet.Driver) (interface{}, error)) error {
	target, err := o.target()
	if err != nil {
		return err
	}
	ctx, cancel := o.newContext()
	defer cancel()

	d, err := o.opener()(ctx, target)
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := fn(ctx, d)
	if err != nil {
		return err
	}
	return render(o.out, o.output, result)
}

// withRawOutput 与 withDriver 相同，但原样输出文本
func (o *cliOptions) withRawOutput(fn func(ctx context.Context, d *fortinet.Driver) (string, error)) error {
	target, err := o.target()
	if err != nil {
		return err
	}
	ctx, cancel := o.newContext()
	defer cancel()

	d, err := o.opener()(ctx, target)
	if err != nil {
		return err
	}
	defer d.Close()

	text, err := fn(ctx, d)
	if err != nil {
		return err
	}
	_, err = io.WriteString(o.out, text)
	return err
}
