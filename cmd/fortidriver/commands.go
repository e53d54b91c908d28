package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sshcollectorpro/fortidriver/internal/service"
	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
	"github.com/sshcollectorpro/fortidriver/simulate"
)

func newFactsCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "facts",
		Short: "Show device facts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDriver(func(ctx context.Context, d *fortinet.Driver) (interface{}, error) {
				return d.GetFacts(ctx)
			})
		},
	}
}

func newARPCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "arp",
		Short: "Show the ARP table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDriver(func(ctx context.Context, d *fortinet.Driver) (interface{}, error) {
				return d.GetARPTable(ctx)
			})
		},
	}
}

func newBGPCmd(o *cliOptions) *cobra.Command {
	var group, neighbor string
	cmd := &cobra.Command{
		Use:   "bgp",
		Short: "Show BGP configuration",
		Long: `Show BGP configuration from "show full-configuration router bgp".

FortiOS has a single routing instance; any --group other than "_" or empty
returns an empty result without querying the device.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDriver(func(ctx context.Context, d *fortinet.Driver) (interface{}, error) {
				return d.GetBGPConfig(ctx, group, neighbor)
			})
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "routing instance (only the default instance exists)")
	cmd.Flags().StringVar(&neighbor, "neighbor", "", "only this neighbor address")
	return cmd
}

func newConfigCmd(o *cliOptions) *cobra.Command {
	var retrieve string
	var raw bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show device configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fortinet.ValidateRetrieve(retrieve); err != nil {
				return err
			}
			if !raw {
				return o.withDriver(func(ctx context.Context, d *fortinet.Driver) (interface{}, error) {
					return d.GetConfig(ctx, retrieve)
				})
			}
			if retrieve != fortinet.RetrieveRunning && retrieve != fortinet.RetrieveStartup {
				return fmt.Errorf("--raw needs --retrieve running or startup")
			}
			return o.withRawOutput(func(ctx context.Context, d *fortinet.Driver) (string, error) {
				snapshot, err := d.GetConfig(ctx, retrieve)
				if retrieve == fortinet.RetrieveStartup {
					return snapshot.Startup, err
				}
				return snapshot.Running, err
			})
		},
	}
	cmd.Flags().StringVar(&retrieve, "retrieve", fortinet.RetrieveAll, "all, running, startup or candidate")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the configuration text only")
	return cmd
}

func newInterfacesIPCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces-ip",
		Short: "Show interface IPv4 and IPv6 addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDriver(func(ctx context.Context, d *fortinet.Driver) (interface{}, error) {
				return d.GetInterfacesIP(ctx)
			})
		},
	}
}

func newAliveCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "alive",
		Short: "Open a session and report whether it is alive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDriver(func(ctx context.Context, d *fortinet.Driver) (interface{}, error) {
				return d.IsAlive(), nil
			})
		},
	}
}

func newCLICmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cli <command>...",
		Short: "Run raw commands and print command -> output",
		Long: `Run each argument as one device command.

Rejected commands are reported with the device's own error text.

  fortidriver cli -H fgt -u admin "get system status" "get router info routing-table all"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDriver(func(ctx context.Context, d *fortinet.Driver) (interface{}, error) {
				return d.CLI(ctx, args)
			})
		},
	}
}

func newGetCmd(o *cliOptions) *cobra.Command {
	var getterArgs fortinet.GetterArgs
	cmd := &cobra.Command{
		Use:   "get <getter>",
		Short: "Run any getter by name (see 'fortidriver getters')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !fortinet.HasGetter(name) {
				return fmt.Errorf("%q: %w", name, fortinet.ErrUnknownGetter)
			}
			return o.withDriver(func(ctx context.Context, d *fortinet.Driver) (interface{}, error) {
				return d.Get(ctx, name, getterArgs)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&getterArgs.Group, "group", "", "BGP routing instance")
	f.StringVar(&getterArgs.Neighbor, "neighbor", "", "BGP neighbor address")
	f.StringVar(&getterArgs.Retrieve, "retrieve", "", "configuration to retrieve")
	f.StringVar(&getterArgs.Destination, "destination", "", "destination for route/ping/traceroute")
	f.StringVar(&getterArgs.Interface, "interface", "", "interface name")
	f.StringArrayVar(&getterArgs.Commands, "command", nil, "command for the cli getter, repeatable")
	return cmd
}

func newGettersCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "getters",
		Short: "List getter names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(o.out, o.output, fortinet.GetterNames())
		},
	}
}

func newBackupCmd(o *cliOptions) *cobra.Command {
	var retrieve, backend string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Fetch the configuration and store it locally or in MinIO",
		Long: `Fetch the configuration and store it under the backup settings of
the config file (backup.local.base_dir or storage.minio). Without --config
files go to ./data/backups.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := o.target()
			if err != nil {
				return err
			}
			ctx, cancel := o.newContext()
			defer cancel()

			svc := service.NewBackupService(o.cfg, o.opener(), nil)
			result, err := svc.Backup(ctx, service.BackupRequest{Target: target, Retrieve: retrieve, StorageBackend: backend})
			if err != nil {
				return err
			}
			return render(o.out, o.output, result)
		},
	}
	cmd.Flags().StringVar(&retrieve, "retrieve", fortinet.RetrieveRunning, "running or startup")
	cmd.Flags().StringVar(&backend, "backend", "", "local or minio (default from config)")
	return cmd
}

func newSimulateCmd(o *cliOptions) *cobra.Command {
	var simConfig, listen string
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a FortiGate SSH simulator until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := simulate.DefaultConfig()
			if simConfig != "" {
				loaded, err := simulate.LoadConfig(simConfig)
				if err != nil {
					return err
				}
				cfg = *loaded
			}
			if listen != "" {
				cfg.Listen = listen
			}

			srv, err := simulate.Start(cfg)
			if err != nil {
				return err
			}
			defer srv.Stop()
			fmt.Fprintf(cmd.ErrOrStderr(), "simulating %s on %s (user %s)\n", srv.Hostname(), srv.Addr(), cfg.Username)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			return nil
		},
	}
	cmd.Flags().StringVar(&simConfig, "sim-config", "", "simulator yaml (hostname, credentials, commands)")
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:2222", "listen address")
	return cmd
}
