package halctl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var ifaceTypes = []string{"sta", "ap", "p2p", "nan"}

// buildRootCmdWith constructs the command tree. The client is created after
// flags are parsed.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	var client *Client
	root := &cobra.Command{
		Use:           "halctl",
		Short:         "Inspect and drive a wifihald daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			SetLogLevel(cfg.LogLvl)
			client = NewClient(cfg.Addr, cfg.Timeout)
		},
	}
	root.PersistentFlags().StringVar(&cfg.Addr, "addr", cfg.Addr, "wifihald address (defaults HALCTL_ADDR or 127.0.0.1:8080)")
	root.PersistentFlags().StringVar(&cfg.LogLvl, "log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults HALCTL_LOG_LEVEL or warn)")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout")

	ctx := func(cmd *cobra.Command) context.Context {
		if c := cmd.Context(); c != nil {
			return c
		}
		return context.Background()
	}

	statusCmd := &cobra.Command{Use: "status", Short: "Show chips, modes and live interfaces", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		st, err := client.Status(ctx(cmd))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderStatus(st))
		return nil
	}}
	dumpCmd := &cobra.Command{Use: "dump", Short: "Print the manager diagnostic dump", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return client.Dump(ctx(cmd), cmd.OutOrStdout())
	}}
	startCmd := &cobra.Command{Use: "start", Short: "Start the Wi-Fi service", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		ar, err := client.Start(ctx(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successMsg("wifi %s", ar.State))
		return nil
	}}
	stopCmd := &cobra.Command{Use: "stop", Short: "Stop the Wi-Fi service and destroy every interface", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		ar, err := client.Stop(ctx(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successMsg("wifi %s", ar.State))
		return nil
	}}
	createCmd := &cobra.Command{
		Use:       "create <sta|ap|p2p|nan>",
		Short:     "Request an interface",
		Example:   "  halctl create sta\n  halctl create ap",
		Args:      cobra.ExactArgs(1),
		ValidArgs: ifaceTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := client.CreateIface(ctx(cmd), strings.ToLower(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successMsg("created %s (%s) on chip %d mode %d", st.Name, st.Type, st.Chip, st.Mode))
			return nil
		},
	}
	removeCmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove an interface",
		Args:    cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 || client == nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			st, err := client.Status(ctx(cmd))
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			names := make([]string, 0, len(st.Ifaces))
			for _, i := range st.Ifaces {
				names = append(names, i.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.RemoveIface(ctx(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successMsg("removed %s", args[0]))
			return nil
		},
	}
	var limit int
	eventsCmd := &cobra.Command{Use: "events", Short: "Show recent manager events", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		evs, err := client.Events(ctx(cmd), limit)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderEvents(evs))
		return nil
	}}
	eventsCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events (1-1000)")

	root.AddCommand(statusCmd, dumpCmd, startCmd, stopCmd, createCmd, removeCmd, eventsCmd)

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(os.Stdout) }})
	root.AddCommand(completionCmd)
	return root
}
