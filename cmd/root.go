package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/xbocquet/twcatele/cmd/commands/audit"
	"github.com/xbocquet/twcatele/cmd/commands/auth"
	"github.com/xbocquet/twcatele/cmd/commands/browse"
	"github.com/xbocquet/twcatele/cmd/commands/collection"
	cfgcmd "github.com/xbocquet/twcatele/cmd/commands/config"
	"github.com/xbocquet/twcatele/cmd/commands/group"
	"github.com/xbocquet/twcatele/cmd/commands/item"
	"github.com/xbocquet/twcatele/cmd/commands/project"
	telemetrycmd "github.com/xbocquet/twcatele/cmd/commands/telemetry"
	"github.com/xbocquet/twcatele/internal/auditlog"
	"github.com/xbocquet/twcatele/internal/config"
	"github.com/xbocquet/twcatele/internal/metrics"
	"github.com/xbocquet/twcatele/internal/platform/backends"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "twcatele",
		Short: "Browse Twinit projects and their telemetry from the terminal",
		Long: `twcatele is a command-line client for the Twinit platform. It lists the
projects, collections and items you have access to, shows telemetry
readings as tables or charts (raw or bucketed by hour, 3 hours, day, week
or month), and manages project user groups and invitations.

Readings come from the Twinit item service by default, or from InfluxDB
when telemetry-backend is set to influxdb.

Quick start:
  twcatele auth login                     # Sign in through the browser
  twcatele project list                   # List your projects
  twcatele project use <project-id>       # Select a project
  twcatele collection list                # List its collections
  twcatele browse                         # Interactive browser`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")
	cmd.PersistentFlags().String("metrics-file", "", "Write request metrics in Prometheus text format to this file on exit")

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(project.NewCommand())
	cmd.AddCommand(collection.NewCommand())
	cmd.AddCommand(item.NewCommand())
	cmd.AddCommand(telemetrycmd.NewCommand())
	cmd.AddCommand(group.NewCommand())
	cmd.AddCommand(audit.NewCommand())
	cmd.AddCommand(browse.NewCommand())

	return cmd
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	setupLogging(false)
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("ignoring .env", "error", err)
	}
	backends.RegisterDefaults()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var root = rootCmd()
	root.SetContext(ctx)

	start := time.Now()
	executed, err := root.ExecuteC()

	recordAudit(executed, err, start)
	writeMetrics(root)

	if err != nil {
		os.Exit(1)
	}
}

// recordAudit writes one audit entry per command. Help, completion and the
// audit commands themselves are skipped. Failures are logged, never fatal.
func recordAudit(cmd *cobra.Command, err error, start time.Time) {
	if cmd == nil || !cmd.Runnable() || strings.HasPrefix(cmd.CommandPath(), "twcatele audit") {
		return
	}
	if name := cmd.Name(); name == "help" || name == "completion" || name == "twcatele" {
		return
	}

	repo, openErr := auditlog.Open()
	if openErr != nil {
		slog.Debug("audit log unavailable", "error", openErr)
		return
	}
	defer repo.Close()

	entry := auditlog.NewEntry(cmd.CommandPath(), os.Args[1:], auditlog.MetadataFromContext(cmd.Context()), err, start)
	if saveErr := repo.Save(entry); saveErr != nil {
		slog.Warn("failed to write audit entry", "error", saveErr)
	}
}

func writeMetrics(root *cobra.Command) {
	path, _ := root.PersistentFlags().GetString("metrics-file")
	if path == "" {
		return
	}
	if err := metrics.WriteFile(path); err != nil {
		slog.Warn("failed to write metrics", "error", err)
	}
}
