package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hellausefulsoftware/backport-reminder/internal/config"
	"github.com/hellausefulsoftware/backport-reminder/internal/github"
	"github.com/hellausefulsoftware/backport-reminder/internal/logging"
	"github.com/hellausefulsoftware/backport-reminder/internal/tui"
	"github.com/hellausefulsoftware/backport-reminder/internal/workflow"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// options holds the flags shared by every command
type options struct {
	configFile string
	envFile    string
	dryRun     bool
	logLevel   string
	logJSON    bool
	noColor    bool
}

func main() {
	// Initialize logger with default configuration
	logging.Initialize(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		logging.Error("backport-reminder failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Post reminders on pull requests whose backport label is overdue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReminders(cmd, opts)
		},
	}
	runCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Evaluate and compose reminders without posting them")

	rootCmd := &cobra.Command{
		Use:   "backport-reminder",
		Short: "Reminds pull request participants about pending backports",
		Long: `Scans open pull requests carrying the backport label, works out how long the
label has been applied and posts a reminder comment once the age threshold is
passed, at most once per reminder interval.`,
		Version:      version,
		SilenceUsage: true,
		RunE:         runCmd.RunE,
	}
	rootCmd.SetOut(out)
	rootCmd.Flags().AddFlagSet(runCmd.Flags())

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Optional TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Optional dotenv file; real environment variables take precedence")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Set logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored log output")

	var interactive bool
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Evaluate every candidate without posting and show the outcome as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, opts, interactive)
		},
	}
	previewCmd.Flags().BoolVar(&interactive, "interactive", false, "Browse the outcome in an interactive table")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the token, the repository and the label without evaluating anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	rootCmd.AddCommand(runCmd, previewCmd, checkCmd)
	return rootCmd
}

// setup loads configuration and configures logging. Flags override the
// configured log settings; logs go to logOut.
func setup(cmd *cobra.Command, opts *options, logOut io.Writer) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logging.Initialize(&logging.Config{
		Level:      logging.ParseLevel(level),
		Output:     logOut,
		JSONFormat: cfg.Logging.JSONFormat || opts.logJSON,
		NoColor:    opts.noColor,
	})

	if opts.dryRun {
		cfg.DryRun = true
	}

	logging.Info("Starting backport-reminder",
		"version", version,
		"command", cmd.Name(),
		"repository", cfg.GitHub.Repository,
		"label", cfg.Reminder.Label,
		"target_branch", cfg.Reminder.TargetBranch,
		"dry_run", cfg.DryRun)
	return cfg, nil
}

func runReminders(cmd *cobra.Command, opts *options) error {
	cfg, err := setup(cmd, opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	adapter, err := github.NewAdapter(cfg)
	if err != nil {
		return err
	}

	_, err = workflow.NewReminderWorkflow(cfg, adapter).Run(cmd.Context())
	return err
}

func runPreview(cmd *cobra.Command, opts *options, interactive bool) error {
	// Logs go to stderr so the table owns stdout.
	cfg, err := setup(cmd, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg.DryRun = true

	adapter, err := github.NewAdapter(cfg)
	if err != nil {
		return err
	}

	summary, err := workflow.NewReminderWorkflow(cfg, adapter).Run(cmd.Context())
	if err != nil {
		return err
	}

	if interactive {
		return tui.RunPreview(summary)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderReport(summary))
	return nil
}

func runCheck(cmd *cobra.Command, opts *options) error {
	cfg, err := setup(cmd, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	adapter, err := github.NewAdapter(cfg)
	if err != nil {
		return err
	}

	report, err := adapter.Verify(cmd.Context(), cfg.Reminder.Label)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Authenticated as: %s\n", report.User)
	fmt.Fprintf(out, "Repository:       %s (default branch %s)\n", report.Repository, report.DefaultBranch)
	if !report.LabelExists {
		fmt.Fprintf(out, "Label:            %q not found\n", cfg.Reminder.Label)
		return fmt.Errorf("label %q does not exist in %s", cfg.Reminder.Label, report.Repository)
	}
	fmt.Fprintf(out, "Label:            %q found\n", cfg.Reminder.Label)
	return nil
}
