package main

import (
	"fmt"
	"log"
	"strings"
	"text/tabwriter"
	"time"

	"estate_e2e/config"
	"estate_e2e/models"
	"estate_e2e/runner"
	"estate_e2e/scenarios"
	"estate_e2e/scheduler"
	"estate_e2e/session"
	"estate_e2e/storage"
	"estate_e2e/tui"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var logPath string

	root := &cobra.Command{
		Use:           "estate-e2e",
		Short:         "End-to-end checks for a property listing site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logPath, "log", "", "log file (default $LOG_PATH or e2e.log)")

	root.AddCommand(
		newRunCmd(&logPath),
		newListCmd(),
		newLoginCmd(&logPath),
		newDaemonCmd(&logPath),
		newQueueCmd(&logPath),
		newRunsCmd(&logPath),
		newWatchCmd(),
	)
	return root
}

// browserFlags are shared by commands that start a browser.
type browserFlags struct {
	headed bool
	slowMo time.Duration
	user   string
}

func (f *browserFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.headed, "headed", false, "open a visible browser and wait for manual challenge solving")
	cmd.Flags().DurationVar(&f.slowMo, "slow-mo", 0, "delay between browser actions")
	cmd.Flags().StringVar(&f.user, "user", "", "credentials user type (default $USER_TYPE)")
}

func (f *browserFlags) apply(cfg *config.Config) {
	if f.headed {
		cfg.Browser.Mode = config.ModeInteractive
	}
	if f.slowMo > 0 {
		cfg.Browser.SlowMo = f.slowMo
	}
	if f.user != "" {
		cfg.Auth.UserType = f.user
	}
}

func newRunCmd(logPath *string) *cobra.Command {
	var bf browserFlags
	var filter runner.Filter

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scenarios once and exit non-zero on failure",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(*logPath)
			if err != nil {
				return err
			}
			defer a.Close()
			bf.apply(a.cfg)
			if err := a.open(); err != nil {
				return err
			}
			if err := a.preflight(ctx); err != nil {
				return err
			}

			r, err := a.newRunner(ctx, a.cfg.Auth.UserType)
			if err != nil {
				return err
			}

			log.Printf("Running %s against %s (%s)", filter, a.site.Name, a.cfg.Browser.Mode)
			run, err := r.Run(ctx, filter)
			if err != nil {
				return err
			}
			log.Printf("Run %d: %d passed, %d failed, %d skipped", run.ID, run.Passed, run.Failed, run.Skipped)
			if run.Failed > 0 {
				return fmt.Errorf("%d scenario(s) failed", run.Failed)
			}
			return nil
		},
	}
	bf.register(cmd)
	cmd.Flags().StringVar(&filter.Group, "group", "", "only run this scenario group")
	cmd.Flags().StringVar(&filter.Grep, "grep", "", "only run scenarios whose id contains this text")
	return cmd
}

func newListCmd() *cobra.Command {
	var filter runner.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := scenarios.Registry()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "GROUP\tSCENARIO\tAUTH")
			for _, sc := range reg.Select(filter) {
				auth := ""
				if sc.NeedsAuth {
					auth = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", sc.Group, sc.Name, auth)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter.Group, "group", "", "only list this group")
	cmd.Flags().StringVar(&filter.Grep, "grep", "", "only list ids containing this text")
	return cmd
}

func newLoginCmd(logPath *string) *cobra.Command {
	var bf browserFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in once and save the session snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(*logPath)
			if err != nil {
				return err
			}
			defer a.Close()
			bf.apply(a.cfg)
			if err := a.open(); err != nil {
				return err
			}

			r, err := a.newRunner(ctx, a.cfg.Auth.UserType)
			if err != nil {
				return err
			}
			env, closeEnv, err := r.OpenEnv(ctx)
			if err != nil {
				return err
			}
			defer closeEnv()

			if !env.LoggedIn() {
				return fmt.Errorf("could not log in as %s", a.cfg.Auth.UserType)
			}
			if !session.IsValid(a.cfg.Auth.SessionPath) {
				return fmt.Errorf("logged in but no session saved at %s", a.cfg.Auth.SessionPath)
			}
			log.Printf("Logged in; session at %s", a.cfg.Auth.SessionPath)
			return nil
		},
	}
	bf.register(cmd)
	return cmd
}

func newDaemonCmd(logPath *string) *cobra.Command {
	var bf browserFlags

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the suite on a schedule and respond to queued commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(*logPath)
			if err != nil {
				return err
			}
			defer a.Close()
			bf.apply(a.cfg)
			if err := a.open(); err != nil {
				return err
			}
			if err := a.preflight(ctx); err != nil {
				log.Printf("Warning: %v", err)
			}

			r, err := a.newRunner(ctx, a.cfg.Auth.UserType)
			if err != nil {
				return err
			}

			sched := scheduler.New(a.cfg, r, a.store)
			if err := sched.Start(ctx); err != nil {
				return fmt.Errorf("start scheduler: %w", err)
			}
			log.Println("Daemon running. Press Ctrl+C to stop.")

			<-ctx.Done()
			log.Println("Shutting down...")
			sched.Stop()
			return nil
		},
	}
	bf.register(cmd)
	return cmd
}

var queueable = []models.CommandType{models.CmdRunNow, models.CmdRunGroup, models.CmdPause, models.CmdResume}

func parseCommandType(s string) (models.CommandType, error) {
	for _, c := range queueable {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown command %q", s)
}

func newQueueCmd(logPath *string) *cobra.Command {
	var params models.CommandParams

	cmd := &cobra.Command{
		Use:       "queue <run_now|run_group|pause|resume>",
		Short:     "Queue a command for a running daemon",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"run_now", "run_group", "pause", "resume"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := parseCommandType(args[0])
			if err != nil {
				return err
			}
			if ct == models.CmdRunGroup && params.Group == "" {
				return fmt.Errorf("%s needs --group", ct)
			}

			a, err := newApp(*logPath)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.open(); err != nil {
				return err
			}

			var p *models.CommandParams
			if params != (models.CommandParams{}) {
				p = &params
			}
			id, err := a.store.QueueCommand(ct, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %s as #%d\n", ct, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&params.Group, "group", "", "scenario group")
	cmd.Flags().StringVar(&params.Grep, "grep", "", "scenario id filter")
	return cmd
}

func newRunsCmd(logPath *string) *cobra.Command {
	var limit, flaky int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent runs and flaky scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(*logPath)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.open(); err != nil {
				return err
			}

			runs, err := a.store.RecentRuns(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printRuns(out, runs)

			if flaky <= 0 {
				return nil
			}
			counts, err := a.store.FlakyScenarios(flaky)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nFlaky over last %d runs:\n", flaky)
			printCounts(out, counts)

			if dsn := a.cfg.Storage.PostgresURL; dsn != "" {
				mirror, err := storage.NewPostgresStore(ctx, dsn)
				if err != nil {
					return err
				}
				defer mirror.Close()
				streaks, err := mirror.FailureStreaks(ctx, a.site.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "\nCurrent failure streaks (all hosts):")
				printCounts(out, streaks)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to show")
	cmd.Flags().IntVar(&flaky, "flaky", 0, "also list scenarios that flipped within this many runs")
	return cmd
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Open the terminal dashboard over the run store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("open sqlite: %w", err)
			}
			defer store.Close()
			return tui.Run(store)
		},
	}
}
