package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"caffeine/internal/adapter/primary/web"
	"caffeine/internal/adapter/secondary/repository"
	"caffeine/internal/adapter/secondary/system"
	"caffeine/internal/domain"
	"caffeine/internal/logging"
	"caffeine/internal/usecase"
)

// Version is overridden at build time with -ldflags "-X caffeine/internal/adapter/primary/cli.Version=...".
var Version = "dev"

var (
	cfgPath   string
	verbosity int
	dryRun    bool
)

// NewRootCmd creates the root CLI command.
// This is the primary adapter that translates CLI inputs to use case calls.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "caffeine",
		Short:        "Keep the machine awake, optionally only during scheduled hours",
		Long:         "Keep-awake engine with a schedule window, a pause toggle and a local web panel.",
		SilenceUsage: true,
	}

	defaultCfg := repository.DefaultPath()
	cmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "settings file path")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv, ... up to 4)")
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "do not touch power, input or autostart")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.SetVerbosity(verbosity)
	}

	cmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newStatusCmd(),
		newConfigCmd(),
		newAutostartCmd(),
		newShellCmd(),
		newVersionCmd(),
	)

	return cmd
}

func platform() system.Platform {
	if dryRun {
		return system.Noop()
	}
	return system.New()
}

// openStore wires the settings repository with the platform autostarter.
func openStore(p system.Platform) (*repository.FileRepository, *usecase.SettingsStore, error) {
	repo, err := repository.NewFileRepository(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	return repo, usecase.NewSettingsStore(repo, p.Autostart), nil
}

// newEngine builds the coordinator and its activity service.
func newEngine() (*usecase.StateCoordinator, error) {
	p := platform()
	_, store, err := openStore(p)
	if err != nil {
		return nil, err
	}
	clock := usecase.RealClock()
	activity := usecase.NewActivityService(p.Power, p.Input, clock, domain.DefaultSettings().Service)
	coord := usecase.NewStateCoordinator(store, activity, clock)

	coord.OnAnnouncement(func(a domain.Announcement) {
		fmt.Printf("%s: %s\n", a.Title, a.Text)
	})
	coord.OnStatus(func(st domain.Status) {
		logging.Debugf("status: %s (running=%t)", st.Text, st.Running)
	})
	return coord, nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the keep-awake engine in the foreground (no web panel)",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := newEngine()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			logging.Infof("Caffeine started (config %s)", cfgPath)
			coord.Run(ctx)
			fmt.Println("Caffeine stopped")
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the keep-awake engine together with the web panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := newEngine()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			engineDone := make(chan struct{})
			go func() {
				defer close(engineDone)
				coord.Run(ctx)
			}()

			srv := web.NewServer(coord, addr)
			fmt.Printf("Caffeine panel running at http://%s\n", addr)
			logging.Infof("Caffeine panel: http://%s", addr)

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			err = srv.Start()
			stop()
			<-engineDone
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7071", "HTTP listen address")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var (
		at     string
		output string
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what the engine would do now (or at --at) with the saved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore(system.Noop())
			if err != nil {
				return err
			}
			settings := store.Load()

			now := time.Now()
			if at != "" {
				if now, err = parseInstant(at); err != nil {
					return err
				}
			}

			outside := domain.NewScheduleWindow().OutsideSchedule(settings.Schedule, now)
			icon, text := domain.ResolveStatus(false, outside)
			st := web.StatusView{
				Icon:            icon.String(),
				Text:            text,
				OutsideSchedule: outside,
				Running:         !outside,
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), st.Text)
				return nil
			}
			return writeOutput(cmd.OutOrStdout(), output, st)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", `evaluate at this time ("15:04", "2006-01-02T15:04" or RFC3339)`)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format (json|yaml)")
	return cmd
}

var instantLayouts = []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02T15:04:05"}

func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Local(), nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	tod, err := domain.ParseTimeOfDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at: unrecognized time %q", s)
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), tod.Hour(), tod.Minute(), 0, 0, time.Local), nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change the saved settings",
	}
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd(), newConfigPathCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore(system.Noop())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, web.SettingsToView(store.Load()))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format (json|yaml)")
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	var (
		scheduleFlag  bool
		startFlag     string
		endFlag       string
		daysFlag      string
		intervalFlag  int
		displayFlag   bool
		autostartFlag bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings; only the given flags are updated",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, store, err := openStore(platform())
			if err != nil {
				return err
			}
			settings := store.Load()
			flags := cmd.Flags()

			if flags.Changed("schedule") {
				settings.Schedule.Enabled = scheduleFlag
			}
			if flags.Changed("start") {
				if settings.Schedule.Start, err = domain.ParseTimeOfDay(startFlag); err != nil {
					return err
				}
			}
			if flags.Changed("end") {
				if settings.Schedule.End, err = domain.ParseTimeOfDay(endFlag); err != nil {
					return err
				}
			}
			if flags.Changed("days") {
				if settings.Schedule.ActiveDays, err = domain.ParseWeekdaySet(daysFlag); err != nil {
					return err
				}
			}
			if flags.Changed("interval") {
				settings.Service.IntervalSeconds = intervalFlag
			}
			if flags.Changed("keep-display") {
				settings.Service.KeepDisplayOn = displayFlag
			}
			if flags.Changed("start-with-system") {
				settings.StartWithSystem = autostartFlag
			}

			if err := settings.Validate(); err != nil {
				return err
			}
			if err := repo.Save(settings); err != nil {
				return err
			}
			if flags.Changed("start-with-system") {
				store.SyncAutostart(settings.StartWithSystem)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved: schedule=%t %s-%s days=%s interval=%ds display=%t autostart=%t\n",
				settings.Schedule.Enabled, settings.Schedule.Start, settings.Schedule.End,
				settings.Schedule.ActiveDays, settings.Service.IntervalSeconds,
				settings.Service.KeepDisplayOn, settings.StartWithSystem)
			return nil
		},
	}
	cmd.Flags().BoolVar(&scheduleFlag, "schedule", false, "only keep awake inside the schedule window")
	cmd.Flags().StringVar(&startFlag, "start", "", "window start, HH:MM")
	cmd.Flags().StringVar(&endFlag, "end", "", "window end, HH:MM (inclusive)")
	cmd.Flags().StringVar(&daysFlag, "days", "", `active days, e.g. "Mon,Tue", "weekdays" or "all"`)
	cmd.Flags().IntVar(&intervalFlag, "interval", domain.DefaultIntervalSeconds, "ping interval in seconds (30, 60 or 120)")
	cmd.Flags().BoolVar(&displayFlag, "keep-display", false, "keep the display on as well")
	cmd.Flags().BoolVar(&autostartFlag, "start-with-system", false, "launch at login")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(cfgPath)
			if err != nil {
				abs = cfgPath
			}
			fmt.Fprintln(cmd.OutOrStdout(), abs)
			return nil
		},
	}
}

func newAutostartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Inspect or change launch at login",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Report whether the login entry exists",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, store, err := openStore(platform())
				if err != nil {
					return err
				}
				on, err := store.AutostartEnabled()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "autostart: %t\n", on)
				return nil
			},
		},
		newAutostartToggleCmd("enable", true),
		newAutostartToggleCmd("disable", false),
	)
	return cmd
}

func newAutostartToggleCmd(use string, want bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: use + " launch at login and remember it in the settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, store, err := openStore(platform())
			if err != nil {
				return err
			}
			settings := store.Load()
			settings.StartWithSystem = want
			if err := repo.Save(settings); err != nil {
				return err
			}
			store.SyncAutostart(want)
			on, err := store.AutostartEnabled()
			if err != nil {
				return err
			}
			if on != want {
				return fmt.Errorf("autostart is still %t", on)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "autostart: %t\n", on)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "caffeine %s\n", Version)
		},
	}
}

func writeOutput(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (json|yaml)", format)
	}
}

func newShellCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell for the other subcommands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveShell(prompt)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "caffeine> ", "shell prompt")
	return cmd
}

func runInteractiveShell(prompt string) error {
	historyFile := filepath.Join(os.TempDir(), "caffeine-shell.history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	sessionVerbosity := verbosity
	sessionConfig := cfgPath
	sessionDryRun := dryRun
	fmt.Println("Interactive shell. Type 'help' for examples, 'exit' to quit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println()
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line {
		case "exit", "quit":
			fmt.Println("Bye!")
			return nil
		case "help":
			printShellHelp()
			continue
		}
		tokens, err := shlex.Split(line)
		if err != nil {
			fmt.Printf("Parse error: %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		if tokens[0] == "log" {
			if err := handleShellLog(tokens[1:], &sessionVerbosity); err != nil {
				fmt.Printf("log: %v\n", err)
			}
			continue
		}
		if tokens[0] == "shell" {
			fmt.Println("Already in the shell. Enter another command or 'exit'.")
			continue
		}

		if err := executeArgs(sessionArgs(tokens, sessionConfig, sessionDryRun, sessionVerbosity)); err != nil {
			fmt.Printf("command error: %v\n", err)
		}
	}
}

// sessionArgs carries the shell's --config, --dry-run and log level into each
// command unless the line sets them itself.
func sessionArgs(tokens []string, config string, dry bool, v int) []string {
	args := append([]string{}, tokens...)
	has := func(prefixes ...string) bool {
		for _, t := range tokens {
			for _, p := range prefixes {
				if t == p || strings.HasPrefix(t, p+"=") {
					return true
				}
			}
		}
		return false
	}
	if !has("--config") {
		args = append(args, "--config", config)
	}
	if dry && !has("--dry-run") {
		args = append(args, "--dry-run")
	}
	if v > 0 && !has("--verbose") && !hasShortVerbose(tokens) {
		args = append(args, "-"+strings.Repeat("v", v))
	}
	return args
}

func hasShortVerbose(tokens []string) bool {
	for _, t := range tokens {
		if len(t) > 1 && strings.Trim(t, "v") == "-" {
			return true
		}
	}
	return false
}

func executeArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	root := NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func handleShellLog(args []string, sessionVerbosity *int) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var vcount int
	var level string
	var show bool
	fs.CountVarP(&vcount, "verbose", "v", "Increase verbosity (-v... up to 4)")
	fs.StringVar(&level, "level", "", "set level (error|warn|info|debug|trace)")
	fs.BoolVarP(&show, "show", "s", false, "show current level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case show && vcount == 0 && level == "":
		fmt.Printf("log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	case level != "":
		_, count, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		*sessionVerbosity = count
	case vcount > 0:
		*sessionVerbosity = vcount
	default:
		fmt.Printf("log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	}

	verbosity = *sessionVerbosity
	logging.SetVerbosity(*sessionVerbosity)
	fmt.Printf("log level set to %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
	return nil
}

func printShellHelp() {
	fmt.Println(`Examples:
  status                             # what would happen right now
  status --at 23:30 -o yaml          # evaluate another time
  config get -o yaml                 # show settings
  config set --schedule --start 09:00 --end 17:30 --days weekdays
  config set --interval 60 --keep-display
  autostart enable                   # launch at login
  serve --addr 127.0.0.1:7071        # engine + web panel (Ctrl+C to stop)
  log -vv                            # more verbose logging
  log --show                         # current log level
  exit / quit                        # leave the shell`)
}
