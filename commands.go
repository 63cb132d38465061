package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/orbiter/config"
	"github.com/milk9111/orbiter/craft"
	"github.com/milk9111/orbiter/input"
	"github.com/milk9111/orbiter/prefabs"
	"github.com/milk9111/orbiter/program"
	"github.com/milk9111/orbiter/sim"
	"github.com/milk9111/orbiter/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// load reads the config file and applies flag overrides on top of it.
func (g *globalFlags) load() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}
	log, err := telemetry.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, log, nil
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "orbiter",
		Short: "Fly a scripted satellite",
		Long: `orbiter simulates a rigid-body satellite driven by six boosters.
A tengo program's main function runs once per tick and decides booster
power from keyboard input.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file path")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error); "+telemetry.LevelEnv+" wins")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format (console, json)")

	root.AddCommand(newPlayCommand(flags))
	root.AddCommand(newRunCommand(flags))
	root.AddCommand(newCheckCommand())
	return root
}

func newPlayCommand(flags *globalFlags) *cobra.Command {
	var (
		programName string
		watch       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Open a window and fly the craft with the keyboard",
		Example: `  # Fly with the bundled hover program
  orbiter play

  # Edit a program and reload it on save
  orbiter play --program ./mine.tengo --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				cfg.Metrics.Addr = metricsAddr
			}

			metrics := telemetry.NewMetrics()
			keys := &ebitenKeys{}
			s, err := sim.New(cfg, sim.Options{Logger: &log, Metrics: metrics, Keys: keys})
			if err != nil {
				return err
			}
			s.SetContext(cmd.Context())

			src, err := prefabs.LoadProgram(programName)
			if err != nil {
				return err
			}
			s.RequestLoad(src)

			if cfg.Metrics.Addr != "" {
				srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("metrics server stopped")
					}
				}()
				defer srv.Close()
				log.Info().Str("addr", cfg.Metrics.Addr).Msg("serving metrics")
			}

			if watch {
				path, err := prefabs.ProgramPath(programName)
				if err != nil {
					return fmt.Errorf("play: --watch: %w", err)
				}
				w, err := prefabs.WatchProgram(path)
				if err != nil {
					return err
				}
				defer w.Close()
				go forwardReloads(w, s, log)
				log.Info().Str("program", path).Msg("watching for changes")
			}

			ebiten.SetWindowSize(baseWidth, baseHeight)
			ebiten.SetWindowTitle("orbiter")
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			return ebiten.RunGame(newGame(s, keys, log))
		},
	}

	cmd.Flags().StringVarP(&programName, "program", "p", "hover", programFlagUsage)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the program file when it changes")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	return cmd
}

// forwardReloads queues the new source every time the watched file changes.
func forwardReloads(w *prefabs.Watcher, s *sim.Simulation, log zerolog.Logger) {
	errs := w.Errors
	for {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return
			}
			src, err := prefabs.LoadProgram(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("reload failed")
				continue
			}
			ev := log.Info().Str("path", path)
			if mod, ok := prefabs.ModTime(path); ok {
				ev = ev.Time("modified", mod)
			}
			ev.Msg("program changed, reloading")
			s.RequestLoad(src)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func newRunCommand(flags *globalFlags) *cobra.Command {
	var (
		programName  string
		ticks        int
		timelinePath string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a program headless and print where the craft ended up",
		Example: `  # Two seconds of hovering with W held for the first one
  orbiter run --program hover --ticks 120 --timeline ./hold-w.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}
			var tl input.Timeline
			if timelinePath != "" {
				if tl, err = input.LoadTimeline(timelinePath); err != nil {
					return err
				}
				if ticks <= 0 {
					ticks = tl.Len()
				}
			}
			if ticks <= 0 {
				return fmt.Errorf("run: --ticks must be positive")
			}

			src, err := prefabs.LoadProgram(programName)
			if err != nil {
				return err
			}
			s, err := sim.New(cfg, sim.Options{Logger: &log})
			if err != nil {
				return err
			}

			report, err := sim.Headless(cmd.Context(), s, src, ticks, tl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Fprintf(out, "ticks     %d\n", report.Ticks)
			fmt.Fprintf(out, "revision  %s\n", report.Revision)
			fmt.Fprintf(out, "position  (%.3f, %.3f) angle %.4f\n", report.Craft.X, report.Craft.Y, report.Craft.Angle)
			fmt.Fprintf(out, "velocity  (%.3f, %.3f) spin %.4f\n", report.Craft.VX, report.Craft.VY, report.Craft.AngularVelocity)
			for _, id := range craft.AllActuators() {
				if level, ok := report.Levels[id.String()]; ok {
					fmt.Fprintf(out, "booster   %s %.2f\n", id, level)
				}
			}
			kinds := make([]string, 0, len(report.Failures))
			for kind := range report.Failures {
				kinds = append(kinds, kind)
			}
			sort.Strings(kinds)
			for _, kind := range kinds {
				fmt.Fprintf(out, "failures  %s %d\n", kind, report.Failures[kind])
			}
			if report.LastFailure != "" {
				fmt.Fprintf(out, "last      %s\n", report.LastFailure)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&programName, "program", "p", "hover", programFlagUsage)
	cmd.Flags().IntVarP(&ticks, "ticks", "n", 0, "ticks to run (defaults to the timeline length)")
	cmd.Flags().StringVarP(&timelinePath, "timeline", "t", "", "yaml file of scripted key presses")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "check <program>",
		Short:         "Load a program and report whether it is valid",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := prefabs.LoadProgram(args[0])
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			exec, err := program.NewExecutor(program.DefaultOptions())
			if err != nil {
				return err
			}
			if err := exec.Load(src); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\t%v\n", program.KindOf(err), err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", exec.Revision())
			return nil
		},
	}
}

var programFlagUsage = "program file, or a bundled program (" + strings.Join(prefabs.Programs(), ", ") + ")"
