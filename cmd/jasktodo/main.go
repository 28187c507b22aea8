package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/jasktodo/internal/config"
	"github.com/jask/jasktodo/internal/replay"
	"github.com/jask/jasktodo/internal/tui"
	"github.com/jask/jasktodo/internal/web"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "jasktodo",
		Short:         "A single-screen to-do list",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.config/jasktodo/config.toml)")

	root.AddCommand(replayCmd(&cfgPath))
	root.AddCommand(serveCmd(&cfgPath))
	root.AddCommand(versionCmd())
	return root
}

func runTUI(ctx context.Context, cfg config.Config) error {
	if cfg.Log.Path != "" {
		f, err := tea.LogToFile(cfg.Log.Path, "jasktodo")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	st, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	app := tui.New(ctx, st, cfg.UI)
	defer app.Close()

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	log.Printf("starting tui (backend=%s, ids=%s)", cfg.Store.Backend, cfg.Store.IDPolicy)
	if _, err := tea.NewProgram(app, opts...).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func replayCmd(cfgPath *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Apply a YAML script of task actions and print the resulting list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			script, err := replay.Parse(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			st, closeStore, err := openStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := replay.Run(cmd.Context(), st, script)
			if err != nil {
				return err
			}
			if res.Missed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d step(s) named a task that does not exist\n", res.Missed)
			}
			return replay.Write(cmd.OutOrStdout(), res.Snapshot, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", replay.FormatText, "output format (text, yaml)")
	return cmd
}

func serveCmd(cfgPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task list as a local JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Web.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, closeStore, err := openStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			log.Printf("listening on %s (backend=%s)", addr, cfg.Store.Backend)
			return web.NewServer(st, log.Writer()).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config web.addr)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jasktodo %s\n", Version)
		},
	}
}
