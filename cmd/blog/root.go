package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/sigillum/internal/comments"
	"github.com/kingrea/sigillum/internal/config"
	"github.com/kingrea/sigillum/internal/logbook"
	"github.com/kingrea/sigillum/internal/logging"
	"github.com/kingrea/sigillum/internal/server"
	"github.com/kingrea/sigillum/internal/site"
	"github.com/kingrea/sigillum/internal/tui"
	"github.com/kingrea/sigillum/internal/watch"
)

type rootOptions struct {
	ci      bool
	root    string
	verbose bool
	noTUI   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "blog",
		Short:         "Build, serve and watch the blog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBlog(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.ci, "ci", false, "Build once and exit, failing if any post fails")
	cmd.Flags().StringVar(&opts.root, "root", ".", "Site root holding posts/, styles/ and assets")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "Print logs instead of the dashboard")
	cmd.AddCommand(newChartCmd())
	return cmd
}

func runBlog(parent context.Context, opts *rootOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.InitDir(opts.root); err != nil {
		return err
	}
	cfg, err := config.Load(opts.root)
	if err != nil {
		return err
	}

	useTUI := !opts.ci && !opts.noTUI && isatty.IsTerminal(os.Stdout.Fd())
	logOpts := []logging.Option{logging.WithVerbose(opts.verbose)}
	if useTUI {
		logOpts = append(logOpts, logging.WithConsole(io.Discard))
	}
	logger, err := logging.New(cfg.LogsDir(), logOpts...)
	if err != nil {
		return err
	}
	defer logger.Close()
	logger.Debug("logging to file", zap.String("path", logger.Path()))

	book, err := logbook.New(cfg.BuildLogPath())
	if err != nil {
		return err
	}

	metrics := server.NewMetrics()
	var program *tea.Program
	genOpts := []site.Option{
		site.WithLogger(logger.Logger),
		site.WithLogbook(book),
		site.WithObserver(metrics.ObserveBuild),
		site.WithObserver(func(r site.Report) {
			if program != nil {
				program.Send(tui.BuildMsg{Report: r})
			}
		}),
	}
	if cfg.CommentsEnabled() {
		client, err := comments.New(cfg.Project.GitHub.Owner, cfg.Project.GitHub.Repo,
			comments.WithToken(cfg.GitHubToken),
			comments.WithBaseURL(cfg.Project.GitHub.APIURL))
		if err != nil {
			return err
		}
		genOpts = append(genOpts, site.WithComments(client))
	}
	gen, err := site.New(cfg, genOpts...)
	if err != nil {
		return err
	}

	report, err := gen.Build(ctx)
	if err != nil {
		return err
	}
	if opts.ci {
		if !report.OK() {
			return fmt.Errorf("%d posts failed: %v", len(report.Failed), report.Failed)
		}
		return nil
	}

	srv := server.New(server.SettingsFromConfig(cfg), cfg.OutputDir(),
		server.WithLogger(logger.Logger),
		server.WithMetrics(metrics))
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	if useTUI {
		dashboard := tui.NewDashboard(srv.BaseURL(), book)
		dashboard.Update(tui.BuildMsg{Report: report})
		program = tea.NewProgram(dashboard, tea.WithAltScreen(), tea.WithContext(ctx))
	}

	watcher, err := watch.New(cfg.PostsGlob(), func(ctx context.Context, path string) {
		if program != nil {
			program.Send(tui.RebuildStartedMsg{Path: path})
		}
		if _, err := gen.Rebuild(ctx, path); err != nil {
			logger.Error("rebuild failed", zap.String("path", path), zap.Error(err))
		}
	}, watch.WithLogger(logger.Logger))
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	if program == nil {
		logger.Info("serving, press ctrl+c to stop", zap.String("url", srv.BaseURL()))
		<-ctx.Done()
		return nil
	}
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
