// Package cmd defines the literary-clock command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/literary-clock/internal/api"
	"github.com/JakeFAU/literary-clock/internal/app"
	"github.com/JakeFAU/literary-clock/internal/config"
	"github.com/JakeFAU/literary-clock/internal/id/uuid"
	"github.com/JakeFAU/literary-clock/internal/logging"
)

// Modes selectable on the command line.
const (
	modeDownload = "download"
	modeCollect  = "collect"
	modeOutput   = "output"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. It is a variable so tests can inject their own
// configuration.
var newApp = func(ctx context.Context, cfgFile string) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}
	runID, err := uuid.New().NewID()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logging.ForRun(logger, runID))
}

type options struct {
	cfgFile  string
	download bool
	collect  bool
	output   bool
}

func (o options) mode() string {
	switch {
	case o.download:
		return modeDownload
	case o.collect:
		return modeCollect
	default:
		return modeOutput
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "literary-clock",
		Short: "Tell the time with quotes from books",
		Long: `literary-clock downloads plain-text books from a Project Gutenberg mirror,
collects every paragraph that mentions a clock time, and prints one matching the
current time of day.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Cobra checks flag groups after this hook; fail before any store is opened.
			if err := cmd.ValidateFlagGroups(); err != nil {
				return err
			}
			appInstance, err := newApp(cmd.Context(), opts.cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			defer appInstance.Close()
			return run(cmd, appInstance, opts.mode())
		},
	}

	flags := cmd.Flags()
	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.literary-clock/config.yaml)")
	flags.BoolVarP(&opts.download, modeDownload, "d", false, "download books from the mirror into paths.books")
	flags.BoolVarP(&opts.collect, modeCollect, "c", false, "collect time paragraphs from paths.books into paths.paragraphs")
	flags.BoolVarP(&opts.output, modeOutput, "o", false, "print a paragraph matching the current time")
	cmd.MarkFlagsMutuallyExclusive(modeDownload, modeCollect, modeOutput)
	cmd.MarkFlagsOneRequired(modeDownload, modeCollect, modeOutput)

	return cmd
}

func run(cmd *cobra.Command, a *app.App, mode string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	serveErr := make(chan error, 1)
	if addr := a.Config().Metrics.ListenAddr; addr != "" {
		srv := api.NewServer(mode, a.Logger())
		go func() { serveErr <- srv.Serve(ctx, addr) }()
	} else {
		serveErr <- nil
	}

	var err error
	switch mode {
	case modeDownload:
		err = runDownload(ctx, a)
	case modeCollect:
		err = runCollect(ctx, a, cmd.OutOrStdout())
	default:
		err = runOutput(ctx, a, cmd.OutOrStdout())
	}

	cancel()
	if sErr := <-serveErr; sErr != nil {
		a.Logger().Warn("metrics listener stopped", zap.Error(sErr))
	}
	return err
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	logger, logErr := logging.New(true)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger.Fatal("command failed", zap.Error(err))
}
