package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gofish/internal/bootstrap"
)

type app struct {
	configPath string
	cfg        *bootstrap.Config
	log        *zap.SugaredLogger
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel)

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func handleShutdown(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	cancelFunc()
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "gofish",
		Short:        "Read, convert, archive and analyse Go game records",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.Setup(a.configPath)
			if err != nil {
				return fmt.Errorf("failed to setup configuration: %w", err)
			}
			a.cfg = cfg
			a.log = NewLogger(cfg.LogLevel)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", ".env", "configuration file")

	root.AddCommand(
		a.convertCommand(),
		a.infoCommand(),
		a.dyerCommand(),
		a.importCommand(),
		a.serveCommand(),
		a.analyzeCommand(),
	)
	return root
}

func NewLogger(level string) *zap.SugaredLogger {
	newLogger := zap.NewProduction
	if level == "debug" {
		newLogger = zap.NewDevelopment
	}
	logger, err := newLogger()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}
