// cmd/widget-cli/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"solution-creator/internal/common/config"
	"solution-creator/internal/common/logger"
	"solution-creator/internal/common/prompt"
	sac "solution-creator/internal/widgets/presentation/architecture-creator"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a config file (defaults to ./configs/config.yaml)")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return 2
	}

	// the terminal belongs to the prompts; logs go to stderr
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, "stderr")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	widgetCfg := sac.ConfigFrom(cfg)
	if err := widgetCfg.Validate(); err != nil {
		zapLog.Error("widget config invalid", zap.Error(err))
		return 2
	}

	reg, err := sac.LoadFieldRegistry(widgetCfg.FieldsPath)
	if err != nil {
		zapLog.Error("field registry invalid", zap.Error(err))
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := sac.NewService(sac.ServiceDependencies{Logger: log}, widgetCfg)
	ctrl := sac.NewController(widgetCfg, service,
		sac.WithObserver(sac.NewLoggingObserver(log)),
		sac.WithLogger(log),
	)

	st, err := sac.NewPromptSession(prompt.NewSurveyDriver(), ctrl, reg).Run(ctx)
	switch {
	case errors.Is(err, prompt.ErrAborted):
		fmt.Fprintln(os.Stderr, "aborted")
		return 130
	case err != nil:
		zapLog.Error("submission not sent", zap.Error(err))
		return 1
	}
	return sac.ExitCode(st)
}
