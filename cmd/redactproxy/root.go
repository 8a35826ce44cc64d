package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redactproxy/internal/config"
	"redactproxy/internal/core/providers"
	"redactproxy/internal/pkg/logger"
	"redactproxy/internal/server"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "redactproxy",
	Short: "Redacting HTTP proxy",
	Long: `redactproxy forwards requests to a downstream API and removes configured
fields from its JSON responses. Base URL and redaction rules are polled from
AWS AppConfig or a local file.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")
}

func initConfig() {
	config.Init(cfgFile)
}

// app 是 serve 和 invoke 共用的进程级组件
type app struct {
	settings *config.Settings
	log      *zap.Logger
	gateway  *server.Gateway
}

// newApp 加载配置并组装 gateway，Loader 在进程内只创建一次
func newApp(ctx context.Context) (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.Build(logger.Options{
		Level:   settings.Log.Level,
		Format:  settings.Log.Format,
		Service: "redactproxy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := config.NewClient(ctx, settings.AppConfig)
	if err != nil {
		return nil, err
	}

	loader := config.NewLoader(client, settings.AppConfig, log)
	downstream := providers.NewDownstream(settings.Downstream.Timeout, log)

	return &app{
		settings: settings,
		log:      log,
		gateway:  server.NewGateway(loader, downstream, log),
	}, nil
}
