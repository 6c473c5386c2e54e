package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/okian/vidmatch/internal/config"
	"github.com/okian/vidmatch/pkg/logger"
)

type commandContext struct {
	configFlag    string
	logLevelFlag  string
	logFormatFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "vidmatch",
		Short:         "Match catalog records against YouTube search results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig(cmd.Context())
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&ctx.logFormatFlag, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newScoreCommand(ctx))
	rootCmd.AddCommand(newQueriesCommand(ctx))

	return rootCmd
}

// ensureConfig loads the configuration once and initializes logging from it.
func (c *commandContext) ensureConfig(ctx context.Context) (*config.Config, error) {
	c.configOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		cfg, err := config.Load(ctx, strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != "" {
			cfg.LogLevel = c.logLevelFlag
		}
		if c.logFormatFlag != "" {
			cfg.LogFormat = c.logFormatFlag
		}
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			c.configErr = err
			return
		}
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			logger.Get().Warn(ctx, "invalid log_level; falling back to info",
				logger.String("log_level", cfg.LogLevel), logger.Error(err))
			_ = logger.SetLevelString("info")
		}
		c.config = cfg
	})
	return c.config, c.configErr
}
