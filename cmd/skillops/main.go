package main

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillops/pkg/config"
	"github.com/jingkaihe/skillops/pkg/logger"
	"github.com/jingkaihe/skillops/pkg/presenter"
)

type contextKey struct{}

// appConfig returns the configuration loaded by the root command.
func appConfig(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(contextKey{}).(*config.Config)
	return cfg
}

func withAppConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

var shutdownTracing = func(context.Context) error { return nil }

var rootCmd = &cobra.Command{
	Use:   "skillops",
	Short: "Maintain agent skills and prepare agents for Agent Engine",
	Long: `skillops keeps assistant skills in sync with their reference repositories
and prepares agent directories for deployment to Vertex AI Agent Engine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := readConfigFile(viper.GetViper(), viper.GetString("config")); err != nil {
			return err
		}

		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		presenter.SetQuiet(viper.GetBool("quiet"))

		if err := logger.SetLogLevel(cfg.LogLevel); err != nil {
			return err
		}
		logger.SetLogFormat(cfg.LogFormat)

		ctx := logger.WithFields(cmd.Context(), logrus.Fields{
			"run_id":  uuid.New().String(),
			"command": cmd.Name(),
		})

		shutdown, err := initTracing(ctx, cfg)
		if err != nil {
			logger.G(ctx).WithError(err).Warn("failed to initialize tracing, continuing without it")
		} else {
			shutdownTracing = shutdown
		}

		cmd.SetContext(withAppConfig(ctx, cfg))
		return nil
	},
}

// readConfigFile reads path, or config.yaml from $HOME/.skillops and the
// working directory when path is empty. A missing default file is not an
// error; a missing explicit file is.
func readConfigFile(v *viper.Viper, path string) error {
	v.SetEnvPrefix("SKILLOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(config.ExpandPath(path))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.skillops")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default $HOME/.skillops/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt or json)")
	rootCmd.PersistentFlags().String("cache-root", "", "Directory holding reference repository caches")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print errors")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("cache_root", rootCmd.PersistentFlags().Lookup("cache-root"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())

	// Spans of failed commands are exported too.
	if serr := shutdownTracing(context.Background()); serr != nil {
		logger.L.WithError(serr).Debug("failed to flush traces")
	}

	if err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
