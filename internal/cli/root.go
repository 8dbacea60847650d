package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spacesedan/sentiflow-kv/config"
	"github.com/spacesedan/sentiflow-kv/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sentiflow",
		Short: "Few-shot LLM sentiment analysis with a key-value cache",
		Long: `sentiflow classifies a sentence as positive, negative or neutral by
prompting a language model with a few labelled examples. Results are cached
by sentence so repeated requests skip the model.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("provider", "", "model provider (openai, huggingface, gemini, vader)")
	rootCmd.PersistentFlags().String("model", "", "model name for the provider")
	rootCmd.PersistentFlags().String("store", "", "cache backend (memory, valkey, dynamodb, postgres)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("model_provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("model_name", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("store_backend", rootCmd.PersistentFlags().Lookup("store"))

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newClassifyCmd())

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command) error {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}
	config.LoadEnv(appEnv)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.InitLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	return nil
}
