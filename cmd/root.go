package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tablegen/internal/config"
	"tablegen/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tablegen",
	Short: "Tablegen - turn a requirement description into a spreadsheet",
	Long: `Tablegen sends a free-text requirement description to an OpenAI-compatible
chat completion endpoint, asks for a pipe-delimited table, parses it and
writes the result to an .xlsx file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./config.ini)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace/debug/info/warn/error/fatal)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (json/console)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 不指定类型，config.ini / config.yaml 等都可以
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("$HOME/.tablegen")
	}

	// 环境变量设置，例如 TABLEGEN_API_API_KEY
	viper.SetEnvPrefix("TABLEGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// API，没有默认值，缺失时在第一次请求前报错
	for _, key := range []string{"api_key", "model", "api_base", "temperature", "max_tokens", "prompt_suffix"} {
		viper.SetDefault("api."+key, "")
	}

	// Parser
	viper.SetDefault("parser.strict", false)

	// Export
	viper.SetDefault("export.dir", ".")

	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 7080)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "5m")

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stderr")
	viper.SetDefault("log.time_format", "RFC3339")

	// MongoDB，uri 为空时不记录导出历史
	viper.SetDefault("mongo.uri", "")
	viper.SetDefault("mongo.database", "tablegen")
	viper.SetDefault("mongo.max_pool_size", 20)
	viper.SetDefault("mongo.min_pool_size", 0)

	// Storage
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local.base_path", "./data/storage")
	viper.SetDefault("storage.local.base_url", "http://localhost:7080/files")
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
