// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the corpus-engine CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/corpus-engine/internal/logging"
	"github.com/pdiddy/corpus-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	apiKeyEnv  = "FAL_KEY"
	apiKeyFile = "fal-key"
	secretsDir = ".secrets/"
)

// loadedSecrets holds API keys loaded from .secrets/ and ~/.env at startup.
var loadedSecrets secrets.Store

// logger is the diagnostic logger configured from --log-level.
var logger = zap.NewNop()

// apiKey resolves the queue API key. Dry runs never call it.
func apiKey() (string, error) {
	key, err := loadedSecrets.Get(apiKeyEnv, apiKeyFile)
	if errors.Is(err, secrets.ErrNotFound) {
		return "", fmt.Errorf("%s not found: set it in the environment, %s%s, or ~/.env", apiKeyEnv, secretsDir, apiKeyFile)
	}
	return key, err
}

// rootCmd is the base command for the corpus-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "corpus-engine",
	Short: "Build and fill a text corpus through a queued generation API",
	Long: `corpus-engine maintains a tree of .corpus text files. Each directory
carries a prompts.txt manifest naming the files it should contain and the
prompt that produces each one.

scaffold writes the directory tree and manifests, generate fills in missing
files through the generation queue, and dictionary adds entries for the most
frequent words that are not defined yet.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log_level"))
		if err != nil {
			return err
		}
		logger = l

		dir, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		env, err := secrets.LoadEnvFile(secrets.DefaultEnvFile())
		if err != nil {
			return err
		}
		loadedSecrets = secrets.Store{Dir: dir, EnvFile: env}

		if len(dir) > 0 {
			keys := make([]string, 0, len(dir))
			for k := range dir {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./corpus-engine.yaml or ~/.config/corpus-engine/corpus-engine.yaml)")
	rootCmd.PersistentFlags().String("corpus-dir", "corpus", "root of the corpus tree")
	rootCmd.PersistentFlags().String("log-level", logging.DefaultLevel, "diagnostic log level: debug, info, warn, or error")

	_ = viper.BindPFlag("corpus_dir", rootCmd.PersistentFlags().Lookup("corpus-dir"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("corpus-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "corpus-engine"))
		}
	}

	viper.SetEnvPrefix("CORPUS_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds a command's flags to viper keys. Commands share key
// names under different sections, so binding happens when the command
// runs rather than in init.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
