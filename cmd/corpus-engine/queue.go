// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/corpus-engine/internal/queue"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "corpus-engine/0.1"
)

// addQueueFlags registers the generation queue flags on cmd.
func addQueueFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", queue.DefaultBaseURL, "generation queue endpoint")
	cmd.Flags().String("result-path", queue.DefaultResultPath, "JSONPath of the generated text in a result payload")
	cmd.Flags().Duration("poll-interval", queue.PollInterval, "delay between status checks")
	cmd.Flags().Duration("timeout", defaultTimeout, "timeout for each HTTP call")
}

var queueFlagKeys = map[string]string{
	"queue.base_url":      "base-url",
	"queue.result_path":   "result-path",
	"queue.poll_interval": "poll-interval",
	"queue.timeout":       "timeout",
}

// queueConfig reads the queue settings after bindFlags.
func queueConfig() types.QueueConfig {
	timeout := viper.GetDuration("queue.timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return types.QueueConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		BaseURL:      viper.GetString("queue.base_url"),
		ResultPath:   viper.GetString("queue.result_path"),
		PollInterval: viper.GetDuration("queue.poll_interval"),
	}
}

// newGenerator builds a queue-backed generation backend for ai.
func newGenerator(cfg types.QueueConfig, ai types.AIConfig) *queue.Generator {
	client := &queue.Client{
		BaseURL:    cfg.BaseURL,
		APIKey:     ai.APIKey,
		ResultPath: cfg.ResultPath,
		Interval:   cfg.PollInterval,
		HTTP:       &http.Client{Timeout: cfg.Timeout},
		UserAgent:  cfg.UserAgent,
		Logger:     logger,
	}
	return &queue.Generator{Client: client, AI: ai}
}
