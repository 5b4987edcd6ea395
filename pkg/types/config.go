package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds each individual HTTP call (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "corpus-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// QueueConfig holds settings for the queue-based generation API.
type QueueConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the queue endpoint that accepts submissions. Status and
	// result URLs are derived from it.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// ResultPath is a JSONPath expression locating the generated text in the
	// result payload (default "$.output").
	ResultPath string `json:"result_path" yaml:"result_path"`

	// PollInterval is the delay between status checks (default 2s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
}

// AIConfig holds shared settings for stages that call a text-generation model.
type AIConfig struct {
	// Model is the model identifier routed by the queue (e.g. "qwen/qwen3.5-plus-02-15").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the queue API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// SystemPrompt frames every request sent to the model.
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt"`

	// Temperature is the sampling temperature.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens caps the length of each generated response.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// GenerationConfig holds settings for the corpus generation stage.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// CorpusDir is the root of the corpus tree containing prompts.txt manifests.
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// Limit is the maximum number of files generated per run. Zero means
	// dry run: pending files are listed and nothing is generated.
	Limit int `json:"limit" yaml:"limit"`

	// Concurrency is the maximum number of requests in flight (default 5).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// DictionaryConfig holds settings for the dictionary stage.
type DictionaryConfig struct {
	AIConfig `yaml:",inline"`

	// CorpusDir is the root of the corpus tree whose words are counted.
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// DictionaryDir holds one <word>.corpus entry per defined word. Its
	// contents are excluded from frequency counting.
	DictionaryDir string `json:"dictionary_dir" yaml:"dictionary_dir"`

	// Limit is the number of entries to generate. Zero means dry run.
	Limit int `json:"limit" yaml:"limit"`

	// Concurrency is the maximum number of requests in flight (default 1).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// IndexConfig holds settings for the word frequency index.
type IndexConfig struct {
	// Path is the SQLite database file (default <corpus>/.index/wordfreq.db).
	Path string `json:"path" yaml:"path"`

	// Disabled forces a full rescan instead of using the index.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// ScaffoldConfig holds settings for the scaffold stage.
type ScaffoldConfig struct {
	// CorpusDir is the root under which the directory tree is created.
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`
}
