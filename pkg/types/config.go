package types

// APIConfig holds settings for the model collaborator.
type APIConfig struct {
	// Model is the OpenRouter model identifier (e.g. "google/gemini-2.0-flash-001").
	Model string `mapstructure:"model" toml:"model" json:"model" yaml:"model"`

	// Temperature is the sampling temperature sent with each request.
	Temperature float64 `mapstructure:"temperature" toml:"temperature" json:"temperature" yaml:"temperature"`

	// MaxTokens caps the length of a generated reply.
	MaxTokens int `mapstructure:"max_tokens" toml:"max_tokens" json:"max_tokens" yaml:"max_tokens"`

	// APIKey authenticates against the model endpoint. When empty the key is
	// read from .secrets/openrouter-api-key.
	APIKey string `mapstructure:"api_key" toml:"api_key" json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL is the OpenAI-compatible endpoint root.
	BaseURL string `mapstructure:"base_url" toml:"base_url" json:"base_url" yaml:"base_url"`
}

// PaperConfig holds settings for the bibliography table.
type PaperConfig struct {
	// Types is the closed set of paper categories offered to the assistant
	// and used for per-type shards.
	Types []string `mapstructure:"types" toml:"types" json:"types" yaml:"types"`

	// CSVFile is the path of the canonical table.
	CSVFile string `mapstructure:"csv_file" toml:"csv_file" json:"csv_file" yaml:"csv_file"`
}

// HFConfig holds settings for the per-type shard tree. The folder is the
// shard root; the repository fields describe where the folder is published
// and are carried for config compatibility only.
type HFConfig struct {
	Folder string `mapstructure:"folder" toml:"folder" json:"folder" yaml:"folder"`
	RepoID string `mapstructure:"repo_id" toml:"repo_id" json:"repo_id" yaml:"repo_id"`
	Token  string `mapstructure:"token" toml:"token" json:"token,omitempty" yaml:"token,omitempty"`
}

// UIConfig holds settings for the interactive chat command.
type UIConfig struct {
	Theme         string `mapstructure:"theme" toml:"theme" json:"theme" yaml:"theme"`
	ChatbotHeight int    `mapstructure:"chatbot_height" toml:"chatbot_height" json:"chatbot_height" yaml:"chatbot_height"`
	Debug         bool   `mapstructure:"debug" toml:"debug" json:"debug" yaml:"debug"`
}

// HistoryConfig holds settings for the transcript archive.
type HistoryConfig struct {
	// Enabled turns transcript archiving on for chat sessions.
	Enabled bool `mapstructure:"enabled" toml:"enabled" json:"enabled" yaml:"enabled"`

	// DBFile is the SQLite database path.
	DBFile string `mapstructure:"db_file" toml:"db_file" json:"db_file" yaml:"db_file"`
}

// Config groups all sections of the configuration file.
type Config struct {
	API     APIConfig     `mapstructure:"api" toml:"api" json:"api" yaml:"api"`
	Paper   PaperConfig   `mapstructure:"paper" toml:"paper" json:"paper" yaml:"paper"`
	HF      HFConfig      `mapstructure:"hf" toml:"hf" json:"hf" yaml:"hf"`
	UI      UIConfig      `mapstructure:"ui" toml:"ui" json:"ui" yaml:"ui"`
	History HistoryConfig `mapstructure:"history" toml:"history" json:"history" yaml:"history"`
}
