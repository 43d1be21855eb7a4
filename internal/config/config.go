package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type StorageDriver string

const (
	StorageFile   StorageDriver = "file"
	StorageSQLite StorageDriver = "sqlite"
)

type Config struct {
	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	ExtractionModel  string      `env:"EXTRACTION_MODEL"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Prompts
	PromptsPath string `env:"PROMPTS_PATH" envDefault:"prompts/prompts.yaml"`

	// Storage
	StorageDriver StorageDriver `env:"STORAGE_DRIVER" envDefault:"file"`
	DataDir       string        `env:"DATA_DIR" envDefault:"data"`
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:"data/memories.db"`

	// Context windows
	JournalHistoryWindow  int `env:"JOURNAL_HISTORY_WINDOW" envDefault:"8"`
	PastSelfHistoryWindow int `env:"PAST_SELF_HISTORY_WINDOW" envDefault:"6"`
	JournalRecentEntries  int `env:"JOURNAL_RECENT_ENTRIES" envDefault:"3"`
	PastSelfEntryLimit    int `env:"PAST_SELF_ENTRY_LIMIT" envDefault:"15"`

	// HTTP API
	HTTPAddr    string   `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Telegram
	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramOwnerChatID int64  `env:"TELEGRAM_OWNER_CHAT_ID"`
	MessageParseMode    string `env:"MESSAGE_PARSE_MODE"`

	// Daily digest, standard 5-field cron in UTC; empty disables it
	DigestSchedule string `env:"DIGEST_SCHEDULE" envDefault:"0 21 * * *"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Parse reads the configuration from the environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("%v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderYandex:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	switch c.StorageDriver {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.JournalHistoryWindow < 0 || c.PastSelfHistoryWindow < 0 {
		return fmt.Errorf("history windows must not be negative")
	}
	return nil
}
