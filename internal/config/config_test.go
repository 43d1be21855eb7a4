package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, StorageFile, cfg.StorageDriver)
	assert.Equal(t, 8, cfg.JournalHistoryWindow)
	assert.Equal(t, 6, cfg.PastSelfHistoryWindow)
	assert.Equal(t, 15, cfg.PastSelfEntryLimit)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("PAST_SELF_HISTORY_WINDOW", "4")
	t.Setenv("CORS_ORIGINS", "http://a,http://b")
	t.Setenv("TELEGRAM_OWNER_CHAT_ID", "42")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, 4, cfg.PastSelfHistoryWindow)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSOrigins)
	assert.Equal(t, int64(42), cfg.TelegramOwnerChatID)
}

func TestParseRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	_, err := Parse()
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("LLM_PROVIDER", "gemini")
	_, err = Parse()
	assert.Error(t, err)
}
