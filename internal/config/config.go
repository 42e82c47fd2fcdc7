package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port              string
	AllowOrigins      string
	DataFile          string
	DatabaseURL       string
	BotName           string
	HistoryWindowDays int
	HistorySeed       int64
	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAILlmModel    string
	ReqTimeoutSec     int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func atoi64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:              getenv("PORT", "8080"),
		AllowOrigins:      getenv("ALLOW_ORIGINS", "*"),
		DataFile:          getenv("BANK_DATA_FILE", "bankdata.json"),
		DatabaseURL:       getenv("DATABASE_URL", ""),
		BotName:           getenv("BOT_NAME", "Rexa"),
		HistoryWindowDays: atoi("HISTORY_WINDOW_DAYS", 30),
		HistorySeed:       atoi64("HISTORY_SEED", 0),
		OpenAIKey:         getenv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAILlmModel:    getenv("OPENAI_LLM_MODEL", "gpt-4o-mini"),
		ReqTimeoutSec:     atoi("REQUEST_TIMEOUT_SECONDS", 30),
	}
}
