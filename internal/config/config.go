// Package config loads runtime configuration from the environment. A .env
// file in the working directory is honored when present; real environment
// variables win.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	// Text-generation backend.
	LLMProvider    string
	DeepSeekAPIKey string
	DeepSeekModel  string
	OllamaURL      string
	OllamaModel    string
	LLMTimeout     int

	// External ML predictor binaries. Empty path disables that model.
	PhysicalModelPath string
	MentalModelPath   string

	// Minutes between background analysis passes.
	AnalysisInterval int
}

func Load() Config {
	_ = godotenv.Load() // MEDMOLE_* overrides, absent in production

	return Config{
		Port:     getenv("MEDMOLE_PORT", "8080"),
		DBPath:   getenv("MEDMOLE_DB_PATH", "medmole.db"),
		LogLevel: getenv("MEDMOLE_LOG_LEVEL", "info"),

		LLMProvider:    getenv("MEDMOLE_LLM_PROVIDER", "ollama"),
		DeepSeekAPIKey: os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekModel:  os.Getenv("MEDMOLE_DEEPSEEK_MODEL"),
		OllamaURL:      os.Getenv("MEDMOLE_OLLAMA_URL"),
		OllamaModel:    os.Getenv("MEDMOLE_OLLAMA_MODEL"),
		LLMTimeout:     getenvInt("MEDMOLE_LLM_TIMEOUT", 120),

		PhysicalModelPath: os.Getenv("MEDMOLE_PHYSICAL_MODEL"),
		MentalModelPath:   os.Getenv("MEDMOLE_MENTAL_MODEL"),

		AnalysisInterval: getenvInt("MEDMOLE_ANALYSIS_INTERVAL", 5),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
