package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	Env    string
	Gemini GeminiConfig
	Chat   ChatConfig
}

type GeminiConfig struct {
	APIKey           string
	RetrieverModel   string
	SynthesizerModel string
	IssueModel       string
	ChatModel        string
	RPS              float64
	Burst            int
}

type ChatConfig struct {
	MaxSessions int
	SessionTTL  time.Duration
}

// Load reads process configuration once at startup. Flag parsing happens
// only here; the resolution itself lives in load so it stays testable.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	return load(*port, os.Getenv)
}

// load resolves configuration from the given environment. A missing
// GEMINI_API_KEY is a fatal condition here, not a per-call error.
func load(port string, getenv func(string) string) (*Config, error) {
	if envPort := getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			port = envPort
		} else {
			port = ":" + envPort
		}
	}

	env := strings.TrimSpace(getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	apiKey := strings.TrimSpace(getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return &Config{
		Port: port,
		Env:  env,
		Gemini: GeminiConfig{
			APIKey:           apiKey,
			RetrieverModel:   envStr(getenv, "GEMINI_RETRIEVER_MODEL", "gemini-2.5-flash"),
			SynthesizerModel: envStr(getenv, "GEMINI_SYNTHESIZER_MODEL", "gemini-2.5-pro"),
			IssueModel:       envStr(getenv, "GEMINI_ISSUE_MODEL", "gemini-2.5-flash"),
			ChatModel:        envStr(getenv, "GEMINI_CHAT_MODEL", "gemini-2.5-flash"),
			RPS:              envFloat(getenv, "GEMINI_RPS", 0),
			Burst:            envInt(getenv, "GEMINI_BURST", 1),
		},
		Chat: ChatConfig{
			MaxSessions: envInt(getenv, "CHAT_MAX_SESSIONS", 256),
			SessionTTL:  envDuration(getenv, "CHAT_SESSION_TTL", 30*time.Minute),
		},
	}, nil
}

func envStr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(getenv func(string) string, key string, fallback int) int {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(getenv func(string) string, key string, fallback float64) float64 {
	if v := getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(getenv func(string) string, key string, fallback time.Duration) time.Duration {
	if v := getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
