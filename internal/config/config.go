package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration.
type Config struct {
	Version string

	// Logging
	LogLevel      string
	LogPretty     bool
	LogFile       string
	MaxLogSizeMB  int64
	MaxLogBackups int

	// HTTP
	Port int

	// Market data (Alpaca)
	AlpacaAPIKey    string
	AlpacaAPISecret string
	AlpacaDataURL   string
	AlpacaFeed      string

	// Portfolio and simulation
	BondTicker           string
	EquityTicker         string
	PriceHistoryDays     int
	SimulationServiceURL string
	SimulationTrials     int
	SimulationYears      int

	// Operator notifications (optional)
	TelegramBotToken string
	TelegramChatID   string
}

// requiredVars are critical; the service refuses to start without them.
var requiredVars = []string{
	"APCA_API_KEY_ID",
	"APCA_API_SECRET_KEY",
	"SIMULATION_SERVICE_URL",
}

// secretVars are masked when printed, required or not.
var secretVars = map[string]bool{
	"APCA_API_KEY_ID":     true,
	"APCA_API_SECRET_KEY": true,
	"TELEGRAM_BOT_TOKEN":  true,
}

// Load initializes the configuration.
// It tries to read a .env file and checks for necessary environment variables.
func Load() (*Config, error) {
	// Load .env variables into the process environment
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using system environment variables")
	}

	// 1. Check for missing required variables (in actual environment)
	var missing []string
	for _, key := range requiredVars {
		if getEnv(key, "") == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	// 2. Print variables defined in .env file
	printEnvFile()

	cfg := &Config{
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogPretty:     getEnvAsBool("LOG_PRETTY", false),
		LogFile:       getEnv("LOG_FILE", "robo_advisor.log"),
		MaxLogSizeMB:  int64(getEnvAsInt("MAX_LOG_SIZE_MB", 10)),
		MaxLogBackups: getEnvAsInt("MAX_LOG_BACKUPS", 3),

		Port: getEnvAsInt("PORT", 8080),

		AlpacaAPIKey:    getEnv("APCA_API_KEY_ID", ""),
		AlpacaAPISecret: getEnv("APCA_API_SECRET_KEY", ""),
		AlpacaDataURL:   getEnv("APCA_API_DATA_URL", ""),
		AlpacaFeed:      getEnv("APCA_DATA_FEED", "iex"),

		BondTicker:           strings.ToUpper(getEnv("BOND_TICKER", "AGG")),
		EquityTicker:         strings.ToUpper(getEnv("EQUITY_TICKER", "SPY")),
		PriceHistoryDays:     getEnvAsInt("PRICE_HISTORY_DAYS", 252),
		SimulationServiceURL: getEnv("SIMULATION_SERVICE_URL", ""),
		SimulationTrials:     getEnvAsInt("SIMULATION_TRIALS", 100),
		SimulationYears:      getEnvAsInt("SIMULATION_YEARS", 10),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if c.PriceHistoryDays < 2 {
		return fmt.Errorf("PRICE_HISTORY_DAYS must be at least 2, got %d", c.PriceHistoryDays)
	}
	if c.SimulationTrials <= 0 {
		return fmt.Errorf("SIMULATION_TRIALS must be positive, got %d", c.SimulationTrials)
	}
	if c.SimulationYears <= 0 {
		return fmt.Errorf("SIMULATION_YEARS must be positive, got %d", c.SimulationYears)
	}
	if c.BondTicker == c.EquityTicker {
		return fmt.Errorf("BOND_TICKER and EQUITY_TICKER must differ, both are %s", c.BondTicker)
	}
	return nil
}

func printEnvFile() {
	envMap, err := godotenv.Read()
	if err != nil {
		return
	}

	keys := make([]string, 0, len(envMap))
	for key := range envMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	log.Info().Msg("--- .env File Variables ---")
	for _, key := range keys {
		val := envMap[key]
		if secretVars[key] {
			val = mask(val)
		}
		log.Info().Msgf("%s=%s", key, val)
	}
	log.Info().Msg("---------------------------")
}

// mask shows only the last 4 chars of a secret value.
func mask(val string) string {
	if len(val) > 4 {
		return "***" + val[len(val)-4:]
	}
	return "***"
}
