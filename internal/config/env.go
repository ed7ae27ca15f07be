package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// Helper to get int env with default
func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Int("default", fallback).Msg("Invalid int for config, using default")
		return fallback
	}
	return val
}

// Helper to get bool env with default
func getEnvAsBool(key string, fallback bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback
	}
	val, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Bool("default", fallback).Msg("Invalid bool for config, using default")
		return fallback
	}
	return val
}
