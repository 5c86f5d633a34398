package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/trabach-softwares/ouro-rifa-api/config"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getIntEnv(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func (s *srv) loadConfig() {
	// Missing .env is fine, the environment may be set by the deployment.
	godotenv.Load()

	s.configs = config.Configs{
		Env: getEnv("ENV", "local"),
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "ouro_rifa"),
			User:     getEnv("MYSQL_USER", "root"),
			Password: getEnv("MYSQL_PASSWORD", "password"),
			LogLevel: getEnv("DATABASE_LOG_LEVEL", "error"),
		},
		ApiServer: config.ServerConfigs{
			Host: getEnv("HOST", "localhost"),
			Port: getEnv("PORT", "8080"),
			Cert: getEnv("SERVER_CERT", ""),
			Key:  getEnv("SERVER_KEY", ""),
		},
		Auth: config.AuthConfigs{
			TokenSecret:         getEnv("TOKEN_SECRET", "token_secret"),
			AccessTokenName:     getEnv("ACCESS_TOKEN_NAME", "access_token"),
			Expiration:          getDurationEnv("TOKEN_EXPIRATION", 24*time.Hour),
			MaxLoginAttempts:    getIntEnv("MAX_LOGIN_ATTEMPTS", 5),
			LoginAttemptsWindow: getDurationEnv("LOGIN_ATTEMPTS_WINDOW", 15*time.Minute),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		Raffle: config.RaffleConfigs{
			MinTickets:            getIntEnv("RAFFLE_MIN_TICKETS", 10),
			MaxTickets:            getIntEnv("RAFFLE_MAX_TICKETS", 10000),
			MaxTicketsPerPurchase: getIntEnv("RAFFLE_MAX_TICKETS_PER_PURCHASE", 100),
		},
		Payment: config.PaymentConfigs{
			DefaultPixKey: getEnv("PIX_DEFAULT_KEY", "contato@ouro-rifa.com.br"),
			PixExpiration: getDurationEnv("PIX_EXPIRATION", 30*time.Minute),
		},
	}
}
