package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AnswerServiceURL string
	HTTPPort         string
	LogLevel         string
	LogDir           string
	AnswerTimeoutSec int
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		AnswerServiceURL: getEnv("ANSWER_SERVICE_URL", ""),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		LogDir:           getEnv("LOG_DIR", "logs"),
		AnswerTimeoutSec: getEnvAsInt("ANSWER_TIMEOUT_SECONDS", 60),
	}

	if AppConfig.AnswerServiceURL == "" {
		log.Fatal("ANSWER_SERVICE_URL environment variable is required")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
