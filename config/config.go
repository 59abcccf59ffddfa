package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	JWTKey string

	ChainRPCURL     string
	ChainMinterURL  string
	ChainTimeoutSec int

	PartnerTimeoutSec int
	WebhookMaxAgeSec  int

	ReconcileCron       string
	ReconcileBatchLimit int
	ProgressSyncCron    string
	CatalogSyncCron     string

	AlertEmail  string
	EmailSender string
	Password    string // SMTP Password
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	// Initialize AppConfig with values from environment variables
	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		ChainRPCURL:     getEnv("CHAIN_RPC_URL", "http://localhost:8545"),
		ChainMinterURL:  getEnv("CHAIN_MINTER_URL", "http://localhost:8600"),
		ChainTimeoutSec: getEnvInt("CHAIN_TIMEOUT_SEC", 15),

		PartnerTimeoutSec: getEnvInt("PARTNER_TIMEOUT_SEC", 10),
		WebhookMaxAgeSec:  getEnvInt("WEBHOOK_MAX_AGE_SEC", 300),

		ReconcileCron:       getEnv("RECONCILE_CRON", "*/5 * * * *"),
		ReconcileBatchLimit: getEnvInt("RECONCILE_BATCH_LIMIT", 50),
		ProgressSyncCron:    getEnv("PROGRESS_SYNC_CRON", "0 */6 * * *"),
		CatalogSyncCron:     getEnv("CATALOG_SYNC_CRON", "0 2 * * *"),

		AlertEmail:  getEnv("ALERT_EMAIL", ""),
		EmailSender: getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:    getEnv("PASSWORD", "defaultSecret"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.ChainRPCURL == "http://localhost:8545" {
		log.Println("Warning: Using default CHAIN_RPC_URL. Update it in your environment.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
