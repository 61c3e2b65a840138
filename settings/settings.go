package settings

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var lock = &sync.Mutex{}
var singleSettingsInstace *settings

type settings struct {
	PORT                string
	JWT_SECRET_KEY      string
	MONGO_DB            string
	MONGO_ROOT_USERNAME string
	MONGO_ROOT_PASSWORD string
	MONGO_HOST          string
	MONGO_CONNECTION    string
	NATS_HOST           string
	ELS_HOST            string
	ELS_PASSWORD        string
	ELS_PORT            int
	ELS_USERNAME        string
	CLIENT_URL          string
	NODE_ENV            string
	RATE_LIMIT          uint
}

func getEnvDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func newSettings() *settings {
	elsPort, err := strconv.Atoi(getEnvDefault("ELS_PORT", "9200"))
	if err != nil {
		panic(err)
	}
	rateLimit, err := strconv.ParseUint(getEnvDefault("RATE_LIMIT", "7"), 10, 32)
	if err != nil {
		panic(err)
	}
	return &settings{
		PORT:                getEnvDefault("PORT", "5000"),
		JWT_SECRET_KEY:      os.Getenv("JWT_SECRET_KEY"),
		MONGO_DB:            getEnvDefault("MONGO_DB", "english_center"),
		MONGO_ROOT_USERNAME: os.Getenv("MONGO_ROOT_USERNAME"),
		MONGO_ROOT_PASSWORD: os.Getenv("MONGO_ROOT_PASSWORD"),
		MONGO_HOST:          getEnvDefault("MONGO_HOST", "localhost"),
		MONGO_CONNECTION:    getEnvDefault("MONGO_CONNECTION", "mongodb"),
		NATS_HOST:           getEnvDefault("NATS_HOST", "localhost"),
		ELS_HOST:            os.Getenv("ELS_HOST"),
		ELS_PORT:            elsPort,
		ELS_PASSWORD:        os.Getenv("ELS_PASSWORD"),
		ELS_USERNAME:        os.Getenv("ELS_USERNAME"),
		CLIENT_URL:          getEnvDefault("CLIENT_URL", "localhost:8080"),
		NODE_ENV:            os.Getenv("NODE_ENV"),
		RATE_LIMIT:          uint(rateLimit),
	}
}

func init() {
	if os.Getenv("NODE_ENV") != "prod" {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using environment")
		}
	}
}

func GetSettings() *settings {
	lock.Lock()
	defer lock.Unlock()
	if singleSettingsInstace == nil {
		singleSettingsInstace = newSettings()
	}
	return singleSettingsInstace
}
