package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// APIBaseURL is the remote donation backend this portal fronts.
	APIBaseURL string

	OrgName string

	// Redis holds the durable credential between restarts.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins []string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	cfg := &Config{
		Port:       os.Getenv("PORT"),
		APIBaseURL: os.Getenv("API_BASE_URL"),
		OrgName:    os.Getenv("ORG_NAME"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:3000/api"
	}
	if cfg.OrgName == "" {
		cfg.OrgName = "TrulyHelp"
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	} else {
		cfg.CORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	}

	return cfg
}
