package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mpelletier/facturio/internal/session"
)

type Config struct {
	ADDR           string
	DATABASE_URL   string
	SESSION_SECRET string
	PASSWORD_SALT  string
	SESSION_TTL    time.Duration
	KAFKA_ADDRESS  string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	LOG_LEVEL      string
	ADMIN_USERNAME string
	ADMIN_PASSWORD string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		ADDR:           getenv("ADDR", ":8080"),
		DATABASE_URL:   os.Getenv("DATABASE_URL"),
		SESSION_SECRET: getenv("SESSION_SECRET", "devsessionsecret"),
		PASSWORD_SALT:  getenv("PASSWORD_SALT", "devpasswordsalt"),
		SESSION_TTL:    session.DefaultTTL,
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		LOG_LEVEL:      getenv("LOG_LEVEL", "info"),
		// Well-known first-boot credential; operators are warned at startup
		// when it gets created.
		ADMIN_USERNAME: getenv("ADMIN_USERNAME", "admin"),
		ADMIN_PASSWORD: getenv("ADMIN_PASSWORD", "admin"),
	}

	if h := os.Getenv("SESSION_TTL_HOURS"); h != "" {
		if v, err := strconv.Atoi(h); err == nil && v > 0 {
			config.SESSION_TTL = time.Duration(v) * time.Hour
		}
	}

	return config, nil
}

// SessionConfig bundles the immutable secrets handed to the session manager.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		Secret: []byte(c.SESSION_SECRET),
		Salt:   c.PASSWORD_SALT,
		TTL:    c.SESSION_TTL,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
