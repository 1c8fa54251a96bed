package config

import (
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host           string
	Port           string
	AllowedOrigins []string
	Env            string
	LogLevel       string

	StoreDriver             string
	FirebaseCredentialsPath string
	FirebaseProjectID       string
	MongoURI                string
	MongoDatabase           string
	PostgresUrl             string
	StorePollInterval       time.Duration

	UnsplashAccessKey string
	UnsplashBaseURL   string
	PhotosPerPage     int
	PhotosOrder       string
	PhotoCacheTTL     time.Duration

	IdentityPath string
	FeedLimit    int
}

// Load reads the configuration from the environment, after loading a .env
// file if one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using the environment as is")
	}
	port := getEnv("PORT", "8080")
	return &Config{
		Host:     getEnv("HOST", "127.0.0.1"),
		Port:     port,
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AllowedOrigins: getList("ALLOWED_ORIGINS", localOrigins(port)),

		StoreDriver:             getEnv("STORE_DRIVER", DriverFirestore),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDatabase:           getEnv("MONGO_DATABASE", "gallery"),
		PostgresUrl:             getEnv("POSTGRES_URL", "postgres://localhost:5432/gallery?sslmode=disable"),
		StorePollInterval:       getDuration("STORE_POLL_INTERVAL", 2*time.Second),

		UnsplashAccessKey: getEnv("UNSPLASH_ACCESS_KEY", ""),
		UnsplashBaseURL:   getEnv("UNSPLASH_BASE_URL", "https://api.unsplash.com"),
		PhotosPerPage:     getInt("PHOTOS_PER_PAGE", 12),
		PhotosOrder:       getEnv("PHOTOS_ORDER", "latest"),
		PhotoCacheTTL:     getDuration("PHOTO_CACHE_TTL", 5*time.Minute),

		IdentityPath: getEnv("IDENTITY_PATH", ""),
		FeedLimit:    getInt("FEED_LIMIT", 20),
	}
}

// Addr is the listen address of the view server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// localOrigins are the browser origins of a front-end served by this
// process on the loopback interface.
func localOrigins(port string) []string {
	return []string{
		"http://localhost:" + port,
		"http://127.0.0.1:" + port,
	}
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("ignoring malformed integer setting", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("ignoring malformed duration setting", "key", key, "value", value)
		return defaultValue
	}
	return d
}
