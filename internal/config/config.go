package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CartStorePostgres = "postgres"
	CartStoreMongo    = "mongo"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Mongo      MongoConfig
	Storage    StorageConfig
	Auth       AuthConfig
	Midtrans   MidtransConfig
	Checkout   CheckoutConfig
	Cloudinary CloudinaryConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// AllowedOrigins is the CORS allow list for the web frontend.
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL            string
	MigrationsPath string
	MaxRetries     int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Broker  string
	Topic   string
	GroupID string
}

type MongoConfig struct {
	URI      string
	Database string
}

type StorageConfig struct {
	// CartStore selects the cart repository backend.
	CartStore string
}

type AuthConfig struct {
	JWTSecret string
}

type MidtransConfig struct {
	ServerKey    string
	IsProduction bool
}

type CheckoutConfig struct {
	SuccessURL      string
	CancelURL       string
	Currency        string
	ProviderTimeout time.Duration
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

func Load() (*Config, error) {
	// .env.local wins over .env; both are optional
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			Env:            getEnv("APP_ENV", "development"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DB_URL", ""),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "internal/shared/database/migrations"),
			MaxRetries:     getEnvAsInt("DB_MAX_RETRIES", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Broker:  getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:   getEnv("KAFKA_TOPIC", "cart.events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "cart-consumer-group"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "campus_marketplace"),
		},
		Storage: StorageConfig{
			CartStore: strings.ToLower(getEnv("CART_STORE", CartStorePostgres)),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Midtrans: MidtransConfig{
			ServerKey:    strings.Trim(getEnv("MIDTRANS_SERVER_KEY", ""), "\""),
			IsProduction: getEnvAsBool("MIDTRANS_IS_PRODUCTION", false),
		},
		Checkout: CheckoutConfig{
			SuccessURL:      getEnv("CHECKOUT_SUCCESS_URL", ""),
			CancelURL:       getEnv("CHECKOUT_CANCEL_URL", ""),
			Currency:        strings.ToUpper(getEnv("CHECKOUT_CURRENCY", "IDR")),
			ProviderTimeout: getEnvAsDuration("CHECKOUT_PROVIDER_TIMEOUT", 10*time.Second),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "campus-marketplace"),
		},
	}

	return cfg, nil
}

// Validate checks the settings the API process cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("DB_URL is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Checkout.SuccessURL == "" || c.Checkout.CancelURL == "" {
		errs = append(errs, errors.New("CHECKOUT_SUCCESS_URL and CHECKOUT_CANCEL_URL are required"))
	}
	if c.Checkout.ProviderTimeout <= 0 {
		errs = append(errs, errors.New("CHECKOUT_PROVIDER_TIMEOUT must be positive"))
	}
	switch c.Storage.CartStore {
	case CartStorePostgres, CartStoreMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown CART_STORE %q", c.Storage.CartStore))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
