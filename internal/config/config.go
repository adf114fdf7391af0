package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr            string        `yaml:"address"          env:"HTTP_ADDRESS"          env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"    env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST"            env:"PG_HOST"            env-default:"localhost"`
	Port            string        `yaml:"PG_PORT"            env:"PG_PORT"            env-default:"5432"`
	User            string        `yaml:"PG_USER"            env:"PG_USER"            env-required:"true"`
	Password        string        `yaml:"PG_PASSWORD"        env:"PG_PASSWORD"        env-required:"true"`
	Name            string        `yaml:"PG_DBNAME"          env:"PG_DBNAME"          env-required:"true"`
	SSLMode         string        `yaml:"PG_SSLMODE"         env:"PG_SSLMODE"         env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS"     env:"PG_MAX_OPEN_CONNS"  env-default:"10"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS"     env:"PG_MAX_IDLE_CONNS"  env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME"  env:"PG_CONN_MAX_LIFETIME" env-default:"30m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"5m"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST"     env:"REDIS_HOST"     env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT"     env:"REDIS_PORT"     env-default:"6379"`
	Username string `yaml:"REDIS_USER"     env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB"       env:"REDIS_DB"       env-default:"0"`
}

type CacheConfig struct {
	// Session carts expire after this much inactivity.
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"24h"`
}

// Decimal values are kept as strings and parsed by the pricing package.
type PricingConfig struct {
	TaxRate               string `yaml:"tax_rate"                env:"PRICING_TAX_RATE"                env-default:"0.15"`
	FreeShippingThreshold string `yaml:"free_shipping_threshold" env:"PRICING_FREE_SHIPPING_THRESHOLD" env-default:"199"`
	FlatShippingFee       string `yaml:"flat_shipping_fee"       env:"PRICING_FLAT_SHIPPING_FEE"       env-default:"15.00"`
}

type UploadConfig struct {
	MaxBytes         int64         `yaml:"max_bytes"          env:"UPLOAD_MAX_BYTES"          env-default:"5242880"`
	AllowedMIMETypes []string      `yaml:"allowed_mime_types" env:"UPLOAD_ALLOWED_MIME_TYPES" env-default:"image/jpeg,image/png,image/webp,image/heic"`
	MaxAttempts      int64         `yaml:"max_attempts"       env:"UPLOAD_MAX_ATTEMPTS"       env-default:"5"`
	WindowSize       time.Duration `yaml:"window_size"        env:"UPLOAD_WINDOW_SIZE"        env-default:"1m"`
}

type Security struct {
	JWTKey string `yaml:"JWT_KEY" env:"JWT_KEY" env-required:"true"`
}

type OtelConfig struct {
	ServiceName      string  `yaml:"SERVICE_NAME"      env:"OTEL_SERVICE_NAME"      env-default:"pharmacy-checkout"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO"     env:"OTEL_SAMPLER_RATIO"     env-default:"1.0"`
}

type Config struct {
	Env          string        `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   HTTPServer    `yaml:"http_server"`
	Database     Database      `yaml:"database"`
	RedisConnect RedisConnect  `yaml:"redis"`
	Cache        CacheConfig   `yaml:"cache"`
	Pricing      PricingConfig `yaml:"pricing"`
	Upload       UploadConfig  `yaml:"upload"`
	Security     Security      `yaml:"security"`
	Otel         OtelConfig    `yaml:"otel"`
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "path to the YAML config file")
		flag.Parse()

		configPath = *flags
	}

	if configPath == "" {
		configPath = "config/local.yaml"
	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return cfg
}

func LoadConfigFromPath(configPath string) (*Config, error) {

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", configPath, err)
	}

	return &cfg, nil
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s", r.Username, r.Password, r.Host, r.Port)
}
