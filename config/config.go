package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverFile  = "file"
	StoreDriverMySQL = "mysql"
)

type Config struct {
	Port            string        `env:"PORT"             envDefault:"8080"`
	GinMode         string        `env:"GIN_MODE"         envDefault:"release"`
	StoreDriver     string        `env:"STORE_DRIVER"     envDefault:"file"`
	RoomsFile       string        `env:"ROOMS_FILE"       envDefault:"data/rooms.json"`
	SeedRooms       int           `env:"SEED_ROOMS"       envDefault:"10"`
	RoomNamePrefix  string        `env:"ROOM_NAME_PREFIX" envDefault:"Room"`
	CORSOrigins     []string      `env:"CORS_ORIGINS"     envSeparator:","`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT"       envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Database DatabaseConfig
}

type DatabaseConfig struct {
	URL         string `env:"MYSQL_URL"`
	FallbackURL string `env:"DATABASE_URL"`
	User        string `env:"DB_USER" envDefault:"root"`
	Pass        string `env:"DB_PASS"`
	Host        string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port        string `env:"DB_PORT" envDefault:"3306"`
	Name        string `env:"DB_NAME" envDefault:"roombook"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case StoreDriverFile, StoreDriverMySQL:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.SeedRooms < 0 {
		return Config{}, fmt.Errorf("SEED_ROOMS must not be negative, got %d", cfg.SeedRooms)
	}
	cfg.CORSOrigins = normalizeOrigins(cfg.CORSOrigins)
	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func normalizeOrigins(raw []string) []string {
	origins := make([]string, 0, len(raw))
	for _, part := range raw {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
