package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	Address            string        `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"INFO"`
	DatabaseConnection string        `env:"DATABASE_URI"`
	FeedKey            string        `env:"WM_KEY"`
	MojangAddress      string        `env:"MOJANG_ADDRESS" envDefault:"https://api.mojang.com"`
	MojangTimeout      time.Duration `env:"MOJANG_TIMEOUT" envDefault:"10s"`
	ProfileCacheTTL    time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"1h"`
	FeedCacheTTL       time.Duration `env:"FEED_CACHE_TTL" envDefault:"1h"`
	JWTSecret          string        `env:"JWT_SECRET" envDefault:"dontexposethis"`
	JWTTTL             time.Duration `env:"JWT_TTL" envDefault:"24h"`
	HashKey            string        `env:"HASH_KEY"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	address := flag.String("a", cfg.Address, "{Host:port} for server")
	loglevel := flag.String("l", cfg.LogLevel, "Log level for server")
	databaseConnection := flag.String("d", cfg.DatabaseConnection, "Database connection string")
	feedKey := flag.String("k", cfg.FeedKey, "Shared key the game server polls the feed with")
	mojangAddress := flag.String("m", cfg.MojangAddress, "Mojang profile API address")
	feedCacheTTL := flag.Duration("f", cfg.FeedCacheTTL, "TTL for the cached command feed")
	profileCacheTTL := flag.Duration("p", cfg.ProfileCacheTTL, "TTL for cached Mojang profiles")
	jwtTTL := flag.Duration("t", cfg.JWTTTL, "TTL for JWT token(e.g. 24h; 30m )")

	flag.Parse()

	cfg.Address = *address
	cfg.LogLevel = *loglevel
	cfg.DatabaseConnection = *databaseConnection
	cfg.FeedKey = *feedKey
	cfg.MojangAddress = *mojangAddress
	cfg.FeedCacheTTL = *feedCacheTTL
	cfg.ProfileCacheTTL = *profileCacheTTL
	cfg.JWTTTL = *jwtTTL

	if cfg.FeedKey == "" {
		return nil, fmt.Errorf("ENV WM_KEY must be set")
	}

	return cfg, nil
}
