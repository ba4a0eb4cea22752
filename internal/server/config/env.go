package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/skillkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variables recognized by parseEnv.
const (
	EnvHTTPAddr        = "SKILLS_HTTP_ADDR"
	EnvAPIPrefix       = "SKILLS_API_PREFIX"
	EnvDatabaseDSN     = "SKILLS_DATABASE_DSN"
	EnvSecretKey       = "SKILLS_SECRET_KEY"
	EnvTokenValidity   = "SKILLS_TOKEN_VALIDITY"
	EnvBcryptCost      = "SKILLS_BCRYPT_COST"
	EnvShutdownTimeout = "SKILLS_SHUTDOWN_TIMEOUT"
)

// parseEnv overlays SKILLS_* environment variables onto config. The dotenv
// file named by -env (default ".env") is loaded first when it exists;
// variables already present in the process environment take precedence
// over the file. Malformed numeric or duration values panic.
func parseEnv(config *Config) {
	if err := godotenv.Load(flagx.EnvFileFlags()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		config.EndpointAddrHTTP = v
	}
	if v, ok := os.LookupEnv(EnvAPIPrefix); ok {
		config.APIPrefix = v
	}
	if v, ok := os.LookupEnv(EnvDatabaseDSN); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv(EnvSecretKey); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv(EnvTokenValidity); ok {
		config.TokenValidityDuration = mustDuration(v)
	}
	if v, ok := os.LookupEnv(EnvBcryptCost); ok {
		cost, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.BcryptCost = cost
	}
	if v, ok := os.LookupEnv(EnvShutdownTimeout); ok {
		config.ShutdownTimeout = mustDuration(v)
	}
}

func mustDuration(v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	return d
}
