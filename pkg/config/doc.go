// Package config loads application configuration from environment variables
// into tagged structs.
//
// It combines github.com/joho/godotenv, which reads an optional .env file,
// with github.com/caarlos0/env/v11, which parses `env` and `envDefault` tags.
// Each configuration type is parsed once per process and cached.
//
// # Usage
//
//	var cfg keyring.Config
//	config.MustLoad(&cfg)
//
// # Error Handling
//
//   - ErrParsingConfig  – a variable is missing or has the wrong type
//   - ErrLoadingEnvFile – an explicitly named .env file could not be read
//   - ErrNilPointer     – nil pointer passed to Load
//
// Tests that change the environment call Reset before loading again.
package config
