// Package config loads coordinator configuration.
//
// Environment-driven settings are parsed into tagged structs with
// github.com/caarlos0/env, after an optional .env file has been loaded
// through github.com/joho/godotenv. Each struct type is parsed once per
// process and served from a cache afterwards.
//
// Deployment files (trusted origins, site patterns) are loaded from YAML
// with LoadFile.
package config
