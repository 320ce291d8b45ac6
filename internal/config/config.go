// Package config loads the hdag TOML configuration file.
//
// Every key is optional. A file that sets only some keys gets defaults for
// the rest:
//
//	[log]
//	level = "info"           # debug, info, warn, error
//
//	[cache]
//	backend = "file"         # none, file, redis
//	dir = "~/.cache/hdag"
//	redis_addr = "localhost:6379"
//	namespace = ""           # key prefix when datasets share a backend
//	ttl = "168h"
//
//	[build]
//	collapse = false
//	workers = 0              # 0 means one per CPU
//
//	[serve]
//	addr = ":8080"
package config

import "time"

// Config is the decoded configuration file.
type Config struct {
	Log   LogConfig   `toml:"log"`
	Cache CacheConfig `toml:"cache"`
	Build BuildConfig `toml:"build"`
	Serve ServeConfig `toml:"serve"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	Namespace     string        `toml:"namespace"`
	TTL           time.Duration `toml:"ttl"`
}

type BuildConfig struct {
	Collapse bool `toml:"collapse"`
	Workers  int  `toml:"workers"`
}

type ServeConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	// MaxBodyBytes bounds POST /merge request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}
