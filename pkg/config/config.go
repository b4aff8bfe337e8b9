// Package config loads deplist settings from a TOML file and the
// environment.
//
// A configuration file looks like:
//
//	repository = "repo.toml"
//
//	[options]
//	blocks = "error"
//	override_masks = "licenses"
//
//	[cache]
//	dir = "~/.cache/deplist"
//	ttl = "12h"
//
//	[server]
//	addr = ":8080"
//
//	[archive]
//	mongo_uri = "mongodb://localhost:27017"
//
// Environment variables override the file, and a .env file in the working
// directory is read first (see [LoadEnv]):
//
//	DEPLIST_REPOSITORY   repository
//	DEPLIST_CACHE_DIR    cache.dir
//	DEPLIST_CACHE_URL    cache.url
//	DEPLIST_ADDR         server.addr
//	DEPLIST_ARCHIVE_DIR  archive.dir
//	DEPLIST_MONGO_URI    archive.mongo_uri
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/deplist/pkg/deplist"
	dlerrors "github.com/matzehuels/deplist/pkg/errors"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "deplist.toml"

// Config is the merged configuration.
type Config struct {
	// Repository is the path of the repository TOML file.
	Repository string            `toml:"repository"`
	Options    map[string]string `toml:"options"`
	Cache      CacheConfig       `toml:"cache"`
	Server     ServerConfig      `toml:"server"`
	Archive    ArchiveConfig     `toml:"archive"`
}

// CacheConfig selects the plan cache. URL wins over Dir.
type CacheConfig struct {
	Dir    string   `toml:"dir"`
	URL    string   `toml:"url"`
	TTL    Duration `toml:"ttl"`
	Prefix string   `toml:"prefix"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	// Timeout bounds a single request.
	Timeout Duration `toml:"timeout"`
}

// ArchiveConfig selects where resolved plans are kept. MongoURI wins over
// Dir; with neither set plans are not archived.
type ArchiveConfig struct {
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Duration is a time.Duration written as "90s" or "12h" in TOML.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Options: map[string]string{},
		Cache: CacheConfig{
			Dir:    defaultCacheDir(),
			TTL:    Duration{24 * time.Hour},
			Prefix: "deplist:",
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Timeout: Duration{30 * time.Second},
		},
		Archive: ArchiveConfig{Database: "deplist"},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "deplist")
}

// Load reads path over the defaults and applies the environment. A missing
// file is not an error when path is the default file name.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if err := dlerrors.ValidatePath(path); err != nil {
		return Config{}, err
	}
	_, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case errors.Is(err, fs.ErrNotExist):
		return Config{}, dlerrors.Wrap(dlerrors.ErrCodeFileNotFound, err, "config file %s", path)
	case err != nil:
		return Config{}, dlerrors.Wrap(dlerrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnv reads .env style files into the process environment without
// replacing variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return dlerrors.Wrap(dlerrors.ErrCodeInvalidConfig, err, "load %s", f)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	for env, dst := range map[string]*string{
		"DEPLIST_REPOSITORY":  &c.Repository,
		"DEPLIST_CACHE_DIR":   &c.Cache.Dir,
		"DEPLIST_CACHE_URL":   &c.Cache.URL,
		"DEPLIST_ADDR":        &c.Server.Addr,
		"DEPLIST_ARCHIVE_DIR": &c.Archive.Dir,
		"DEPLIST_MONGO_URI":   &c.Archive.MongoURI,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}
}

// Validate checks the parts that would otherwise fail late.
func (c Config) Validate() error {
	if c.Cache.URL != "" {
		if err := dlerrors.ValidateURL(c.Cache.URL); err != nil {
			return err
		}
	}
	if c.Cache.TTL.Duration < 0 {
		return dlerrors.New(dlerrors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	_, err := c.ResolverOptions()
	return err
}

// ResolverOptions parses the [options] table.
func (c Config) ResolverOptions() (deplist.Options, error) {
	return deplist.ParseOptions(c.Options)
}
