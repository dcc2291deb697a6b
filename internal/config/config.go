// Package config loads the service configuration once at startup from an
// optional catalogapi.toml, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shipq/catalogapi/dburl"
	"github.com/shipq/catalogapi/doughnuts"
	"github.com/shipq/catalogapi/logging"
)

// ConfigFilename is the name of the optional config file.
const ConfigFilename = "catalogapi.toml"

// DefaultDoughnutsSource is the doughnut document read when none is configured.
const DefaultDoughnutsSource = "src/data/doughnuts.json"

// Config holds the complete service configuration.
type Config struct {
	// ConfigDir is the directory catalogapi.toml and .env were looked up in.
	ConfigDir string

	Server    ServerConfig
	DB        dburl.Parts
	Log       logging.Config
	Doughnuts DoughnutsConfig
}

// ServerConfig holds the [server] section.
type ServerConfig struct {
	Addr string
}

// DoughnutsConfig holds the [doughnuts] section.
type DoughnutsConfig struct {
	// Source is a file path or an s3://bucket/key location.
	Source string
	S3     doughnuts.S3Config
}

// env maps config keys to the environment variables that override them.
var env = map[string][]string{
	"server.addr":          {"LISTEN_ADDR"},
	"db.dialect":           {"DB_DIALECT"},
	"db.host":              {"DB_HOST"},
	"db.port":              {"DB_PORT"},
	"db.user":              {"DB_USER"},
	"db.password":          {"DB_PASSWORD"},
	"db.name":              {"DB_DB"},
	"log.level":            {"LOG_LEVEL"},
	"log.file":             {"LOG_FILE"},
	"log.format":           {"LOG_FORMAT"},
	"log.stdout":           {"LOG_STDOUT"},
	"doughnuts.source":     {"DOUGHNUTS_SOURCE"},
	"doughnuts.region":     {"DOUGHNUTS_S3_REGION", "AWS_REGION"},
	"doughnuts.endpoint":   {"DOUGHNUTS_S3_ENDPOINT"},
	"doughnuts.access_key": {"AWS_ACCESS_KEY_ID"},
	"doughnuts.secret_key": {"AWS_SECRET_ACCESS_KEY"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("db.dialect", dburl.DialectPostgres)
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.file", logging.DefaultFile)
	v.SetDefault("log.format", string(logging.FormatText))
	v.SetDefault("log.stdout", true)
	v.SetDefault("doughnuts.source", DefaultDoughnutsSource)
	v.SetDefault("doughnuts.region", "us-east-1")
}

// Load builds the configuration from dir. An empty dir means the nearest
// ancestor of the working directory holding catalogapi.toml, or the working
// directory itself. Both catalogapi.toml and .env are optional;
// environment variables win over the file, and DATABASE_URL fills in the
// database when [db] names no host or database.
func Load(dir string) (*Config, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		if dir, err = FindConfigDir(cwd); err != nil {
			return nil, err
		}
	}

	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	for key, names := range env {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	iniPath := filepath.Join(dir, ConfigFilename)
	if _, err := os.Stat(iniPath); err == nil {
		v.SetConfigFile(iniPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", ConfigFilename, err)
		}
	}

	cfg := &Config{
		ConfigDir: dir,
		Server:    ServerConfig{Addr: v.GetString("server.addr")},
		DB: dburl.Parts{
			Dialect:  v.GetString("db.dialect"),
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
		},
		Log: logging.Config{
			Level:  v.GetString("log.level"),
			File:   v.GetString("log.file"),
			Format: logging.Format(v.GetString("log.format")),
			Stdout: v.GetBool("log.stdout"),
		},
		Doughnuts: DoughnutsConfig{
			Source: v.GetString("doughnuts.source"),
			S3: doughnuts.S3Config{
				Region:          v.GetString("doughnuts.region"),
				Endpoint:        v.GetString("doughnuts.endpoint"),
				AccessKeyID:     v.GetString("doughnuts.access_key"),
				SecretAccessKey: v.GetString("doughnuts.secret_key"),
			},
		},
	}

	if cfg.DB.Host == "" && cfg.DB.Name == "" {
		if u := os.Getenv("DATABASE_URL"); u != "" {
			parts, err := dburl.Parse(u)
			if err != nil {
				return nil, fmt.Errorf("DATABASE_URL: %w", err)
			}
			cfg.DB = parts
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise only fail at first use.
// Missing connection values are not an error here: they surface per
// request as connection failures.
func (c *Config) Validate() error {
	var errs []error

	dialect, err := dburl.NormalizeDialect(c.DB.Dialect)
	if err != nil {
		errs = append(errs, fmt.Errorf("db.dialect: %w", err))
	} else {
		c.DB.Dialect = dialect
	}

	if c.DB.Port != "" {
		if _, err := strconv.Atoi(c.DB.Port); err != nil {
			errs = append(errs, fmt.Errorf("db.port: %q is not a number", c.DB.Port))
		}
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	switch c.Log.Format {
	case logging.FormatText, logging.FormatJSON, logging.FormatPretty:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr: must not be empty"))
	}
	if c.Doughnuts.Source == "" {
		errs = append(errs, errors.New("doughnuts.source: must not be empty"))
	}

	return errors.Join(errs...)
}
