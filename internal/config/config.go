// Package config loads the run configuration from the environment.
//
// Values come from the process environment, optionally seeded from an env
// file. The Config is built once at startup and handed down explicitly; no
// other package reads the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when it exists; its absence is not an error.
const DefaultEnvFile = ".env"

// SourceConfig locates the raw export files.
type SourceConfig struct {
	DataDir string `env:"DATA_PATH" validate:"required"`
}

// ArtifactConfig locates the combined JSON artifact.
type ArtifactConfig struct {
	JSONFile string `env:"JSON_FILE_PATH" validate:"required"`
}

// StoreConfig selects the document store. The URL scheme picks the backend.
type StoreConfig struct {
	URL        string `env:"MONGO_URL" validate:"required,store_url"`
	Database   string `env:"MONGO_DATABASE_NAME" validate:"required"`
	Collection string `env:"MONGO_COLLECTION_NAME" validate:"required"`
}

// ReportConfig locates the CSV report.
type ReportConfig struct {
	ResultFile string `env:"RESULT_FILE_PATH" validate:"required"`
}

// CollectConfig controls the stats collection command.
type CollectConfig struct {
	OutFile string `env:"STATS_FILE_PATH" validate:"required"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"`
	Format string `env:"LOG_FORMAT" validate:"omitempty,oneof=console json"`
}

// Config is the full run configuration.
type Config struct {
	Source   SourceConfig
	Artifact ArtifactConfig
	Store    StoreConfig
	Report   ReportConfig
	Collect  CollectConfig
	Log      LogConfig
}

// Section names a group of settings a command depends on.
type Section int

const (
	SectionSource Section = iota
	SectionArtifact
	SectionStore
	SectionReport
	SectionCollect
	SectionStoreURL // connection URL only
)

type storeURL struct {
	URL string `env:"MONGO_URL" validate:"required,store_url"`
}

// Store URL schemes understood by the loader.
var storeSchemes = map[string]bool{
	"mongodb":     true,
	"mongodb+srv": true,
	"postgres":    true,
	"postgresql":  true,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	_ = v.RegisterValidation("store_url", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && storeSchemes[strings.ToLower(u.Scheme)] && u.Host != ""
	})
	return v
}

// Load reads envFile (if any) into the process environment and builds a Config.
// Variables already set in the process take precedence over the file. An empty
// envFile means DefaultEnvFile, which may be absent; any other file must exist.
func Load(envFile string) (*Config, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}

	if _, err := os.Stat(envFile); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return FromLookup(os.LookupEnv), nil
		}
		return nil, &Error{Message: fmt.Sprintf("env file not found at path %s", envFile), Cause: err}
	}
	if err := godotenv.Load(envFile); err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to load env file %s", envFile), Cause: err}
	}

	return FromLookup(os.LookupEnv), nil
}

// FromLookup builds a Config from a variable lookup function.
func FromLookup(lookup func(string) (string, bool)) *Config {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		Source:   SourceConfig{DataDir: get("DATA_PATH")},
		Artifact: ArtifactConfig{JSONFile: get("JSON_FILE_PATH")},
		Store: StoreConfig{
			URL:        get("MONGO_URL"),
			Database:   get("MONGO_DATABASE_NAME"),
			Collection: get("MONGO_COLLECTION_NAME"),
		},
		Report:  ReportConfig{ResultFile: get("RESULT_FILE_PATH")},
		Collect: CollectConfig{OutFile: get("STATS_FILE_PATH")},
		Log: LogConfig{
			Level:  strings.ToLower(get("LOG_LEVEL")),
			Format: strings.ToLower(get("LOG_FORMAT")),
		},
	}
	if cfg.Collect.OutFile == "" && cfg.Source.DataDir != "" {
		cfg.Collect.OutFile = filepath.Join(cfg.Source.DataDir, "stats.txt")
	}
	return cfg
}

// Require validates the given sections and the logging settings. Every missing
// variable is reported in a single *MissingError.
func (c *Config) Require(sections ...Section) error {
	targets := []any{&c.Log}
	for _, s := range sections {
		switch s {
		case SectionSource:
			targets = append(targets, &c.Source)
		case SectionArtifact:
			targets = append(targets, &c.Artifact)
		case SectionStore:
			targets = append(targets, &c.Store)
		case SectionReport:
			targets = append(targets, &c.Report)
		case SectionCollect:
			targets = append(targets, &c.Collect)
		case SectionStoreURL:
			targets = append(targets, &storeURL{URL: c.Store.URL})
		default:
			return &Error{Message: fmt.Sprintf("unknown config section %d", s)}
		}
	}

	missing := &MissingError{}
	var invalid []string
	for _, target := range targets {
		err := validate.Struct(target)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &Error{Message: "failed to validate configuration", Cause: err}
		}
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				missing.Vars = append(missing.Vars, fe.Field())
				continue
			}
			invalid = append(invalid, describe(fe))
		}
	}

	if len(missing.Vars) > 0 {
		return missing
	}
	if len(invalid) > 0 {
		return &Error{Message: strings.Join(invalid, "; ")}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "store_url":
		return fmt.Sprintf("%s must be a mongodb://, mongodb+srv://, postgres:// or postgresql:// URL", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
