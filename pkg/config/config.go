// Package config loads and validates passrank configuration files.
//
// A configuration file is TOML or YAML, chosen by extension, and may set any
// subset of the fields below. Unset fields keep the values from [Default].
//
//	[analysis]
//	max_level = 100
//	checkpoints = [2, 3, 5, 10, 20, 50]
//	top_movers = 20
//
//	[relation]
//	free_passage = ["visa free", "visa on arrival", "eta"]
//	not_applicable = "-1"
//
//	[report]
//	output = "CountryRating.md"
//	console_top = 10
//	graph_top = 25
//
//	[fetch]
//	cache = true
//	cache_dir = ""     # default ~/.cache/passrank
//	cache_ttl = "24h"
//	attempts = 3
//
// [Discover] decides which file to load: an explicit path, then the
// PASSRANK_CONFIG environment variable, then passrank.toml in the working
// directory. With none of those present the defaults are used.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/passrank/pkg/compare"
	perrors "github.com/matzehuels/passrank/pkg/errors"
	"github.com/matzehuels/passrank/pkg/httputil"
	pio "github.com/matzehuels/passrank/pkg/io"
	"github.com/matzehuels/passrank/pkg/propagate"
	"github.com/matzehuels/passrank/pkg/relation"
)

const (
	// EnvConfig names the environment variable holding a config file path.
	EnvConfig = "PASSRANK_CONFIG"

	// DefaultFile is looked up in the working directory by [Discover].
	DefaultFile = "passrank.toml"

	// DefaultOutput is the default Markdown report path.
	DefaultOutput = "CountryRating.md"

	// DefaultInput is the default relation CSV path.
	DefaultInput = "passport-index-tidy.csv"

	DefaultConsoleTop = 10
	DefaultGraphTop   = 25
)

// Config is the full passrank configuration.
type Config struct {
	Analysis Analysis `toml:"analysis" yaml:"analysis"`
	Relation Relation `toml:"relation" yaml:"relation"`
	Report   Report   `toml:"report" yaml:"report"`
	Fetch    Fetch    `toml:"fetch" yaml:"fetch"`
}

// Analysis configures propagation and comparison.
type Analysis struct {
	MaxLevel int `toml:"max_level" yaml:"max_level" validate:"min=1,max=10000"`

	// Checkpoints are the intermediate levels retained for the report.
	// Nil selects the engine defaults below MaxLevel.
	Checkpoints []int `toml:"checkpoints,omitempty" yaml:"checkpoints,omitempty" validate:"omitempty,dive,min=1"`

	TopMovers int `toml:"top_movers" yaml:"top_movers" validate:"min=1"`
}

// Relation configures CSV columns and the free-passage predicate.
type Relation struct {
	FreePassage      []string `toml:"free_passage" yaml:"free_passage" validate:"required,min=1,dive,required"`
	NotApplicable    string   `toml:"not_applicable" yaml:"not_applicable" validate:"required"`
	SourceColumn     string   `toml:"source_column" yaml:"source_column" validate:"required"`
	TargetColumn     string   `toml:"target_column" yaml:"target_column" validate:"required"`
	ClassifierColumn string   `toml:"classifier_column" yaml:"classifier_column" validate:"required"`
}

// Report configures the outputs of the rank command.
type Report struct {
	Output     string `toml:"output" yaml:"output" validate:"required"`
	ConsoleTop int    `toml:"console_top" yaml:"console_top" validate:"min=0"`
	GraphTop   int    `toml:"graph_top" yaml:"graph_top" validate:"min=1,max=500"`
}

// Fetch configures downloads when the input is an http(s) URL.
type Fetch struct {
	Cache    bool          `toml:"cache" yaml:"cache"`
	CacheDir string        `toml:"cache_dir" yaml:"cache_dir"`
	CacheTTL time.Duration `toml:"cache_ttl" yaml:"cache_ttl" validate:"min=0"`
	Attempts int           `toml:"attempts" yaml:"attempts" validate:"min=1,max=10"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Analysis: Analysis{
			MaxLevel:  propagate.DefaultMaxLevel,
			TopMovers: compare.DefaultTopMovers,
		},
		Relation: Relation{
			FreePassage:      append([]string(nil), relation.DefaultFreePassageLabels...),
			NotApplicable:    relation.NotApplicable,
			SourceColumn:     pio.DefaultSourceColumn,
			TargetColumn:     pio.DefaultTargetColumn,
			ClassifierColumn: pio.DefaultClassifierColumn,
		},
		Report: Report{
			Output:     DefaultOutput,
			ConsoleTop: DefaultConsoleTop,
			GraphTop:   DefaultGraphTop,
		},
		Fetch: Fetch{
			Cache:    true,
			CacheTTL: httputil.DefaultTTL,
			Attempts: httputil.DefaultAttempts,
		},
	}
}

// Load reads the config file at path over the defaults and validates it.
func Load(path string) (*Config, error) {
	if err := perrors.ValidateExtension(path, ".toml", ".yaml", ".yml"); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover loads the config selected by explicit, $PASSRANK_CONFIG or
// ./passrank.toml, in that order. It returns the path it loaded, or "" when
// it fell back to [Default].
func Discover(explicit string) (*Config, string, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path == "" {
		return Default(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Classifier returns the free-passage predicate configured in c.
func (c *Config) Classifier() relation.Classifier {
	return relation.Classifier{
		Labels:   c.Relation.FreePassage,
		Excluded: c.Relation.NotApplicable,
	}
}

// CSVOptions returns the configured CSV column names.
func (c *Config) CSVOptions() pio.CSVOptions {
	return pio.CSVOptions{
		SourceColumn:     c.Relation.SourceColumn,
		TargetColumn:     c.Relation.TargetColumn,
		ClassifierColumn: c.Relation.ClassifierColumn,
	}
}

// PropagateOptions returns the engine options configured in c.
func (c *Config) PropagateOptions() propagate.Options {
	return propagate.Options{
		MaxLevel:    c.Analysis.MaxLevel,
		Checkpoints: c.Analysis.Checkpoints,
	}
}

// CompareOptions returns the comparison options configured in c.
func (c *Config) CompareOptions() compare.Options {
	return compare.Options{TopMovers: c.Analysis.TopMovers}
}

// Fetcher returns a dataset fetcher configured by c. When the cache directory
// cannot be created the fetcher runs uncached and a warning is logged.
func (c *Config) Fetcher(logger *log.Logger) *httputil.Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	var cache *httputil.Cache
	if c.Fetch.Cache {
		var err error
		cache, err = httputil.NewCache(c.Fetch.CacheDir, c.Fetch.CacheTTL)
		if err != nil {
			logger.Warn("download cache disabled", "err", err)
		}
	}
	f := httputil.NewFetcher(cache, logger)
	f.Attempts = c.Fetch.Attempts
	return f
}

// tagName reports fields by their TOML key in validation errors.
func tagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(tagName)
	return v
}()
