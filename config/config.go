// Package config loads the settings of a table build from a YAML file and the
// environment. Environment variables use the prefix ACS, e.g. ACS_FETCH_DIR overrides
// fetch.dir.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sif/acs/assemble"
	"github.com/go-sif/acs/fetch"
	"github.com/go-sif/acs/source"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes the environment variables read by Load
const EnvPrefix = "ACS"

// Config represents the complete configuration of a table build
type Config struct {
	BTime    string         `yaml:"btime" envconfig:"BTIME"`
	Year     int            `yaml:"year" envconfig:"YEAR" validate:"required,min=2005,max=2100"`
	Release  int            `yaml:"release" envconfig:"RELEASE" validate:"required,oneof=1 3 5"`
	Sources  SourcesConfig  `yaml:"sources" envconfig:"SOURCES"`
	Fetch    FetchConfig    `yaml:"fetch" envconfig:"FETCH"`
	Assembly AssemblyConfig `yaml:"assembly" envconfig:"ASSEMBLY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// SourcesConfig locates the inputs of a build
type SourcesConfig struct {
	Root         string `yaml:"root" envconfig:"ROOT"`
	SmallAreaURL string `yaml:"small_area_url" envconfig:"SMALL_AREA_URL" validate:"required_without=LargeAreaURL"`
	LargeAreaURL string `yaml:"large_area_url" envconfig:"LARGE_AREA_URL"`
	States       string `yaml:"states" envconfig:"STATES" validate:"required"`
	Sequence     string `yaml:"sequence" envconfig:"SEQUENCE" validate:"required"`
	// Geofile locates each state's geofile; {root} and {stusab} are substituted
	Geofile string `yaml:"geofile" envconfig:"GEOFILE"`
}

// FetchConfig configures the download cache
type FetchConfig struct {
	Dir               string        `yaml:"dir" envconfig:"DIR" validate:"required"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	UserAgent         string        `yaml:"user_agent" envconfig:"USER_AGENT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gte=0"`
	Burst             int           `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
	Concurrency       int           `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"gte=0,lte=64"`
}

// AssemblyConfig configures row assembly
type AssemblyConfig struct {
	LimitedRun           bool `yaml:"limited_run" envconfig:"LIMITED_RUN"`
	RowCap               int  `yaml:"row_cap" envconfig:"ROW_CAP" validate:"gte=0"`
	LimitedJurisdictions int  `yaml:"limited_jurisdictions" envconfig:"LIMITED_JURISDICTIONS" validate:"gte=0"`
	Workers              int  `yaml:"workers" envconfig:"WORKERS" validate:"gte=0,lte=64"`
	FailFast             bool `yaml:"fail_fast" envconfig:"FAIL_FAST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=trace debug info warn warning error fatal TRACE DEBUG INFO WARN WARNING ERROR FATAL"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"omitempty,oneof=text json"`
}

func (c *Config) defaults() {
	if c.Sources.Root == "" {
		c.Sources.Root = fmt.Sprintf("https://www2.census.gov/programs-surveys/acs/summary_file/%d", c.Year)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Assembly.RowCap == 0 {
		c.Assembly.RowCap = 10000
	}
	if c.Assembly.LimitedJurisdictions == 0 {
		c.Assembly.LimitedJurisdictions = 3
	}
}

// Load reads the YAML file at path, if path is not empty, then applies environment
// overrides and defaults, and validates the result
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if cfg.BTime != "" {
		year, release, err := ParseBTime(cfg.BTime)
		if err != nil {
			return nil, err
		}
		if cfg.Year == 0 {
			cfg.Year = year
		}
		if cfg.Release == 0 {
			cfg.Release = release
		}
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

var btimePattern = regexp.MustCompile(`^P(\d+)YE(\d{4})`)

// ParseBTime extracts the year and release from a bundle time such as P5YE2014, a
// five year release ending in 2014
func ParseBTime(btime string) (year int, release int, err error) {
	m := btimePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(btime)))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid btime %q", btime)
	}
	release, _ = strconv.Atoi(m[1])
	year, _ = strconv.Atoi(m[2])
	return year, release, nil
}

// SourceConfig returns the file pair generation settings
func (c *Config) SourceConfig() source.Config {
	return source.Config{
		Year:         c.Year,
		Release:      c.Release,
		Root:         c.Sources.Root,
		SmallAreaURL: c.Sources.SmallAreaURL,
		LargeAreaURL: c.Sources.LargeAreaURL,
	}
}

// GeofileURL returns the location of the geofile of a state, or "" if none is configured
func (c *Config) GeofileURL(stusab string) string {
	if c.Sources.Geofile == "" {
		return ""
	}
	return strings.NewReplacer(
		"{root}", c.Sources.Root,
		"{stusab}", strings.ToLower(stusab),
		"{year}", strconv.Itoa(c.Year),
		"{release}", strconv.Itoa(c.Release),
	).Replace(c.Sources.Geofile)
}

// FetchConfig returns the download cache settings
func (c *Config) FetchConfig(logger *slog.Logger) fetch.Config {
	return fetch.Config{
		Dir:               c.Fetch.Dir,
		Timeout:           c.Fetch.Timeout,
		UserAgent:         c.Fetch.UserAgent,
		RequestsPerSecond: c.Fetch.RequestsPerSecond,
		Burst:             c.Fetch.Burst,
		Concurrency:       c.Fetch.Concurrency,
		Logger:            logger,
	}
}

// AssembleConfig returns the row assembly settings
func (c *Config) AssembleConfig(logger *slog.Logger) assemble.Config {
	return assemble.Config{
		Source:               c.SourceConfig(),
		LimitedRun:           c.Assembly.LimitedRun,
		RowCap:               c.Assembly.RowCap,
		LimitedJurisdictions: c.Assembly.LimitedJurisdictions,
		Workers:              c.Assembly.Workers,
		FailFast:             c.Assembly.FailFast,
		Logger:               logger,
	}
}
