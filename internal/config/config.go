package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/pip-bootstrap/internal/logger"
)

// Config holds the settings of one bootstrap run.
type Config struct {
	// Python is the interpreter used as `<python> -m pip`.
	Python string `yaml:"python"`
	// Requirements is the path to the dependency manifest.
	Requirements string `yaml:"requirements"`
	// NoCache makes the dependency install bypass pip's cache.
	NoCache bool `yaml:"no_cache"`
	// CoreTools are upgraded before the dependencies are installed.
	CoreTools []string `yaml:"core_tools,flow"`
	// IndexURL overrides pip's package index for both steps.
	IndexURL string `yaml:"index_url,omitempty"`
	// Timeout bounds the whole run.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// tomlConfig mirrors Config with the timeout kept as text.
type tomlConfig struct {
	Python       string   `toml:"python"`
	Requirements string   `toml:"requirements"`
	NoCache      bool     `toml:"no_cache"`
	CoreTools    []string `toml:"core_tools"`
	IndexURL     string   `toml:"index_url,omitempty"`
	Timeout      string   `toml:"timeout"`
	LogLevel     string   `toml:"log_level"`
}

const (
	// DefaultConfigFilename is the settings file looked up when none is given.
	DefaultConfigFilename = "pip-bootstrap.yaml"

	// DefaultRequirements is the manifest installed when none is given.
	DefaultRequirements = "requirements.txt"

	// DefaultTimeout bounds a whole run.
	DefaultTimeout = 30 * time.Minute

	// DefaultLogLevel is used when log_level is empty.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is used when writing settings files.
	DefaultFilePermissions = 0o644
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errEmptyCoreTool is returned for a blank entry in core_tools.
	errEmptyCoreTool = errors.New("core tool name must not be empty")
	// errUnknownLogLevel is returned for an unsupported log_level.
	errUnknownLogLevel = errors.New("unknown log level")
	// errInvalidIndexURL is returned when index_url is not an absolute URL.
	errInvalidIndexURL = errors.New("index url must be absolute")
)

// DefaultCoreTools returns the packaging tools upgraded before every install.
func DefaultCoreTools() []string {
	return []string{"pip", "setuptools", "wheel"}
}

// DefaultPython returns the interpreter name for the current platform.
func DefaultPython() string {
	if runtime.GOOS == "windows" {
		// exec resolves python.exe through PATHEXT.
		return "python"
	}

	return "python3"
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	//nolint:errcheck // An empty configuration always validates.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from path and validates it.
// A missing file is reported as an error wrapping os.ErrNotExist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg, err := decode(path, contents)
	if err != nil {
		return nil, fmt.Errorf("decode settings %s: %w", path, err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOptional behaves like Load but returns defaults when the file is missing.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := encode(path, cfg)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the fields that pip would not check for us.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	cfg.Python = strings.TrimSpace(cfg.Python)
	if cfg.Python == "" {
		cfg.Python = DefaultPython()
	}

	cfg.Requirements = strings.TrimSpace(cfg.Requirements)
	if cfg.Requirements == "" {
		cfg.Requirements = DefaultRequirements
	}

	if len(cfg.CoreTools) == 0 {
		cfg.CoreTools = DefaultCoreTools()
	}

	for i, tool := range cfg.CoreTools {
		tool = strings.TrimSpace(tool)
		if tool == "" {
			return fmt.Errorf("core_tools[%d]: %w", i, errEmptyCoreTool)
		}

		cfg.CoreTools[i] = tool
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	if cfg.IndexURL == "" {
		return nil
	}

	u, err := url.ParseRequestURI(cfg.IndexURL)
	if err != nil {
		return fmt.Errorf("invalid index url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidIndexURL, cfg.IndexURL)
	}

	return nil
}

// RedactURL hides the password of a URL with credentials. Values that are not
// such URLs are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil || u.Host == "" {
		return raw
	}

	if _, hasPassword := u.User.Password(); !hasPassword {
		// A bare user part usually holds a token.
		u.User = url.User("xxxxx")

		return u.String()
	}

	return u.Redacted()
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decode(path string, contents []byte) (*Config, error) {
	if !isTOML(path) {
		var cfg Config
		if err := yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	var doc tomlConfig
	if _, err := toml.Decode(string(contents), &doc); err != nil {
		return nil, err
	}

	cfg := &Config{
		Python:       doc.Python,
		Requirements: doc.Requirements,
		NoCache:      doc.NoCache,
		CoreTools:    doc.CoreTools,
		IndexURL:     doc.IndexURL,
		LogLevel:     doc.LogLevel,
	}

	if doc.Timeout != "" {
		timeout, err := time.ParseDuration(doc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}

		cfg.Timeout = timeout
	}

	return cfg, nil
}

func encode(path string, cfg *Config) ([]byte, error) {
	if !isTOML(path) {
		return yaml.Marshal(cfg)
	}

	doc := tomlConfig{
		Python:       cfg.Python,
		Requirements: cfg.Requirements,
		NoCache:      cfg.NoCache,
		CoreTools:    cfg.CoreTools,
		IndexURL:     cfg.IndexURL,
		Timeout:      cfg.Timeout.String(),
		LogLevel:     cfg.LogLevel,
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
