package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/chartloom-cli/internal/ai"
	"github.com/KaramelBytes/chartloom-cli/internal/utils"
)

// EnvPrefix prefixes every environment override, e.g. CHARTLOOM_API_KEY.
const EnvPrefix = "CHARTLOOM"

// Backend names accepted by cache_backend and history_backend.
var (
	CacheBackends   = []string{"memory", "redis", "none"}
	HistoryBackends = []string{"file", "sqlite", "none"}
)

// Global configuration structure.
type Global struct {
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Stream      bool    `mapstructure:"stream" yaml:"stream"`
	SampleRows  int     `mapstructure:"sample_rows" yaml:"sample_rows"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Local and Google runtimes
	OllamaHost   string `mapstructure:"ollama_host" yaml:"ollama_host"`
	GeminiAPIKey string `mapstructure:"gemini_api_key" yaml:"gemini_api_key"`

	// Model catalog overrides merged at startup
	ModelsCatalogFile string `mapstructure:"models_catalog_file" yaml:"models_catalog_file"`

	CacheBackend  string `mapstructure:"cache_backend" yaml:"cache_backend"`
	CacheTTLSec   int    `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`

	HistoryBackend string `mapstructure:"history_backend" yaml:"history_backend"`
	HistoryDir     string `mapstructure:"history_dir" yaml:"history_dir"`
	MapsDir        string `mapstructure:"maps_dir" yaml:"maps_dir"`

	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

var secretKeys = []string{"api_key", "gemini_api_key", "redis_password"}

func defaults() map[string]any {
	return map[string]any{
		"api_key":             "",
		"provider":            ai.ProviderDeepSeek,
		"base_url":            "",
		"model":               "",
		"temperature":         0.2,
		"max_tokens":          512,
		"stream":              false,
		"sample_rows":         ai.MaxPromptSamples,
		"http_timeout_sec":    60,
		"retry_max_attempts":  3,
		"retry_base_delay_ms": 500,
		"retry_max_delay_ms":  4000,
		"ollama_host":         ai.DefaultBaseURL(ai.ProviderOllama),
		"gemini_api_key":      "",
		"models_catalog_file": "",
		"cache_backend":       "memory",
		"cache_ttl_sec":       86400,
		"redis_addr":          "127.0.0.1:6379",
		"redis_password":      "",
		"redis_db":            0,
		"history_backend":     "file",
		"history_dir":         "",
		"maps_dir":            "",
		"log_level":           "info",
		"listen_addr":         "127.0.0.1:8080",
	}
}

// Dir returns ~/.chartloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".chartloom"), nil
}

// Path returns cfgFile, or ~/.chartloom/config.yaml when it is empty.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return utils.ExpandHome(cfgFile), nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}

	path, err := Path(cfgFile)
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; an explicit one must exist.
		if _, statErr := os.Stat(path); cfgFile != "" || !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.resolvePaths(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &c, nil
}

// Default returns the built-in configuration.
func Default() *Global {
	var c Global
	for k, val := range defaults() {
		_ = c.Set(k, cast.ToString(val))
	}
	_ = c.resolvePaths()
	return &c
}

func (c *Global) resolvePaths() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if c.HistoryDir == "" {
		c.HistoryDir = filepath.Join(dir, "history")
	}
	if c.MapsDir == "" {
		c.MapsDir = filepath.Join(dir, "maps")
	}
	c.HistoryDir = utils.ExpandHome(c.HistoryDir)
	c.MapsDir = utils.ExpandHome(c.MapsDir)
	c.ModelsCatalogFile = utils.ExpandHome(c.ModelsCatalogFile)
	return nil
}

// Validate checks enumerations and ranges.
func (c *Global) Validate() error {
	if !slices.Contains(ai.Providers, c.Provider) {
		return fmt.Errorf("invalid provider %q (use one of %s)", c.Provider, strings.Join(ai.Providers, ", "))
	}
	if !slices.Contains(CacheBackends, c.CacheBackend) {
		return fmt.Errorf("invalid cache_backend %q (use one of %s)", c.CacheBackend, strings.Join(CacheBackends, ", "))
	}
	if !slices.Contains(HistoryBackends, c.HistoryBackend) {
		return fmt.Errorf("invalid history_backend %q (use one of %s)", c.HistoryBackend, strings.Join(HistoryBackends, ", "))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %v", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.SampleRows < 1 || c.SampleRows > ai.MaxPromptSamples {
		return fmt.Errorf("sample_rows must be within [1, %d], got %d", ai.MaxPromptSamples, c.SampleRows)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("retry_max_attempts must be at least 1, got %d", c.RetryMaxAttempts)
	}
	return nil
}

// Keys lists the settable keys in declaration order.
func Keys() []string {
	t := reflect.TypeOf(Global{})
	out := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		out = append(out, t.Field(i).Tag.Get("yaml"))
	}
	return out
}

// Set assigns key from its string form. It does not validate the result.
func (c *Global) Set(key, value string) error {
	f, ok := c.field(key)
	if !ok {
		return fmt.Errorf("unknown key: %s", key)
	}
	switch f.Kind() {
	case reflect.String:
		if key == "provider" || key == "cache_backend" || key == "history_backend" {
			value = strings.ToLower(strings.TrimSpace(value))
		}
		f.SetString(value)
	case reflect.Int:
		i, err := cast.ToIntE(value)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, value)
		}
		f.SetInt(int64(i))
	case reflect.Float64:
		x, err := cast.ToFloat64E(value)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %v", key, value)
		}
		f.SetFloat(x)
	case reflect.Bool:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, value)
		}
		f.SetBool(b)
	}
	return nil
}

// Get returns key's value as a string.
func (c *Global) Get(key string) (string, bool) {
	f, ok := c.field(key)
	if !ok {
		return "", false
	}
	return cast.ToString(f.Interface()), true
}

func (c *Global) field(key string) (reflect.Value, bool) {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("yaml") == key {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Masked returns a copy with secrets shortened for display.
func (c Global) Masked() Global {
	for _, k := range secretKeys {
		if s, ok := c.Get(k); ok {
			_ = c.Set(k, Mask(s))
		}
	}
	return c
}

// Mask hides all but the edges of a secret.
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}

// APIKeyFor returns the key for provider. Gemini prefers gemini_api_key;
// Ollama needs none.
func (c *Global) APIKeyFor(provider string) string {
	switch provider {
	case ai.ProviderOllama:
		return ""
	case ai.ProviderGemini:
		if c.GeminiAPIKey != "" {
			return c.GeminiAPIKey
		}
	}
	return c.APIKey
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.chartloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
