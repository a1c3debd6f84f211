package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/chartloom-cli/internal/advisor"
	"github.com/KaramelBytes/chartloom-cli/internal/ai"
	"github.com/KaramelBytes/chartloom-cli/internal/cache"
	cfgpkg "github.com/KaramelBytes/chartloom-cli/internal/config"
	"github.com/KaramelBytes/chartloom-cli/internal/history"
	"github.com/KaramelBytes/chartloom-cli/internal/metrics"
	"github.com/KaramelBytes/chartloom-cli/internal/utils"
)

// envAPIKeys lists the conventional per-provider key variables checked after
// CHARTLOOM_API_KEY.
var envAPIKeys = map[string]string{
	ai.ProviderDeepSeek:   "DEEPSEEK_API_KEY",
	ai.ProviderOpenRouter: "OPENROUTER_API_KEY",
	ai.ProviderOpenAI:     "OPENAI_API_KEY",
	ai.ProviderGemini:     "GEMINI_API_KEY",
}

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}

func normalizeProvider(name string) string {
	switch p := strings.ToLower(strings.TrimSpace(name)); p {
	case "local":
		return ai.ProviderOllama
	case "google":
		return ai.ProviderGemini
	case "":
		return ai.ProviderDeepSeek
	default:
		return p
	}
}

func buildRuntime(cfg *cfgpkg.Global) (ai.Runtime, string, error) {
	provider := normalizeProvider(cfg.Provider)
	apiKey := cfg.APIKeyFor(provider)
	if apiKey == "" && provider != ai.ProviderOllama {
		apiKey = os.Getenv(envAPIKeys[provider])
	}
	rc := ai.RuntimeConfig{
		HTTPTimeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		RetryMax:    cfg.RetryMaxAttempts,
		BaseDelay:   time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond,
		APIKey:      apiKey,
		BaseURL:     cfg.BaseURL,
		Host:        cfg.OllamaHost,
	}
	rt, err := ai.NewRuntime(provider, rc)
	if err != nil {
		return nil, provider, err
	}
	return rt, provider, nil
}

func selectModel(cfg *cfgpkg.Global, provider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cfg != nil && cfg.Model != "" {
		return cfg.Model
	}
	return ai.DefaultModel(provider)
}

func buildCache(ctx context.Context, cfg *cfgpkg.Global, log *zap.Logger) (cache.Cache, func()) {
	switch cfg.CacheBackend {
	case "redis":
		r, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			log.Warn("redis cache unavailable, continuing without cache", zap.Error(err))
			return cache.Nop{}, func() {}
		}
		return r, func() { _ = r.Close() }
	case "none":
		return cache.Nop{}, func() {}
	}
	return cache.NewMemory(0), func() {}
}

func buildHistory(cfg *cfgpkg.Global) (history.Store, func(), error) {
	switch cfg.HistoryBackend {
	case "sqlite":
		if err := utils.EnsureDir(cfg.HistoryDir); err != nil {
			return nil, nil, fmt.Errorf("create history dir: %w", err)
		}
		s, err := history.OpenSQLite(filepath.Join(cfg.HistoryDir, "history.db"))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "none":
		return nil, func() {}, nil
	}
	s, err := history.NewFileStore(cfg.HistoryDir)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {}, nil
}

type advisorOptions struct {
	Offline   bool
	Stream    bool
	NoHistory bool
	OnDelta   func(string)
	Metrics   *metrics.Metrics
}

// buildAdvisor wires runtime, cache and history from cfg. The returned func
// releases backend connections.
func buildAdvisor(ctx context.Context, cfg *cfgpkg.Global, opts advisorOptions) (*advisor.Advisor, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var rt ai.Runtime
	provider := normalizeProvider(cfg.Provider)
	if !opts.Offline {
		r, p, err := buildRuntime(cfg)
		if err != nil {
			return nil, nil, err
		}
		rt, provider = r, p
	}

	c, closeCache := buildCache(ctx, cfg, logger)
	closers = append(closers, closeCache)
	options := []advisor.Option{advisor.WithCache(c), advisor.WithLogger(logger), advisor.WithMetrics(opts.Metrics)}

	if !opts.NoHistory {
		store, closeStore, err := buildHistory(cfg)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open history: %w", err)
		}
		closers = append(closers, closeStore)
		if store != nil {
			options = append(options, advisor.WithHistory(store))
		}
	}

	a := advisor.New(rt, advisor.Options{
		Provider:    provider,
		Model:       selectModel(cfg, provider, ""),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		SampleRows:  cfg.SampleRows,
		CacheTTL:    time.Duration(cfg.CacheTTLSec) * time.Second,
		Stream:      opts.Stream,
		OnDelta:     opts.OnDelta,
	}, options...)
	return a, closeAll, nil
}

// readJSONInput decodes JSON from path, or from stdin when path is "" or "-".
func readJSONInput(path string, stdin io.Reader) (any, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode JSON input: %w", err)
	}
	return v, nil
}

// writeJSON prints v to w and, when path is set, saves it there too.
func writeJSON(w io.Writer, v any, path string) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	if path != "" {
		if err := utils.SafeWriteFile(path, append(b, '\n')); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
