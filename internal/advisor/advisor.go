// Package advisor runs the chart suggestion pipeline: ask the configured model
// for an option, normalize it, and fall back to the local heuristic when the
// model is unavailable or its reply is unusable.
package advisor

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/chartloom-cli/internal/ai"
	"github.com/KaramelBytes/chartloom-cli/internal/cache"
	"github.com/KaramelBytes/chartloom-cli/internal/chart"
	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
	"github.com/KaramelBytes/chartloom-cli/internal/history"
	"github.com/KaramelBytes/chartloom-cli/internal/logging"
	"github.com/KaramelBytes/chartloom-cli/internal/metrics"
	"github.com/KaramelBytes/chartloom-cli/internal/utils"
)

// Sources of a Result.
const (
	SourceAI        = "ai"
	SourceHeuristic = "heuristic"
)

// Fallback reasons reported when the heuristic path produced the chart.
const (
	ReasonNoRuntime    = "no_runtime"
	ReasonModelError   = "model_error"
	ReasonInvalidJSON  = "invalid_json"
	ReasonEmptyOption  = "empty_option"
	ReasonEmptyDataset = "empty_dataset"
)

// Result is the outcome of one suggestion.
type Result struct {
	Spec           chart.ChartSpec `json:"spec"`
	Source         string          `json:"source"`
	FallbackReason string          `json:"fallbackReason,omitempty"`
	Error          string          `json:"error,omitempty"`
	MapNames       []string        `json:"mapNames"`
	RawText        string          `json:"rawText,omitempty"`
	Cached         bool            `json:"cached,omitempty"`
	Usage          *ai.Usage       `json:"usage,omitempty"`
	CostUSD        float64         `json:"estimatedCostUsd,omitempty"`
	HistoryID      string          `json:"historyId,omitempty"`
	Duration       time.Duration   `json:"duration"`
}

// Options tune the model request.
type Options struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	SampleRows  int
	CacheTTL    time.Duration
	// Stream uses GenerateStream when the runtime supports it; OnDelta then
	// receives each chunk as it arrives.
	Stream  bool
	OnDelta func(string)
}

// Advisor is safe for concurrent use when its collaborators are.
type Advisor struct {
	runtime ai.Runtime
	opts    Options
	cache   cache.Cache
	history history.Store
	log     *zap.Logger
	metrics *metrics.Metrics
}

// Option configures an Advisor.
type Option func(*Advisor)

func WithCache(c cache.Cache) Option { return func(a *Advisor) { a.cache = c } }

func WithHistory(s history.Store) Option { return func(a *Advisor) { a.history = s } }

func WithLogger(l *zap.Logger) Option { return func(a *Advisor) { a.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(a *Advisor) { a.metrics = m } }

// New returns an Advisor. A nil runtime means every suggestion comes from the
// heuristic.
func New(rt ai.Runtime, opts Options, options ...Option) *Advisor {
	if opts.SampleRows <= 0 || opts.SampleRows > ai.MaxPromptSamples {
		opts.SampleRows = ai.MaxPromptSamples
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	if opts.Model == "" && opts.Provider != "" {
		opts.Model = ai.DefaultModel(opts.Provider)
	}
	a := &Advisor{runtime: rt, opts: opts, cache: cache.Nop{}}
	for _, o := range options {
		o(a)
	}
	if a.cache == nil {
		a.cache = cache.Nop{}
	}
	a.log = logging.OrNop(a.log)
	return a
}

// Suggest produces a chart for ds and question. Only context cancellation is
// returned as an error: every other failure degrades to the heuristic chart
// and is reported through Result.FallbackReason.
func (a *Advisor) Suggest(ctx context.Context, ds *dataset.Dataset, question string) (*Result, error) {
	start := time.Now()
	if ds == nil {
		ds = &dataset.Dataset{}
	}
	res, err := a.suggest(ctx, ds, question)
	if err != nil {
		return nil, err
	}
	res.MapNames = chart.CollectMapNames(res.Spec.Option)
	res.Duration = time.Since(start)
	a.metrics.ObserveSuggestion(res.Source)
	if res.FallbackReason != "" {
		a.metrics.ObserveFallback(res.FallbackReason)
	}
	a.record(ctx, res, question)
	return res, nil
}

// Auto runs the heuristic path only.
func (a *Advisor) Auto(ctx context.Context, ds *dataset.Dataset, question string) *Result {
	if ds == nil {
		ds = &dataset.Dataset{}
	}
	start := time.Now()
	res := &Result{Spec: chart.AutoChart(*ds, question), Source: SourceHeuristic}
	res.MapNames = chart.CollectMapNames(res.Spec.Option)
	res.Duration = time.Since(start)
	a.metrics.ObserveSuggestion(res.Source)
	a.record(ctx, res, question)
	return res
}

func (a *Advisor) suggest(ctx context.Context, ds *dataset.Dataset, question string) (*Result, error) {
	if a.runtime == nil {
		return a.fallback(ds, question, ReasonNoRuntime, nil), nil
	}
	if len(ds.Rows) == 0 {
		return a.fallback(ds, question, ReasonEmptyDataset, nil), nil
	}

	msgs := ai.BuildAnalysisPrompt(ds.Columns, headRows(ds.Rows, a.opts.SampleRows), question)
	text, usage, cached, err := a.complete(ctx, msgs)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.log.Warn("model request failed, using heuristic chart",
			zap.String("provider", a.opts.Provider), zap.Error(err))
		return a.fallback(ds, question, ReasonModelError, err), nil
	}

	payload, err := ai.ExtractJSON(text)
	if err != nil {
		a.log.Warn("model reply is not JSON, using heuristic chart", zap.Error(err))
		res := a.fallback(ds, question, ReasonInvalidJSON, err)
		res.RawText = text
		return res, nil
	}
	spec := chart.NormalizeAIResponse(payload)
	if !chart.HasContent(spec.Option) {
		a.log.Info("model option has no series or dataset, using heuristic chart")
		res := a.fallback(ds, question, ReasonEmptyOption, nil)
		res.RawText = text
		return res, nil
	}
	if !cached {
		if err := a.cache.Set(ctx, a.cacheKey(msgs), text, a.opts.CacheTTL); err != nil {
			a.log.Debug("cache write failed", zap.Error(err))
		}
	}
	spec.Question = question
	res := &Result{Spec: spec, Source: SourceAI, RawText: text, Cached: cached}
	if usage != nil {
		res.Usage = usage
		res.CostUSD, _ = ai.EstimateCostUSD(a.opts.Model, usage.PromptTokens, usage.CompletionTokens)
	}
	return res, nil
}

// complete returns the model text for msgs, consulting the cache first.
// Usage is nil for cached replies.
func (a *Advisor) complete(ctx context.Context, msgs []ai.Message) (string, *ai.Usage, bool, error) {
	key := a.cacheKey(msgs)
	if text, ok := a.cache.Get(ctx, key); ok {
		a.metrics.ObserveCache(true)
		a.log.Debug("model reply served from cache", zap.String("key", key))
		return text, nil, true, nil
	}
	a.metrics.ObserveCache(false)

	sections := make(map[string]string, len(msgs))
	for _, m := range msgs {
		sections[m.Role] += m.Content
	}
	promptTokens := utils.CountTokens(sections["system"]) + utils.CountTokens(sections["user"])
	if mi, ok := ai.LookupModel(a.opts.Model); ok && mi.ContextTokens > 0 && promptTokens+a.opts.MaxTokens > mi.ContextTokens {
		a.log.Warn("prompt may exceed the model context window",
			zap.String("model", a.opts.Model),
			zap.Int("prompt_tokens", promptTokens),
			zap.Int("context_tokens", mi.ContextTokens))
	}
	a.log.Debug("sending model request",
		zap.String("provider", a.opts.Provider),
		zap.String("model", a.opts.Model),
		zap.Any("tokens", utils.TokenBreakdown(sections)))

	req := ai.GenerateRequest{
		Model:          a.opts.Model,
		Messages:       msgs,
		MaxTokens:      a.opts.MaxTokens,
		Temperature:    a.opts.Temperature,
		ResponseFormat: &ai.ResponseFormat{Type: "json_object"},
	}
	start := time.Now()
	text, usage, err := a.generate(ctx, req)
	a.metrics.ObserveModelCall(a.opts.Provider, time.Since(start), err)
	if err != nil {
		return "", nil, false, err
	}
	if usage.TotalTokens == 0 {
		// Streams carry no usage block; estimate it.
		usage.PromptTokens = promptTokens
		usage.CompletionTokens = utils.CountTokens(text)
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	a.log.Debug("model reply received",
		zap.String("provider", a.opts.Provider),
		zap.String("model", a.opts.Model),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.Duration("duration", time.Since(start)))
	return text, &usage, false, nil
}

func (a *Advisor) generate(ctx context.Context, req ai.GenerateRequest) (string, ai.Usage, error) {
	if sr, ok := a.runtime.(ai.StreamRuntime); ok && a.opts.Stream {
		var b strings.Builder
		err := sr.GenerateStream(ctx, req, func(delta string) {
			b.WriteString(delta)
			if a.opts.OnDelta != nil {
				a.opts.OnDelta(delta)
			}
		})
		if err != nil {
			return "", ai.Usage{}, err
		}
		return b.String(), ai.Usage{}, nil
	}
	resp, err := a.runtime.Generate(ctx, req)
	if err != nil {
		return "", ai.Usage{}, err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ai.Usage{}, errors.New("model returned an empty reply")
	}
	return text, resp.Usage, nil
}

func (a *Advisor) cacheKey(msgs []ai.Message) string {
	parts := []string{a.opts.Provider, a.opts.Model}
	for _, m := range msgs {
		parts = append(parts, m.Role, m.Content)
	}
	return cache.Key(parts...)
}

func (a *Advisor) fallback(ds *dataset.Dataset, question, reason string, err error) *Result {
	res := &Result{Spec: chart.AutoChart(*ds, question), Source: SourceHeuristic, FallbackReason: reason}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func (a *Advisor) record(ctx context.Context, res *Result, question string) {
	if a.history == nil {
		return
	}
	e := history.NewEntry(res.Source, question, "", res.Spec)
	if f, ok := FileFromContext(ctx); ok {
		e.File = f
	}
	if err := a.history.Save(ctx, e); err != nil {
		a.log.Warn("history write failed", zap.Error(err))
		return
	}
	res.HistoryID = e.ID.String()
}

func headRows(rows []dataset.Row, n int) []dataset.Row {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

type fileKey struct{}

// WithFile tags ctx with the source file name recorded in history.
func WithFile(ctx context.Context, file string) context.Context {
	return context.WithValue(ctx, fileKey{}, file)
}

// FileFromContext returns the file set by WithFile.
func FileFromContext(ctx context.Context) (string, bool) {
	f, ok := ctx.Value(fileKey{}).(string)
	return f, ok && f != ""
}
