package advisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/chartloom-cli/internal/ai"
	"github.com/KaramelBytes/chartloom-cli/internal/cache"
	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
	"github.com/KaramelBytes/chartloom-cli/internal/history"
	"github.com/KaramelBytes/chartloom-cli/internal/metrics"
)

type fakeRuntime struct {
	text  string
	err   error
	calls atomic.Int32
	last  ai.GenerateRequest
}

func (f *fakeRuntime) Generate(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	f.calls.Add(1)
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: f.text}}}}, nil
}

type streamRuntime struct {
	fakeRuntime
	chunks []string
}

func (s *streamRuntime) GenerateStream(_ context.Context, _ ai.GenerateRequest, onDelta func(string)) error {
	s.calls.Add(1)
	for _, c := range s.chunks {
		onDelta(c)
	}
	return nil
}

func sales() *dataset.Dataset {
	rows := []dataset.Row{
		{"region": "north", "amount": "10"},
		{"region": "south", "amount": "20"},
		{"region": "east", "amount": "30"},
	}
	return dataset.New([]string{"region", "amount"}, rows)
}

const mapReply = "```json\n" + `{"config":{"geo":{"map":"china"},"series":[{"type":"map","map":"world"}]},"type":"map","explanation":"regional"}` + "\n```"

func TestSuggestAI(t *testing.T) {
	rt := &fakeRuntime{text: mapReply}
	a := New(rt, Options{Provider: ai.ProviderDeepSeek, Temperature: 0.2})

	res, err := a.Suggest(context.Background(), sales(), "where?")
	require.NoError(t, err)
	assert.Equal(t, SourceAI, res.Source)
	assert.Empty(t, res.FallbackReason)
	assert.Equal(t, "map", res.Spec.ChartType)
	assert.Equal(t, "regional", res.Spec.Reason)
	assert.Equal(t, []string{"china", "world"}, res.MapNames)
	require.NotNil(t, res.Usage)
	assert.Positive(t, res.Usage.PromptTokens)
	assert.Positive(t, res.CostUSD)

	assert.Equal(t, "deepseek-chat", rt.last.Model)
	assert.Equal(t, 512, rt.last.MaxTokens)
	require.NotNil(t, rt.last.ResponseFormat)
	assert.Equal(t, "json_object", rt.last.ResponseFormat.Type)
	require.Len(t, rt.last.Messages, 2)
}

func TestSuggestFallbacks(t *testing.T) {
	cases := []struct {
		name   string
		rt     ai.Runtime
		ds     *dataset.Dataset
		reason string
	}{
		{"no runtime", nil, sales(), ReasonNoRuntime},
		{"model error", &fakeRuntime{err: &ai.ServerError{APIError: &ai.APIError{StatusCode: 500}}}, sales(), ReasonModelError},
		{"prose reply", &fakeRuntime{text: "sorry, I cannot help"}, sales(), ReasonInvalidJSON},
		{"empty option", &fakeRuntime{text: `{"option":{"title":{"text":"x"}}}`}, sales(), ReasonEmptyOption},
		{"empty dataset", &fakeRuntime{text: mapReply}, &dataset.Dataset{}, ReasonEmptyDataset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.New()
			a := New(tc.rt, Options{Provider: ai.ProviderDeepSeek}, WithMetrics(m))
			res, err := a.Suggest(context.Background(), tc.ds, "q")
			require.NoError(t, err)
			assert.Equal(t, SourceHeuristic, res.Source)
			assert.Equal(t, tc.reason, res.FallbackReason)
			assert.NotNil(t, res.MapNames)
			assert.NotNil(t, res.Spec.Option)
		})
	}
}

func TestSuggestFallbackUsesHeuristic(t *testing.T) {
	a := New(&fakeRuntime{err: errors.New("dial tcp: refused")}, Options{})
	res, err := a.Suggest(context.Background(), sales(), "amount by region")
	require.NoError(t, err)
	assert.Equal(t, "pie", res.Spec.ChartType)
	assert.Equal(t, "region", res.Spec.Dimension)
	assert.Equal(t, "amount", res.Spec.Measure)
	assert.Equal(t, "amount by region", res.Spec.Question)
	assert.Contains(t, res.Error, "refused")
}

func TestSuggestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := New(&fakeRuntime{err: context.Canceled}, Options{})
	_, err := a.Suggest(ctx, sales(), "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSuggestCache(t *testing.T) {
	rt := &fakeRuntime{text: mapReply}
	a := New(rt, Options{Provider: ai.ProviderDeepSeek}, WithCache(cache.NewMemory(8)))

	first, err := a.Suggest(context.Background(), sales(), "q")
	require.NoError(t, err)
	second, err := a.Suggest(context.Background(), sales(), "q")
	require.NoError(t, err)

	assert.EqualValues(t, 1, rt.calls.Load())
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Nil(t, second.Usage)
	assert.Equal(t, first.Spec.Option, second.Spec.Option)

	_, err = a.Suggest(context.Background(), sales(), "another question")
	require.NoError(t, err)
	assert.EqualValues(t, 2, rt.calls.Load())
}

func TestSuggestDoesNotCacheUnusableReplies(t *testing.T) {
	rt := &fakeRuntime{text: "not json"}
	a := New(rt, Options{}, WithCache(cache.NewMemory(8)))
	for i := 0; i < 2; i++ {
		_, err := a.Suggest(context.Background(), sales(), "q")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, rt.calls.Load())
}

func TestSuggestStream(t *testing.T) {
	rt := &streamRuntime{chunks: []string{`{"option":{"series":`, `[{"type":"column"}]}}`}}
	var seen []string
	a := New(rt, Options{Stream: true, OnDelta: func(s string) { seen = append(seen, s) }})

	res, err := a.Suggest(context.Background(), sales(), "q")
	require.NoError(t, err)
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, "bar", res.Spec.ChartType)
	assert.Len(t, seen, 2)
}

func TestSuggestRecordsHistory(t *testing.T) {
	store, err := history.NewFileStore(t.TempDir())
	require.NoError(t, err)
	a := New(nil, Options{}, WithHistory(store))

	res, err := a.Suggest(WithFile(context.Background(), "sales.csv"), sales(), "q")
	require.NoError(t, err)
	require.NotEmpty(t, res.HistoryID)

	entries, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sales.csv", entries[0].File)
	assert.Equal(t, SourceHeuristic, entries[0].Source)
}

func TestAuto(t *testing.T) {
	a := New(&fakeRuntime{text: mapReply}, Options{})
	res := a.Auto(context.Background(), sales(), "q")
	assert.Equal(t, SourceHeuristic, res.Source)
	assert.Empty(t, res.FallbackReason)
}
