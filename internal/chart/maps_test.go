package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectMapNames(t *testing.T) {
	option := map[string]any{
		"geo": map[string]any{"map": "china"},
		"series": []any{
			map[string]any{"type": "scatter", "coordinateSystem": "geo"},
			map[string]any{"type": "map", "map": "world"},
			map[string]any{"type": "lines", "coordinateSystem": "geo"},
			map[string]any{"type": "geo", "map": "china"},
		},
	}
	assert.Equal(t, []string{"china", "world"}, CollectMapNames(option))
}

func TestCollectMapNamesEdgeCases(t *testing.T) {
	assert.Empty(t, CollectMapNames(nil))
	assert.Empty(t, CollectMapNames("china"))
	assert.Empty(t, CollectMapNames(map[string]any{
		"series": []any{map[string]any{"type": "scatter", "coordinateSystem": "geo"}},
	}))
	assert.Equal(t, []string{"usa"}, CollectMapNames(map[string]any{
		"series": map[string]any{"type": "map", "map": "usa"},
	}))
	assert.Equal(t, []string{"china"}, CollectMapNames(map[string]any{
		"geo":    map[string]any{"map": "china"},
		"series": []any{map[string]any{"type": "bar"}},
	}))
}
