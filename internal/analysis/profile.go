// Package analysis profiles a loaded dataset column by column: counts,
// numeric statistics with robust outlier detection, and top categories.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
)

// Options controls profiling.
type Options struct {
	// TopN is the number of most frequent values kept for string columns.
	TopN int
	// OutlierZ flags numeric values whose robust z-score exceeds it; 0 disables.
	OutlierZ float64
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{TopN: 5, OutlierZ: 3.5}
}

// Report summarizes a dataset.
type Report struct {
	Name string          `json:"name,omitempty"`
	Rows int             `json:"rows"`
	Cols []ColumnSummary `json:"columns"`
}

// ColumnSummary captures the inferred type and statistics of one column.
type ColumnSummary struct {
	Name    string             `json:"name"`
	Type    dataset.ColumnType `json:"type"`
	NonNull int                `json:"nonNull"`
	Missing int                `json:"missing"`
	Unique  int                `json:"unique"`
	// Numeric columns only
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`
	// Robust z-score outliers via MAD
	OutliersCount    int     `json:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliersMaxAbsZ,omitempty"`
	OutlierThreshold float64 `json:"outlierThreshold,omitempty"`
	// Non-numeric columns only
	TopValues []CategoryCount `json:"topValues,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Profile computes a Report for ds.
func Profile(ds *dataset.Dataset, opt Options) *Report {
	r := &Report{Cols: []ColumnSummary{}}
	if ds == nil {
		return r
	}
	r.Rows = len(ds.Rows)
	for _, c := range ds.Columns {
		r.Cols = append(r.Cols, summarize(c, dataset.Values(ds.Rows, c.Key), opt))
	}
	return r
}

func summarize(c dataset.Column, values []any, opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.Key, Type: c.Type}
	counts := map[string]int{}
	var nums []float64
	for _, v := range values {
		str := strings.TrimSpace(cast.ToString(v))
		if v == nil || str == "" {
			s.Missing++
			continue
		}
		s.NonNull++
		counts[str]++
		if c.Type == dataset.TypeNumber {
			if n := dataset.ToNumber(v); !math.IsNaN(n) && !math.IsInf(n, 0) {
				nums = append(nums, n)
			}
		}
	}
	s.Unique = len(counts)

	if c.Type == dataset.TypeNumber {
		numericStats(&s, nums, opt.OutlierZ)
		return s
	}
	s.TopValues = topValues(counts, opt.TopN)
	return s
}

func numericStats(s *ColumnSummary, nums []float64, z float64) {
	if len(nums) == 0 {
		return
	}
	s.Min, s.Max = nums[0], nums[0]
	var sum float64
	for _, x := range nums {
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
		sum += x
	}
	s.Mean = sum / float64(len(nums))
	var ss float64
	for _, x := range nums {
		d := x - s.Mean
		ss += d * d
	}
	if len(nums) > 1 {
		s.Std = math.Sqrt(ss / float64(len(nums)-1))
	}
	if z <= 0 {
		return
	}
	median, mad := medianMAD(nums)
	if mad == 0 {
		return
	}
	s.OutlierThreshold = z
	for _, x := range nums {
		// 0.6745 scales MAD to the standard deviation of a normal distribution.
		rz := math.Abs(0.6745 * (x - median) / mad)
		if rz > z {
			s.OutliersCount++
			s.OutliersMaxAbsZ = math.Max(s.OutliersMaxAbsZ, rz)
		}
	}
}

func topValues(counts map[string]int, n int) []CategoryCount {
	if n <= 0 {
		return nil
	}
	out := make([]CategoryCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, CategoryCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Markdown renders a compact report for terminals and docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", r.Name)
	}
	fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
	fmt.Fprintf(&b, "Columns: %d\n\n", len(r.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		missPct := 0.0
		if total := c.NonNull + c.Missing; total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%, unique %d)", safeVal(c.Name), c.Type, c.NonNull, missPct, c.Unique)
		if c.Type == dataset.TypeNumber {
			fmt.Fprintf(&b, "; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std)
			if c.OutliersCount > 0 {
				fmt.Fprintf(&b, "; outliers: %d above |z|>%.1f (max |z|≈%.2f)", c.OutliersCount, c.OutlierThreshold, c.OutliersMaxAbsZ)
			}
		} else if len(c.TopValues) > 0 {
			b.WriteString("; top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s(%d)", safeVal(kv.Value), kv.Count)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
