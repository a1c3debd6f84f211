// Package loader decodes spreadsheet and delimited-text files into a
// dataset.Dataset with inferred column types.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
)

// Options tunes decoding.
type Options struct {
	// SheetName selects a workbook sheet; empty means the first sheet.
	SheetName string
	// Delimiter overrides CSV delimiter sniffing when non-zero.
	Delimiter rune
}

// Loader decodes one family of file formats.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*dataset.Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// Load decodes path with default options.
func Load(path string) (*dataset.Dataset, error) {
	return LoadWithOptions(path, Options{})
}

// LoadWithOptions selects a loader based on the file extension.
func LoadWithOptions(path string, opt Options) (*dataset.Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// Supported reports whether some registered loader accepts filename.
func Supported(filename string) bool {
	for _, l := range registry {
		if l.CanLoad(filename) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(filename)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

// buildDataset turns a header plus string records into a Dataset. Short
// records are padded with "" and surplus cells are dropped.
func buildDataset(header []string, records [][]string) *dataset.Dataset {
	keys := headerKeys(header)
	if len(keys) == 0 {
		return dataset.New(nil, nil)
	}
	rows := make([]dataset.Row, 0, len(records))
	for _, rec := range records {
		if blankRecord(rec) {
			continue
		}
		row := make(dataset.Row, len(keys))
		for i, k := range keys {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	return dataset.New(keys, rows)
}

// headerKeys trims header cells, names blank ones by position and suffixes
// repeats with _1, _2 and so on. Trailing blank cells are dropped.
func headerKeys(header []string) []string {
	end := len(header)
	for end > 0 && strings.TrimSpace(header[end-1]) == "" {
		end--
	}
	keys := make([]string, 0, end)
	seen := make(map[string]int, end)
	for i := 0; i < end; i++ {
		k := strings.TrimSpace(header[i])
		if i == 0 {
			k = strings.TrimPrefix(k, "\ufeff")
		}
		if k == "" {
			k = fmt.Sprintf("column_%d", i+1)
		}
		base := k
		for seen[k] > 0 {
			k = fmt.Sprintf("%s_%d", base, seen[base])
			seen[base]++
		}
		seen[k]++
		keys = append(keys, k)
	}
	return keys
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
