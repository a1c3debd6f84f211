package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	return hasExt(filename, ".csv", ".tsv")
}

func (csvLoader) Load(path string, opt Options) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path, data)
	}
	ds, err := DecodeCSV(bytes.NewReader(data), delim)
	if err != nil {
		return nil, &DecodeError{Path: path, Format: "csv", Err: err}
	}
	return ds, nil
}

// DecodeCSV reads a header row followed by records. Values are kept as
// strings; type inference runs on the result.
func DecodeCSV(r io.Reader, delim rune) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataset.New(nil, nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		records = append(records, rec)
	}
	return buildDataset(header, records), nil
}

// sniffDelimiter picks tab for .tsv files, otherwise the most frequent of
// ',', ';' and tab on the first non-empty line. Comma wins ties.
func sniffDelimiter(path string, data []byte) rune {
	if hasExt(path, ".tsv") {
		return '\t'
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		best, bestN := ',', strings.Count(line, ",")
		for _, d := range []rune{';', '\t'} {
			if n := strings.Count(line, string(d)); n > bestN {
				best, bestN = d, n
			}
		}
		return best
	}
	return ','
}
