package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// FromJSON decodes a JSON array of row objects. Column order follows the key
// order of the first object, which a plain map decode would lose.
func FromJSON(data []byte) (*Dataset, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	rows := make([]Row, 0, len(raws))
	for i, raw := range raws {
		var r Row
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode row %d: %w", i, err)
		}
		if r == nil {
			r = Row{}
		}
		rows = append(rows, r)
	}
	if len(raws) == 0 {
		return New(nil, rows), nil
	}
	keys, err := objectKeys(raws[0])
	if err != nil {
		return nil, fmt.Errorf("row 0: %w", err)
	}
	return New(keys, rows), nil
}

func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("row is not an object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
