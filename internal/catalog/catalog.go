// Package catalog reads and writes JSON film catalogs: arrays of
// {"title", "url", "details"} records where details is a free-form object.
package catalog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record is one catalog film. Details keeps every key it was decoded with.
type Record struct {
	Title   string         `json:"title"`
	URL     string         `json:"url"`
	Details map[string]any `json:"details"`
}

var ErrNoReviews = errors.New("record has no reviews")

// Reviews returns the string array stored under key. It returns ErrNoReviews
// when the key is absent.
func (r *Record) Reviews(key string) ([]string, error) {
	raw, ok := r.Details[key]
	if !ok {
		return nil, ErrNoReviews
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("details[%q] is %T, not an array", key, raw)
	}

	reviews := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("details[%q][%d] is %T, not a string", key, i, item)
		}
		reviews = append(reviews, s)
	}
	return reviews, nil
}

// ReplaceReviews stores value under profileKey and removes reviewsKey.
func (r *Record) ReplaceReviews(reviewsKey, profileKey string, value any) {
	if r.Details == nil {
		r.Details = make(map[string]any)
	}
	r.Details[profileKey] = value
	delete(r.Details, reviewsKey)
}

func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return records, nil
}

// Decode accepts an array of records or a single record object. Records that
// repeat an earlier (title, url) pair are dropped.
func Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty catalog")
	}

	var records []Record
	if data[0] == '[' {
		if err := decodeNumbers(data, &records); err != nil {
			return nil, err
		}
	} else {
		var single Record
		if err := decodeNumbers(data, &single); err != nil {
			return nil, err
		}
		records = []Record{single}
	}

	type identity struct{ title, url string }
	seen := make(map[identity]struct{}, len(records))
	unique := records[:0]
	for _, rec := range records {
		id := identity{rec.Title, rec.URL}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if rec.Details == nil {
			rec.Details = make(map[string]any)
		}
		unique = append(unique, rec)
	}
	return unique, nil
}

// decodeNumbers keeps numeric detail values as json.Number so they are
// written back unchanged.
func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid catalog JSON: %w", err)
	}
	return nil
}

// Save writes the catalog atomically through a temporary file in the same
// directory.
func Save(path string, records []Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := bufio.NewWriter(tmp)
	if err := Encode(w, records); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}

// Encode writes records as two-space indented JSON without HTML escaping.
func Encode(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return nil
}

// DecodeReviews reads ad-hoc reviews: a JSON array of strings, or one review
// per non-blank line.
func DecodeReviews(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reviews []string
		if err := json.Unmarshal(trimmed, &reviews); err != nil {
			return nil, fmt.Errorf("invalid reviews JSON: %w", err)
		}
		return reviews, nil
	}

	var reviews []string
	for line := range strings.Lines(string(data)) {
		if line = strings.TrimSpace(line); line != "" {
			reviews = append(reviews, line)
		}
	}
	return reviews, nil
}
