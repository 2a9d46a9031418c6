// Package kb loads the fixed hematology knowledge base from JSON documents.
package kb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"cbcrag/internal/domain"
)

// Load parses a single knowledge base file. The document must be a JSON
// object with a top-level "chunks" list; list order is preserved because it
// defines stable source numbering across runs.
func Load(path string) ([]domain.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	return parse(path, data)
}

// LoadGlob loads and merges every knowledge base file under root matching
// one of the doublestar patterns. Matches are deduplicated and sorted by
// path so the merged chunk order is deterministic.
func LoadGlob(root string, patterns []string) ([]domain.Chunk, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
		if err != nil {
			return nil, &domain.LoadError{Path: pattern, Err: err}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	if len(paths) == 0 {
		return nil, &domain.LoadError{Path: root, Err: fmt.Errorf("no knowledge base files match %v", patterns)}
	}
	sort.Strings(paths)

	var chunks []domain.Chunk
	for _, p := range paths {
		loaded, err := Load(p)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, loaded...)
	}
	return chunks, nil
}

func parse(path string, data []byte) ([]domain.Chunk, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &domain.LoadError{Path: path, Err: fmt.Errorf("malformed JSON: %w", err)}
	}

	raw, ok := doc["chunks"]
	if !ok {
		return nil, &domain.LoadError{Path: path, Err: fmt.Errorf(`missing "chunks" list`)}
	}

	var chunks []domain.Chunk
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return nil, &domain.LoadError{Path: path, Err: fmt.Errorf(`malformed "chunks" list: %w`, err)}
	}

	for i, c := range chunks {
		if c.Text == "" {
			return nil, &domain.LoadError{Path: path, Err: fmt.Errorf("chunk %d has empty text", i)}
		}
	}

	return chunks, nil
}
