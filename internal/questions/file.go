package questions

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// bankEntry is one question in a YAML question bank.
type bankEntry struct {
	Key    string `yaml:"key"`
	Record `yaml:",inline"`
}

type bankFile struct {
	Questions []bankEntry `yaml:"questions"`
}

// FileStore serves questions from an in-memory bank, typically loaded from
// a YAML file. Matching follows the same key-prefix rule as Neo4jStore.
type FileStore struct {
	template string
	entries  []bankEntry
	pick     func(n int) int
}

// LoadFile reads a YAML question bank:
//
//	questions:
//	  - key: LoLju0t00s1
//	    title: Reverse a String
//	    description: ...
//	    answer: ...
func LoadFile(path, keyTemplate string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return ParseBank(data, keyTemplate)
}

// ParseBank parses YAML question bank bytes.
func ParseBank(data []byte, keyTemplate string) (*FileStore, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	for i, e := range f.Questions {
		if e.Key == "" {
			return nil, fmt.Errorf("question bank entry %d: missing key", i)
		}
		if e.Title == "" {
			return nil, fmt.Errorf("question bank entry %q: missing title", e.Key)
		}
	}
	sort.SliceStable(f.Questions, func(i, j int) bool { return f.Questions[i].Key < f.Questions[j].Key })
	return &FileStore{template: keyTemplate, entries: f.Questions, pick: rand.IntN}, nil
}

// Len returns the number of questions in the bank.
func (s *FileStore) Len() int {
	return len(s.entries)
}

// Fetch returns a random question whose key starts with LookupKey(id).
func (s *FileStore) Fetch(ctx context.Context, questionID int) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	key := LookupKey(s.template, questionID)

	var matches []Record
	for _, e := range s.entries {
		if strings.HasPrefix(e.Key, key) {
			matches = append(matches, e.Record)
		}
	}
	if len(matches) == 0 {
		return NoQuestion, nil
	}
	return matches[s.pick(len(matches))], nil
}
