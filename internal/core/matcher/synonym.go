package matcher

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SynonymTable maps a term to the group of terms considered equivalent
type SynonymTable struct {
	groups map[string][]string
}

// synonymFile is the on-disk shape:
//
//	groups:
//	  - [price, cost, pricing, fee]
//	  - [hours, schedule, opening times]
type synonymFile struct {
	Groups [][]string `yaml:"groups"`
}

// NewSynonymTable builds a table from groups of equivalent terms. A term that
// appears in several groups is equivalent to the union of them.
func NewSynonymTable(groups [][]string) *SynonymTable {
	t := &SynonymTable{groups: make(map[string][]string)}
	for _, group := range groups {
		normalized := make([]string, 0, len(group))
		for _, term := range group {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" {
				normalized = append(normalized, term)
			}
		}
		for _, term := range normalized {
			t.groups[term] = appendUnique(t.groups[term], normalized...)
		}
	}
	return t
}

// LoadSynonymTable reads a YAML synonym file
func LoadSynonymTable(path string) (*SynonymTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonym file: %w", err)
	}

	var file synonymFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse synonym file: %w", err)
	}

	return NewSynonymTable(file.Groups), nil
}

// DefaultSynonyms covers the vocabulary a small business widget sees most
func DefaultSynonyms() *SynonymTable {
	return NewSynonymTable([][]string{
		{"price", "cost", "pricing", "fee", "rate"},
		{"hours", "schedule", "opening times", "open"},
		{"location", "address", "directions"},
		{"buy", "purchase", "order"},
		{"refund", "return", "money back"},
		{"help", "support", "assistance"},
		{"hello", "hi", "hey"},
	})
}

// Expand returns the keywords plus every synonym of each keyword
func (t *SynonymTable) Expand(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		lower := strings.ToLower(strings.TrimSpace(kw))
		out = appendUnique(out, lower)
		if t == nil {
			continue
		}
		out = appendUnique(out, t.groups[lower]...)
	}
	return out
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
