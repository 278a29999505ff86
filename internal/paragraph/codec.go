package paragraph

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a record. Section and time are two-integer pairs and are
// either both present or both absent.
type document struct {
	Text    string `yaml:"text"`
	Book    string `yaml:"book"`
	Author  string `yaml:"author"`
	Section []int  `yaml:"section,omitempty,flow"`
	Time    []int  `yaml:"time,omitempty,flow"`
}

// Marshal encodes the record as YAML.
func Marshal(r Record) ([]byte, error) {
	doc := document{Text: r.Text, Book: r.Book, Author: r.Author}
	if r.match != nil {
		doc.Section = []int{r.match.span.Start, r.match.span.End}
		doc.Time = []int{r.match.time.Hour, r.match.time.Minute}
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return out, nil
}

// Unmarshal decodes a YAML record and re-checks the span/time invariants.
func Unmarshal(data []byte) (Record, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	r := New(doc.Text, doc.Book, doc.Author)
	switch {
	case doc.Section == nil && doc.Time == nil:
		return r, nil
	case len(doc.Section) != 2 || len(doc.Time) != 2:
		return Record{}, fmt.Errorf("unmarshal record: section and time must both be pairs, got %v and %v",
			doc.Section, doc.Time)
	}
	r, err := r.Highlight(
		Span{Start: doc.Section[0], End: doc.Section[1]},
		ClockTime{Hour: doc.Time[0], Minute: doc.Time[1]},
	)
	if err != nil {
		return Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return r, nil
}
