// Package advisory maps classifier labels to the advice shown and spoken to
// pond operators.
package advisory

import (
	"fmt"
	"sort"
	"strings"
)

// Label is a classifier output category. The set of valid labels is whatever
// the loaded Catalog defines.
type Label string

const (
	LabelSafe     Label = "Safe"
	LabelModerate Label = "Moderate"
	LabelUnsafe   Label = "Unsafe"
)

// Entry is the advice attached to one label.
type Entry struct {
	Label          Label  `json:"label" yaml:"label"`
	Severity       int    `json:"severity" yaml:"severity"` // 0 = fine; higher is worse
	Primary        string `json:"primary" yaml:"primary"`
	Translated     string `json:"translated" yaml:"translated"`
	TranslatedLang string `json:"translated_lang" yaml:"translated_lang"`
}

// Catalog is an immutable label → Entry table.
type Catalog struct {
	entries map[Label]Entry
	ordered []Entry
}

// New builds a catalog, rejecting blank or duplicate labels and empty text.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog has no entries")
	}
	c := &Catalog{entries: make(map[Label]Entry, len(entries))}
	for i, e := range entries {
		if strings.TrimSpace(string(e.Label)) == "" {
			return nil, fmt.Errorf("entry %d: blank label", i)
		}
		if _, dup := c.entries[e.Label]; dup {
			return nil, fmt.Errorf("entry %d: duplicate label %q", i, e.Label)
		}
		if e.Primary == "" || e.Translated == "" {
			return nil, fmt.Errorf("entry %q: primary and translated messages are required", e.Label)
		}
		if e.Severity < 0 {
			return nil, fmt.Errorf("entry %q: negative severity %d", e.Label, e.Severity)
		}
		c.entries[e.Label] = e
		c.ordered = append(c.ordered, e)
	}
	sort.SliceStable(c.ordered, func(i, j int) bool {
		return c.ordered[i].Severity < c.ordered[j].Severity
	})
	return c, nil
}

// Lookup returns the entry for l. Labels outside the catalog fail closed.
func (c *Catalog) Lookup(l Label) (Entry, error) {
	e, ok := c.entries[l]
	if !ok {
		return Entry{}, &ErrUnknownLabel{Label: l, Known: c.Labels()}
	}
	return e, nil
}

// Contains reports whether l has an entry.
func (c *Catalog) Contains(l Label) bool {
	_, ok := c.entries[l]
	return ok
}

// Labels returns the catalog's labels ordered by severity.
func (c *Catalog) Labels() []Label {
	out := make([]Label, len(c.ordered))
	for i, e := range c.ordered {
		out[i] = e.Label
	}
	return out
}

// Entries returns a copy of all entries ordered by severity.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// ErrUnknownLabel means a predictor emitted a label the catalog does not
// know, usually because the model and the catalog have drifted apart.
type ErrUnknownLabel struct {
	Label Label
	Known []Label
}

func (e *ErrUnknownLabel) Error() string {
	known := make([]string, len(e.Known))
	for i, l := range e.Known {
		known[i] = string(l)
	}
	return fmt.Sprintf("unknown label %q (catalog has %s)", e.Label, strings.Join(known, ", "))
}
