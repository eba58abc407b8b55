// Package corpus loads level-keyed document corpora from disk
// (original_source/src/env.py's dataset sampling), for cmd/chronicle's
// play subcommand. pkg/game itself never touches the
// filesystem; this is harness-only convenience.
package corpus

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rfielding/chronicle/pkg/document"
	"github.com/rfielding/chronicle/pkg/endpoint"
	"github.com/rfielding/chronicle/pkg/relation"
)

// manifest is a level's level.yaml: the ordered list of document files
// that belong to that difficulty level.
type manifest struct {
	Documents []string `yaml:"documents"`
}

// docFile is the on-disk JSON shape for one document.
type docFile struct {
	Text     string `json:"text"`
	Entities []struct {
		ID      string `json:"id"`
		Text    string `json:"text"`
		Start   int    `json:"start"`
		End     int    `json:"end"`
		Kind    string `json:"kind"`
	} `json:"entities"`
	Relations []struct {
		Source string `json:"source"`
		Target string `json:"target"`
		Rel    string `json:"rel"`
	} `json:"relations"`
}

// Corpus is the set of documents loaded for one difficulty level.
type Corpus struct {
	Level int
	docs  []document.RawDocument
}

// Load reads root/level{N}/level.yaml and every document file it
// names, into memory.
func Load(root string, level int) (*Corpus, error) {
	levelDir := filepath.Join(root, fmt.Sprintf("level%d", level))
	manifestPath := filepath.Join(levelDir, "level.yaml")

	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("corpus: reading %s: %w", manifestPath, err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("corpus: parsing %s: %w", manifestPath, err)
	}

	c := &Corpus{Level: level}
	for _, name := range m.Documents {
		doc, err := loadDoc(filepath.Join(levelDir, name))
		if err != nil {
			return nil, err
		}
		c.docs = append(c.docs, doc)
	}
	return c, nil
}

func loadDoc(path string) (document.RawDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return document.RawDocument{}, fmt.Errorf("corpus: reading %s: %w", path, err)
	}
	var df docFile
	if err := json.Unmarshal(raw, &df); err != nil {
		return document.RawDocument{}, fmt.Errorf("corpus: parsing %s: %w", path, err)
	}

	out := document.RawDocument{Text: df.Text}
	for _, e := range df.Entities {
		kind := endpoint.Interval
		if e.Kind == string(endpoint.InstantK) {
			kind = endpoint.InstantK
		}
		out.Entities = append(out.Entities, document.RawEntity{
			ID: e.ID, Text: e.Text, Offsets: [2]int{e.Start, e.End}, Kind: kind,
		})
	}
	for _, r := range df.Relations {
		out.Relations = append(out.Relations, document.RawRelation{
			Source: r.Source, Target: r.Target, Rel: relation.Symbol(r.Rel),
		})
	}
	return out, nil
}

// Len returns the number of documents loaded.
func (c *Corpus) Len() int { return len(c.docs) }

// At returns the document at index i.
func (c *Corpus) At(i int) document.RawDocument { return c.docs[i] }

// Sample returns a uniformly random document, for "play" mode.
func (c *Corpus) Sample(rng *rand.Rand) (document.RawDocument, error) {
	if len(c.docs) == 0 {
		return document.RawDocument{}, fmt.Errorf("corpus: level %d has no documents", c.Level)
	}
	return c.docs[rng.Intn(len(c.docs))], nil
}
