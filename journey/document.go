package journey

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/listeningjourney/ids"
	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/timeline"
)

// Document is the plain-data form of a session. It carries everything needed
// to rebuild the session exactly, including item offset anchors.
type Document struct {
	ID            string             `json:"id" yaml:"id"`
	Name          string             `json:"name" yaml:"name"`
	AudioSrc      string             `json:"audioSrc" yaml:"audioSrc"`
	TotalDuration float64            `json:"totalDuration" yaml:"totalDuration"`
	Sections      []timeline.Section `json:"sections" yaml:"sections"`
	Items         []overlay.Item     `json:"items" yaml:"items"`
}

// Document returns a deep copy of the session's state.
func (s *Session) Document() *Document {
	doc := &Document{
		ID:            s.ID,
		Name:          s.Name,
		AudioSrc:      s.AudioSrc,
		TotalDuration: s.timeline.TotalDuration(),
	}
	sections := s.timeline.Sections()
	items := s.items.Items()
	if err := copier.CopyWithOption(&doc.Sections, &sections, copier.Option{DeepCopy: true}); err != nil {
		doc.Sections = sections
	}
	if err := copier.CopyWithOption(&doc.Items, &items, copier.Option{DeepCopy: true}); err != nil {
		doc.Items = items
	}
	return doc
}

// FromDocument rebuilds a session. A counter src is seeded past every ID in
// the document so new sections and items never collide with stored ones.
func FromDocument(doc *Document, src ids.Source) (*Session, error) {
	if doc == nil {
		return nil, fmt.Errorf("journey: nil document")
	}
	if src == nil {
		src = ids.NewCounter("id")
	}
	if c, ok := src.(*ids.Counter); ok {
		existing := make([]string, 0, len(doc.Sections)+len(doc.Items))
		for _, sec := range doc.Sections {
			existing = append(existing, sec.ID)
		}
		for _, it := range doc.Items {
			existing = append(existing, it.ID)
		}
		c.SeedFrom(existing...)
	}

	s := NewSession(doc.ID, doc.Name, doc.TotalDuration, src)
	s.AudioSrc = doc.AudioSrc
	if err := s.timeline.Replace(doc.Sections); err != nil {
		return nil, fmt.Errorf("journey: load %s: %w", doc.ID, err)
	}
	if err := s.items.Replace(doc.Items); err != nil {
		return nil, fmt.Errorf("journey: load %s: %w", doc.ID, err)
	}
	return s, nil
}

// SaveFile writes doc as JSON when path ends in .json and as YAML otherwise.
func SaveFile(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("journey: encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadFile reads a document written by SaveFile.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("journey: load %s: %w", path, err)
	}
	var doc Document
	if isJSON(path) {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("journey: decode %s: %w", path, err)
	}
	return &doc, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
