// Package storage persists journey documents. Callers hand whole documents
// across the boundary; nothing outside this package sees rows or files.
package storage

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/milk9111/listeningjourney/journey"
)

var (
	ErrNotFound  = errors.New("storage: journey not found")
	ErrInvalidID = errors.New("storage: invalid journey id")
)

// Summary is the listing view of a stored journey.
type Summary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	AudioSrc      string    `json:"audioSrc"`
	TotalDuration float64   `json:"totalDuration"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Store interface {
	Save(ctx context.Context, doc *journey.Document) error
	Load(ctx context.Context, id string) (*journey.Document, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

const yamlScheme = "yaml://"

// Open picks a store by DSN: yaml://<dir> keeps one YAML file per journey,
// anything else is a sqlite database path.
func Open(dsn string) (Store, error) {
	if dir, ok := strings.CutPrefix(dsn, yamlScheme); ok {
		return NewFileStore(dir)
	}
	return OpenSQL(dsn)
}

func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return nil
}
