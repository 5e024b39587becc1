package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/milk9111/listeningjourney/journey"
)

const fileExt = ".yaml"

// FileStore keeps one YAML document per journey in a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("storage: empty directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "storage: create %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

func (s *FileStore) Save(ctx context.Context, doc *journey.Document) error {
	if doc == nil {
		return errors.New("storage: nil document")
	}
	if err := validID(doc.ID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Wrapf(journey.SaveFile(s.path(doc.ID), doc), "storage: save %s", doc.ID)
}

func (s *FileStore) Load(ctx context.Context, id string) (*journey.Document, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.path(id)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "%q", id)
	}
	doc, err := journey.LoadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "storage: load %s", id)
	}
	return doc, nil
}

func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "storage: list")
	}
	var out []Summary
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), fileExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := journey.LoadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "storage: list %s", e.Name())
		}
		sum := Summary{
			ID:            doc.ID,
			Name:          doc.Name,
			AudioSrc:      doc.AudioSrc,
			TotalDuration: doc.TotalDuration,
		}
		if info, err := e.Info(); err == nil {
			sum.UpdatedAt = info.ModTime()
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(ErrNotFound, "%q", id)
	}
	return errors.Wrapf(err, "storage: delete %s", id)
}

func (s *FileStore) Close() error {
	return nil
}
