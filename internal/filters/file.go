package filters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
)

// DefaultPath is the file the original tool kept its filters in
const DefaultPath = "filtros_salvos.json"

// fileEntry is one value of the JSON object, keyed by filter name
type fileEntry struct {
	Domain text `json:"domain"`
	Fields text `json:"fields"`
}

// text accepts either a JSON string or any other JSON value, which is kept
// as its literal source.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(s)
		return nil
	}
	*t = text(strings.TrimSpace(string(b)))
	return nil
}

// FileStore keeps all filters in one JSON object. Every change is a
// read-modify-write under the store's mutex and an advisory lock on a
// sidecar "<path>.lock" file, so the API server and the CLI can share one
// filter file. The file itself is replaced atomically.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) List(ctx context.Context) ([]model.SavedFilter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock(false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, modTime, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]model.SavedFilter, 0, len(entries))
	for name, e := range entries {
		out = append(out, e.filter(name, modTime))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FileStore) Get(ctx context.Context, name string) (model.SavedFilter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock(false)
	if err != nil {
		return model.SavedFilter{}, err
	}
	defer unlock()

	entries, modTime, err := s.load()
	if err != nil {
		return model.SavedFilter{}, err
	}
	e, ok := entries[name]
	if !ok {
		return model.SavedFilter{}, notFound(name)
	}
	return e.filter(name, modTime), nil
}

func (s *FileStore) Save(ctx context.Context, f model.SavedFilter) error {
	if err := validName(f.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()

	entries, _, err := s.load()
	if err != nil {
		return err
	}
	entries[f.Name] = fileEntry{Domain: text(f.Domain), Fields: text(f.Fields)}
	if err := s.write(entries); err != nil {
		return err
	}
	log.Printf("[filters] saved %q", f.Name)
	return nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()

	entries, _, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[name]; !ok {
		return notFound(name)
	}
	delete(entries, name)
	if err := s.write(entries); err != nil {
		return err
	}
	log.Printf("[filters] deleted %q", name)
	return nil
}

func (s *FileStore) Close() error { return nil }

func (e fileEntry) filter(name string, modTime time.Time) model.SavedFilter {
	return model.SavedFilter{Name: name, Domain: string(e.Domain), Fields: string(e.Fields), UpdatedAt: modTime}
}

// lock takes the cross-process lock; the returned func releases it
func (s *FileStore) lock(exclusive bool) (func(), error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, exporterrors.Wrap(exporterrors.FilterStore, "create "+dir, err)
	}
	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, exporterrors.Wrap(exporterrors.FilterStore, "open lock file", err)
	}
	if err := lockFile(f, exclusive); err != nil {
		f.Close()
		return nil, exporterrors.Wrap(exporterrors.FilterStore, "lock "+s.path, err)
	}
	return func() {
		_ = unlockFile(f)
		f.Close()
	}, nil
}

// load reads the file; a missing file is an empty store
func (s *FileStore) load() (map[string]fileEntry, time.Time, error) {
	entries := map[string]fileEntry{}
	info, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, exporterrors.Wrap(exporterrors.FilterStore, "stat "+s.path, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, time.Time{}, exporterrors.Wrap(exporterrors.FilterStore, "read "+s.path, err)
	}
	if len(data) == 0 {
		return entries, info.ModTime(), nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, time.Time{}, exporterrors.Wrap(exporterrors.FilterStore, "decode "+s.path, err)
	}
	return entries, info.ModTime(), nil
}

func (s *FileStore) write(entries map[string]fileEntry) error {
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return exporterrors.Wrap(exporterrors.FilterStore, "encode filters", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return exporterrors.Wrap(exporterrors.FilterStore, "create "+dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return exporterrors.Wrap(exporterrors.FilterStore, "create temp file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return exporterrors.Wrap(exporterrors.FilterStore, "write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return exporterrors.Wrap(exporterrors.FilterStore, "close temp file", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return exporterrors.Wrap(exporterrors.FilterStore, fmt.Sprintf("replace %s", s.path), err)
	}
	return nil
}
