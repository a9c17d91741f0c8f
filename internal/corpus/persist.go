package corpus

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// persistedCorpus is the on-disk representation. Kept separate from Snapshot
// so the wire format does not change when in-memory fields do.
type persistedCorpus struct {
	Snapshot Snapshot
}

// SaveFile writes the current corpus to path as gzipped gob. The write goes
// through a temp file and rename so a crash never leaves a torn corpus.
func (s *Store) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating corpus file: %w", err)
	}

	gz := gzip.NewWriter(f)
	err = gob.NewEncoder(gz).Encode(persistedCorpus{Snapshot: *s.Snapshot()})
	if cerr := gz.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("encoding corpus: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing corpus file: %w", err)
	}
	return nil
}

// LoadFile replaces the store's contents with the corpus saved at path.
// The loaded corpus is bit-for-bit equivalent to what was saved, including
// the last-updated timestamp.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening corpus file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("reading corpus file: %w", err)
	}
	defer gz.Close()

	var loaded persistedCorpus
	if err := gob.NewDecoder(gz).Decode(&loaded); err != nil {
		return fmt.Errorf("decoding corpus: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snap := loaded.Snapshot
	s.snap.Store(&snap)
	return nil
}
