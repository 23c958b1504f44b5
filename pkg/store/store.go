// Package store implements durable, crash-safe persistence of the defaults
// and offers collections as single JSON documents.
//
// Concurrency contract: the exclusive file lock is held only across the
// backup+atomic-write sequence inside Save, not across a caller's whole
// load-mutate-save round trip. Two concurrent processes doing read-modify-
// write on the same store can therefore lose an update (last-writer-wins).
// That is an accepted limitation for a single-user local tool; the tests
// document it rather than hide it.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/logging"
)

// backupTimestampFormat orders lexicographically the same as chronologically
// and is unique down to the nanosecond, so retention pruning can sort names.
const backupTimestampFormat = "2006-01-02T15-04-05.000000000Z"

// JSONStore persists one document type as a single JSON file.
type JSONStore[T any] struct {
	path       string
	backupsDir string
	fresh      func() *T
	schema     *jsonschema.Schema
}

// NewJSONStore creates a store for the document at path. fresh produces the
// default document returned when no file exists yet; it must return a new
// value on every call. schema is optional; when set, loaded documents are
// validated against it.
func NewJSONStore[T any](path, backupsDir string, fresh func() *T, schema *jsonschema.Schema) *JSONStore[T] {
	return &JSONStore[T]{
		path:       path,
		backupsDir: backupsDir,
		fresh:      fresh,
		schema:     schema,
	}
}

// Path returns the canonical file path of the store.
func (s *JSONStore[T]) Path() string { return s.path }

// Load parses the backing file. A missing file yields a fresh default
// document. Unparsable JSON or a schema mismatch is DATA_CORRUPTED.
func (s *JSONStore[T]) Load() (*T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.fresh(), nil
		}
		if os.IsPermission(err) {
			return nil, errors.Wrapf(err, errors.ErrPermissionDenied,
				"cannot read %s", s.path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileNotFound,
			"cannot read %s", s.path)
	}

	if s.schema != nil {
		inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrDataCorrupted,
				"%s contains malformed JSON", s.path)
		}
		if err := s.schema.Validate(inst); err != nil {
			return nil, errors.Wrapf(err, errors.ErrDataCorrupted,
				"%s does not match the expected document structure", s.path)
		}
	}

	doc := s.fresh()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDataCorrupted,
			"%s contains malformed JSON", s.path)
	}
	return doc, nil
}

// Save writes the document under an exclusive, non-blocking file lock:
// optionally back up the existing file (skipped when none exists yet), prune
// old backups to maxBackups, then atomically replace the canonical file via
// temp-file + rename. A lock already held by another process fails fast with
// STORE_LOCKED rather than waiting.
func (s *JSONStore[T]) Save(doc *T, backupEnabled bool, maxBackups int) error {
	logger := logging.GetLogger("store")

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot create data directory for %s", s.path)
	}

	lock := flock.New(s.path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Wrapf(err, errors.ErrStoreLocked,
			"failed to acquire lock for %s", s.path)
	}
	if !locked {
		return errors.Newf(errors.ErrStoreLocked,
			"%s is locked by another slap process", s.path)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn().Err(err).Str("path", s.path).Msg("Failed to release store lock")
		}
	}()

	if backupEnabled {
		if err := s.backup(maxBackups); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal,
			"cannot encode document for %s", s.path)
	}
	data = append(data, '\n')

	if err := atomicWrite(s.path, data); err != nil {
		return err
	}

	logger.Debug().Str("path", s.path).Int("bytes", len(data)).Msg("Store saved")
	return nil
}

// backup snapshots the current file into the backups directory and prunes
// the oldest snapshots beyond maxBackups. No-op when the file does not exist.
func (s *JSONStore[T]) backup(maxBackups int) error {
	src, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot read %s for backup", s.path)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(s.backupsDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot create backups directory %s", s.backupsDir)
	}

	base := filepath.Base(s.path)
	stamp := time.Now().UTC().Format(backupTimestampFormat)
	backupPath := filepath.Join(s.backupsDir, fmt.Sprintf("%s.%s.bak", base, stamp))

	dst, err := os.OpenFile(backupPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot create backup %s", backupPath)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot write backup %s", backupPath)
	}
	if err := dst.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot finish backup %s", backupPath)
	}

	return s.pruneBackups(base, maxBackups)
}

// pruneBackups keeps only the maxBackups most recent backups for base,
// deleting the oldest first. Timestamped names sort chronologically.
func (s *JSONStore[T]) pruneBackups(base string, maxBackups int) error {
	entries, err := os.ReadDir(s.backupsDir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot list backups directory %s", s.backupsDir)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".bak") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for len(names) > maxBackups {
		victim := filepath.Join(s.backupsDir, names[0])
		if err := os.Remove(victim); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite,
				"cannot prune backup %s", victim)
		}
		names = names[1:]
	}
	return nil
}

// atomicWrite writes data to a temp file in the same directory and renames
// it over path, so a crash mid-write never corrupts the canonical file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot close %s", tmpName)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot replace %s", path)
	}
	return nil
}
