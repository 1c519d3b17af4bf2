// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diskcache is a persistent, file-backed decorator around
// pubgrub.Source, generalizing the core package's in-memory CachedSource to
// survive across process runs. It is the concrete instance of a "package
// source" cache: something a CLI or long-lived resolver process wants when
// the underlying source is a slow, real registry rather than an in-memory
// fixture.
//
// Only GetVersions is persisted to disk. GetDependencies is not: a
// dependency list carries arbitrary pubgrub.Condition values, and Condition
// has no generic serialization contract of its own, so round-tripping it
// through disk would require a second embedder-supplied codec for a
// feature most callers don't need. Callers wanting both should compose
// this with pubgrub.NewCachedSource, which already covers GetDependencies
// in memory for the lifetime of one process.
package diskcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cyphar/filepath-securejoin"
	"github.com/docker/go-units"
	"github.com/gofrs/flock"
	"github.com/opencontainers/go-digest"

	pubgrub "github.com/contriboss-labs/pubgrub-solver"
)

// VersionCodec converts a package's versions to and from their persisted
// string form. Callers supply this because pubgrub.Version is opaque to the
// core package; a real embedder already has a parser for its own version
// grammar (see the semverset package for one such implementation).
type VersionCodec interface {
	Encode(v pubgrub.Version) string
	Decode(name pubgrub.Name, s string) (pubgrub.Version, error)
}

// Source wraps a pubgrub.Source, persisting each package's version list to
// a JSON file under Root the first time it is fetched, and serving it from
// disk on every later solve without contacting the underlying source again.
type Source struct {
	inner pubgrub.Source
	codec VersionCodec
	root  string

	memo map[pubgrub.Name][]pubgrub.Version
}

// New creates a disk-backed cache rooted at dir, wrapping inner. dir is
// created with 0o755 permissions if it does not already exist.
func New(dir string, inner pubgrub.Source, codec VersionCodec) (*Source, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("diskcache: create cache root %s: %w", dir, err)
	}
	return &Source{
		inner: inner,
		codec: codec,
		root:  dir,
		memo:  make(map[pubgrub.Name][]pubgrub.Version),
	}, nil
}

type entry struct {
	Package  string   `json:"package"`
	Versions []string `json:"versions"`
	CachedAt string   `json:"cached_at"`
}

// entryPath returns the on-disk path for a package's cached version list,
// keyed by the SHA-256 digest of its name so arbitrary package names never
// need escaping and can't traverse outside root.
func (s *Source) entryPath(name pubgrub.Name) (string, error) {
	key := digest.FromString(name.Value()).Encoded()
	return securejoin.SecureJoin(s.root, key+".json")
}

// lockPath returns the path to the flock guard for a cache entry, separate
// from the entry file itself so a reader never has to take the write lock.
func (s *Source) lockPath(entryFile string) string {
	return entryFile + ".lock"
}

// GetVersions returns a package's versions, preferring the in-process memo,
// then the on-disk cache, and finally falling through to the wrapped
// source, persisting whatever it returns for next time.
func (s *Source) GetVersions(name pubgrub.Name) ([]pubgrub.Version, error) {
	if versions, ok := s.memo[name]; ok {
		return versions, nil
	}

	path, err := s.entryPath(name)
	if err != nil {
		return nil, fmt.Errorf("diskcache: resolve cache path for %s: %w", name.Value(), err)
	}

	if versions, ok, err := s.readEntry(name, path); err != nil {
		return nil, err
	} else if ok {
		s.memo[name] = versions
		return versions, nil
	}

	versions, err := s.inner.GetVersions(name)
	if err != nil {
		return nil, err
	}

	if err := s.writeEntry(name, path, versions); err != nil {
		return nil, err
	}
	s.memo[name] = versions
	return versions, nil
}

// GetDependencies always delegates to the wrapped source; see the package
// doc comment for why dependency lists are not cached to disk.
func (s *Source) GetDependencies(name pubgrub.Name, version pubgrub.Version) ([]pubgrub.Term, error) {
	return s.inner.GetDependencies(name, version)
}

func (s *Source) readEntry(name pubgrub.Name, path string) ([]pubgrub.Version, bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("diskcache: read %s: %w", path, err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, fmt.Errorf("diskcache: decode %s: %w", path, err)
	}

	versions := make([]pubgrub.Version, 0, len(e.Versions))
	for _, raw := range e.Versions {
		v, err := s.codec.Decode(name, raw)
		if err != nil {
			return nil, false, fmt.Errorf("diskcache: decode version %q for %s: %w", raw, name.Value(), err)
		}
		versions = append(versions, v)
	}
	return versions, true, nil
}

func (s *Source) writeEntry(name pubgrub.Name, path string, versions []pubgrub.Version) error {
	lock := flock.New(s.lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("diskcache: lock %s: %w", path, err)
	}
	defer lock.Unlock()

	encoded := make([]string, len(versions))
	for i, v := range versions {
		encoded[i] = s.codec.Encode(v)
	}

	e := entry{
		Package:  name.Value(),
		Versions: encoded,
		CachedAt: time.Now().UTC().Format(time.RFC3339),
	}

	raw, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("diskcache: encode entry for %s: %w", name.Value(), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("diskcache: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("diskcache: rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

// Stats reports the cache's on-disk footprint, in bytes and as a
// human-readable size (e.g. "42kB"), plus the number of packages currently
// persisted.
type Stats struct {
	Packages  int
	Bytes     int64
	HumanSize string
}

// Stats walks Root and summarizes the persisted cache entries.
func (s *Source) Stats() (Stats, error) {
	var stats Stats
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.Packages++
		stats.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("diskcache: stat cache root %s: %w", s.root, err)
	}
	stats.HumanSize = units.HumanSize(float64(stats.Bytes))
	return stats, nil
}

var _ pubgrub.Source = (*Source)(nil)
