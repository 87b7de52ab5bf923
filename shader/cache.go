// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheSchemaVersion is bumped whenever cacheEntry or the digest changes shape.
const cacheSchemaVersion uint16 = 2

// Cache stores compiled artifacts on disk keyed by their source digest.
//
// A nil *Cache is valid and caches nothing. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cacheEntry struct {
	Schema     uint16
	Stage      uint8
	Target     uint8
	EntryPoint string
	Text       string
	Words      []uint32
	Digest     []byte
}

// OpenCache opens (creating if needed) an artifact cache rooted at dir.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("shader: cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open shader cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(digest [32]byte) string {
	return filepath.Join(c.dir, "artifacts", hex.EncodeToString(digest[:])+".mp")
}

// Get returns the cached artifact for digest. Unreadable, stale-schema
// or mismatched entries count as misses.
func (c *Cache) Get(digest [32]byte) (*Artifact, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(digest))
	if err != nil {
		return nil, false
	}
	var e cacheEntry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	if e.Schema != cacheSchemaVersion || len(e.Digest) != len(digest) {
		return nil, false
	}
	art := &Artifact{
		Stage:      Stage(e.Stage),
		Target:     Target(e.Target),
		EntryPoint: e.EntryPoint,
		Text:       e.Text,
		Words:      e.Words,
	}
	copy(art.Digest[:], e.Digest)
	if art.Digest != digest {
		return nil, false
	}
	return art, true
}

// Put writes art under its digest. The file is replaced atomically.
func (c *Cache) Put(art *Artifact) error {
	if c == nil || art == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e := cacheEntry{
		Schema:     cacheSchemaVersion,
		Stage:      uint8(art.Stage),
		Target:     uint8(art.Target),
		EntryPoint: art.EntryPoint,
		Text:       art.Text,
		Words:      art.Words,
		Digest:     art.Digest[:],
	}
	data, err := msgpack.Marshal(&e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	p := c.pathFor(art.Digest)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Clear removes every cached artifact.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "artifacts"))
}
