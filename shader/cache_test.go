// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCachePutGet(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	src := Source{Stage: StageFragment, Text: "x"}
	art := &Artifact{
		Stage:      StageFragment,
		Target:     TargetWGSL,
		EntryPoint: "fs_main",
		Text:       "@fragment fn fs_main() {}",
		Digest:     SourceDigest(src, TargetWGSL),
	}
	if err := cache.Put(art); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := cache.Get(art.Digest)
	if !ok {
		t.Fatal("Get missed")
	}
	if got.Text != art.Text || got.EntryPoint != art.EntryPoint || got.Stage != art.Stage || got.Target != art.Target {
		t.Errorf("Get = %+v, want %+v", got, art)
	}

	other := SourceDigest(Source{Stage: StageFragment, Text: "y"}, TargetWGSL)
	if _, ok := cache.Get(other); ok {
		t.Error("Get hit for unknown digest")
	}
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(dir)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	digest := SourceDigest(Source{Stage: StageVertex, Text: "v"}, TargetSPIRV)
	p := cache.pathFor(digest)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("not msgpack"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Get(digest); ok {
		t.Error("corrupt entry should be a miss")
	}
}

func TestCacheClear(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	art := &Artifact{Stage: StageVertex, Target: TargetSPIRV, Words: []uint32{0x07230203}}
	art.Digest = SourceDigest(Source{Stage: StageVertex, Text: "v"}, TargetSPIRV)
	if err := cache.Put(art); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := cache.Get(art.Digest); ok {
		t.Error("Get hit after Clear")
	}
}

func TestNilCache(t *testing.T) {
	var c *Cache
	if _, ok := c.Get([32]byte{}); ok {
		t.Error("nil cache hit")
	}
	if err := c.Put(&Artifact{}); err != nil {
		t.Errorf("nil Put = %v", err)
	}
	if _, err := OpenCache(""); err == nil {
		t.Error("OpenCache(\"\") should fail")
	}
}
