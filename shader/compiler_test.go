// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/shaderlab/internal/memo"
)

const testVertex = `
@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    var pos = array<vec2<f32>, 3>(
        vec2<f32>(-1.0, -1.0),
        vec2<f32>(3.0, -1.0),
        vec2<f32>(-1.0, 3.0)
    );
    return vec4<f32>(pos[idx], 0.0, 1.0);
}
`

const testFragment = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

const testFragmentSyntaxError = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0,;
}
`

const testFragmentUndeclared = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(missing, 0.0, 0.0, 1.0);
}
`

func vertexSource() Source {
	return Source{Stage: StageVertex, Name: "fullscreen.wgsl", Text: testVertex}
}

func fragmentSource(text string) Source {
	return Source{Stage: StageFragment, Name: "fragment.wgsl", Text: text}
}

func TestCompileSPIRV(t *testing.T) {
	c := NewCompiler()

	tests := []struct {
		name  string
		src   Source
		entry string
	}{
		{"vertex", vertexSource(), "vs_main"},
		{"fragment", fragmentSource(testFragment), "fs_main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art, err := c.Compile(tt.src)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if art.Target != TargetSPIRV {
				t.Errorf("Target = %v, want spirv", art.Target)
			}
			if art.Stage != tt.src.Stage {
				t.Errorf("Stage = %v, want %v", art.Stage, tt.src.Stage)
			}
			if art.EntryPoint != tt.entry {
				t.Errorf("EntryPoint = %q, want %q", art.EntryPoint, tt.entry)
			}
			if len(art.Words) < 5 {
				t.Fatalf("SPIR-V too short: %d words", len(art.Words))
			}
			if art.Words[0] != 0x07230203 {
				t.Errorf("magic = %#x, want 0x07230203", art.Words[0])
			}
			if art.Size() != len(art.Words)*4 {
				t.Errorf("Size = %d, want %d", art.Size(), len(art.Words)*4)
			}
		})
	}
}

func TestCompileWGSLPassthrough(t *testing.T) {
	c := NewCompiler(WithTarget(TargetWGSL))
	art, err := c.Compile(fragmentSource(testFragment))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if art.Text != testFragment {
		t.Error("WGSL artifact should carry the validated source text")
	}
	if art.Words != nil {
		t.Error("WGSL artifact should have no words")
	}
}

func TestCompileDeterministic(t *testing.T) {
	c := NewCompiler()
	a, err := c.Compile(vertexSource())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	b, err := c.Compile(vertexSource())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if a.Digest != b.Digest {
		t.Error("digest differs for identical source")
	}
	if len(a.Words) != len(b.Words) {
		t.Fatalf("word count differs: %d vs %d", len(a.Words), len(b.Words))
	}
	for i := range a.Words {
		if a.Words[i] != b.Words[i] {
			t.Fatalf("word %d differs", i)
		}
	}
}

func TestCompileParseError(t *testing.T) {
	_, err := NewCompiler().Compile(fragmentSource(testFragmentSyntaxError))
	if err == nil {
		t.Fatal("expected error")
	}
	d, ok := AsDiagnostic(err)
	if !ok {
		t.Fatalf("error %T is not a Diagnostic", err)
	}
	if d.Kind != KindParse {
		t.Errorf("Kind = %v, want %v", d.Kind, KindParse)
	}
	if d.Stage != StageFragment {
		t.Errorf("Stage = %v, want fragment", d.Stage)
	}
	if d.Message == "" {
		t.Error("Message is empty")
	}
	if d.Span.Line != 4 {
		t.Errorf("Span.Line = %d, want 4", d.Span.Line)
	}
	if d.Span.Column == 0 {
		t.Error("Span.Column is zero")
	}
	if strings.Contains(d.Message, "line 4") || strings.HasPrefix(d.Message, "parse error") {
		t.Errorf("Message = %q, want location stripped", d.Message)
	}
	if !strings.Contains(d.Text(), "^") {
		t.Errorf("Text() has no caret:\n%s", d.Text())
	}
}

func TestCompileUndeclaredIdentifier(t *testing.T) {
	_, err := NewCompiler().Compile(fragmentSource(testFragmentUndeclared))
	if !IsKind(err, KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	d, _ := AsDiagnostic(err)
	if d.Span.IsZero() {
		t.Errorf("Span is zero for %q", d.Message)
	}
	if !strings.Contains(d.Message, "missing") {
		t.Errorf("Message = %q, want identifier name", d.Message)
	}
	if d.Context == "" {
		t.Error("Context is empty")
	}
}

func TestMatchPosition(t *testing.T) {
	tests := []struct {
		name string
		re   string
		in   string
		span Span
		msg  string
	}{
		{"parse", "parse", "parse error: line 11, column 15: unexpected token ; in expression",
			Span{Line: 11, Column: 15}, "unexpected token ; in expression"},
		{"lower", "lower", "3:1: unresolved identifier: missing",
			Span{Line: 3, Column: 1}, "unresolved identifier: missing"},
		{"lower wrapped", "lower", "module constant 'k' arg 0: 7:9: bad type (and 2 more errors)",
			Span{Line: 7, Column: 9}, "bad type (and 2 more errors)"},
		{"lower no span", "lower", "unresolved identifier: missing", Span{}, ""},
		{"parse no span", "parse", "tokenization error: eof", Span{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := parsePos
			if tt.re == "lower" {
				re = lowerPos
			}
			span, msg, ok := matchPosition(re, tt.in)
			if ok != !tt.span.IsZero() {
				t.Fatalf("ok = %v", ok)
			}
			if span != tt.span || msg != tt.msg {
				t.Errorf("got %v %q, want %v %q", span, msg, tt.span, tt.msg)
			}
		})
	}
}

func TestCompileEmptySource(t *testing.T) {
	_, err := NewCompiler().Compile(fragmentSource("  \n\t"))
	if !IsKind(err, KindParse) {
		t.Fatalf("err = %v, want parse error", err)
	}
	if !errors.Is(err, ErrEmptySource) {
		t.Errorf("err = %v, want ErrEmptySource in chain", err)
	}
}

func TestCompileMissingEntryPoint(t *testing.T) {
	// A vertex-only module compiled as a fragment shader.
	src := Source{Stage: StageFragment, Name: "v.wgsl", Text: testVertex}
	_, err := NewCompiler().Compile(src)
	if !IsKind(err, KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCompileNamedEntryPoint(t *testing.T) {
	src := vertexSource()
	src.EntryPoint = "other_main"
	_, err := NewCompiler().Compile(src)
	if !IsKind(err, KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if !strings.Contains(err.Error(), "other_main") {
		t.Errorf("err = %q, want entry point name", err)
	}

	src.EntryPoint = "vs_main"
	if _, err := NewCompiler().Compile(src); err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

func TestCheck(t *testing.T) {
	c := NewCompiler()
	if err := c.Check(fragmentSource(testFragment)); err != nil {
		t.Errorf("Check(valid) = %v", err)
	}
	if err := c.Check(fragmentSource(testFragmentSyntaxError)); !IsKind(err, KindParse) {
		t.Errorf("Check(invalid) = %v, want parse error", err)
	}
}

func TestCompileExportTargets(t *testing.T) {
	for _, target := range []Target{TargetGLSL, TargetMSL, TargetHLSL} {
		t.Run(target.String(), func(t *testing.T) {
			art, err := NewCompiler(WithTarget(target)).Compile(fragmentSource(testFragment))
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if art.Text == "" {
				t.Error("empty output")
			}
			if target.DeviceConsumable() {
				t.Error("export target reported as device-consumable")
			}
		})
	}
}

func TestCompileWithCache(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	c := NewCompiler(WithCache(cache))

	first, err := c.Compile(vertexSource())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cached, ok := cache.Get(first.Digest)
	if !ok {
		t.Fatal("artifact not written to cache")
	}
	if cached.EntryPoint != first.EntryPoint || len(cached.Words) != len(first.Words) {
		t.Errorf("cached artifact differs: %+v", cached)
	}

	second, err := c.Compile(vertexSource())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if second.Digest != first.Digest {
		t.Error("digest changed across cache hit")
	}
}

func TestCompileMemoryCache(t *testing.T) {
	c := NewCompiler(WithMemoryCache(4))
	first, err := c.Compile(vertexSource())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	second, err := c.Compile(vertexSource())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if first != second {
		t.Error("second compile of identical source did not reuse the artifact")
	}
	if s := c.MemoryStats(); s.Hits != 1 || s.Len != 1 {
		t.Errorf("MemoryStats = %+v", s)
	}

	// A different target must not share entries.
	wgsl, err := NewCompiler(WithTarget(TargetWGSL), WithMemoryCache(4)).Compile(vertexSource())
	if err != nil {
		t.Fatal(err)
	}
	if wgsl.Digest == first.Digest {
		t.Error("digest ignores the target")
	}

	if s := NewCompiler().MemoryStats(); s != (memo.Stats{}) {
		t.Errorf("MemoryStats without cache = %+v", s)
	}
}

func TestCompileSharedCacheSeparatesOptions(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	v10 := NewCompiler(WithCache(cache), WithSPIRVVersion(spirv.Version1_0))
	v13 := NewCompiler(WithCache(cache), WithSPIRVVersion(spirv.Version1_3))
	dbg := NewCompiler(WithCache(cache), WithSPIRVVersion(spirv.Version1_3), WithDebugInfo(true))

	a, err := v10.Compile(vertexSource())
	if err != nil {
		t.Fatalf("Compile 1.0: %v", err)
	}
	b, err := v13.Compile(vertexSource())
	if err != nil {
		t.Fatalf("Compile 1.3: %v", err)
	}
	c, err := dbg.Compile(vertexSource())
	if err != nil {
		t.Fatalf("Compile debug: %v", err)
	}

	if a.Words[1] != 0x00010000 {
		t.Errorf("1.0 version word = %#x", a.Words[1])
	}
	if b.Words[1] != 0x00010300 {
		t.Errorf("1.3 version word = %#x, served from the 1.0 entry", b.Words[1])
	}
	if a.Digest == b.Digest || b.Digest == c.Digest {
		t.Error("digest ignores SPIR-V version or debug info")
	}
	if _, ok := cache.Get(c.Digest); !ok {
		t.Error("debug artifact not stored under its own key")
	}
}
