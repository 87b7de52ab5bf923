// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
	"github.com/gogpu/naga/wgsl"

	"github.com/gogpu/shaderlab/internal/logx"
	"github.com/gogpu/shaderlab/internal/memo"
)

// ErrEmptySource is wrapped by the diagnostic returned for blank source text.
var ErrEmptySource = errors.New("shader: source is empty")

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithTarget selects the emitted representation. Defaults to TargetSPIRV.
func WithTarget(t Target) CompilerOption {
	return func(c *Compiler) { c.target = t }
}

// WithSPIRVVersion selects the SPIR-V version for TargetSPIRV.
func WithSPIRVVersion(v spirv.Version) CompilerOption {
	return func(c *Compiler) { c.spirvVersion = v }
}

// WithDebugInfo emits OpName/OpLine debug instructions into SPIR-V.
func WithDebugInfo(debug bool) CompilerOption {
	return func(c *Compiler) { c.debug = debug }
}

// WithCache attaches an artifact cache consulted before compiling.
func WithCache(cache *Cache) CompilerOption {
	return func(c *Compiler) { c.cache = cache }
}

// WithMemoryCache keeps up to n recent artifacts in memory, so an
// unchanged stage is not recompiled on every reload. n <= 0 disables it.
func WithMemoryCache(n int) CompilerOption {
	return func(c *Compiler) {
		if n <= 0 {
			c.memory = nil
			return
		}
		c.memory = memo.New[[32]byte, *Artifact](n)
	}
}

// Compiler drives the naga toolchain: parse, validate, emit.
//
// A Compiler holds only immutable options and may be shared; Compile is
// safe for concurrent use as long as the attached Cache is.
type Compiler struct {
	target       Target
	spirvVersion spirv.Version
	debug        bool
	cache        *Cache
	memory       *memo.Map[[32]byte, *Artifact]
}

// NewCompiler creates a compiler. Without options it emits SPIR-V 1.3.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		target:       TargetSPIRV,
		spirvVersion: spirv.Version1_3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Target returns the compiler's emitted representation.
func (c *Compiler) Target() Target { return c.target }

// Compile turns src into an Artifact. On failure the returned error is
// a *Diagnostic of kind KindParse, KindValidation or KindBackend.
func (c *Compiler) Compile(src Source) (*Artifact, error) {
	start := time.Now()
	digest := c.digest(src)

	if c.memory != nil {
		if art, ok := c.memory.Get(digest); ok {
			return art, nil
		}
	}
	if c.cache != nil {
		if art, ok := c.cache.Get(digest); ok {
			logx.Logger().Debug("shader: cache hit", "stage", src.Stage, "name", src.Name)
			c.remember(art)
			return art, nil
		}
	}

	module, err := c.frontEnd(src)
	if err != nil {
		return nil, err
	}
	entry, err := pickEntryPoint(module, src)
	if err != nil {
		return nil, err
	}

	art := &Artifact{
		Stage:      src.Stage,
		Target:     c.target,
		EntryPoint: entry,
		Digest:     digest,
	}
	if err := c.emit(module, src, art); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(art); err != nil {
			logx.Logger().Warn("shader: cache write failed", "err", err)
		}
	}
	c.remember(art)
	logx.Logger().Debug("shader: compiled",
		"stage", src.Stage, "name", src.Name, "target", c.target,
		"bytes", art.Size(), "elapsed", time.Since(start))
	return art, nil
}

// digest keys src under everything that shapes the emitted bytes: the
// target, SPIR-V version, debug info and the naga release doing the work.
func (c *Compiler) digest(src Source) [sha256.Size]byte {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d.%d\x00%t\x00", toolchainVersion(), c.spirvVersion.Major, c.spirvVersion.Minor, c.debug)
	base := SourceDigest(src, c.target)
	h.Write(base[:])
	var d [sha256.Size]byte
	copy(d[:], h.Sum(nil))
	return d
}

// toolchainVersion is the linked naga module version, or "devel" when the
// binary carries no module information.
var toolchainVersion = sync.OnceValue(func() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Path != nagaModule {
				continue
			}
			if dep.Replace != nil {
				dep = dep.Replace
			}
			return nagaModule + "@" + dep.Version
		}
	}
	return nagaModule + "@devel"
})

const nagaModule = "github.com/gogpu/naga"

func (c *Compiler) remember(art *Artifact) {
	if c.memory != nil {
		c.memory.Put(art.Digest, art)
	}
}

// MemoryStats reports the in-memory artifact cache usage. It is zero
// without WithMemoryCache.
func (c *Compiler) MemoryStats() memo.Stats {
	if c.memory == nil {
		return memo.Stats{}
	}
	return c.memory.Stats()
}

// Check parses and validates src without emitting anything.
func (c *Compiler) Check(src Source) error {
	module, err := c.frontEnd(src)
	if err != nil {
		return err
	}
	_, err = pickEntryPoint(module, src)
	return err
}

// frontEnd runs parse, lowering and IR validation.
func (c *Compiler) frontEnd(src Source) (*ir.Module, error) {
	if strings.TrimSpace(src.Text) == "" {
		return nil, NewDiagnostic(KindParse, src.Stage, src.Name, ErrEmptySource)
	}

	ast, err := naga.Parse(src.Text)
	if err != nil {
		return nil, parseDiagnostic(src, err)
	}

	module, err := naga.LowerWithSource(ast, src.Text)
	if err != nil {
		return nil, lowerDiagnostic(src, err)
	}

	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, NewDiagnostic(KindValidation, src.Stage, src.Name, err)
	}
	if len(verrs) > 0 {
		return nil, validationDiagnostic(src, verrs)
	}
	return module, nil
}

// emit writes the validated module into art in the compiler's target form.
func (c *Compiler) emit(module *ir.Module, src Source, art *Artifact) error {
	switch c.target {
	case TargetSPIRV:
		b, err := naga.GenerateSPIRV(module, spirv.Options{
			Version:    c.spirvVersion,
			Debug:      c.debug,
			Validation: true,
		})
		if err != nil {
			return NewDiagnostic(KindBackend, src.Stage, src.Name, err)
		}
		words, err := bytesToWords(b)
		if err != nil {
			return NewDiagnostic(KindBackend, src.Stage, src.Name, err)
		}
		art.Words = words
	case TargetWGSL:
		// The device compiles WGSL itself; the validated text is the payload.
		art.Text = src.Text
	case TargetGLSL, TargetMSL, TargetHLSL:
		text, err := translate(module, c.target, src.Stage, art.EntryPoint)
		if err != nil {
			return NewDiagnostic(KindBackend, src.Stage, src.Name, err)
		}
		art.Text = text
	default:
		return Errorf(KindBackend, src.Stage, src.Name, "unsupported target %d", c.target)
	}
	return nil
}

// pickEntryPoint finds the entry point compiled for src.Stage.
func pickEntryPoint(module *ir.Module, src Source) (string, error) {
	want := src.Stage.irStage()
	var names []string
	for _, ep := range module.EntryPoints {
		if ep.Stage != want {
			continue
		}
		if src.EntryPoint == "" || ep.Name == src.EntryPoint {
			return ep.Name, nil
		}
		names = append(names, ep.Name)
	}
	if src.EntryPoint != "" && len(names) > 0 {
		return "", Errorf(KindValidation, src.Stage, src.Name,
			"entry point %q not found (have %s)", src.EntryPoint, strings.Join(names, ", "))
	}
	return "", Errorf(KindValidation, src.Stage, src.Name, "no @%s entry point", src.Stage)
}

// naga reports parse failures as "line N, column M: msg" and lowering
// failures as "N:M: msg", possibly behind wrapping prefixes.
var (
	parsePos = regexp.MustCompile(`line (\d+), column (\d+): (.*)$`)
	lowerPos = regexp.MustCompile(`(?:^|: )(\d+):(\d+): (.*)$`)
)

func parseDiagnostic(src Source, err error) *Diagnostic {
	d := NewDiagnostic(KindParse, src.Stage, src.Name, err)
	var pe wgsl.ParseError
	if errors.As(err, &pe) && pe.Line > 0 {
		d.Message = pe.Message
		d.Span = Span{Line: pe.Line, Column: pe.Column}
	} else if span, msg, ok := matchPosition(parsePos, err.Error()); ok {
		d.Message = msg
		d.Span = span
	}
	d.Context = sourceContext(src.Text, d.Span)
	return d
}

func lowerDiagnostic(src Source, err error) *Diagnostic {
	d := NewDiagnostic(KindValidation, src.Stage, src.Name, err)
	if span, msg, ok := matchPosition(lowerPos, err.Error()); ok {
		d.Message = msg
		d.Span = span
		d.Context = sourceContext(src.Text, d.Span)
	}
	return d
}

// matchPosition pulls the 1-based line/column and the trailing message
// out of an error string.
func matchPosition(re *regexp.Regexp, s string) (Span, string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return Span{}, "", false
	}
	line, err := strconv.Atoi(m[1])
	if err != nil || line <= 0 {
		return Span{}, "", false
	}
	col, _ := strconv.Atoi(m[2])
	return Span{Line: line, Column: col}, m[3], true
}

func validationDiagnostic(src Source, verrs []ir.ValidationError) *Diagnostic {
	msg := verrs[0].Error()
	if len(verrs) > 1 {
		msg = fmt.Sprintf("%s (and %d more errors)", msg, len(verrs)-1)
	}
	return &Diagnostic{
		Kind:    KindValidation,
		Stage:   src.Stage,
		Name:    src.Name,
		Message: msg,
		Err:     verrs[0],
	}
}
