// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads shaderlab settings from TOML.
//
// A configuration file looks like:
//
//	[shaders]
//	dir = "~/shaders"
//	vertex = "fullscreen.wgsl"
//	fragment = "fragment.wgsl"
//	body = "body.wgsl"
//	watch = true
//
//	[compiler]
//	target = "spirv"
//	spirv_version = "1.3"
//	cache_dir = "~/.cache/shaderlab"
//	memory_entries = 32
//
//	[pipeline]
//	uniform_size = 16
//	visibility = "both"
//	vertex_count = 3
//	format = "bgra8unorm"
//
// Every key is optional; Default supplies the rest. An empty shaders.dir
// selects the shaders embedded in the binary.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/spirv"
	"github.com/mitchellh/go-homedir"

	"github.com/gogpu/shaderlab/shader"
)

// Config is the complete shaderlab configuration.
type Config struct {
	Shaders  Shaders  `toml:"shaders"`
	Compiler Compiler `toml:"compiler"`
	Pipeline Pipeline `toml:"pipeline"`
}

// Shaders selects where shader sources come from.
type Shaders struct {
	// Dir is the shader directory. Empty uses the embedded shaders.
	Dir string `toml:"dir"`

	// Vertex and Fragment are file names relative to Dir.
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`

	// Body is an optional file holding the initial body text.
	// Relative to Dir. Empty uses the default body.
	Body string `toml:"body"`

	// Placeholder is the template field replaced by the body.
	Placeholder string `toml:"placeholder"`

	VertexEntry   string `toml:"vertex_entry"`
	FragmentEntry string `toml:"fragment_entry"`

	// Watch enables file change notifications for Dir sources.
	Watch bool `toml:"watch"`

	// QueueCapacity bounds the pending watch events.
	QueueCapacity int `toml:"queue_capacity"`
}

// Compiler selects the shader compiler output.
type Compiler struct {
	// Target is "spirv" or "wgsl" for pipelines; the CLI also accepts
	// "glsl", "msl" and "hlsl".
	Target string `toml:"target"`

	// SPIRVVersion is "major.minor", e.g. "1.3".
	SPIRVVersion string `toml:"spirv_version"`

	DebugInfo bool `toml:"debug_info"`

	// CacheDir enables the artifact disk cache when non-empty.
	CacheDir string `toml:"cache_dir"`

	// MemoryEntries is the number of artifacts kept in memory; 0 disables.
	MemoryEntries int `toml:"memory_entries"`
}

// Pipeline describes the fixed binding layout and draw.
type Pipeline struct {
	// UniformSize is the size in bytes of the uniform buffer at binding 0.
	UniformSize uint64 `toml:"uniform_size"`

	// Visibility is "vertex", "fragment" or "both".
	Visibility string `toml:"visibility"`

	// VertexCount is the number of vertices drawn per frame.
	VertexCount uint32 `toml:"vertex_count"`

	// Format is the color target format: "bgra8unorm" or "rgba8unorm".
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Shaders: Shaders{
			Vertex:        "fullscreen.wgsl",
			Fragment:      "fragment.wgsl",
			Placeholder:   "content",
			VertexEntry:   "vs_main",
			FragmentEntry: "fs_main",
			Watch:         true,
			QueueCapacity: 64,
		},
		Compiler: Compiler{
			Target:        "spirv",
			SPIRVVersion:  "1.3",
			MemoryEntries: 32,
		},
		Pipeline: Pipeline{
			UniformSize: 16,
			Visibility:  "both",
			VertexCount: 3,
			Format:      "bgra8unorm",
		},
	}
}

// Load decodes path on top of Default, expands "~" in paths, resolves
// relative directories against the file's directory and validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	base := filepath.Dir(path)
	if cfg.Shaders.Dir, err = resolveDir(base, cfg.Shaders.Dir); err != nil {
		return Config{}, fmt.Errorf("%s: shaders.dir: %w", path, err)
	}
	if cfg.Compiler.CacheDir, err = resolveDir(base, cfg.Compiler.CacheDir); err != nil {
		return Config{}, fmt.Errorf("%s: compiler.cache_dir: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func resolveDir(base, dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	dir, err := homedir.Expand(dir)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	return filepath.Clean(dir), nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Shaders.Vertex == "" {
		errs = append(errs, errors.New("shaders.vertex is empty"))
	}
	if c.Shaders.Fragment == "" {
		errs = append(errs, errors.New("shaders.fragment is empty"))
	}
	if c.Shaders.Placeholder == "" {
		errs = append(errs, errors.New("shaders.placeholder is empty"))
	}
	if c.Shaders.QueueCapacity < 1 {
		errs = append(errs, fmt.Errorf("shaders.queue_capacity %d must be positive", c.Shaders.QueueCapacity))
	}
	if _, err := c.Target(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SPIRVVersion(); err != nil {
		errs = append(errs, err)
	}
	if c.Compiler.MemoryEntries < 0 {
		errs = append(errs, fmt.Errorf("compiler.memory_entries %d must not be negative", c.Compiler.MemoryEntries))
	}
	if c.Pipeline.UniformSize == 0 || c.Pipeline.UniformSize%16 != 0 {
		errs = append(errs, fmt.Errorf("pipeline.uniform_size %d must be a positive multiple of 16", c.Pipeline.UniformSize))
	}
	if c.Pipeline.VertexCount == 0 {
		errs = append(errs, errors.New("pipeline.vertex_count must be positive"))
	}
	switch c.Pipeline.Visibility {
	case "vertex", "fragment", "both":
	default:
		errs = append(errs, fmt.Errorf("pipeline.visibility %q: want vertex, fragment or both", c.Pipeline.Visibility))
	}
	if _, err := c.TextureFormat(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Embedded reports whether shaders come from the binary.
func (c Config) Embedded() bool { return c.Shaders.Dir == "" }

// VertexPath returns the vertex shader file path.
func (c Config) VertexPath() string { return c.join(c.Shaders.Vertex) }

// FragmentPath returns the fragment template file path.
func (c Config) FragmentPath() string { return c.join(c.Shaders.Fragment) }

// BodyPath returns the initial body file path, or "" for the default body.
func (c Config) BodyPath() string {
	if c.Shaders.Body == "" {
		return ""
	}
	return c.join(c.Shaders.Body)
}

func (c Config) join(name string) string {
	if filepath.IsAbs(name) || c.Shaders.Dir == "" {
		return name
	}
	return filepath.Join(c.Shaders.Dir, name)
}

// Target parses Compiler.Target.
func (c Config) Target() (shader.Target, error) {
	t, err := shader.ParseTarget(c.Compiler.Target)
	if err != nil {
		return 0, fmt.Errorf("compiler.target: %w", err)
	}
	return t, nil
}

// SPIRVVersion parses Compiler.SPIRVVersion.
func (c Config) SPIRVVersion() (spirv.Version, error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(c.Compiler.SPIRVVersion), ".")
	if !ok {
		return spirv.Version{}, fmt.Errorf("compiler.spirv_version %q: want major.minor", c.Compiler.SPIRVVersion)
	}
	ma, err1 := strconv.ParseUint(major, 10, 8)
	mi, err2 := strconv.ParseUint(minor, 10, 8)
	if err1 != nil || err2 != nil || ma != 1 || mi > 6 {
		return spirv.Version{}, fmt.Errorf("compiler.spirv_version %q: want 1.0 through 1.6", c.Compiler.SPIRVVersion)
	}
	return spirv.Version{Major: uint8(ma), Minor: uint8(mi)}, nil
}

// TextureFormat parses Pipeline.Format.
func (c Config) TextureFormat() (gputypes.TextureFormat, error) {
	switch strings.ToLower(c.Pipeline.Format) {
	case "bgra8unorm":
		return gputypes.TextureFormatBGRA8Unorm, nil
	case "rgba8unorm":
		return gputypes.TextureFormatRGBA8Unorm, nil
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("pipeline.format %q: want bgra8unorm or rgba8unorm", c.Pipeline.Format)
}

// CompilerOptions converts the compiler settings into shader options.
// The cache, if configured, is opened here.
func (c Config) CompilerOptions() ([]shader.CompilerOption, error) {
	target, err := c.Target()
	if err != nil {
		return nil, err
	}
	version, err := c.SPIRVVersion()
	if err != nil {
		return nil, err
	}
	opts := []shader.CompilerOption{
		shader.WithTarget(target),
		shader.WithSPIRVVersion(version),
		shader.WithDebugInfo(c.Compiler.DebugInfo),
		shader.WithMemoryCache(c.Compiler.MemoryEntries),
	}
	if c.Compiler.CacheDir != "" {
		cache, err := shader.OpenCache(c.Compiler.CacheDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, shader.WithCache(cache))
	}
	return opts, nil
}
