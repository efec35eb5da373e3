// Package config loads the optional lse.yaml project configuration.
package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"go.uber.org/zap/zapcore"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/lightsource/lse/pkg/font"
	"github.com/lightsource/lse/pkg/image"
)

// FileName is the configuration file looked up in the project directory.
const FileName = "lse.yaml"

// Config represents the optional lse.yaml configuration.
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Engine  EngineConfig  `yaml:"engine"`
	Assets  AssetsConfig  `yaml:"assets"`
	Log     LogConfig     `yaml:"log"`
	Fonts   []FontConfig  `yaml:"fonts,omitempty"`
}

// ProjectConfig contains project metadata.
type ProjectConfig struct {
	Name string `yaml:"name,omitempty"`
}

// EngineConfig contains engine settings.
type EngineConfig struct {
	Version string `yaml:"version,omitempty"`
}

// AssetsConfig controls where and how assets are loaded.
type AssetsConfig struct {
	Root     string  `yaml:"root,omitempty"`
	Workers  int     `yaml:"workers,omitempty"`
	Format   string  `yaml:"format,omitempty"`
	SVGScale float64 `yaml:"svg_scale,omitempty"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level       string `yaml:"level,omitempty"`
	Development bool   `yaml:"development,omitempty"`
}

// FontConfig registers one font file for a family slot.
type FontConfig struct {
	URI    string `yaml:"uri"`
	Index  int    `yaml:"index,omitempty"`
	Family string `yaml:"family"`
	Style  string `yaml:"style,omitempty"`
	Weight string `yaml:"weight,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root           string
	ProjectName    string
	EngineVersion  string
	AssetsRoot     string
	Workers        int
	Format         image.ColorFormat
	SVGScale       float64
	LogLevel       zapcore.Level
	LogDevelopment bool
	Fonts          []font.Info
}

// LoadOptional reads lse.yaml from dir if present.
func LoadOptional(fs vfs.FileSystem, dir string) (*Config, error) {
	name := vfs.Join(fs, dir, FileName)
	data, err := vfs.ReadFile(fs, name)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Resolve loads lse.yaml (if present) and resolves defaults.
func Resolve(fs vfs.FileSystem, dir string) (*Resolved, error) {
	cfg, err := LoadOptional(fs, dir)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(cfg.Project.Name)
	if name == "" {
		name = defaultProjectName(fs, dir)
	}

	engineVersion, err := resolveEngineVersion(cfg.Engine.Version)
	if err != nil {
		return nil, err
	}

	assetsRoot := strings.TrimSpace(cfg.Assets.Root)
	switch {
	case assetsRoot == "":
		assetsRoot = dir
	case !path.IsAbs(assetsRoot):
		assetsRoot = vfs.Join(fs, dir, assetsRoot)
	}

	if cfg.Assets.Workers < 0 {
		return nil, fmt.Errorf("assets.workers must not be negative (got %d)", cfg.Assets.Workers)
	}

	format, err := parseFormat(cfg.Assets.Format)
	if err != nil {
		return nil, err
	}

	scale := cfg.Assets.SVGScale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 {
		return nil, fmt.Errorf("assets.svg_scale must be positive (got %v)", scale)
	}

	level := zapcore.InfoLevel
	if s := strings.TrimSpace(cfg.Log.Level); s != "" {
		if level, err = zapcore.ParseLevel(s); err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
	}

	fonts, err := resolveFonts(cfg.Fonts)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Root:           dir,
		ProjectName:    name,
		EngineVersion:  engineVersion,
		AssetsRoot:     assetsRoot,
		Workers:        cfg.Assets.Workers,
		Format:         format,
		SVGScale:       scale,
		LogLevel:       level,
		LogDevelopment: cfg.Log.Development,
		Fonts:          fonts,
	}, nil
}

func resolveEngineVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == "latest" {
		return "latest", nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("engine.version must be a semantic version or \"latest\" (got %q)", v)
	}
	return semver.Canonical(v), nil
}

func parseFormat(s string) (image.ColorFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rgba":
		return image.FormatRGBA, nil
	case "bgra":
		return image.FormatBGRA, nil
	default:
		return image.FormatUnknown, fmt.Errorf("assets.format must be rgba or bgra (got %q)", s)
	}
}

func resolveFonts(entries []FontConfig) ([]font.Info, error) {
	var result *multierror.Error
	infos := make([]font.Info, 0, len(entries))
	for i, e := range entries {
		style, err := font.ParseStyle(e.Style)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("fonts[%d]: %w", i, err))
			continue
		}
		weight, err := font.ParseWeight(e.Weight)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("fonts[%d]: %w", i, err))
			continue
		}
		if strings.TrimSpace(e.URI) == "" || strings.TrimSpace(e.Family) == "" {
			result = multierror.Append(result, fmt.Errorf("fonts[%d]: uri and family are required", i))
			continue
		}
		infos = append(infos, font.Info{
			URI:    e.URI,
			Index:  e.Index,
			Family: e.Family,
			Style:  style,
			Weight: weight,
		})
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return infos, nil
}

// defaultProjectName uses the last element of the go.mod module path when
// dir is a Go module, and the directory name otherwise.
func defaultProjectName(fs vfs.FileSystem, dir string) string {
	base := path.Base(dir)
	if data, err := vfs.ReadFile(fs, vfs.Join(fs, dir, "go.mod")); err == nil {
		if modPath := modfile.ModulePath(data); modPath != "" {
			if prefix, _, ok := module.SplitPathVersion(modPath); ok {
				base = path.Base(prefix)
			}
		}
	}
	if base == "" || base == "." || base == "/" {
		return "lse_project"
	}
	return base
}
