// Package theme holds the static theme table and applies a selected theme as
// a flat set of style variables plus a marker class.
package theme

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

const (
	// Default is the theme used when nothing valid is stored.
	Default = "modern-light"
	// StorageKey is the durable key holding the selected theme name.
	StorageKey = "kpi-theme"
)

//go:embed themes.yaml
var themesYAML []byte

// Config is a single theme definition. Only Colors is required; the other
// groups are optional and empty for the basic themes.
type Config struct {
	Name         string `yaml:"name"`
	Label        string `yaml:"label"`
	Colors       Tokens `yaml:"colors"`
	Typography   Tokens `yaml:"typography"`
	Spacing      Tokens `yaml:"spacing"`
	BorderRadius Tokens `yaml:"borderRadius"`
	Shadows      Tokens `yaml:"shadows"`
	Transitions  Tokens `yaml:"transitions"`
}

// Color returns the color token stored under key.
func (c Config) Color(key string) (string, bool) {
	return c.Colors.Get(key)
}

// Variable is a single style variable produced from a theme.
type Variable struct {
	Name  string
	Value string
}

var (
	loadOnce sync.Once
	table    []Config
	byName   map[string]int
	loadErr  error
)

func load() {
	var doc struct {
		Themes []Config `yaml:"themes"`
	}
	if err := yaml.Unmarshal(themesYAML, &doc); err != nil {
		loadErr = fmt.Errorf("parse theme table: %w", err)
		return
	}

	table = doc.Themes
	byName = make(map[string]int, len(table))
	for i, cfg := range table {
		byName[cfg.Name] = i
	}
}

func mustTable() []Config {
	loadOnce.Do(load)
	if loadErr != nil {
		// the table is embedded at build time; a parse failure is a build defect
		panic(loadErr)
	}
	return table
}

// Names returns every theme name in table order.
func Names() []string {
	t := mustTable()
	names := make([]string, len(t))
	for i, cfg := range t {
		names[i] = cfg.Name
	}
	return names
}

// All returns a copy of every theme definition in table order.
func All() []Config {
	t := mustTable()
	out := make([]Config, len(t))
	copy(out, t)
	return out
}

// Get returns the theme with the given name.
func Get(name string) (Config, bool) {
	t := mustTable()
	i, ok := byName[name]
	if !ok {
		return Config{}, false
	}
	return t[i], true
}

// Exists reports whether name is a known theme.
func Exists(name string) bool {
	_, ok := Get(name)
	return ok
}

// ClassName returns the marker class for a theme.
func ClassName(name string) string {
	return "theme-" + name
}

// Variables flattens every leaf of cfg into style variables, in table order.
func Variables(cfg Config) []Variable {
	vars := make([]Variable, 0, len(cfg.Colors)+32)

	appendFlat := func(prefix string, ts Tokens) {
		for _, t := range ts {
			if t.IsGroup() {
				continue
			}
			vars = append(vars, Variable{Name: prefix + t.Key, Value: t.Value})
		}
	}

	appendFlat("--color-", cfg.Colors)

	for _, t := range cfg.Typography {
		if !t.IsGroup() {
			vars = append(vars, Variable{Name: "--font-" + t.Key, Value: t.Value})
			continue
		}
		for _, child := range t.Children {
			vars = append(vars, Variable{Name: "--font-" + t.Key + "-" + child.Key, Value: child.Value})
		}
	}

	appendFlat("--spacing-", cfg.Spacing)
	appendFlat("--radius-", cfg.BorderRadius)
	appendFlat("--shadow-", cfg.Shadows)
	appendFlat("--transition-", cfg.Transitions)

	return vars
}

// Validate checks that the theme has a name, a label, and that every hex
// color parses.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("theme: missing name")
	}
	if c.Label == "" {
		return fmt.Errorf("theme %s: missing label", c.Name)
	}
	if len(c.Colors) == 0 {
		return fmt.Errorf("theme %s: no colors", c.Name)
	}

	for _, t := range c.Colors {
		if !strings.HasPrefix(t.Value, "#") {
			continue // rgba() and other functional values are opaque
		}
		if _, err := colorful.Hex(t.Value); err != nil {
			return fmt.Errorf("theme %s: color %s: %w", c.Name, t.Key, err)
		}
	}
	return nil
}
