package theme

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hay-kot/kpi/pkg/kv"
)

// Sink receives an applied theme. Implementations set named style properties
// and replace the single theme marker class.
type Sink interface {
	SetProperty(name, value string)
	SetClass(class string)
}

// MemorySink records applied properties in memory. It is the sink used by the
// terminal renderer and by CSS export.
type MemorySink struct {
	props *kv.Store[string, string]

	mu    sync.RWMutex
	class string
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{props: kv.New[string, string]()}
}

func (s *MemorySink) SetProperty(name, value string) {
	s.props.Set(name, value)
}

// SetClass replaces any previously set theme class.
func (s *MemorySink) SetClass(class string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.class = class
}

// Class returns the current theme class.
func (s *MemorySink) Class() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.class
}

// Property returns the value of a property.
func (s *MemorySink) Property(name string) (string, bool) {
	return s.props.Get(name)
}

// Properties returns every property in the order it was first set.
func (s *MemorySink) Properties() []Variable {
	out := make([]Variable, 0, s.props.Len())
	s.props.Range(func(k, v string) bool {
		out = append(out, Variable{Name: k, Value: v})
		return true
	})
	return out
}

// Apply writes every variable of cfg and its marker class to sink.
// Properties not present in cfg are left untouched.
func Apply(sink Sink, cfg Config) {
	for _, v := range Variables(cfg) {
		sink.SetProperty(v.Name, v.Value)
	}
	sink.SetClass(ClassName(cfg.Name))
}

// WriteCSS renders the theme named name as a CSS rule scoped to its class.
func WriteCSS(w io.Writer, name string) error {
	cfg, ok := Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, ":root.%s {\n", ClassName(cfg.Name))
	for _, v := range Variables(cfg) {
		fmt.Fprintf(&b, "  %s: %s;\n", v.Name, v.Value)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}
