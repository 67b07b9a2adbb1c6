package logging

import "github.com/rs/zerolog"

// ComponentKey is the field naming the subsystem that wrote a log event.
const ComponentKey = "cmp"

// Component derives a child of parent tagged with the subsystem name.
func Component(parent zerolog.Logger, name string) zerolog.Logger {
	return parent.With().Str(ComponentKey, name).Logger()
}
