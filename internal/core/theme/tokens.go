package theme

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Token is a single named style value. A token either carries a scalar Value
// or a nested group of Children, never both.
type Token struct {
	Key      string
	Value    string
	Children Tokens
}

// IsGroup reports whether the token is a nested group.
func (t Token) IsGroup() bool {
	return t.Children != nil
}

// Tokens is an ordered list of style tokens. Order follows the definition
// order in the theme table.
type Tokens []Token

// Get returns the scalar value stored under key.
func (ts Tokens) Get(key string) (string, bool) {
	for _, t := range ts {
		if t.Key == key && !t.IsGroup() {
			return t.Value, true
		}
	}
	return "", false
}

// Group returns the nested group stored under key.
func (ts Tokens) Group(key string) (Tokens, bool) {
	for _, t := range ts {
		if t.Key == key && t.IsGroup() {
			return t.Children, true
		}
	}
	return nil, false
}

// UnmarshalYAML decodes a mapping node while preserving key order.
func (ts *Tokens) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping, got %s", node.Line, kindName(node.Kind))
	}

	out := make(Tokens, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]

		switch val.Kind {
		case yaml.ScalarNode:
			out = append(out, Token{Key: key.Value, Value: val.Value})
		case yaml.MappingNode:
			var children Tokens
			if err := children.UnmarshalYAML(val); err != nil {
				return fmt.Errorf("%s: %w", key.Value, err)
			}
			out = append(out, Token{Key: key.Value, Children: children})
		default:
			return fmt.Errorf("line %d: %s: unsupported %s value", val.Line, key.Value, kindName(val.Kind))
		}
	}

	*ts = out
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
