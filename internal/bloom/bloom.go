// Package bloom classifies examination questions into Bloom's taxonomy
// cognitive levels and analyzes level distributions against targets.
package bloom

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is a Bloom's taxonomy cognitive level, ordered from lowest to
// highest cognitive demand.
type Level int

const (
	Remember Level = iota
	Understand
	Apply
	Analyze
	Evaluate
	Create
)

func (l Level) String() string {
	switch l {
	case Remember:
		return "remember"
	case Understand:
		return "understand"
	case Apply:
		return "apply"
	case Analyze:
		return "analyze"
	case Evaluate:
		return "evaluate"
	case Create:
		return "create"
	default:
		return "unknown"
	}
}

// Levels returns all six levels in canonical order.
func Levels() []Level {
	return []Level{Remember, Understand, Apply, Analyze, Evaluate, Create}
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "remember":
		return Remember, nil
	case "understand":
		return Understand, nil
	case "apply":
		return Apply, nil
	case "analyze", "analyse":
		return Analyze, nil
	case "evaluate":
		return Evaluate, nil
	case "create":
		return Create, nil
	}
	return Understand, fmt.Errorf("unknown bloom level %q", s)
}

// Description returns the teaching description of a level, used when
// prompting the generation service.
func (l Level) Description() string {
	switch l {
	case Remember:
		return "Recall facts and basic concepts. Students retrieve relevant knowledge from long-term memory."
	case Understand:
		return "Explain ideas or concepts. Students construct meaning from instructional messages."
	case Apply:
		return "Use information in new situations. Students carry out or use a procedure in a given situation."
	case Analyze:
		return "Draw connections among ideas. Students break material into parts and determine relationships."
	case Evaluate:
		return "Justify a stand or decision. Students make judgments based on criteria and standards."
	case Create:
		return "Produce new or original work. Students put elements together to form a coherent whole."
	default:
		return "Unknown level"
	}
}

// UnmarshalYAML decodes a level from its name, so distributions can be
// written as plain YAML maps.
func (l *Level) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseLevel(name)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalYAML encodes a level as its name.
func (l Level) MarshalYAML() (any, error) {
	return l.String(), nil
}
