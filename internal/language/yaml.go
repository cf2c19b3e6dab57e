package language

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jusunglee/hangulize/internal/hangul"
	"github.com/jusunglee/hangulize/internal/rewrite"
)

// document is the on-disk form of a rule table.
type document struct {
	Code        string              `yaml:"code"`
	Name        string              `yaml:"name"`
	Normalize   []string            `yaml:"normalize"`
	Vars        map[string][]string `yaml:"vars"`
	Punctuation []string            `yaml:"punctuation"`
	Protected   []string            `yaml:"protected"`
	Temporary   []string            `yaml:"temporary"`
	Rules       []ruleEntry         `yaml:"rules"`
}

// ruleEntry is a two element sequence: a pattern and an action. A string
// action is a rewrite template, a sequence of jamo is a phoneme tuple and
// null (~) deletes the match.
type ruleEntry rewrite.Rule

func (e *ruleEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: a rule is a [pattern, action] pair", node.Line)
	}
	pat, act := node.Content[0], node.Content[1]
	if pat.Kind != yaml.ScalarNode || pat.Tag == "!!null" {
		return fmt.Errorf("line %d: pattern must be a string", pat.Line)
	}
	e.Pattern = pat.Value

	switch {
	case act.Kind == yaml.ScalarNode && act.Tag == "!!null":
		e.Action = rewrite.Delete()
	case act.Kind == yaml.ScalarNode:
		e.Action = rewrite.Rewrite(act.Value)
	case act.Kind == yaml.SequenceNode:
		var jamo []string
		if err := act.Decode(&jamo); err != nil {
			return fmt.Errorf("line %d: %w", act.Line, err)
		}
		phonemes, err := hangul.ParsePhonemes(jamo)
		if err != nil {
			return fmt.Errorf("line %d: %w", act.Line, err)
		}
		e.Action = rewrite.Emit(phonemes...)
	default:
		return fmt.Errorf("line %d: action must be a string, a jamo sequence or ~", act.Line)
	}
	return nil
}

// Parse reads one YAML rule table.
func Parse(data []byte) (*Language, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rule table: %w", err)
	}
	rules := make(Notation, len(doc.Rules))
	for i, r := range doc.Rules {
		rules[i] = rewrite.Rule(r)
	}
	return New(Spec{
		Code:        doc.Code,
		Name:        doc.Name,
		Normalize:   doc.Normalize,
		Vars:        doc.Vars,
		Punctuation: doc.Punctuation,
		Protected:   doc.Protected,
		Temporary:   doc.Temporary,
		Rules:       rules,
	})
}
