package script

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Script is a named sequence of trigger dispatches, authored in YAML.
//
// Scripts let an operator drive a whole stimulus sequence from a file
// instead of issuing one CLI call per marker:
//
//	name: oddball-block-1
//	steps:
//	  - event: scenes.intro.start
//	  - value: 42
//	    label: manual sync pulse
//	    wait_ms: 500
//	  - event: scenes.intro.end
type Script struct {
	// Name identifies the script in logs and archive exports.
	Name string `yaml:"name"`

	// Description explains what the sequence is for.
	Description string `yaml:"description,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`
}

// Step is one dispatch in a script. Exactly one of Event or Value must be
// set.
type Step struct {
	// Event is a dot-delimited event path resolved through the session's
	// mapping document.
	Event string `yaml:"event,omitempty"`

	// Value is a raw trigger code, bypassing mapping resolution.
	Value *int64 `yaml:"value,omitempty"`

	// Label annotates the history ledger entry.
	Label string `yaml:"label,omitempty"`

	// WaitMillis pauses after the step settles, for paced sequences.
	WaitMillis int `yaml:"wait_ms,omitempty"`
}

// Load reads and validates a script file.
func Load(file string) (*Script, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", file, err)
	}
	return Parse(raw)
}

// Parse decodes and validates raw YAML. Unknown fields are rejected so a
// typo in a step key fails loudly instead of silently dispatching nothing.
func Parse(raw []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks structural rules: a name, at least one step, and exactly
// one of event or value per step.
func (s *Script) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("script name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("script %q has no steps", s.Name)
	}
	for i, step := range s.Steps {
		hasEvent := step.Event != ""
		hasValue := step.Value != nil
		if hasEvent == hasValue {
			return fmt.Errorf("script %q step %d: exactly one of event or value must be set", s.Name, i+1)
		}
		if step.WaitMillis < 0 {
			return fmt.Errorf("script %q step %d: wait_ms must not be negative", s.Name, i+1)
		}
	}
	return nil
}
