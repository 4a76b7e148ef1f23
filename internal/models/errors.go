package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the fatal error classes. Typed errors below match them with errors.Is.
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrEmptyInput      = errors.New("empty input")
	ErrJoinConsistency = errors.New("join consistency violation")
)

// ConfigurationError reports required columns missing from an input table.
type ConfigurationError struct {
	Table   string
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required columns in %s: [%s]", e.Table, strings.Join(e.Missing, ", "))
}

// Is lets errors.Is match ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// EmptyInputError reports that no usable scenario files were found.
type EmptyInputError struct {
	Kind   string
	Reason string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no %s input: %s", e.Kind, e.Reason)
}

// Is lets errors.Is match ErrEmptyInput.
func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}

// JoinConsistencyError reports setup rows without a rank and keys that appear more than once
// in either the ranked summary or the setups.
type JoinConsistencyError struct {
	Unmatched  []JoinKey
	Duplicates []JoinKey
}

func (e *JoinConsistencyError) Error() string {
	var b strings.Builder
	b.WriteString("setup rows do not line up with ranked summary")
	if len(e.Unmatched) > 0 {
		fmt.Fprintf(&b, ": %d unmatched (first %s)", len(e.Unmatched), e.Unmatched[0])
	}
	if len(e.Duplicates) > 0 {
		fmt.Fprintf(&b, ": %d duplicate keys (first %s)", len(e.Duplicates), e.Duplicates[0])
	}
	return b.String()
}

// Is lets errors.Is match ErrJoinConsistency.
func (e *JoinConsistencyError) Is(target error) bool {
	return target == ErrJoinConsistency
}

// ParseError wraps a file that could not be read as a table. It classifies as
// ErrEmptyInput: the file contributes no usable rows.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrEmptyInput.
func (e *ParseError) Is(target error) bool {
	return target == ErrEmptyInput
}
