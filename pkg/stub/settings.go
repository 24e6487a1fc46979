package stub

import (
	"fmt"
	"strings"
)

// Strictness selects which request fields take part in stub matching.
type Strictness string

const (
	// Full compares url, method, body and headers.
	Full Strictness = "full"
	// BodyMethodURL compares url, method and body.
	BodyMethodURL Strictness = "body-method-url"
	// HeadersMethodURL compares url, method and headers.
	HeadersMethodURL Strictness = "headers-method-url"
	// MethodURL compares url and method.
	MethodURL Strictness = "method-url"
	// URL compares the url only.
	URL Strictness = "url"
)

// IsValid checks if the strictness is valid.
func (s Strictness) IsValid() bool {
	_, ok := requirementTable[s]
	return ok
}

func (s Strictness) String() string {
	return string(s)
}

// Default selects what happens to a request no stub matches.
type Default string

const (
	// DefaultPerformRequest sends the request to the live transport.
	DefaultPerformRequest Default = "perform-request"
	// DefaultPanic panics.
	DefaultPanic Default = "panic"
	// DefaultError returns an *UnmatchedError.
	DefaultError Default = "error"
)

// IsValid checks if the default is valid.
func (d Default) IsValid() bool {
	switch d {
	case DefaultPerformRequest, DefaultPanic, DefaultError:
		return true
	default:
		return false
	}
}

func (d Default) String() string {
	return string(d)
}

// Settings configures a stub Client.
type Settings struct {
	Default    Default    `yaml:"default" json:"default"`
	Strictness Strictness `yaml:"strictness" json:"strictness"`
}

// DefaultSettings returns {DefaultError, Full}.
func DefaultSettings() Settings {
	return Settings{
		Default:    DefaultError,
		Strictness: Full,
	}
}

// Validate checks both fields.
func (s Settings) Validate() error {
	if !s.Strictness.IsValid() {
		return fmt.Errorf("invalid stub strictness %q", s.Strictness)
	}
	if !s.Default.IsValid() {
		return fmt.Errorf("invalid stub default %q", s.Default)
	}
	return nil
}

// ParseStrictness parses a strictness name, ignoring case. Underscores are
// accepted in place of dashes.
func ParseStrictness(s string) (Strictness, error) {
	v := Strictness(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	switch v {
	case "":
		return Full, nil
	case "bodymethodurl":
		return BodyMethodURL, nil
	case "headersmethodurl":
		return HeadersMethodURL, nil
	case "methodurl":
		return MethodURL, nil
	}
	if !v.IsValid() {
		return "", fmt.Errorf("unknown stub strictness %q (expected full, body-method-url, headers-method-url, method-url or url)", s)
	}
	return v, nil
}

// ParseDefault parses a default name, ignoring case.
func ParseDefault(s string) (Default, error) {
	v := Default(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	switch v {
	case "":
		return DefaultError, nil
	case "performrequest", "perform":
		return DefaultPerformRequest, nil
	}
	if !v.IsValid() {
		return "", fmt.Errorf("unknown stub default %q (expected perform-request, panic or error)", s)
	}
	return v, nil
}

// Field names a request field a pattern can set.
type Field string

const (
	FieldURL     Field = "url"
	FieldMethod  Field = "method"
	FieldBody    Field = "body"
	FieldHeaders Field = "headers"
)

// requirement tells whether a pattern must or must not set a field.
type requirement bool

const (
	required  requirement = true
	forbidden requirement = false
)

// fieldRequirements lists the requirement of every optional field.
type fieldRequirements struct {
	method  requirement
	body    requirement
	headers requirement
}

// requirementTable maps each strictness to the fields it matches on.
var requirementTable = map[Strictness]fieldRequirements{
	Full:             {method: required, body: required, headers: required},
	BodyMethodURL:    {method: required, body: required, headers: forbidden},
	HeadersMethodURL: {method: required, body: forbidden, headers: required},
	MethodURL:        {method: required, body: forbidden, headers: forbidden},
	URL:              {method: forbidden, body: forbidden, headers: forbidden},
}

// each calls fn for every optional field in a fixed order.
func (r fieldRequirements) each(fn func(Field, requirement)) {
	fn(FieldMethod, r.method)
	fn(FieldBody, r.body)
	fn(FieldHeaders, r.headers)
}
