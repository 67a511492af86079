package config

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ipwatch/internal/document"
	errs "github.com/ipwatch/internal/errors"
)

type propertyKind int

const (
	textProperty propertyKind = iota
	portProperty
	countProperty
	intervalProperty
)

// Property describes a document key that can be set from the command line.
type Property struct {
	Key         string
	Description string
	kind        propertyKind
}

var properties = []Property{
	{KeyEmailAddress, "sender email address", textProperty},
	{KeyEmailUsername, "SMTP login, when it differs from the sender address", textProperty},
	{KeyEmailPassword, "SMTP password or app password", textProperty},
	{KeySMTPHost, "SMTP server host", textProperty},
	{KeySMTPPort, "SMTP server port (1-65535)", portProperty},
	{KeyRecipientAddress, "address notified on change", textProperty},
	{KeyCheckIntervalMinutes, "minutes between checks (>= 1)", intervalProperty},
	{KeyIPAddress, "last known public IP", textProperty},
	{KeySequentialFailures, "consecutive failed lookups", countProperty},
	{KeyFailureAlertThreshold, "failed lookups before alerting (0 disables)", countProperty},
	{KeySlackWebhookURL, "Slack incoming webhook, empty disables", textProperty},
}

// Properties lists the settable properties sorted by key.
func Properties() []Property {
	out := make([]Property, len(properties))
	copy(out, properties)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// LookupProperty finds a property by key, ignoring case.
func LookupProperty(name string) (Property, bool) {
	for _, p := range properties {
		if strings.EqualFold(p.Key, name) {
			return p, true
		}
	}
	return Property{}, false
}

// Parse converts raw command line input into the document value for p.
func (p Property) Parse(raw string) (document.Value, error) {
	switch p.kind {
	case portProperty:
		n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return document.Value{}, errs.Validation(p.Key, "%q is not a number", raw)
		}
		if n < 1 || n > 65535 {
			return document.Value{}, errs.Validation(p.Key, "must be between 1 and 65535, got %d", n)
		}
		return document.NumberValue(float64(n)), nil
	case intervalProperty, countProperty:
		n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 53)
		if err != nil {
			return document.Value{}, errs.Validation(p.Key, "%q is not a non-negative integer", raw)
		}
		if p.kind == intervalProperty && n == 0 {
			return document.Value{}, errs.Validation(p.Key, "must be at least 1")
		}
		if p.kind == intervalProperty && n > MaxCheckIntervalMinutes {
			return document.Value{}, errs.Validation(p.Key, "must be at most %d", MaxCheckIntervalMinutes)
		}
		return document.NumberValue(float64(n)), nil
	default:
		return document.TextValue(raw), nil
	}
}

// KeySetter writes a single top-level key.
type KeySetter interface {
	SetKey(key string, value document.Value) error
}

// SetProperty validates raw for the named property and writes it through s.
// It returns the canonical key that was written.
func SetProperty(s KeySetter, name, raw string) (string, error) {
	p, ok := LookupProperty(name)
	if !ok {
		keys := make([]string, 0, len(properties))
		for _, p := range Properties() {
			keys = append(keys, p.Key)
		}
		return "", errs.Validation(name, "unknown property, expected one of %s", strings.Join(keys, ", "))
	}
	value, err := p.Parse(raw)
	if err != nil {
		return "", err
	}
	if err := s.SetKey(p.Key, value); err != nil {
		return "", err
	}
	return p.Key, nil
}
