package config

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/ipwatch/internal/document"
)

// Keys of the persisted document.
const (
	KeyEmailAddress          = "emailAddress"
	KeyEmailUsername         = "emailUsername"
	KeyEmailPassword         = "emailPassword"
	KeySMTPHost              = "emailSMTPHost"
	KeySMTPPort              = "emailSMTPPort"
	KeyRecipientAddress      = "recipientAddress"
	KeyCheckIntervalMinutes  = "checkIntervalMinutes"
	KeyIPAddress             = "ipAddress"
	KeySequentialFailures    = "sequentialFailures"
	KeyFailureAlertThreshold = "failureAlertThreshold"
	KeySlackWebhookURL       = "slackWebhookURL"
)

// Fallbacks used by FromDocument when a key is absent or has the wrong type.
const (
	DefaultSMTPPort              uint16 = 587
	DefaultCheckIntervalMinutes  uint64 = 5
	DefaultFailureAlertThreshold uint64 = 3
)

// Configuration is the typed view of the persisted document. It is rebuilt
// from disk on every read; the file is the only source of truth.
type Configuration struct {
	EmailAddress string
	// EmailUsername overrides EmailAddress as the SMTP login when set.
	EmailUsername         string
	EmailPassword         string
	SMTPHost              string
	SMTPPort              uint16
	RecipientAddress      string
	CheckIntervalMinutes  uint64
	IPAddress             string
	SequentialFailures    uint64
	FailureAlertThreshold uint64
	SlackWebhookURL       string
}

// DefaultDocument is what a fresh config file contains.
func DefaultDocument() document.Value {
	return document.MustFromAny(map[string]any{
		KeyEmailAddress:          "me@example.com",
		KeyEmailUsername:         "",
		KeyEmailPassword:         "1243124231",
		KeySMTPHost:              "smtp.example.com",
		KeySMTPPort:              465,
		KeyRecipientAddress:      "person@example.com",
		KeyCheckIntervalMinutes:  15,
		KeyIPAddress:             "127.0.0.1",
		KeySequentialFailures:    0,
		KeyFailureAlertThreshold: int(DefaultFailureAlertThreshold),
		KeySlackWebhookURL:       "",
	})
}

// FromDocument projects doc onto a Configuration. Missing or mistyped fields
// fall back to their defaults; unknown keys are ignored.
func FromDocument(doc document.Value) Configuration {
	return Configuration{
		EmailAddress:          textField(doc, KeyEmailAddress),
		EmailUsername:         textField(doc, KeyEmailUsername),
		EmailPassword:         textField(doc, KeyEmailPassword),
		SMTPHost:              textField(doc, KeySMTPHost),
		SMTPPort:              portField(doc, KeySMTPPort),
		RecipientAddress:      textField(doc, KeyRecipientAddress),
		CheckIntervalMinutes:  uintField(doc, KeyCheckIntervalMinutes, DefaultCheckIntervalMinutes),
		IPAddress:             textField(doc, KeyIPAddress),
		SequentialFailures:    uintField(doc, KeySequentialFailures, 0),
		FailureAlertThreshold: uintField(doc, KeyFailureAlertThreshold, DefaultFailureAlertThreshold),
		SlackWebhookURL:       textField(doc, KeySlackWebhookURL),
	}
}

// ToDocument is the inverse of FromDocument over the known keys.
func ToDocument(c Configuration) document.Value {
	return document.ObjectValue(map[string]document.Value{
		KeyEmailAddress:          document.TextValue(c.EmailAddress),
		KeyEmailUsername:         document.TextValue(c.EmailUsername),
		KeyEmailPassword:         document.TextValue(c.EmailPassword),
		KeySMTPHost:              document.TextValue(c.SMTPHost),
		KeySMTPPort:              document.NumberValue(float64(c.SMTPPort)),
		KeyRecipientAddress:      document.TextValue(c.RecipientAddress),
		KeyCheckIntervalMinutes:  document.NumberValue(float64(c.CheckIntervalMinutes)),
		KeyIPAddress:             document.TextValue(c.IPAddress),
		KeySequentialFailures:    document.NumberValue(float64(c.SequentialFailures)),
		KeyFailureAlertThreshold: document.NumberValue(float64(c.FailureAlertThreshold)),
		KeySlackWebhookURL:       document.TextValue(c.SlackWebhookURL),
	})
}

func textField(doc document.Value, key string) string {
	v, _ := doc.Get(key)
	s, _ := v.AsText()
	return s
}

func uintField(doc document.Value, key string, fallback uint64) uint64 {
	v, _ := doc.Get(key)
	if n, ok := v.AsUint(); ok {
		return n
	}
	return fallback
}

func portField(doc document.Value, key string) uint16 {
	n := uintField(doc, key, uint64(DefaultSMTPPort))
	if n < 1 || n > 65535 {
		return DefaultSMTPPort
	}
	return uint16(n)
}

// MaxCheckIntervalMinutes is the longest interval a time.Duration can hold.
const MaxCheckIntervalMinutes = uint64(math.MaxInt64 / int64(time.Minute))

// Interval is the wait between two checks. Zero minutes is treated as one
// and values past MaxCheckIntervalMinutes are clamped to it.
func (c Configuration) Interval() time.Duration {
	switch {
	case c.CheckIntervalMinutes == 0:
		return time.Minute
	case c.CheckIntervalMinutes > MaxCheckIntervalMinutes:
		return time.Duration(MaxCheckIntervalMinutes) * time.Minute
	}
	return time.Duration(c.CheckIntervalMinutes) * time.Minute
}

// SMTPUsername is the login used against the SMTP server.
func (c Configuration) SMTPUsername() string {
	if c.EmailUsername != "" {
		return c.EmailUsername
	}
	return c.EmailAddress
}

// Print writes a human readable listing of c. The password is masked unless
// reveal is set.
func (c Configuration) Print(w io.Writer, reveal bool) {
	password := c.EmailPassword
	if !reveal && password != "" {
		password = strings.Repeat("*", 8)
	}
	fmt.Fprintf(w, "Email Address:           %s\n", c.EmailAddress)
	fmt.Fprintf(w, "Email Username:          %s\n", c.EmailUsername)
	fmt.Fprintf(w, "Email Password:          %s\n", password)
	fmt.Fprintf(w, "SMTP Host:               %s\n", c.SMTPHost)
	fmt.Fprintf(w, "SMTP Port:               %d\n", c.SMTPPort)
	fmt.Fprintf(w, "Recipient Address:       %s\n", c.RecipientAddress)
	fmt.Fprintf(w, "Check Interval (min):    %d\n", c.CheckIntervalMinutes)
	fmt.Fprintf(w, "Last Known IP Address:   %s\n", c.IPAddress)
	fmt.Fprintf(w, "Sequential Failures:     %d\n", c.SequentialFailures)
	fmt.Fprintf(w, "Failure Alert Threshold: %d\n", c.FailureAlertThreshold)
	fmt.Fprintf(w, "Slack Webhook URL:       %s\n", c.SlackWebhookURL)
}

// Loader is anything that can produce the current document.
type Loader interface {
	Load() (document.Value, error)
}

// Load reads the current Configuration through l.
func Load(l Loader) (Configuration, error) {
	doc, err := l.Load()
	if err != nil {
		return Configuration{}, err
	}
	return FromDocument(doc), nil
}
