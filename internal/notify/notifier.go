// Package notify tells the operator about IP changes and failing lookups.
package notify

import (
	"errors"
	"net/http"
	"time"

	"github.com/ipwatch/internal/config"
)

type EventKind string

const (
	EventIPChanged     EventKind = "IP_CHANGED"
	EventLookupFailing EventKind = "LOOKUP_FAILING"
	EventTest          EventKind = "TEST"
)

// Event is what happened. OldIP and NewIP are set for EventIPChanged,
// Failures and Err for EventLookupFailing.
type Event struct {
	Kind     EventKind
	OldIP    string
	NewIP    string
	Failures uint64
	Err      error
	Time     time.Time
}

// IPChanged builds the event sent when the public address moves.
func IPChanged(oldIP, newIP string) Event {
	return Event{Kind: EventIPChanged, OldIP: oldIP, NewIP: newIP, Time: time.Now()}
}

// LookupFailing builds the event sent when lookups keep failing.
func LookupFailing(failures uint64, err error) Event {
	return Event{Kind: EventLookupFailing, Failures: failures, Err: err, Time: time.Now()}
}

// Test builds a one-shot test event carrying the current address.
func Test(currentIP string) Event {
	return Event{Kind: EventTest, NewIP: currentIP, Time: time.Now()}
}

// Notifier delivers an event using the settings in cfg. Callers treat errors
// as non-fatal.
type Notifier interface {
	Notify(cfg config.Configuration, event Event) error
}

// Multi sends to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(cfg config.Configuration, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(cfg, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New returns the standard email plus Slack notifier. Webhook calls give
// up after timeout.
func New(timeout time.Duration) Notifier {
	return Multi{NewEmailNotifier(), NewSlackNotifier(&http.Client{Timeout: timeout})}
}

func subject(event Event) string {
	switch event.Kind {
	case EventIPChanged:
		return "Your IP Changed!"
	case EventLookupFailing:
		return "IP lookup failing"
	default:
		return "ipwatch test notification"
	}
}
