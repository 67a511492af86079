package notify

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/ipwatch/internal/config"
	errs "github.com/ipwatch/internal/errors"
)

const senderName = "IP Change Notifier"

// Sender is the part of gomail.Dialer the notifier needs.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier sends events over authenticated SMTP.
type EmailNotifier struct {
	dial func(cfg config.Configuration) Sender
}

func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{dial: newDialer}
}

func newDialer(cfg config.Configuration) Sender {
	// gomail switches to implicit TLS on port 465 and STARTTLS otherwise.
	return gomail.NewDialer(cfg.SMTPHost, int(cfg.SMTPPort), cfg.SMTPUsername(), cfg.EmailPassword)
}

func (n *EmailNotifier) Notify(cfg config.Configuration, event Event) error {
	if cfg.RecipientAddress == "" {
		return errs.Validation(config.KeyRecipientAddress, "no recipient configured")
	}
	if cfg.SMTPHost == "" {
		return errs.Validation(config.KeySMTPHost, "no SMTP host configured")
	}

	m := buildMessage(cfg, event)
	endpoint := net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(int(cfg.SMTPPort)))
	if err := n.dial(cfg).DialAndSend(m); err != nil {
		return errs.Network("send email", endpoint, err)
	}
	return nil
}

func buildMessage(cfg config.Configuration, event Event) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", cfg.EmailAddress, senderName)
	m.SetHeader("To", cfg.RecipientAddress)
	m.SetHeader("Subject", subject(event))
	m.SetDateHeader("Date", eventTime(event))
	m.SetBody("text/plain", body(event))
	return m
}

func eventTime(event Event) time.Time {
	if event.Time.IsZero() {
		return time.Now()
	}
	return event.Time
}

func body(event Event) string {
	var b strings.Builder
	switch event.Kind {
	case EventIPChanged:
		b.WriteString("The public IP address of this machine has changed.\n\n")
		fmt.Fprintf(&b, "Previous IP: %s\n", orUnknown(event.OldIP))
		fmt.Fprintf(&b, "Current IP:  %s\n", event.NewIP)
	case EventLookupFailing:
		fmt.Fprintf(&b, "The public IP lookup has failed %d times in a row.\n\n", event.Failures)
		if event.Err != nil {
			fmt.Fprintf(&b, "Last error: %v\n", event.Err)
		}
	default:
		b.WriteString("This is a test notification from ipwatch.\n\n")
		fmt.Fprintf(&b, "Last known IP: %s\n", orUnknown(event.NewIP))
	}
	fmt.Fprintf(&b, "Time: %s\n", eventTime(event).Format(time.RFC3339))
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
