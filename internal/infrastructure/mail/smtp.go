// Package mail delivers outbound email over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/crm/backend/internal/infrastructure/config"
)

// Send failure categories. The stored failure reason starts with one
// of these so the API can distinguish credential problems from server
// reachability problems.
var (
	ErrAuthentication = errors.New("smtp authentication failed")
	ErrConnectivity   = errors.New("smtp server unreachable")
	ErrDelivery       = errors.New("smtp delivery failed")
)

// Message is one outbound email
type Message struct {
	To      []string
	Cc      []string
	Subject string
	Body    string
	HTML    bool
}

// Sender delivers email messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender implements Sender using an SMTP relay
type SMTPSender struct {
	cfg config.MailConfig
}

// NewSMTPSender creates an SMTP sender from configuration
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers one message. Returned errors wrap one of the failure
// category sentinels.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("%w: invalid sender address: %v", ErrDelivery, err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("%w: invalid recipient address: %v", ErrDelivery, err)
	}
	if len(msg.Cc) > 0 {
		if err := m.Cc(msg.Cc...); err != nil {
			return fmt.Errorf("%w: invalid cc address: %v", ErrDelivery, err)
		}
	}
	m.Subject(msg.Subject)
	if msg.HTML {
		m.SetBodyString(gomail.TypeTextHTML, msg.Body)
	} else {
		m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return Categorize(err)
	}
	return nil
}

// Categorize maps a raw SMTP error to one of the failure category
// sentinels, preserving the original message.
func Categorize(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "535") ||
		strings.Contains(msg, "auth") ||
		strings.Contains(msg, "credentials"):
		return fmt.Errorf("%w: %v", ErrAuthentication, err)
	case isConnectivityError(err) ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	default:
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
}

func isConnectivityError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

var _ Sender = (*SMTPSender)(nil)
