package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"sync"
)

// Message describes an outbound email payload.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers messages to a user's registered channel.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// SMTPNotifier delivers messages through an SMTP relay.
type SMTPNotifier struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPNotifier constructs an SMTP-backed notifier. Username and password
// are optional; when empty the relay is used unauthenticated.
func NewSMTPNotifier(addr, from, username, password string) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{addr: addr, from: from, auth: auth}
}

// Send delivers the message, blocking until the relay accepts it.
func (n *SMTPNotifier) Send(_ context.Context, message Message) error {
	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.from, message.To, message.Subject, message.Body)
	if err := smtp.SendMail(n.addr, n.auth, n.from, []string{message.To}, []byte(payload)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LoggerNotifier is a stub implementation that writes messages to the
// logger. Used in development when no SMTP relay is configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "to", message.To, "subject", message.Subject, "body", message.Body)
	return nil
}

// Recorder captures sent messages for tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message

	// Err, when set, is returned by Send to simulate delivery failure.
	Err error
}

// Send records the message.
func (r *Recorder) Send(_ context.Context, message Message) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent message, or false if nothing was sent.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}
