package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Message is a plain-text email
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// smtpClient is the subset of *smtp.Client used for one send
type smtpClient interface {
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// dialFunc opens an authenticated-ready SMTP session
type dialFunc func(ctx context.Context) (smtpClient, error)

// SMTPMailer sends mail over implicit TLS (SMTPS), one connection per message
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
	dial     dialFunc
	now      func() time.Time
}

// NewSMTPMailer creates a mailer for host:port authenticating as username
func NewSMTPMailer(host string, port int, username, password string, timeout time.Duration) *SMTPMailer {
	m := &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		timeout:  timeout,
		now:      time.Now,
	}
	m.dial = m.dialTLS
	return m
}

func (m *SMTPMailer) addr() string {
	return net.JoinHostPort(m.host, strconv.Itoa(m.port))
}

// dialTLS connects with a bounded handshake and sets an I/O deadline on the
// whole session so a stalled server can't hold the request forever.
func (m *SMTPMailer) dialTLS(ctx context.Context) (smtpClient, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: m.timeout},
		Config:    &tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12},
	}

	conn, err := dialer.DialContext(ctx, "tcp", m.addr())
	if err != nil {
		return nil, err
	}

	deadline := m.now().Add(m.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, err
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

// Send delivers msg. The connection is closed on every return path.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (err error) {
	ctx, span := tracer.Start(ctx, "smtp.send")
	span.SetAttributes(attribute.String("smtp.addr", m.addr()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "smtp send failed")
		}
		span.End()
	}()

	raw, err := msg.Bytes(m.now(), m.host)
	if err != nil {
		return fmt.Errorf("failed to compose message: %w", err)
	}

	client, err := m.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", m.addr(), err)
	}
	defer client.Close()

	if err := client.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp server rejected message: %w", err)
	}

	// The server accepted the message once DATA closed. A failed QUIT only
	// affects the session, and the deferred Close releases the connection.
	if err := client.Quit(); err != nil {
		span.AddEvent("smtp QUIT failed", trace.WithAttributes(attribute.String("error", err.Error())))
	}
	return nil
}

// Bytes renders the message as RFC 5322 text with a quoted-printable UTF-8 body
func (msg Message) Bytes(date time.Time, domain string) ([]byte, error) {
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	var buf bytes.Buffer
	writeHeader := func(key, value string) {
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	}

	writeHeader("From", from.String())
	writeHeader("To", to.String())
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", singleLine(msg.Subject)))
	writeHeader("Date", date.Format(time.RFC1123Z))
	writeHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domain))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", "text/plain; charset=utf-8")
	writeHeader("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(strings.ReplaceAll(msg.Body, "\n", "\r\n"))); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// singleLine strips line breaks so user input can't inject headers
func singleLine(s string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("\r", " ", "\n", " ").Replace(s)), " ")
}
