package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/itchan-dev/authgate/shared/config"
	"github.com/itchan-dev/authgate/shared/errors"
	"github.com/itchan-dev/authgate/shared/logger"
)

const implicitTLSPort = 465

// Email delivers verification links over SMTP. Every send is a single
// attempt, failures are reported to the caller and never retried.
type Email struct {
	config *config.Email
	auth   smtp.Auth
}

func New(config *config.Email) *Email {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.SMTPServer)
	return &Email{
		config: config,
		auth:   auth,
	}
}

func (e *Email) SendVerificationEmail(ctx context.Context, to, link string) error {
	msg, err := e.buildMessage(to, verificationSubject, verificationBody(link))
	if err != nil {
		return fmt.Errorf("%w: build message: %w", errors.ErrDelivery, err)
	}
	if err := e.send(ctx, to, msg); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrDelivery, err)
	}
	return nil
}

func (e *Email) send(ctx context.Context, to string, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	address := net.JoinHostPort(e.config.SMTPServer, fmt.Sprint(e.config.SMTPPort))
	conn, err := e.dial(ctx, address)
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server", "address", address, "error", err)
		return err
	}
	defer conn.Close()

	// smtp.Client has no context support, the deadline bounds the whole session
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return err
		}
	}

	client, err := smtp.NewClient(conn, e.config.SMTPServer)
	if err != nil {
		logger.Log.Error("failed to create SMTP client", "error", err)
		return err
	}
	defer client.Close()

	if e.config.SMTPPort != implicitTLSPort {
		if err = client.StartTLS(e.tlsConfig()); err != nil {
			logger.Log.Error("failed to start TLS", "error", err)
			return err
		}
	}

	return e.sendViaClient(client, to, msg)
}

// dial opens a TLS connection on port 465 and a plain one otherwise,
// upgraded later with STARTTLS.
func (e *Email) dial(ctx context.Context, address string) (net.Conn, error) {
	if e.config.SMTPPort == implicitTLSPort {
		dialer := &tls.Dialer{Config: e.tlsConfig()}
		return dialer.DialContext(ctx, "tcp", address)
	}
	var dialer net.Dialer
	return dialer.DialContext(ctx, "tcp", address)
}

func (e *Email) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: e.config.SMTPServer}
}

func (e *Email) timeout() time.Duration {
	if e.config.Timeout <= 0 {
		return config.DefaultEmailTimeout
	}
	return e.config.Timeout
}

// sendViaClient performs auth, sets sender/recipient, and sends the message body.
func (e *Email) sendViaClient(client *smtp.Client, to string, msg []byte) error {
	if e.config.Username != "" {
		if err := client.Auth(e.auth); err != nil {
			logger.Log.Error("SMTP authentication failed", "error", err)
			return err
		}
	}

	if err := client.Mail(e.config.SenderAddress); err != nil {
		logger.Log.Error("failed to set sender", "error", err)
		return err
	}

	if err := client.Rcpt(to); err != nil {
		logger.Log.Error("failed to set recipient", "recipient", logger.MaskEmail(to), "error", err)
		return err
	}

	w, err := client.Data()
	if err != nil {
		logger.Log.Error("failed to get data writer", "error", err)
		return err
	}

	if _, err = w.Write(msg); err != nil {
		logger.Log.Error("failed to write message", "error", err)
		return err
	}

	if err = w.Close(); err != nil {
		logger.Log.Error("failed to close data writer", "error", err)
		return err
	}

	return client.Quit()
}
