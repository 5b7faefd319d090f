package email

import (
	"context"

	"github.com/itchan-dev/authgate/shared/logger"
)

// LogNotifier logs verification links instead of mailing them. Used when
// no SMTP server is configured.
type LogNotifier struct{}

func (LogNotifier) SendVerificationEmail(ctx context.Context, to, link string) error {
	logger.Log.Info("verification email not sent, SMTP is not configured",
		"recipient", logger.MaskEmail(to),
		"link", link,
	)
	return nil
}
