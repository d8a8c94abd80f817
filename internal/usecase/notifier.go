package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/email"
	"github.com/ErlanBelekov/course-signup/internal/metrics"
	"github.com/ErlanBelekov/course-signup/internal/sms"
)

// ConfirmationNotifier delivers a confirmation link by email and its code by SMS.
type ConfirmationNotifier struct {
	email         email.Sender
	sms           sms.Sender
	baseURL       string
	countryPrefix string
	logger        *slog.Logger
}

func NewConfirmationNotifier(emailSender email.Sender, smsSender sms.Sender, baseURL, countryPrefix string, logger *slog.Logger) *ConfirmationNotifier {
	return &ConfirmationNotifier{
		email:         emailSender,
		sms:           smsSender,
		baseURL:       baseURL,
		countryPrefix: countryPrefix,
		logger:        logger.With("component", "notifier"),
	}
}

// Notify sends the email, then the SMS when the user has a phone number.
// The first failure aborts and is returned wrapped in domain.ErrNotificationFailed.
func (n *ConfirmationNotifier) Notify(ctx context.Context, u *domain.User, c *domain.Confirmation) error {
	link := n.baseURL + "/user_confirm/" + c.ID
	subject := "Registration Confirmation"
	body := fmt.Sprintf(
		`<p>Please click the link to confirm your registration:</p><p><a href="%s">%s</a></p>`,
		link, link,
	)
	if err := n.email.Send(ctx, u.Email, subject, body); err != nil {
		metrics.NotificationsTotal.WithLabelValues("email", "error").Inc()
		return fmt.Errorf("%w: email: %w", domain.ErrNotificationFailed, err)
	}
	metrics.NotificationsTotal.WithLabelValues("email", "sent").Inc()

	if !u.HasPhone() {
		return nil
	}

	text := fmt.Sprintf("Your confirmation code is %s", c.Code)
	if err := n.sms.Send(ctx, n.countryPrefix+*u.Phone, text); err != nil {
		metrics.NotificationsTotal.WithLabelValues("sms", "error").Inc()
		return fmt.Errorf("%w: sms: %w", domain.ErrNotificationFailed, err)
	}
	metrics.NotificationsTotal.WithLabelValues("sms", "sent").Inc()

	n.logger.DebugContext(ctx, "confirmation sent", "user_id", u.ID, "confirmation_id", c.ID)
	return nil
}
