package mailer

import (
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends training notifications.
type Mailer interface {
	SendInvitation(toName, toEmail, theme, location, startDate, endDate, qcmURL string) error
}

// Sendgrid sends through the SendGrid v3 API.
type Sendgrid struct {
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
}

// NewSendgrid creates a mailer. key must be a SendGrid API key.
func NewSendgrid(key, fromName, fromEmail string) *Sendgrid {
	return &Sendgrid{
		client:     sendgrid.NewSendClient(key),
		from:       sgmail.NewEmail(fromName, fromEmail),
		subjPrefix: "[" + fromName + "] ",
	}
}

// SendInvitation mails one roster member their training details and the
// questionnaire link to use after the last session.
func (s *Sendgrid) SendInvitation(toName, toEmail, theme, location, startDate, endDate, qcmURL string) error {
	if toEmail == "" {
		return errors.New("recipient email required")
	}
	subject := s.subjPrefix + "Training: " + theme
	plain := fmt.Sprintf(
		"Hello %s,\n\nYou are enrolled in the training %q at %s, from %s to %s.\n\n"+
			"After the last session, fill in the evaluation questionnaire: %s\n\n"+
			"Attendance on every session day is required to access it.\n",
		toName, theme, location, startDate, endDate, qcmURL)

	msg := sgmail.NewSingleEmail(s.from, subject, sgmail.NewEmail(toName, toEmail), plain, "")
	resp, err := s.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// Console logs mail instead of sending, for dev environments without a key.
type Console struct{}

// SendInvitation prints the invitation to stdout.
func (Console) SendInvitation(toName, toEmail, theme, location, startDate, endDate, qcmURL string) error {
	fmt.Printf("mail to %s <%s>: training %q at %s (%s..%s), QCM %s\n",
		toName, toEmail, theme, location, startDate, endDate, qcmURL)
	return nil
}
