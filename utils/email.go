// utils/email.go
package utils

import (
	"fmt"
	"os"

	"github.com/keighl/postmark"
	pkgerrors "github.com/pkg/errors"

	"book-rental/models"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		panic("POSTMARK_API_TOKEN is not set in environment variables")
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     os.Getenv("EMAIL_SENDER"),
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	return pkgerrors.Wrap(err, "sending email")
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("http://localhost:%s/verify?token=%s", os.Getenv("PORT"), token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		verificationLink,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendStatusUpdateEmail notifies a renter that the library moved their
// rental request to a new status.
func (es *EmailService) SendStatusUpdateEmail(toEmail string, cart models.Cart) error {
	subject := "Your Rental Request Was Updated"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your rental request (ID: %s) is now <strong>%s</strong>.<br>Total: <strong>%.0f</strong><br><br>Thank you for using the library!",
		cart.Contact.FullName,
		cart.ID.Hex(),
		cart.Status,
		cart.TotalPrice,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
