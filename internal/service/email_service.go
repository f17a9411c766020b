package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"studyguard/internal/logger"
	"studyguard/internal/models"
)

// sesSender is the part of the SES client the email service uses
type sesSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesSender
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logg       *logger.Logger
}

// EmailOptions configures NewEmailService
type EmailOptions struct {
	AWSRegion  string
	FromEmail  string
	FromName   string
	AppBaseURL string
	Logger     *logger.Logger
}

// NewEmailService creates a new email service. Without a from address the
// service is disabled and every send is skipped.
func NewEmailService(ctx context.Context, opts EmailOptions) (*EmailService, error) {
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	if opts.FromEmail == "" {
		logg.Info(ctx, "email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, logg: logg}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logCtx := logg.WithFields(ctx, map[string]any{"from": opts.FromEmail, "region": opts.AWSRegion})
	logg.Info(logCtx, "email service enabled")

	return newEmailServiceWithClient(sesv2.NewFromConfig(cfg), opts, logg), nil
}

func newEmailServiceWithClient(client sesSender, opts EmailOptions, logg *logger.Logger) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  opts.FromEmail,
		fromName:   opts.FromName,
		appBaseURL: opts.AppBaseURL,
		enabled:    true,
		logg:       logg,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// NotifyBarrierAlert emails every parent about an alert raised for child
func (s *EmailService) NotifyBarrierAlert(ctx context.Context, parents []models.User, child models.User, alert models.BarrierAlert) error {
	if !s.enabled {
		s.logg.Debug(s.logg.WithField(ctx, "alert_id", alert.ID), "skipping alert email (service disabled)")
		return nil
	}

	subject := fmt.Sprintf("StudyGuard alert: %s", child.Name)
	message := alert.AlertMessage
	if message == "" {
		message = "No further details were reported by the device."
	}
	triggered := alert.TriggeredAt.Format(time.RFC1123)
	alertsLink := s.appBaseURL + "/alerts"

	var firstErr error
	for _, parent := range parents {
		htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi %s,</p>
	<p><strong>%s</strong> triggered a <strong>%s</strong> alert while the barrier was active.</p>
	<p>%s</p>
	<p>Time: %s</p>
	<p><a href="%s">Review alerts</a></p>
	<p style="font-size: 12px; color: #666;">This is an automated email from StudyGuard. Please do not reply.</p>
</body>
</html>
`, html.EscapeString(parent.Name), html.EscapeString(child.Name), html.EscapeString(alert.AlertType),
			html.EscapeString(message), triggered, alertsLink)

		textBody := fmt.Sprintf(`Hi %s,

%s triggered a %s alert while the barrier was active.

%s

Time: %s
Review alerts: %s

---
This is an automated email from StudyGuard. Please do not reply.
`, parent.Name, child.Name, alert.AlertType, message, triggered, alertsLink)

		if err := s.sendEmail(ctx, parent.Email, subject, htmlBody, textBody); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := map[string]any{"to": toEmail, "subject": subject}
	if result != nil && result.MessageId != nil {
		fields["message_id"] = *result.MessageId
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "email sent")
	return nil
}
