// Package ses provides email notification services via AWS SES
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "donor-matching-engine/internal/config"
	"donor-matching-engine/internal/models"
	"donor-matching-engine/internal/utils"
)

// Service handles SES email operations
type Service struct {
	client    *ses.Client
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	appCfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	return &Service{
		client:    ses.NewFromConfig(cfg),
		fromEmail: appCfg.SESSenderEmail,
	}, nil
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.Logger.Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	utils.Logger.Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", aws.ToString(result.MessageId)),
	)

	return &SendEmailResult{
		MessageID: aws.ToString(result.MessageId),
		SentAt:    time.Now().UTC(),
	}, nil
}

// donorNotificationData is the template context for a match notification.
// DistanceText is empty when neither side has coordinates.
type donorNotificationData struct {
	DonorName     string
	BloodGroup    string
	Urgency       string
	RequesterName string
	City          string
	DistanceText  string
	ContactEmail  string
}

var donorNotificationHTML = template.Must(template.New("donorNotification").Parse(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2 style="color: #c0392b;">Blood Donation Request</h2>
	<p>Dear {{.DonorName}},</p>
	<p>A {{.Urgency}} request for <strong>{{.BloodGroup}}</strong> blood has been
	raised{{if .City}} in <strong>{{.City}}</strong>{{end}} and you are among the
	best matched donors.</p>
	{{if .DistanceText}}<p>The requester is approximately {{.DistanceText}} km from your registered location.</p>{{end}}
	<p>If you are able to donate, please reply to
	<a href="mailto:{{.ContactEmail}}">{{.ContactEmail}}</a> ({{.RequesterName}})
	as soon as possible.</p>
	<p>Thank you for being a registered donor.</p>
</body>
</html>`))

// NotifyDonor sends a match notification email to a single donor. It
// implements the matching service's DonorNotifier interface.
func (s *Service) NotifyDonor(ctx context.Context, donor models.Donor, request *models.BloodRequest, breakdown models.ScoreBreakdown) error {
	data := donorNotificationData{
		DonorName:     donor.Name,
		BloodGroup:    string(request.BloodGroup),
		Urgency:       string(request.Urgency),
		RequesterName: request.RequesterName,
		City:          request.City,
		ContactEmail:  request.ContactEmail,
	}
	if breakdown.DistanceKm != nil {
		data.DistanceText = fmt.Sprintf("%.1f", *breakdown.DistanceKm)
	}

	var htmlBody bytes.Buffer
	if err := donorNotificationHTML.Execute(&htmlBody, data); err != nil {
		return fmt.Errorf("failed to render notification email: %w", err)
	}

	textBody := fmt.Sprintf(
		"Dear %s,\n\nA %s request for %s blood has been raised and you are among the best matched donors.\n"+
			"If you are able to donate, please contact %s at %s as soon as possible.\n\nThank you for being a registered donor.\n",
		donor.Name, request.Urgency, request.BloodGroup, request.RequesterName, request.ContactEmail)

	subject := fmt.Sprintf("Blood donation request: %s needed", request.BloodGroup)
	if request.Urgency == models.RequestUrgencyCritical {
		subject = fmt.Sprintf("URGENT: %s blood needed", request.BloodGroup)
	}

	_, err := s.SendEmail(ctx, EmailParams{
		To:       donor.Email,
		Subject:  subject,
		HTMLBody: htmlBody.String(),
		TextBody: textBody,
		ReplyTo:  request.ContactEmail,
	})
	return err
}
