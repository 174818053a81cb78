// Package notify sends the daily-challenge reminder email.
//
// The reminder is triggered from outside the game core: either the
// /api/cron/daily-reminder endpoint (hit by an external scheduler with a
// shared bearer secret) or an optional in-process cron schedule.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog/log"
)

// Message is one outgoing email to one or more recipients.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers a Message and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, m Message) (string, error)
}

// sesAPI is the slice of the SES v2 client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends through Amazon SES v2.
type SESMailer struct {
	client sesAPI
}

// NewSESMailer loads the default AWS credential chain for region.
func NewSESMailer(ctx context.Context, region string) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("notify: load AWS config: %w", err)
	}
	log.Info().Str("region", region).Msg("SES mailer enabled")
	return &SESMailer{client: sesv2.NewFromConfig(cfg)}, nil
}

func utf8Content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}

func (m *SESMailer) Send(ctx context.Context, msg Message) (string, error) {
	out, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: utf8Content(msg.Subject),
				Body: &types.Body{
					Html: utf8Content(msg.HTML),
					Text: utf8Content(msg.Text),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("notify: SES send: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
