package notify

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

// ErrNotConfigured means there is no mailer or no recipient list.
var ErrNotConfigured = errors.New("notify: mailer or REMINDER_EMAILS not configured")

const reminderSubject = "Daily challenge ends in 5 hours"

// Reminder sends the "daily challenge closes soon" email.
type Reminder struct {
	mailer     Mailer
	from       string
	recipients []string
	dailyURL   string
}

// NewReminder builds a Reminder. mailer may be nil; Send then reports ErrNotConfigured.
func NewReminder(mailer Mailer, from string, recipients []string, appURL string) *Reminder {
	if from == "" {
		from = "Wordplay <no-reply@localhost>"
	}
	return &Reminder{
		mailer:     mailer,
		from:       from,
		recipients: recipients,
		dailyURL:   strings.TrimRight(appURL, "/") + "/daily",
	}
}

// Configured reports whether Send can deliver.
func (r *Reminder) Configured() bool { return r.mailer != nil && len(r.recipients) > 0 }

// Send emails every recipient once and returns how many were addressed.
func (r *Reminder) Send(ctx context.Context) (int, string, error) {
	if !r.Configured() {
		return 0, "", ErrNotConfigured
	}
	link := html.EscapeString(r.dailyURL)
	id, err := r.mailer.Send(ctx, Message{
		From:    r.from,
		To:      r.recipients,
		Subject: reminderSubject,
		HTML: "<p>Hi,</p>" +
			"<p>Just a reminder: today's Daily Challenge ends in <strong>5 hours</strong> (midnight UTC).</p>" +
			`<p><a href="` + link + `">Play the daily challenge</a></p>`,
		Text: "Today's Daily Challenge ends in 5 hours (midnight UTC).\nPlay: " + r.dailyURL + "\n",
	})
	if err != nil {
		return 0, "", err
	}
	log.Info().Int("sent", len(r.recipients)).Str("id", id).Msg("daily reminder sent")
	return len(r.recipients), id, nil
}

// Authorize checks an Authorization header against the cron secret.
// An empty secret leaves the trigger open.
func Authorize(header, secret string) bool {
	if secret == "" {
		return true
	}
	want := "Bearer " + secret
	return subtle.ConstantTimeCompare([]byte(header), []byte(want)) == 1
}

// Schedule runs r on the cron expression spec (UTC) until the returned
// scheduler is stopped.
func Schedule(spec string, r *Reminder) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	if _, err := s.Cron(spec).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, _, err := r.Send(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled daily reminder failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("notify: schedule %q: %w", spec, err)
	}
	s.StartAsync()
	log.Info().Str("cron", spec).Msg("daily reminder scheduled")
	return s, nil
}
