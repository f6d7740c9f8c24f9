package contact

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/telemetry"
)

// Options configures a Service.
type Options struct {
	From     string
	To       []string
	Location *time.Location
	Now      func() time.Time
}

// Service turns a raw form payload into exactly one notification email.
type Service struct {
	mailer Mailer
	sink   telemetry.Sink
	logger *slog.Logger
	opts   Options
}

// NewService creates a contact service.
func NewService(mailer Mailer, sink telemetry.Sink, logger *slog.Logger, opts Options) *Service {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{mailer: mailer, sink: sink, logger: logger, opts: opts}
}

// Submit validates d and sends its notification. It returns an
// *apperr.ValidationError when required fields are missing and wraps
// apperr.ErrTransport when delivery fails. Delivery is not retried.
func (s *Service) Submit(ctx context.Context, d models.ContactFormData) error {
	sub := Normalize(d)
	if err := sub.Validate(); err != nil {
		return err
	}

	n, err := RenderNotification(sub, s.opts.Now(), s.opts.Location)
	if err != nil {
		return err
	}
	msg := Message{
		From:    s.opts.From,
		To:      s.opts.To,
		ReplyTo: sub.ReplyTo(),
		Subject: n.Subject,
		HTML:    n.HTML,
		Text:    n.Text,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("contact notification failed",
			slog.String("error", err.Error()),
			slog.String("clinic", sub.Clinic),
		)
		return fmt.Errorf("%w: %v", apperr.ErrTransport, err)
	}

	s.logger.Info("contact notification sent", slog.String("clinic", sub.Clinic), slog.String("service", sub.Service))
	s.sink.Emit(ctx, telemetry.New(telemetry.EventGenerateLead, map[string]any{
		"service": sub.Service,
		"plan":    sub.Plan,
		"source":  sub.Source,
	}))
	return nil
}
