package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"warehouse-manager/internal/config"
	"warehouse-manager/internal/domain/notification"
	"warehouse-manager/internal/logger"
)

// SMTPSender sends through a relay, upgrading with STARTTLS when offered.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg notification.Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid sender %q: %w", s.cfg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	opts := []gomail.Option{
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(10 * time.Second),
	}
	if s.cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.User),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	logger.Debug("Mail sent", zap.String("host", s.cfg.Host), zap.String("subject", msg.Subject))
	return nil
}

// LogSender writes mail to the log instead of sending it. Used when no SMTP
// host is configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg notification.Message) error {
	s.log.Info("Mail delivery disabled, message not sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	// bodies can carry reset links
	s.log.Debug("Undelivered mail body", zap.String("to", msg.To), zap.String("body", msg.Body))
	return nil
}

// New picks the SMTP sender when a host is configured.
func New(cfg config.SMTPConfig) notification.Mailer {
	if cfg.Host == "" {
		return NewLogSender(logger.Named("mail"))
	}
	return NewSMTPSender(cfg)
}
