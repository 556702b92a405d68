package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	gomail "github.com/wneessen/go-mail"

	"github.com/Alturino/marketplace/internal/config"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/metrics"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/notification/internal/otel"
)

const (
	SubjectPasswordReset = "Password Reset Request"
	bodyPasswordReset    = "Please click the link below to reset your password:\n%s"

	breakerName        = "smtp"
	breakerMaxFailures = 5
	breakerOpenTimeout = 30 * time.Second
)

type sender interface {
	DialAndSendWithContext(c context.Context, messages ...*gomail.Msg) error
}

type Mailer struct {
	client  sender
	from    string
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewMailer(cfg config.Mail) (*Mailer, error) {
	policy := gomail.TLSOpportunistic
	if cfg.TLS {
		policy = gomail.TLSMandatory
	}
	options := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(policy),
	}
	if cfg.Timeout > 0 {
		options = append(options, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, options...)
	if err != nil {
		return nil, fmt.Errorf("failed creating smtp client with error=%w", err)
	}
	return newMailer(client, cfg.From), nil
}

func newMailer(client sender, from string) *Mailer {
	return &Mailer{
		client: client,
		from:   from,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:    breakerName,
			Timeout: breakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerMaxFailures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				metrics.MailBreakerState.Set(float64(to))
			},
		}),
	}
}

func (m *Mailer) message(to string, subject string, body string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("failed setting sender=%s with error=%w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("failed setting recipient=%s with error=%w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	return msg, nil
}

// SendPasswordResetEmail mails resetLink to the address to. It fails fast
// while the SMTP server is considered down.
func (m *Mailer) SendPasswordResetEmail(c context.Context, to string, resetLink string) error {
	c, span := otel.Tracer.Start(c, "Mailer SendPasswordResetEmail")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Mailer SendPasswordResetEmail").
		Str(log.KeyEmail, to).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "building message").Logger()
	logger.Info().Msg("building message")
	msg, err := m.message(to, SubjectPasswordReset, fmt.Sprintf(bodyPasswordReset, resetLink))
	if err != nil {
		err = fmt.Errorf("failed building message with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("built message")

	logger = logger.With().Str(log.KeyProcess, "sending message").Logger()
	logger.Info().Msg("sending message")
	_, err = m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, m.client.DialAndSendWithContext(c, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.MailsSent.WithLabelValues("rejected").Inc()
	} else if err != nil {
		metrics.MailsSent.WithLabelValues("failed").Inc()
	}
	if err != nil {
		err = fmt.Errorf("failed sending message with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	metrics.MailsSent.WithLabelValues("sent").Inc()
	logger.Info().Msg("sent message")

	return nil
}
