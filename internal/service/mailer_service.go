package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/hrms-io/hrms-api/internal/models"
	"github.com/hrms-io/hrms-api/pkg/config"
	"github.com/hrms-io/hrms-api/pkg/jobs"
)

// Mail is one outbound notification message.
type Mail struct {
	To      []string
	Subject string
	Body    string
}

// MailSender delivers a single message over a transport.
type MailSender interface {
	Send(mail Mail) error
}

// SMTPSender delivers mail through an SMTP server.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds an SMTP-backed sender from mail configuration.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send dials the SMTP server and sends the message.
func (s *SMTPSender) Send(mail Mail) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", mail.To...)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/html", mail.Body)
	return s.dialer.DialAndSend(msg)
}

// MailerService dispatches notifications best-effort through a worker queue.
// Delivery is at-most-once: a failed send is logged and counted, never
// retried, and never surfaced to the caller of the originating transition.
type MailerService struct {
	sender  MailSender
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	enabled bool
}

// NewMailerService constructs a mailer around the given sender.
func NewMailerService(sender MailSender, metrics *MetricsService, logger *zap.Logger, cfg config.MailConfig) *MailerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &MailerService{
		sender:  sender,
		metrics: metrics,
		logger:  logger,
		enabled: cfg.Enabled && sender != nil,
	}
	m.queue = jobs.NewQueue("mail", m.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: 0,
		Logger:     logger,
	})
	return m
}

// Start launches the dispatch workers.
func (m *MailerService) Start(ctx context.Context) {
	m.queue.Start(ctx)
}

// Stop drains the dispatch workers.
func (m *MailerService) Stop() {
	m.queue.Stop()
}

// Dispatch enqueues a message. Enqueue failures are logged and swallowed.
func (m *MailerService) Dispatch(mail Mail) {
	if !m.enabled {
		m.logger.Debug("mail disabled, dropping notification", zap.Strings("to", mail.To), zap.String("subject", mail.Subject))
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: "mail", Payload: mail}
	if err := m.queue.Enqueue(job); err != nil {
		m.logger.Warn("failed to enqueue notification", zap.Strings("to", mail.To), zap.Error(err))
		if m.metrics != nil {
			m.metrics.RecordMailDispatch(false)
		}
	}
}

func (m *MailerService) process(_ context.Context, job jobs.Job) error {
	mail, ok := job.Payload.(Mail)
	if !ok {
		m.logger.Error("mail job carried unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	err := m.sender.Send(mail)
	if m.metrics != nil {
		m.metrics.RecordMailDispatch(err == nil)
	}
	if err != nil {
		m.logger.Warn("notification dispatch failed",
			zap.Strings("to", mail.To),
			zap.String("subject", mail.Subject),
			zap.Error(err))
		return nil
	}

	m.logger.Info("notification dispatched", zap.Strings("to", mail.To), zap.String("subject", mail.Subject))
	return nil
}

// SendVerification notifies a new signup with their verification token.
func (m *MailerService) SendVerification(user *models.User, token string) {
	m.Dispatch(Mail{
		To:      []string{user.Email},
		Subject: "Verify your HRMS account email",
		Body: fmt.Sprintf(
			"<p>Hello %s,</p><p>Please verify your email address within 24 hours using the code below:</p><p><strong>%s</strong></p>",
			user.FullName(), token),
	})
}

// SendApprovalRequest notifies the super-admins about a pending signup.
func (m *MailerService) SendApprovalRequest(superAdmins []string, user *models.User) {
	if len(superAdmins) == 0 {
		return
	}
	m.Dispatch(Mail{
		To:      superAdmins,
		Subject: "New admin account awaiting approval",
		Body: fmt.Sprintf(
			"<p>%s (%s) requested an admin account and is awaiting your decision.</p>",
			user.FullName(), user.Email),
	})
}

// SendDecision notifies the requester of the approval outcome.
func (m *MailerService) SendDecision(user *models.User, action models.ApprovalAction) {
	subject := "Your HRMS admin account was approved"
	body := fmt.Sprintf("<p>Hello %s,</p><p>Your admin account has been approved. You can now sign in.</p>", user.FullName())
	if action == models.ActionReject {
		subject = "Your HRMS admin account request was declined"
		body = fmt.Sprintf("<p>Hello %s,</p><p>Your admin account request has been declined.</p>", user.FullName())
	}
	m.Dispatch(Mail{To: []string{user.Email}, Subject: subject, Body: body})
}
