package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrms-io/hrms-api/internal/models"
	"github.com/hrms-io/hrms-api/pkg/config"
	"github.com/hrms-io/hrms-api/pkg/jobs"
)

type mockSender struct {
	sent []Mail
	err  error
}

func (m *mockSender) Send(mail Mail) error {
	m.sent = append(m.sent, mail)
	return m.err
}

func newMailer(sender MailSender) *MailerService {
	return NewMailerService(sender, nil, zap.NewNop(), config.MailConfig{Enabled: true, Workers: 1})
}

func TestMailerProcessSends(t *testing.T) {
	sender := &mockSender{}
	m := newMailer(sender)

	err := m.process(context.Background(), jobs.Job{ID: "j1", Type: "mail", Payload: Mail{
		To:      []string{"ada@example.com"},
		Subject: "hello",
	}})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "hello", sender.sent[0].Subject)
}

func TestMailerProcessSwallowsSendFailure(t *testing.T) {
	sender := &mockSender{err: errors.New("smtp down")}
	m := newMailer(sender)

	// A nil return keeps the queue from retrying, so delivery stays
	// at-most-once.
	err := m.process(context.Background(), jobs.Job{ID: "j1", Type: "mail", Payload: Mail{
		To: []string{"ada@example.com"},
	}})
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1)
}

func TestMailerDisabledDropsSilently(t *testing.T) {
	sender := &mockSender{}
	m := NewMailerService(sender, nil, zap.NewNop(), config.MailConfig{Enabled: false, Workers: 1})

	m.Dispatch(Mail{To: []string{"ada@example.com"}})
	assert.Empty(t, sender.sent)
}

func TestMailerNilSenderDisables(t *testing.T) {
	m := NewMailerService(nil, nil, zap.NewNop(), config.MailConfig{Enabled: true, Workers: 1})
	assert.False(t, m.enabled)

	// Must not panic without a sender.
	m.Dispatch(Mail{To: []string{"ada@example.com"}})
}

func TestMailerDecisionTemplates(t *testing.T) {
	sender := &syncSender{}
	m := newMailer(sender)
	m.Start(context.Background())
	defer m.Stop()

	user := &models.User{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}
	m.SendDecision(user, models.ActionApprove)
	m.SendDecision(user, models.ActionReject)

	require.Eventually(t, func() bool {
		return len(sender.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)

	sent := sender.snapshot()
	subjects := []string{sent[0].Subject, sent[1].Subject}
	sort.Strings(subjects)
	assert.Contains(t, subjects[0], "declined")
	assert.Contains(t, subjects[1], "approved")
	assert.Equal(t, []string{"ada@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].Body, "Ada Lovelace")
}

func TestMailerVerificationTemplate(t *testing.T) {
	sender := &syncSender{}
	m := newMailer(sender)
	m.Start(context.Background())
	defer m.Stop()

	user := &models.User{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}
	m.SendVerification(user, "tok-123")
	m.SendApprovalRequest([]string{"root@hrms.local"}, user)

	require.Eventually(t, func() bool {
		return len(sender.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)

	for _, mail := range sender.snapshot() {
		if mail.To[0] == "ada@example.com" {
			assert.Contains(t, mail.Body, "tok-123")
		} else {
			assert.Equal(t, []string{"root@hrms.local"}, mail.To)
			assert.Contains(t, mail.Body, "ada@example.com")
		}
	}
}

// syncSender is safe for use from queue workers.
type syncSender struct {
	mu   sync.Mutex
	sent []Mail
}

func (s *syncSender) Send(mail Mail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, mail)
	return nil
}

func (s *syncSender) snapshot() []Mail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Mail, len(s.sent))
	copy(out, s.sent)
	return out
}
