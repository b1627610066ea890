package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Govind-619/EnrollSphere/models"
)

const testPaymentSecret = "rzp_test_secret"

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type publishedEvent struct {
	topic, key string
	payload    interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic, key, payload})
	return p.err
}

type fakeLocker struct {
	held     bool
	locked   []string
	unlocked []string
}

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if l.held {
		return "", ErrConfirmInProgress
	}
	l.locked = append(l.locked, key)
	return "token-" + key, nil
}

func (l *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	l.unlocked = append(l.unlocked, key)
	return nil
}

// recordingStore forwards to next and remembers each batch size.
// It fails the call whose index equals failAt.
type recordingStore struct {
	next   NotificationStore
	sizes  []int
	failAt int
}

var errBatchFailed = errors.New("batch insert failed")

func (s *recordingStore) InsertBatch(ctx context.Context, batch []models.Notification) error {
	call := len(s.sizes)
	s.sizes = append(s.sizes, len(batch))
	if s.failAt >= 0 && call == s.failAt {
		return errBatchFailed
	}
	return s.next.InsertBatch(ctx, batch)
}

type fakeOrders struct {
	calls []map[string]interface{}
	id    string
	err   error
}

func (f *fakeOrders) Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error) {
	f.calls = append(f.calls, data)
	if f.err != nil {
		return nil, f.err
	}
	return map[string]interface{}{"id": f.id, "entity": "order", "amount": data["amount"]}, nil
}
