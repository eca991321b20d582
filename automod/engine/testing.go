package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/commentguard/commentguard/automod/auditlog"
	"github.com/commentguard/commentguard/automod/classifier"
	"github.com/commentguard/commentguard/automod/config"
)

// Classifier stub returning a fixed verdict, and recording the texts it was called with.
type MockClassifier struct {
	Verdict classifier.Verdict

	mu    sync.Mutex
	Calls []string
}

func (m *MockClassifier) Classify(ctx context.Context, text string, creds classifier.Credentials) classifier.Verdict {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, text)
	if text == "" {
		return classifier.VerdictPass
	}
	return m.Verdict
}

type MemAuditSink struct {
	Err error

	mu      sync.Mutex
	Records []auditlog.Record
}

func (m *MemAuditSink) Append(ctx context.Context, rec auditlog.Record) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, rec)
	return nil
}

type MemCommentStore struct {
	Err error

	mu       sync.Mutex
	Statuses map[uint]string
}

func NewMemCommentStore() *MemCommentStore {
	return &MemCommentStore{Statuses: make(map[uint]string)}
}

func (m *MemCommentStore) SetStatus(ctx context.Context, id uint, status string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Statuses[id]; !ok {
		return fmt.Errorf("comment not found: %d", id)
	}
	m.Statuses[id] = status
	return nil
}

func (m *MemCommentStore) Delete(ctx context.Context, id uint) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Statuses[id]; !ok {
		return false, nil
	}
	delete(m.Statuses, id)
	return true, nil
}

func (m *MemCommentStore) Has(id uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Statuses[id]
	return ok
}

func (m *MemCommentStore) Status(id uint) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Statuses[id]
}

// Engine wired to in-memory collaborators and a static configuration. The caller supplies the rules.
func EngineTestFixture(rules RuleSet, cfg config.Config) Engine {
	return Engine{
		Logger:     slog.Default(),
		Rules:      rules,
		Config:     config.NewStaticSource(cfg),
		Classifier: &MockClassifier{Verdict: classifier.VerdictPass},
		Audit:      &MemAuditSink{},
		Comments:   NewMemCommentStore(),
	}
}

// Helper to access the private effects field from a context. Intended for use in test code, *not* from rules.
func ExtractEffects(c *CommentContext) Effects {
	return c.effects
}
