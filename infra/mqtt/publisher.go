package mqtt

import (
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/qsched/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Messages  map[string]coremqtt.Summary
	FailNames map[string]bool
	mu        sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Messages:  make(map[string]coremqtt.Summary),
		FailNames: make(map[string]bool),
	}
}

// PublishSummary records the summary by resource or returns an error if configured to fail.
func (m *MockPublisher) PublishSummary(s coremqtt.Summary) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNames[s.Resource] {
		return "", fmt.Errorf("%w: %s", coremqtt.ErrPublishFailed, s.Resource)
	}
	if s.MessageID == "" {
		s.MessageID = fmt.Sprintf("msg-%d", len(m.Messages)+1)
	}
	m.Messages[s.Resource] = s
	return s.MessageID, nil
}
