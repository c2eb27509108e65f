package workflow

import (
	"errors"
	"net/http"
	"sync"
	"time"
)

// State is the position of an instance in the dispatch flow.
type State string

const (
	StateAwaitingOperation State = "AWAITING_OPERATION"
	StateDispatched        State = "DISPATCHED"
	StateDone              State = "DONE"
)

// Outcome classifies a finished instance.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeClientError Outcome = "client_error"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeServerError Outcome = "server_error"
)

// outcomeOf maps a handler status code to its outcome.
func outcomeOf(status int) Outcome {
	switch {
	case status == http.StatusNotFound:
		return OutcomeNotFound
	case status >= 500:
		return OutcomeServerError
	case status >= 400:
		return OutcomeClientError
	default:
		return OutcomeSuccess
	}
}

// Instance is one execution of the dispatch flow together with its
// input and output.
type Instance struct {
	ID          string    `json:"processInstanceId"`
	BusinessKey string    `json:"businessKey"`
	State       State     `json:"state"`
	Operation   Operation `json:"operation,omitempty"`
	Outcome     Outcome   `json:"outcome,omitempty"`
	Request     Request   `json:"request"`
	Result      Result    `json:"result"`
	StartedAt   time.Time `json:"startedAt"`
	EndedAt     time.Time `json:"endedAt"`
}

// ErrInstanceNotFound is returned by InstanceStore.Get for unknown ids.
var ErrInstanceNotFound = errors.New("process instance not found")

// InstanceStore keeps finished instances for later lookup.
type InstanceStore interface {
	Save(inst Instance)
	Get(id string) (Instance, error)
}

// MemoryInstanceStore is a goroutine-safe InstanceStore that keeps at
// most limit instances and evicts the oldest first.
type MemoryInstanceStore struct {
	mu        sync.RWMutex
	limit     int
	order     []string
	instances map[string]Instance
}

var _ InstanceStore = (*MemoryInstanceStore)(nil)

// NewMemoryInstanceStore creates a store holding up to limit instances.
// A limit below one is treated as one.
func NewMemoryInstanceStore(limit int) *MemoryInstanceStore {
	if limit < 1 {
		limit = 1
	}
	return &MemoryInstanceStore{
		limit:     limit,
		instances: make(map[string]Instance),
	}
}

func (s *MemoryInstanceStore) Save(inst Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.instances[inst.ID]; !exists {
		s.order = append(s.order, inst.ID)
	}
	s.instances[inst.ID] = inst

	for len(s.order) > s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.instances, oldest)
	}
}

func (s *MemoryInstanceStore) Get(id string) (Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instances[id]
	if !ok {
		return Instance{}, ErrInstanceNotFound
	}
	return inst, nil
}

// Len returns the number of retained instances.
func (s *MemoryInstanceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}
