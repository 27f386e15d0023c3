// Package store defines the persistence contracts the pipeline consumes.
// Persistence itself lives outside this module; the interfaces here are
// the seam, and the in-memory implementation backs tests and single-node
// deployments.
package store

import (
	"context"
	"sync"

	"fitforge/internal/llm"
	"fitforge/internal/plan"
)

// CredentialStore supplies a user's stored vendor credential.
// A (nil, nil) return means the user has none configured — the provider
// factory then falls back to the system default.
type CredentialStore interface {
	Credential(ctx context.Context, userID string) (*llm.VendorCredential, error)
	SaveCredential(ctx context.Context, userID string, cred *llm.VendorCredential) error
}

// PlanStore accepts validated plan documents for persistence.
type PlanStore interface {
	SavePlan(ctx context.Context, userID string, doc *plan.WorkoutPlanDocument) error
}

// InMemoryStore implements CredentialStore and PlanStore with simple maps.
type InMemoryStore struct {
	mu    sync.RWMutex
	creds map[string]*llm.VendorCredential
	plans map[string][]*plan.WorkoutPlanDocument
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		creds: make(map[string]*llm.VendorCredential),
		plans: make(map[string][]*plan.WorkoutPlanDocument),
	}
}

func (s *InMemoryStore) Credential(_ context.Context, userID string) (*llm.VendorCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[userID]
	if !ok {
		return nil, nil
	}
	c := *cred
	return &c, nil
}

func (s *InMemoryStore) SaveCredential(_ context.Context, userID string, cred *llm.VendorCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cred
	s.creds[userID] = &c
	return nil
}

func (s *InMemoryStore) SavePlan(_ context.Context, userID string, doc *plan.WorkoutPlanDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[userID] = append(s.plans[userID], doc)
	return nil
}

// Plans returns the saved plans for a user. Test helper.
func (s *InMemoryStore) Plans(userID string) []*plan.WorkoutPlanDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plans[userID]
}
