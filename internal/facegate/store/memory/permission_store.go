package memory

import (
	"context"
	"sync"

	"github.com/mereles/facegate/internal/facegate/store"
)

type PermissionStore struct {
	mu     sync.RWMutex
	nextID int64
	rules  []store.Rule // kept in creation order
}

func NewPermissionStore() *PermissionStore {
	return &PermissionStore{}
}

func (s *PermissionStore) CreateRule(_ context.Context, n store.NewRule) (int64, error) {
	if err := store.ValidateNewRule(n); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	r := store.Rule{
		ID:         s.nextID,
		IdentityID: n.IdentityID,
		Weekdays:   append([]int(nil), n.Weekdays...),
	}
	if n.Sector != nil {
		v := *n.Sector
		r.Sector = &v
	}
	if n.TimeStart != nil {
		v := *n.TimeStart
		r.TimeStart = &v
	}
	if n.TimeEnd != nil {
		v := *n.TimeEnd
		r.TimeEnd = &v
	}
	s.rules = append(s.rules, r)
	return r.ID, nil
}

func (s *PermissionStore) ListRules(_ context.Context, identityID int64) ([]store.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Rule
	for _, r := range s.rules {
		if r.IdentityID == identityID {
			out = append(out, cloneRule(r))
		}
	}
	return out, nil
}

func (s *PermissionStore) DeleteRule(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.rules {
		if r.ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// DeleteRulesForIdentity mirrors the sqlite backend's FK cascade when an
// identity is removed. Dev/test helper.
func (s *PermissionStore) DeleteRulesForIdentity(identityID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.rules[:0]
	for _, r := range s.rules {
		if r.IdentityID != identityID {
			kept = append(kept, r)
		}
	}
	s.rules = kept
}

func cloneRule(r store.Rule) store.Rule {
	out := r
	out.Weekdays = append([]int(nil), r.Weekdays...)
	if r.Sector != nil {
		v := *r.Sector
		out.Sector = &v
	}
	if r.TimeStart != nil {
		v := *r.TimeStart
		out.TimeStart = &v
	}
	if r.TimeEnd != nil {
		v := *r.TimeEnd
		out.TimeEnd = &v
	}
	return out
}
