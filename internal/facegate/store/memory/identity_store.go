// Package memory implements the facegate stores on in-memory maps. It is
// intended for tests and dev environments; semantics mirror the sqlite
// backend, including validation and duplicate detection.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/types"
)

type IdentityStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]types.Identity
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{rows: make(map[int64]types.Identity)}
}

func (s *IdentityStore) Create(_ context.Context, n store.NewIdentity) (int64, error) {
	n, err := store.NormalizeNewIdentity(n)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.IdentificationNumber == n.IdentificationNumber {
			return 0, store.ErrDuplicateIdentification
		}
	}

	s.nextID++
	id := s.nextID
	s.rows[id] = types.Identity{
		ID:                   id,
		Name:                 n.Name,
		IdentificationNumber: n.IdentificationNumber,
		IdentificationKind:   n.IdentificationKind,
		Category:             n.Category,
		Active:               true,
		RegisteredAt:         time.Now().UTC(),
	}
	return id, nil
}

func (s *IdentityStore) FindByID(_ context.Context, id int64) (*types.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if row, ok := s.rows[id]; ok {
		return cloneIdentity(row), nil
	}
	return nil, nil
}

func (s *IdentityStore) FindByIdentification(_ context.Context, number string) (*types.Identity, error) {
	number = strings.TrimSpace(number)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows {
		if row.IdentificationNumber == number {
			return cloneIdentity(row), nil
		}
	}
	return nil, nil
}

func (s *IdentityStore) FindByTemplateID(_ context.Context, templateID int64) (*types.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows {
		if row.TemplateID != nil && *row.TemplateID == templateID {
			return cloneIdentity(row), nil
		}
	}
	return nil, nil
}

func (s *IdentityStore) List(_ context.Context, activeOnly bool) ([]types.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Identity, 0, len(s.rows))
	for _, row := range s.rows {
		if activeOnly && !row.Active {
			continue
		}
		out = append(out, *cloneIdentity(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *IdentityStore) Update(_ context.Context, id int64, upd store.IdentityUpdate) (bool, error) {
	if upd.Name == nil && upd.IdentificationNumber == nil && upd.Category == nil && upd.Active == nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return false, nil
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return false, &store.ValidationError{Field: "name", Reason: "required"}
		}
		row.Name = name
	}
	if upd.IdentificationNumber != nil {
		num := strings.TrimSpace(*upd.IdentificationNumber)
		if num == "" {
			return false, &store.ValidationError{Field: "identification_number", Reason: "required"}
		}
		for otherID, other := range s.rows {
			if otherID != id && other.IdentificationNumber == num {
				return false, store.ErrDuplicateIdentification
			}
		}
		row.IdentificationNumber = num
	}
	if upd.Category != nil {
		if !upd.Category.Valid() {
			return false, &store.ValidationError{Field: "access_category", Reason: "unknown value " + string(*upd.Category)}
		}
		row.Category = *upd.Category
		row.IdentificationKind = types.KindForCategory(*upd.Category)
	}
	if upd.Active != nil {
		row.Active = *upd.Active
	}

	s.rows[id] = row
	return true, nil
}

func (s *IdentityStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return false, nil
	}
	delete(s.rows, id)
	return true, nil
}

func (s *IdentityStore) SetTemplateID(_ context.Context, id, templateID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return false, nil
	}
	row.TemplateID = &templateID
	s.rows[id] = row
	return true, nil
}

func cloneIdentity(row types.Identity) *types.Identity {
	out := row
	if row.TemplateID != nil {
		v := *row.TemplateID
		out.TemplateID = &v
	}
	return &out
}
