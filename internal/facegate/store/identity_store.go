package store

import (
	"context"

	"github.com/mereles/facegate/internal/facegate/types"
)

// NewIdentity carries the fields required to enroll an identity.
// IdentificationKind may be left empty, in which case the store derives it
// from the category; when set, it must match the category-mandated kind.
type NewIdentity struct {
	Name                 string
	IdentificationNumber string
	IdentificationKind   types.IdentificationKind
	Category             types.AccessCategory
}

// IdentityUpdate is a partial update. Nil fields are left untouched.
// Changing the category re-derives the identification kind unless a matching
// kind is supplied explicitly.
type IdentityUpdate struct {
	Name                 *string
	IdentificationNumber *string
	Category             *types.AccessCategory
	Active               *bool
}

// IdentityStore is the durable registry of enrolled identities.
//
// Lookups are negative-lookup style: a missing row returns (nil, nil), never
// an error. Each call is a self-contained transaction.
type IdentityStore interface {
	// Create enrolls a new identity and returns its id. Fails with
	// ErrDuplicateIdentification if the identification number is taken.
	Create(ctx context.Context, n NewIdentity) (int64, error)

	FindByID(ctx context.Context, id int64) (*types.Identity, error)
	FindByIdentification(ctx context.Context, number string) (*types.Identity, error)
	FindByTemplateID(ctx context.Context, templateID int64) (*types.Identity, error)

	// List returns identities ordered by name.
	List(ctx context.Context, activeOnly bool) ([]types.Identity, error)

	// Update applies a partial update and reports whether a row changed.
	// Fails with ErrDuplicateIdentification if the new identification
	// number collides with a different identity.
	Update(ctx context.Context, id int64, upd IdentityUpdate) (bool, error)

	// Delete removes an identity and reports whether a row was removed.
	// Audit rows referencing the identity are left in place; their
	// identity reference dangles and reads back as "unknown".
	Delete(ctx context.Context, id int64) (bool, error)

	// SetTemplateID records the biometric template assigned by training.
	// Idempotent.
	SetTemplateID(ctx context.Context, id, templateID int64) (bool, error)
}
