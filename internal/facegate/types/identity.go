package types

import "time"

// IdentificationKind is the kind of document number an identity is enrolled
// under. The kind is determined by the access category (see KindForCategory)
// and validated at the store boundary.
type IdentificationKind string

const (
	KindRA IdentificationKind = "RA"
	KindRM IdentificationKind = "RM"
	KindRG IdentificationKind = "RG"
)

func (k IdentificationKind) Valid() bool {
	switch k {
	case KindRA, KindRM, KindRG:
		return true
	}
	return false
}

// AccessCategory classifies an enrolled identity.
type AccessCategory string

const (
	CategoryStudent   AccessCategory = "student"
	CategoryTeacher   AccessCategory = "teacher"
	CategoryDirection AccessCategory = "direction"
	CategoryStaff     AccessCategory = "staff"
	CategoryVisitor   AccessCategory = "visitor"
)

func (c AccessCategory) Valid() bool {
	switch c {
	case CategoryStudent, CategoryTeacher, CategoryDirection, CategoryStaff, CategoryVisitor:
		return true
	}
	return false
}

// KindForCategory returns the identification kind mandated by an access
// category: students enroll under an RA, teachers and direction under an RM,
// staff and visitors under an RG.
func KindForCategory(c AccessCategory) IdentificationKind {
	switch c {
	case CategoryStudent:
		return KindRA
	case CategoryTeacher, CategoryDirection:
		return KindRM
	default:
		return KindRG
	}
}

// Identity is an enrolled person eligible for access evaluation.
// TemplateID references the biometric template produced by training; it is
// nil until the identity has been trained at least once.
type Identity struct {
	ID                   int64              `json:"id"`
	Name                 string             `json:"name"`
	IdentificationNumber string             `json:"identification_number"`
	IdentificationKind   IdentificationKind `json:"identification_kind"`
	Category             AccessCategory     `json:"access_category"`
	Active               bool               `json:"active"`
	RegisteredAt         time.Time          `json:"registered_at"`
	TemplateID           *int64             `json:"template_id,omitempty"`
}
