package service

import (
	"context"
	"strings"
	"time"

	"github.com/mereles/facegate/internal/facegate/store"
)

// Decision reasons surfaced to the audit log and the notification layer.
const (
	ReasonIdentityNotFound = "identity not found"
	ReasonIdentityInactive = "identity inactive"
	ReasonNoRestrictions   = "no restrictions"
	ReasonAccessPermitted  = "access permitted"
	ReasonOutsideSchedule  = "access denied: outside permitted time/period"
	ReasonNotRegistered    = "identity not registered"
	ReasonNoEnrolledUsers  = "no enrolled users"
)

// Evaluator decides whether an identity may enter a sector right now.
//
// The decision is total and deterministic given the store contents and the
// injected clock: every (identity, sector) pair yields exactly one
// (admitted, reason) answer.
type Evaluator struct {
	identities  store.IdentityStore
	permissions store.PermissionStore
	now         func() time.Time
}

// NewEvaluator builds an Evaluator. A nil clock means time.Now; tests pass
// a fixed clock.
func NewEvaluator(identities store.IdentityStore, permissions store.PermissionStore, clock func() time.Time) *Evaluator {
	if clock == nil {
		clock = time.Now
	}
	return &Evaluator{identities: identities, permissions: permissions, now: clock}
}

// Evaluate returns (admitted, reason). An empty sector means the request is
// not sector-scoped. Policy:
//
//   - unknown or inactive identities are denied outright;
//   - an identity with no rules is admitted ("no restrictions") — absence
//     of rules means unrestricted access, by design;
//   - otherwise the first rule (in creation order) whose sector, time
//     window, and weekday set all hold admits the request;
//   - a malformed time window skips the time check instead of failing the
//     rule, so bad data can never lock someone out;
//   - if no rule holds, the request is denied.
func (e *Evaluator) Evaluate(ctx context.Context, identityID int64, sector string) (bool, string, error) {
	ident, err := e.identities.FindByID(ctx, identityID)
	if err != nil {
		return false, "", err
	}
	if ident == nil {
		return false, ReasonIdentityNotFound, nil
	}
	if !ident.Active {
		return false, ReasonIdentityInactive, nil
	}

	rules, err := e.permissions.ListRules(ctx, identityID)
	if err != nil {
		return false, "", err
	}
	if len(rules) == 0 {
		return true, ReasonNoRestrictions, nil
	}

	now := e.now()
	minute := now.Hour()*60 + now.Minute()
	weekday := mondayIndex(now.Weekday())

	for _, r := range rules {
		if ruleMatches(r, sector, minute, weekday) {
			// First match wins; later rules are never consulted.
			return true, ReasonAccessPermitted, nil
		}
	}

	return false, ReasonOutsideSchedule, nil
}

func ruleMatches(r store.Rule, sector string, minute, weekday int) bool {
	if sector != "" && r.Sector != nil && *r.Sector != "" && *r.Sector != sector {
		return false
	}

	if r.TimeStart != nil && r.TimeEnd != nil {
		start, okStart := parseClockMinute(*r.TimeStart)
		end, okEnd := parseClockMinute(*r.TimeEnd)
		// Both bounds must parse for the window to constrain anything;
		// malformed values leave the rule time-unconstrained.
		if okStart && okEnd && (minute < start || minute > end) {
			return false
		}
	}

	if len(r.Weekdays) > 0 {
		found := false
		for _, d := range r.Weekdays {
			if d == weekday {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// parseClockMinute parses "HH:MM" into minutes since midnight.
func parseClockMinute(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// mondayIndex converts time.Weekday (Sunday=0) to the stored weekday
// convention, 0=Monday .. 6=Sunday. The convention is fixed here and in the
// permission_rules schema; nothing else may assume a numbering.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
