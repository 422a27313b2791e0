package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/mereles/facegate/internal/db"
	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/types"
)

type IdentityStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewIdentityStore(db *sql.DB, writer *dbpkg.Worker) *IdentityStore {
	return &IdentityStore{db: db, writer: writer}
}

const identityColumns = `
identity_id, name, identification_number, identification_kind,
access_category, active, registered_at_ms, template_id`

func (s *IdentityStore) Create(ctx context.Context, n store.NewIdentity) (int64, error) {
	n, err := store.NormalizeNewIdentity(n)
	if err != nil {
		return 0, err
	}

	nowMs := time.Now().UTC().UnixMilli()

	var id int64
	err = s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO identities(
  name, identification_number, identification_kind, access_category,
  active, registered_at_ms
) VALUES (?, ?, ?, ?, 1, ?);
`, n.Name, n.IdentificationNumber, string(n.IdentificationKind), string(n.Category), nowMs)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateIdentification
			}
			return fmt.Errorf("Create insert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Create last insert id: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *IdentityStore) FindByID(ctx context.Context, id int64) (*types.Identity, error) {
	return s.findOne(ctx, "identity_id = ?", id)
}

func (s *IdentityStore) FindByIdentification(ctx context.Context, number string) (*types.Identity, error) {
	return s.findOne(ctx, "identification_number = ?", strings.TrimSpace(number))
}

func (s *IdentityStore) FindByTemplateID(ctx context.Context, templateID int64) (*types.Identity, error) {
	return s.findOne(ctx, "template_id = ?", templateID)
}

func (s *IdentityStore) findOne(ctx context.Context, where string, arg any) (*types.Identity, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+identityColumns+" FROM identities WHERE "+where+";", arg)

	ident, err := scanIdentity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return ident, nil
}

func (s *IdentityStore) List(ctx context.Context, activeOnly bool) ([]types.Identity, error) {
	q := "SELECT " + identityColumns + " FROM identities"
	if activeOnly {
		q += " WHERE active = 1"
	}
	q += " ORDER BY name;"

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("List query: %w", err)
	}
	defer rows.Close()

	var out []types.Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("List scan: %w", err)
		}
		out = append(out, *ident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List rows: %w", err)
	}
	return out, nil
}

func (s *IdentityStore) Update(ctx context.Context, id int64, upd store.IdentityUpdate) (bool, error) {
	if upd.Name == nil && upd.IdentificationNumber == nil && upd.Category == nil && upd.Active == nil {
		return false, nil
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return false, &store.ValidationError{Field: "name", Reason: "required"}
		}
		upd.Name = &name
	}
	if upd.IdentificationNumber != nil {
		num := strings.TrimSpace(*upd.IdentificationNumber)
		if num == "" {
			return false, &store.ValidationError{Field: "identification_number", Reason: "required"}
		}
		upd.IdentificationNumber = &num
	}
	if upd.Category != nil && !upd.Category.Valid() {
		return false, &store.ValidationError{Field: "access_category", Reason: "unknown value " + string(*upd.Category)}
	}

	var changed bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		sets := make([]string, 0, 5)
		args := make([]any, 0, 6)

		if upd.Name != nil {
			sets = append(sets, "name = ?")
			args = append(args, *upd.Name)
		}
		if upd.IdentificationNumber != nil {
			sets = append(sets, "identification_number = ?")
			args = append(args, *upd.IdentificationNumber)
		}
		if upd.Category != nil {
			// Kind is category-determined, so it travels with the category.
			sets = append(sets, "access_category = ?", "identification_kind = ?")
			args = append(args, string(*upd.Category), string(types.KindForCategory(*upd.Category)))
		}
		if upd.Active != nil {
			active := 0
			if *upd.Active {
				active = 1
			}
			sets = append(sets, "active = ?")
			args = append(args, active)
		}

		args = append(args, id)
		res, err := tx.ExecContext(ctx,
			"UPDATE identities SET "+strings.Join(sets, ", ")+" WHERE identity_id = ?;", args...)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateIdentification
			}
			return fmt.Errorf("Update exec: %w", err)
		}
		n, _ := res.RowsAffected()
		changed = n > 0
		return nil
	})
	return changed, err
}

func (s *IdentityStore) Delete(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM identities WHERE identity_id = ?;", id)
		if err != nil {
			return fmt.Errorf("Delete exec: %w", err)
		}
		n, _ := res.RowsAffected()
		removed = n > 0
		return nil
	})
	return removed, err
}

func (s *IdentityStore) SetTemplateID(ctx context.Context, id, templateID int64) (bool, error) {
	var updated bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE identities SET template_id = ? WHERE identity_id = ?;", templateID, id)
		if err != nil {
			return fmt.Errorf("SetTemplateID exec: %w", err)
		}
		n, _ := res.RowsAffected()
		updated = n > 0
		return nil
	})
	return updated, err
}

// scanIdentity works for both *sql.Row and *sql.Rows.
func scanIdentity(row interface{ Scan(...any) error }) (*types.Identity, error) {
	var (
		ident        types.Identity
		kind         string
		category     string
		active       int
		registeredMs int64
		templateID   sql.NullInt64
	)
	err := row.Scan(
		&ident.ID, &ident.Name, &ident.IdentificationNumber, &kind,
		&category, &active, &registeredMs, &templateID,
	)
	if err != nil {
		return nil, err
	}

	ident.IdentificationKind = types.IdentificationKind(kind)
	ident.Category = types.AccessCategory(category)
	ident.Active = active == 1
	ident.RegisteredAt = time.UnixMilli(registeredMs).UTC()
	if templateID.Valid {
		ident.TemplateID = &templateID.Int64
	}
	return &ident, nil
}
