package identity

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"context"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// loginTierOrder is the fixed probe order for email resolution: User, then
// Admin, then SuperAdmin. Resolution stops at the first tier that holds the
// address. The global unique email index keeps the order from ever mattering
// in practice, but callers may depend on it.
var loginTierOrder = []Tier{TierUser, TierAdmin, TierSuperAdmin}

// Principals is the credential store. Creation paths are constraint backed so
// concurrent duplicate signups and concurrent bootstrap calls cannot both
// succeed; approval updates run as per-row transactions.
type Principals interface {
	repository.Repository[*Principal]

	GetByEmail(ctx context.Context, tier Tier, email string) (*Principal, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, tier Tier, email string) (*Principal, error)
	ExistsByEmail(ctx context.Context, tier Tier, email string) (bool, error)
	GetInTier(ctx context.Context, tier Tier, id uuid.UUID) (*Principal, error)
	ResolveByEmail(ctx context.Context, email string) (*Principal, error)

	CreateIfAbsent(ctx context.Context, record *Principal) (*Principal, error)
	CreateSuperAdmin(ctx context.Context, record *Principal) (*Principal, error)

	FindByTier(ctx context.Context, tiers ...Tier) ([]*Principal, error)
	FindPending(ctx context.Context, pageToken string, limit int) ([]*Principal, string, error)
	CountTier(ctx context.Context, tier Tier) (int, error)

	UpdateApproval(ctx context.Context, id uuid.UUID, mutate func(*Principal)) (*Principal, error)
}

type principals struct {
	repository.Repository[*Principal]
	db *bun.DB
}

var (
	_ Principals                        = (*principals)(nil)
	_ repository.Repository[*Principal] = (*principals)(nil)
)

// NewPrincipalsRepository builds the store over a bun database handle.
func NewPrincipalsRepository(db *bun.DB) Principals {
	repo := repository.NewRepository[*Principal](db, repository.ModelHandlers[*Principal]{
		NewRecord: func() *Principal { return &Principal{} },
		GetID: func(p *Principal) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Principal, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &principals{
		Repository: repo,
		db:         db,
	}
}

func (r *principals) GetByEmail(ctx context.Context, tier Tier, email string) (*Principal, error) {
	return r.GetByEmailTx(ctx, r.db, tier, email)
}

func (r *principals) GetByEmailTx(ctx context.Context, tx bun.IDB, tier Tier, email string) (*Principal, error) {
	record := &Principal{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.tier = ?", tier).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isEmptyResult(err) {
			return nil, ErrPrincipalNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "email lookup failed")
	}
	return record, nil
}

func (r *principals) ExistsByEmail(ctx context.Context, tier Tier, email string) (bool, error) {
	n, err := r.db.NewSelect().
		Model((*Principal)(nil)).
		Where("?TableAlias.tier = ?", tier).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Count(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "email existence check failed")
	}
	return n > 0, nil
}

func (r *principals) GetInTier(ctx context.Context, tier Tier, id uuid.UUID) (*Principal, error) {
	record := &Principal{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.tier = ?", tier).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isEmptyResult(err) {
			return nil, ErrPrincipalNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "id lookup failed")
	}
	return record, nil
}

// ResolveByEmail probes the tiers in the fixed login order and returns the
// first match.
func (r *principals) ResolveByEmail(ctx context.Context, email string) (*Principal, error) {
	for _, tier := range loginTierOrder {
		record, err := r.GetByEmail(ctx, tier, email)
		if err == nil {
			return record, nil
		}
		if !goerrors.Is(err, ErrPrincipalNotFound) {
			return nil, err
		}
	}
	return nil, ErrPrincipalNotFound
}

// CreateIfAbsent inserts the record relying on the unique email index as the
// only duplicate guard. A failed insert is re-checked against the store so a
// lost race still reports as a Conflict rather than an internal error.
func (r *principals) CreateIfAbsent(ctx context.Context, record *Principal) (*Principal, error) {
	prepareDefaults(record)

	created, err := r.Repository.CreateTx(ctx, r.db, record)
	if err == nil {
		return created, nil
	}

	if exists, exErr := r.existsAnyTier(ctx, record.Email); exErr == nil && exists {
		return nil, ErrEmailRegistered
	}

	return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create principal")
}

// CreateSuperAdmin inserts iff the super-admin tier is empty. The emptiness
// check and the insert share one transaction, and the partial unique index on
// the tier backstops the invariant even outside it.
func (r *principals) CreateSuperAdmin(ctx context.Context, record *Principal) (*Principal, error) {
	prepareDefaults(record)
	record.Tier = TierSuperAdmin
	record.Role = RoleSuperAdmin

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		n, err := tx.NewSelect().
			Model((*Principal)(nil)).
			Where("?TableAlias.tier = ?", TierSuperAdmin).
			Count(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "super admin count failed")
		}
		if n > 0 {
			return ErrSuperAdminExists
		}

		if _, err := r.Repository.CreateTx(ctx, tx, record); err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		if goerrors.Is(err, ErrSuperAdminExists) {
			return nil, ErrSuperAdminExists
		}
		// a concurrent bootstrap that won the race trips the singleton index
		if n, cntErr := r.CountTier(ctx, TierSuperAdmin); cntErr == nil && n > 0 {
			return nil, ErrSuperAdminExists
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create super admin")
	}

	return record, nil
}

func (r *principals) FindByTier(ctx context.Context, tiers ...Tier) ([]*Principal, error) {
	var records []*Principal
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.tier IN (?)", bun.In(tiers)).
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "tier listing failed")
	}
	return records, nil
}

// FindPending pages over unapproved user-tier principals in creation order
// using a keyset cursor, so concurrent approval decisions never shift rows
// between pages.
func (r *principals) FindPending(ctx context.Context, pageToken string, limit int) ([]*Principal, string, error) {
	if limit <= 0 {
		limit = 20
	}

	var records []*Principal
	q := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.tier = ?", TierUser).
		Where("?TableAlias.role = ?", RoleUser).
		Where("?TableAlias.approved = ?", false)

	if pageToken != "" {
		after, afterID, err := decodePageToken(pageToken)
		if err != nil {
			return nil, "", err
		}
		q = q.Where(
			"(?TableAlias.created_at > ?) OR (?TableAlias.created_at = ? AND ?TableAlias.id > ?)",
			after, after, afterID,
		)
	}

	err := q.
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC").
		Limit(limit + 1).
		Scan(ctx)
	if err != nil {
		return nil, "", goerrors.Wrap(err, goerrors.CategoryInternal, "pending listing failed")
	}

	next := ""
	if len(records) > limit {
		records = records[:limit]
		last := records[limit-1]
		next = encodePageToken(timeValue(last.CreatedAt), last.ID)
	}

	return records, next, nil
}

func (r *principals) CountTier(ctx context.Context, tier Tier) (int, error) {
	n, err := r.db.NewSelect().
		Model((*Principal)(nil)).
		Where("?TableAlias.tier = ?", tier).
		Count(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "tier count failed")
	}
	return n, nil
}

// UpdateApproval loads the user-tier row, applies the mutation, and persists
// it, all inside one transaction so interleaved approve/reject calls on the
// same id serialize to one consistent final state.
func (r *principals) UpdateApproval(ctx context.Context, id uuid.UUID, mutate func(*Principal)) (*Principal, error) {
	record := &Principal{}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(record).
			Where("?TableAlias.tier = ?", TierUser).
			Where("?TableAlias.id = ?", id).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if isEmptyResult(err) {
				return ErrPrincipalNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "approval lookup failed")
		}

		mutate(record)
		touch(record)

		if _, err := tx.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "approval update failed")
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *principals) existsAnyTier(ctx context.Context, email string) (bool, error) {
	n, err := r.db.NewSelect().
		Model((*Principal)(nil)).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func prepareDefaults(record *Principal) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.Role == "" {
		record.Role = RoleUser
	}
	if record.Tier == "" {
		record.Tier = TierUser
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}
}

func touch(record *Principal) {
	now := time.Now()
	record.UpdatedAt = &now
}

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func isEmptyResult(err error) bool {
	return repository.IsRecordNotFound(err) || strings.Contains(err.Error(), "no rows in result set")
}

func encodePageToken(createdAt time.Time, id uuid.UUID) string {
	raw := fmt.Sprintf("%s|%s", createdAt.UTC().Format(time.RFC3339Nano), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodePageToken(token string) (time.Time, uuid.UUID, error) {
	fail := func() (time.Time, uuid.UUID, error) {
		return time.Time{}, uuid.Nil, goerrors.New("invalid page token", goerrors.CategoryValidation).
			WithTextCode("INVALID_PAGE_TOKEN").
			WithCode(goerrors.CodeBadRequest)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return fail()
	}

	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return fail()
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return fail()
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return fail()
	}

	return createdAt, id, nil
}
