package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tier identifies which of the three principal classes a record belongs to.
// Each tier has its own default approval and activation policy.
type Tier = string

const (
	// TierUser holds self-registered accounts that wait for approval.
	TierUser Tier = "USER"
	// TierAdmin holds accounts created by the super admin, approved on creation.
	TierAdmin Tier = "ADMIN"
	// TierSuperAdmin holds the single bootstrap account.
	TierSuperAdmin Tier = "SUPER_ADMIN"
)

// ServiceType is the municipal service an admin account manages.
type ServiceType = string

const (
	ServiceWater      ServiceType = "WATER"
	ServiceSecurity   ServiceType = "SECURITY"
	ServiceSanitation ServiceType = "SANITATION"
)

// IsValidService checks the service against the known service types.
func IsValidService(s ServiceType) bool {
	switch s {
	case ServiceWater, ServiceSecurity, ServiceSanitation:
		return true
	default:
		return false
	}
}

// Principal is the stored identity record. A single table backs all three
// tiers; Tier is the variant discriminator and the email column carries a
// global unique index, so the same address can never live in two tiers.
type Principal struct {
	bun.BaseModel `bun:"table:principals,alias:prn"`

	ID              uuid.UUID   `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Tier            Tier        `bun:"tier,notnull" json:"tier,omitempty"`
	Role            Role        `bun:"role,notnull" json:"role,omitempty"`
	Email           string      `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash    string      `bun:"password_hash,notnull" json:"-"`
	FullName        string      `bun:"full_name,notnull" json:"full_name,omitempty"`
	Telephone       string      `bun:"telephone" json:"telephone,omitempty"`
	District        string      `bun:"district" json:"district,omitempty"`
	Sector          string      `bun:"sector" json:"sector,omitempty"`
	Service         ServiceType `bun:"service,nullzero" json:"service,omitempty"`
	IsActive        bool        `bun:"is_active,notnull" json:"is_active"`
	Approved        bool        `bun:"approved,notnull" json:"approved"`
	ApprovedAt      *time.Time  `bun:"approved_at,nullzero" json:"approved_at,omitempty"`
	ApprovedBy      string      `bun:"approved_by,nullzero" json:"approved_by,omitempty"`
	RejectionReason *string     `bun:"rejection_reason" json:"rejection_reason,omitempty"`
	EmailVerified   bool        `bun:"email_verified,notnull" json:"email_verified"`
	CreatedAt       *time.Time  `bun:"created_at,nullzero" json:"created_at,omitempty"`
	UpdatedAt       *time.Time  `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// NormalizeEmail lower-cases and trims an address the way every lookup and
// insert expects it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Actor identifies who is performing a privileged operation. It is threaded
// explicitly into every mutating call instead of living in ambient state.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  Role
}

// ActorFor builds the Actor for a stored principal.
func ActorFor(p *Principal) Actor {
	if p == nil {
		return Actor{}
	}
	return Actor{ID: p.ID, Email: p.Email, Role: p.Role}
}
