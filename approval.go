package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PendingPage is one page of unreviewed user-tier principals in creation
// order. NextPageToken is empty on the last page.
type PendingPage struct {
	Items         []*Principal `json:"items"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

// ApprovalFlow drives the approval decisions on the user tier. The decision
// is a two-state machine: Approved and Rejected are both reachable from each
// other any number of times; only record creation enters the unreviewed
// condition.
type ApprovalFlow struct {
	repo     RepositoryManager
	logger   Logger
	pageSize int
}

// NewApprovalFlow wires the approval workflow from the store and config.
func NewApprovalFlow(repo RepositoryManager, cfg *Config) *ApprovalFlow {
	pageSize := cfg.PendingPageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return &ApprovalFlow{
		repo:     repo,
		logger:   defLogger{},
		pageSize: pageSize,
	}
}

func (f *ApprovalFlow) WithLogger(logger Logger) *ApprovalFlow {
	f.logger = logger
	return f
}

// ListPending pages over user-tier principals awaiting a decision.
// Requires admin capability.
func (f *ApprovalFlow) ListPending(ctx context.Context, actor Actor, pageToken string) (*PendingPage, error) {
	if err := Authorize(actor, RoleAdmin, RoleSuperAdmin); err != nil {
		return nil, err
	}

	items, next, err := f.repo.Principals().FindPending(ctx, pageToken, f.pageSize)
	if err != nil {
		return nil, err
	}

	return &PendingPage{Items: items, NextPageToken: next}, nil
}

// SetApprovalStatus applies an approve or reject decision to a user-tier
// principal. Approval activates the account and clears any prior rejection;
// rejection deactivates it and clears the approval fields. The read and the
// write share one store transaction.
func (f *ApprovalFlow) SetApprovalStatus(ctx context.Context, actor Actor, userID uuid.UUID, approve bool, rejectionReason string) (*Principal, error) {
	if err := Authorize(actor, RoleAdmin, RoleSuperAdmin); err != nil {
		return nil, err
	}

	updated, err := f.repo.Principals().UpdateApproval(ctx, userID, func(p *Principal) {
		if approve {
			now := nowRef()
			p.Approved = true
			p.ApprovedAt = now
			p.ApprovedBy = actor.Email
			p.IsActive = true
			p.RejectionReason = nil
		} else {
			p.Approved = false
			p.ApprovedAt = nil
			p.ApprovedBy = ""
			p.IsActive = false
			reason := rejectionReason
			p.RejectionReason = &reason
		}
	})
	if err != nil {
		return nil, err
	}

	if approve {
		f.logger.Info("user %s approved by %s", updated.Email, actor.Email)
	} else {
		f.logger.Info("user %s rejected by %s: %s", updated.Email, actor.Email, rejectionReason)
	}

	return updated, nil
}

func nowRef() *time.Time {
	n := time.Now()
	return &n
}

// GetStatus is a pure read of a user-tier principal's approval state.
func (f *ApprovalFlow) GetStatus(ctx context.Context, userID uuid.UUID) (*Principal, error) {
	return f.repo.Principals().GetInTier(ctx, TierUser, userID)
}
