package identity

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// SignupRequest carries the fields shared by all three signup variants.
type SignupRequest struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	FullName  string      `json:"full_name"`
	Telephone string      `json:"telephone"`
	District  string      `json:"district"`
	Sector    string      `json:"sector"`
	Role      Role        `json:"role"`
	Service   ServiceType `json:"service"`
}

// Validate checks the locally detectable input requirements: a well-formed
// email, a password of at least six characters, and a full name.
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
	)
}

// Service implements the authentication operations: the three signup
// variants, login, and bearer-token resolution. All state lives in the store;
// the service itself is safe for concurrent use.
type Service struct {
	repo       RepositoryManager
	tokens     TokenService
	logger     Logger
	bcryptCost int
}

// NewService wires the authentication service from the store and config.
func NewService(repo RepositoryManager, cfg *Config) *Service {
	cost := DefaultBcryptCost
	if cfg.BcryptCost > 0 {
		cost = cfg.BcryptCost
	}

	return &Service{
		repo:       repo,
		tokens:     NewTokenService([]byte(cfg.SigningKey), cfg.TokenExpiration, cfg.Issuer, defLogger{}),
		logger:     defLogger{},
		bcryptCost: cost,
	}
}

func (s *Service) WithLogger(logger Logger) *Service {
	s.logger = logger
	if ts, ok := s.tokens.(*TokenServiceImpl); ok {
		ts.WithLogger(logger)
	}
	return s
}

// WithTokenService swaps the token issuer, e.g. for a pre-configured or
// test-clocked instance.
func (s *Service) WithTokenService(tokens TokenService) *Service {
	s.tokens = tokens
	return s
}

// TokenService returns the token issuer used by this service.
func (s *Service) TokenService() TokenService {
	return s.tokens
}

// Signup registers a user-tier principal pending approval. No token is
// issued: registration requires an admin decision before access.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Principal, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && role != RoleAdmin {
		return nil, goerrors.New("role must be USER or ADMIN", goerrors.CategoryValidation).
			WithTextCode("INVALID_ROLE").
			WithCode(goerrors.CodeBadRequest)
	}

	// the service field travels with the record only when the account is
	// registered intending admin elevation
	service := ServiceType("")
	if role == RoleAdmin {
		if req.Service == "" {
			return nil, ErrServiceRequired
		}
		if !IsValidService(req.Service) {
			return nil, invalidServiceType(req.Service)
		}
		service = req.Service
	}

	email := req.Email
	if exists, err := s.repo.Principals().ExistsByEmail(ctx, TierUser, email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrEmailRegistered
	}

	hash, err := HashPasswordWithCost(req.Password, s.bcryptCost)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	record := &Principal{
		Tier:          TierUser,
		Role:          role,
		Email:         email,
		PasswordHash:  hash,
		FullName:      strings.TrimSpace(req.FullName),
		Telephone:     strings.TrimSpace(req.Telephone),
		District:      strings.TrimSpace(req.District),
		Sector:        strings.TrimSpace(req.Sector),
		Service:       service,
		IsActive:      false,
		Approved:      false,
		EmailVerified: false,
	}
	if id, err := hashid.NewUUID(email); err == nil {
		record.ID = id
	}

	created, err := s.repo.Principals().CreateIfAbsent(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("new user registered (pending approval): %s", created.Email)
	return created, nil
}

// SignupSuperAdmin performs the one-time bootstrap. The emptiness check and
// insert are atomic in the store, so concurrent calls yield exactly one super
// admin. The winner gets a freshly minted token.
func (s *Service) SignupSuperAdmin(ctx context.Context, req SignupRequest) (*Principal, string, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, "", invalidRequest(err)
	}

	hash, err := HashPasswordWithCost(req.Password, s.bcryptCost)
	if err != nil {
		return nil, "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	record := &Principal{
		Tier:          TierSuperAdmin,
		Role:          RoleSuperAdmin,
		Email:         req.Email,
		PasswordHash:  hash,
		FullName:      strings.TrimSpace(req.FullName),
		Telephone:     strings.TrimSpace(req.Telephone),
		District:      strings.TrimSpace(req.District),
		Sector:        strings.TrimSpace(req.Sector),
		IsActive:      true,
		Approved:      true,
		EmailVerified: true,
	}

	created, err := s.repo.Principals().CreateSuperAdmin(ctx, record)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(created.Email, created.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("super admin created: %s", created.Email)
	return created, token, nil
}

// SignupAdmin creates an admin-tier principal, approved immediately by the
// calling super admin.
func (s *Service) SignupAdmin(ctx context.Context, actor Actor, req SignupRequest) (*Principal, error) {
	if err := Authorize(actor, RoleSuperAdmin); err != nil {
		return nil, err
	}

	req.Email = NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	if req.Service == "" {
		return nil, ErrServiceRequired
	}
	if !IsValidService(req.Service) {
		return nil, invalidServiceType(req.Service)
	}

	email := req.Email
	if exists, err := s.repo.Principals().ExistsByEmail(ctx, TierAdmin, email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrEmailRegistered
	}

	hash, err := HashPasswordWithCost(req.Password, s.bcryptCost)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	now := time.Now()
	record := &Principal{
		Tier:          TierAdmin,
		Role:          RoleAdmin,
		Email:         email,
		PasswordHash:  hash,
		FullName:      strings.TrimSpace(req.FullName),
		Telephone:     strings.TrimSpace(req.Telephone),
		District:      strings.TrimSpace(req.District),
		Sector:        strings.TrimSpace(req.Sector),
		Service:       req.Service,
		IsActive:      true,
		Approved:      true,
		ApprovedAt:    &now,
		ApprovedBy:    actor.Email,
		EmailVerified: true,
	}

	created, err := s.repo.Principals().CreateIfAbsent(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("new admin %s registered, approved by %s", created.Email, actor.Email)
	return created, nil
}

// Login resolves the principal by probing the tiers in the fixed order and
// stopping at the first tier that holds the email. A lookup miss and a hash
// mismatch return the identical failure so responses cannot be used to probe
// for registered addresses. Only the admin tier gates login on approval; a
// pending user-tier account can still log in.
func (s *Service) Login(ctx context.Context, email, password string) (*Principal, string, error) {
	store := s.repo.Principals()

	for _, tier := range loginTierOrder {
		record, err := store.GetByEmail(ctx, tier, email)
		if err != nil {
			if goerrors.Is(err, ErrPrincipalNotFound) {
				continue
			}
			return nil, "", err
		}

		if err := ComparePasswordAndHash(password, record.PasswordHash); err != nil {
			if goerrors.Is(err, ErrMismatchedHashAndPassword) {
				return nil, "", ErrInvalidCredentials
			}
			return nil, "", goerrors.Wrap(err, goerrors.CategoryInternal, "password verification failed")
		}

		if tier == TierAdmin && !record.Approved {
			return nil, "", ErrPendingApproval
		}

		token, err := s.tokens.Issue(record.Email, record.ID)
		if err != nil {
			return nil, "", err
		}

		s.logger.Debug("login succeeded for %s in tier %s", record.Email, record.Tier)
		return record, token, nil
	}

	return nil, "", ErrInvalidCredentials
}

// ResolvePrincipal turns a bearer token back into the stored principal. The
// token must carry the scheme prefix; the embedded email is re-probed through
// the tiers in the same fixed order as login.
func (s *Service) ResolvePrincipal(ctx context.Context, token string) (*Principal, error) {
	if !strings.HasPrefix(token, BearerScheme) {
		return nil, ErrTokenMalformed
	}

	claims, err := s.tokens.Verify(strings.TrimPrefix(token, BearerScheme))
	if err != nil {
		return nil, err
	}

	return s.repo.Principals().ResolveByEmail(ctx, claims.Email())
}

// GetByEmail is a plain read over the tier probe order.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Principal, error) {
	return s.repo.Principals().ResolveByEmail(ctx, email)
}

// ListUsers returns the user-tier roster. Requires admin capability.
func (s *Service) ListUsers(ctx context.Context, actor Actor) ([]*Principal, error) {
	if err := Authorize(actor, RoleAdmin, RoleSuperAdmin); err != nil {
		return nil, err
	}
	return s.repo.Principals().FindByTier(ctx, TierUser)
}

// ListAdmins returns the admin and super-admin rosters. Super admin only.
func (s *Service) ListAdmins(ctx context.Context, actor Actor) ([]*Principal, error) {
	if err := Authorize(actor, RoleSuperAdmin); err != nil {
		return nil, err
	}
	return s.repo.Principals().FindByTier(ctx, TierAdmin, TierSuperAdmin)
}

func invalidRequest(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid signup request").
		WithTextCode("INVALID_SIGNUP").
		WithCode(goerrors.CodeBadRequest)
}

func invalidServiceType(s ServiceType) error {
	return goerrors.New("Invalid service type. Must be one of: WATER, SECURITY, SANITATION", goerrors.CategoryValidation).
		WithTextCode("INVALID_SERVICE").
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"service": s})
}
