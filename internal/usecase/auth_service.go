package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/leafmarket/internal/domain"
	"github.com/user/leafmarket/pkg/util"
)

// User-facing auth errors. The same mapping applies to signup and login;
// transport details never reach the caller.
var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrInvalidEmail       = errors.New("please enter a valid email address")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("role must be admin or customer")
	ErrAuthUnavailable    = errors.New("failed to process request, please try again")
)

const minPasswordLength = 6

type authService struct {
	userRepo   domain.UserRepository
	roleRepo   domain.RoleRepository
	tokenStore domain.TokenStore
	logger     *slog.Logger
	jwtSecret  string
	jwtExpiry  time.Duration
}

// NewAuthService creates the identity and session service.
func NewAuthService(
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	tokenStore domain.TokenStore,
	logger *slog.Logger,
	jwtSecret string,
	jwtExpiry time.Duration,
) AuthUseCase {
	return &authService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		tokenStore: tokenStore,
		logger:     logger.With("component", "auth_service"),
		jwtSecret:  jwtSecret,
		jwtExpiry:  jwtExpiry,
	}
}

// Signup creates a credential, then writes the role record keyed by the
// new uid. The pair is not transactional: if the role write fails the
// credential still exists, and the record is repaired at the next login
// from the role stored on the credential.
func (s *authService) Signup(ctx context.Context, email, password string, role domain.Role) (*AuthResult, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if role != domain.RoleAdmin && role != domain.RoleCustomer {
		return nil, ErrInvalidRole
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, ErrAuthUnavailable
	}

	user := &domain.User{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		SignupRole:   role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Store(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("failed to store credential", "error", err)
		return nil, ErrAuthUnavailable
	}

	record := &domain.RoleRecord{
		UID:       user.UID,
		Email:     email,
		Role:      role,
		CreatedAt: user.CreatedAt,
	}
	if err := s.roleRepo.Store(ctx, record); err != nil {
		// Credential exists without a role record. Not rolled back;
		// reconciled at the next login.
		s.logger.Warn("role record write failed after signup", "uid", user.UID, "error", err)
	}

	return s.issueToken(user.UID, email, role)
}

// Login verifies a credential and resolves its role. A valid credential
// with no role record triggers the reconciliation step: the record is
// rewritten from the role chosen at signup.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to look up credential", "error", err)
		return nil, ErrAuthUnavailable
	}

	if !util.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	role := s.resolveRole(ctx, user.UID)
	if role == domain.RoleNone && user.SignupRole != "" {
		role = s.repairRoleRecord(ctx, user)
	}

	return s.issueToken(user.UID, user.Email, role)
}

// Logout revokes the token until its natural expiry. Completion is
// awaited before returning.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return ErrInvalidCredentials
	}

	ttl := int64(time.Until(claims.ExpiresAt.Time).Seconds())
	if ttl <= 0 {
		return nil // already expired
	}
	if err := s.tokenStore.Revoke(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("failed to revoke token", "error", err)
		return ErrAuthUnavailable
	}
	return nil
}

// ResolveSession performs the two-step resolution: validate the token,
// then look up the current role record. Missing or unreadable role
// records resolve to RoleNone so the access gates deny instead of erroring.
func (s *authService) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	revoked, err := s.tokenStore.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error("failed to check token revocation", "error", err)
		return nil, ErrAuthUnavailable
	}
	if revoked {
		return nil, ErrInvalidCredentials
	}

	return &domain.Session{
		UID:   claims.UID,
		Email: claims.Email,
		Role:  s.resolveRole(ctx, claims.UID),
	}, nil
}

// normalizeEmail is the single place email case-folding happens. Every
// store below this layer compares emails exactly.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) resolveRole(ctx context.Context, uid string) domain.Role {
	record, err := s.roleRepo.FindByUID(ctx, uid)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("role lookup failed, treating as no role", "uid", uid, "error", err)
		}
		return domain.RoleNone
	}
	if record.Role != domain.RoleAdmin && record.Role != domain.RoleCustomer {
		return domain.RoleNone
	}
	return record.Role
}

func (s *authService) repairRoleRecord(ctx context.Context, user *domain.User) domain.Role {
	record := &domain.RoleRecord{
		UID:       user.UID,
		Email:     user.Email,
		Role:      user.SignupRole,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.roleRepo.Store(ctx, record); err != nil {
		s.logger.Warn("role record repair failed", "uid", user.UID, "error", err)
		return domain.RoleNone
	}
	s.logger.Info("repaired missing role record", "uid", user.UID, "role", record.Role)
	return record.Role
}

func (s *authService) issueToken(uid, email string, role domain.Role) (*AuthResult, error) {
	token, err := util.GenerateToken(uid, email, role, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		s.logger.Error("failed to sign token", "error", err)
		return nil, ErrAuthUnavailable
	}
	return &AuthResult{
		Token:   token,
		Session: domain.Session{UID: uid, Email: email, Role: role},
	}, nil
}
