package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/user/leafmarket/internal/domain"
	"github.com/user/leafmarket/internal/domain/mocks"
	"github.com/user/leafmarket/pkg/util"
)

const testSecret = "test-secret"

func newAuthService(users *mocks.MockUserRepository, roles *mocks.MockRoleRepository, tokens *mocks.MockTokenStore) AuthUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(users, roles, tokens, logger, testSecret, time.Hour)
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		users := &mocks.MockUserRepository{}
		roles := &mocks.MockRoleRepository{}
		svc := newAuthService(users, roles, &mocks.MockTokenStore{})

		result, err := svc.Signup(ctx, "alice@example.com", "secret123", domain.RoleCustomer)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Token == "" {
			t.Error("expected a signed token")
		}
		if result.Session.Role != domain.RoleCustomer {
			t.Errorf("expected customer role, got %q", result.Session.Role)
		}

		claims, err := util.ValidateToken(result.Token, testSecret)
		if err != nil {
			t.Fatalf("token does not validate: %v", err)
		}
		if claims.Email != "alice@example.com" {
			t.Errorf("expected email in claims, got %q", claims.Email)
		}

		rec, err := roles.FindByUID(ctx, result.Session.UID)
		if err != nil {
			t.Fatalf("role record missing after signup: %v", err)
		}
		if rec.Role != domain.RoleCustomer {
			t.Errorf("expected stored role customer, got %q", rec.Role)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := &mocks.MockUserRepository{}
		svc := newAuthService(users, &mocks.MockRoleRepository{}, &mocks.MockTokenStore{})

		if _, err := svc.Signup(ctx, "bob@example.com", "secret123", domain.RoleAdmin); err != nil {
			t.Fatalf("first signup failed: %v", err)
		}
		_, err := svc.Signup(ctx, "Bob@Example.com", "another123", domain.RoleCustomer)
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		svc := newAuthService(&mocks.MockUserRepository{}, &mocks.MockRoleRepository{}, &mocks.MockTokenStore{})

		cases := []struct {
			name     string
			email    string
			password string
			role     domain.Role
			want     error
		}{
			{"malformed email", "not-an-email", "secret123", domain.RoleCustomer, ErrInvalidEmail},
			{"short password", "carol@example.com", "12345", domain.RoleCustomer, ErrWeakPassword},
			{"unknown role", "carol@example.com", "secret123", domain.Role("owner"), ErrInvalidRole},
			{"none role", "carol@example.com", "secret123", domain.RoleNone, ErrInvalidRole},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Signup(ctx, tc.email, tc.password, tc.role)
				if !errors.Is(err, tc.want) {
					t.Errorf("expected %v, got %v", tc.want, err)
				}
			})
		}
	})

	t.Run("store failure maps to generic error", func(t *testing.T) {
		users := &mocks.MockUserRepository{StoreErr: errors.New("connection reset")}
		svc := newAuthService(users, &mocks.MockRoleRepository{}, &mocks.MockTokenStore{})

		_, err := svc.Signup(ctx, "dave@example.com", "secret123", domain.RoleCustomer)
		if !errors.Is(err, ErrAuthUnavailable) {
			t.Errorf("expected ErrAuthUnavailable, got %v", err)
		}
	})

	t.Run("role write failure does not fail signup", func(t *testing.T) {
		users := &mocks.MockUserRepository{}
		roles := &mocks.MockRoleRepository{StoreErr: errors.New("write timeout")}
		svc := newAuthService(users, roles, &mocks.MockTokenStore{})

		result, err := svc.Signup(ctx, "eve@example.com", "secret123", domain.RoleAdmin)
		if err != nil {
			t.Fatalf("signup should succeed despite role write failure: %v", err)
		}
		if len(users.Users) != 1 {
			t.Fatalf("expected one stored credential, got %d", len(users.Users))
		}
		if result.Session.Role != domain.RoleAdmin {
			t.Errorf("session still carries the chosen role, got %q", result.Session.Role)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	signup := func(t *testing.T, svc AuthUseCase, email string, role domain.Role) *AuthResult {
		t.Helper()
		result, err := svc.Signup(ctx, email, "secret123", role)
		if err != nil {
			t.Fatalf("signup failed: %v", err)
		}
		return result
	}

	t.Run("success", func(t *testing.T) {
		svc := newAuthService(&mocks.MockUserRepository{}, &mocks.MockRoleRepository{}, &mocks.MockTokenStore{})
		signup(t, svc, "alice@example.com", domain.RoleAdmin)

		result, err := svc.Login(ctx, "alice@example.com", "secret123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Session.Role != domain.RoleAdmin {
			t.Errorf("expected admin role, got %q", result.Session.Role)
		}
	})

	t.Run("wrong password and unknown email map identically", func(t *testing.T) {
		svc := newAuthService(&mocks.MockUserRepository{}, &mocks.MockRoleRepository{}, &mocks.MockTokenStore{})
		signup(t, svc, "alice@example.com", domain.RoleCustomer)

		_, wrongPass := svc.Login(ctx, "alice@example.com", "nope12345")
		_, unknown := svc.Login(ctx, "ghost@example.com", "secret123")

		if !errors.Is(wrongPass, ErrInvalidCredentials) {
			t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
		}
		if !errors.Is(unknown, ErrInvalidCredentials) {
			t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", unknown)
		}
		if wrongPass.Error() != unknown.Error() {
			t.Error("wrong password and unknown email must be indistinguishable")
		}
	})

	t.Run("email case is folded once, up front", func(t *testing.T) {
		users := &mocks.MockUserRepository{}
		svc := newAuthService(users, &mocks.MockRoleRepository{}, &mocks.MockTokenStore{})
		signup(t, svc, "Carol@Example.COM", domain.RoleCustomer)

		if stored := users.Users[0].Email; stored != "carol@example.com" {
			t.Errorf("credential stored with unnormalized email %q", stored)
		}

		result, err := svc.Login(ctx, "carol@example.com", "secret123")
		if err != nil {
			t.Fatalf("lowercase login failed: %v", err)
		}
		if result.Session.Email != "carol@example.com" {
			t.Errorf("session carries unnormalized email %q", result.Session.Email)
		}
		if _, err := svc.Login(ctx, "CAROL@example.com", "secret123"); err != nil {
			t.Errorf("mixed-case login failed: %v", err)
		}
	})

	t.Run("repairs missing role record", func(t *testing.T) {
		users := &mocks.MockUserRepository{}
		roles := &mocks.MockRoleRepository{StoreErr: errors.New("write timeout")}
		svc := newAuthService(users, roles, &mocks.MockTokenStore{})
		signup(t, svc, "frank@example.com", domain.RoleCustomer)

		// The outage ends before the next login.
		roles.StoreErr = nil

		result, err := svc.Login(ctx, "frank@example.com", "secret123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Session.Role != domain.RoleCustomer {
			t.Errorf("expected repaired customer role, got %q", result.Session.Role)
		}
		if _, err := roles.FindByUID(ctx, result.Session.UID); err != nil {
			t.Errorf("role record not rewritten: %v", err)
		}
	})

	t.Run("role lookup failure resolves to no role", func(t *testing.T) {
		users := &mocks.MockUserRepository{}
		roles := &mocks.MockRoleRepository{}
		svc := newAuthService(users, roles, &mocks.MockTokenStore{})
		signup(t, svc, "grace@example.com", domain.RoleAdmin)

		// Login itself repairs from the signup role, so break the
		// repair path too.
		roles.FindErr = errors.New("read timeout")
		roles.StoreErr = errors.New("write timeout")

		result, err := svc.Login(ctx, "grace@example.com", "secret123")
		if err != nil {
			t.Fatalf("login must not fail on role degradation: %v", err)
		}
		if result.Session.Role != domain.RoleNone {
			t.Errorf("expected no role, got %q", result.Session.Role)
		}
	})
}

func TestLogoutAndResolveSession(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (AuthUseCase, *mocks.MockTokenStore, *mocks.MockRoleRepository, *AuthResult) {
		t.Helper()
		tokens := &mocks.MockTokenStore{}
		roles := &mocks.MockRoleRepository{}
		svc := newAuthService(&mocks.MockUserRepository{}, roles, tokens)
		result, err := svc.Signup(ctx, "alice@example.com", "secret123", domain.RoleAdmin)
		if err != nil {
			t.Fatalf("signup failed: %v", err)
		}
		return svc, tokens, roles, result
	}

	t.Run("session resolves after signup", func(t *testing.T) {
		svc, _, _, result := setup(t)

		session, err := svc.ResolveSession(ctx, result.Token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.Role != domain.RoleAdmin || session.Email != "alice@example.com" {
			t.Errorf("unexpected session %+v", session)
		}
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		svc, tokens, _, result := setup(t)

		if err := svc.Logout(ctx, result.Token); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if len(tokens.Revoked) != 1 {
			t.Fatalf("expected one revoked jti, got %d", len(tokens.Revoked))
		}
		if _, err := svc.ResolveSession(ctx, result.Token); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected revoked token to be rejected, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		svc, _, _, _ := setup(t)
		if _, err := svc.ResolveSession(ctx, "not.a.token"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		svc, _, _, _ := setup(t)
		forged, err := util.GenerateToken("uid-1", "alice@example.com", domain.RoleAdmin, "other-secret", time.Hour)
		if err != nil {
			t.Fatalf("could not sign token: %v", err)
		}
		if _, err := svc.ResolveSession(ctx, forged); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("missing role record resolves to no role", func(t *testing.T) {
		svc, _, roles, result := setup(t)
		delete(roles.Records, result.Session.UID)

		session, err := svc.ResolveSession(ctx, result.Token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.Role != domain.RoleNone {
			t.Errorf("expected no role, got %q", session.Role)
		}
	})

	t.Run("revocation check failure", func(t *testing.T) {
		svc, tokens, _, result := setup(t)
		tokens.CheckErr = errors.New("connection refused")

		if _, err := svc.ResolveSession(ctx, result.Token); !errors.Is(err, ErrAuthUnavailable) {
			t.Errorf("expected ErrAuthUnavailable, got %v", err)
		}
	})
}
