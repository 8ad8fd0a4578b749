package service

import (
	"context"
	"testing"
	"time"

	"fin-extractor/internal/dto"
	"fin-extractor/internal/models"
	"fin-extractor/pkg/auth"
	"fin-extractor/pkg/logger"

	"github.com/gofiber/storage/memory/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc   *AuthService
	users *fakeUsers
	orgs  *fakeOrgs
	jwt   *auth.JWTManager
	revs  *auth.RevocationList
}

func newAuthFixture() *authFixture {
	users, orgs := newFakeUsers(), newFakeOrgs()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	revs := auth.NewRevocationList(memory.New())
	svc := NewAuthService(users, orgs, jwtManager, revs, logger.NewNop())
	svc.now = stepClock(testNow)
	return &authFixture{svc: svc, users: users, orgs: orgs, jwt: jwtManager, revs: revs}
}

func TestRegisterCreatesWorkspace(t *testing.T) {
	f := newAuthFixture()

	resp, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "asha@example.com",
		Password: "correct-horse",
		Name:     "Asha",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "Asha", resp.User.Username)

	require.Len(t, f.orgs.orgs, 1)
	for id, org := range f.orgs.orgs {
		assert.Equal(t, id.String(), resp.ActiveOrganizationID)
		assert.Equal(t, "Asha's Workspace", org.Name)
		assert.Regexp(t, `^asha-\d+$`, org.Slug)
	}
	require.Len(t, f.orgs.members, 1)
	assert.Equal(t, models.RoleAdmin, f.orgs.members[0].Role)

	claims, err := f.jwt.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, resp.ActiveOrganizationID, claims.ActiveOrganizationID)
	assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)
}

func TestRegisterWithoutNameUsesEmail(t *testing.T) {
	f := newAuthFixture()

	resp, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "ravi@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "ravi", resp.User.Username)
	for _, org := range f.orgs.orgs {
		assert.Equal(t, "Workspace for ravi@example.com", org.Name)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	req := &dto.RegisterRequest{Email: "asha@example.com", Password: "correct-horse", Name: "Asha"}

	first, err := f.svc.Register(ctx, req)
	require.NoError(t, err)
	second, err := f.svc.Register(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, first.ActiveOrganizationID, second.ActiveOrganizationID)
	assert.Len(t, f.users.users, 1)
	assert.Len(t, f.orgs.orgs, 1)
}

func TestRegisterExistingEmailWrongPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, &dto.RegisterRequest{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, &dto.RegisterRequest{Email: "asha@example.com", Password: "wrong-horse"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, &dto.RegisterRequest{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "asha@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, reg.ActiveOrganizationID, resp.ActiveOrganizationID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "asha@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "who@example.com", Password: "correct-horse"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginWithoutMembership(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, &models.User{ID: uuid.New(), Email: "lone@example.com", Password: hash}))

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "lone@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrNoMembership)
}

func TestLoginActivatesOldestMembership(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, &dto.RegisterRequest{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	f.orgs.addMember(uuid.MustParse(reg.User.ID), uuid.New(), testNow.Add(time.Hour))

	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, reg.ActiveOrganizationID, resp.ActiveOrganizationID)
}

func TestRefreshToken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, &dto.RegisterRequest{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	resp, err := f.svc.RefreshToken(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)
	assert.Equal(t, reg.ActiveOrganizationID, resp.ActiveOrganizationID)

	_, err = f.svc.RefreshToken(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetActiveOrganization(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, &dto.RegisterRequest{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	userID := uuid.MustParse(reg.User.ID)

	other := uuid.New()
	f.orgs.addMember(userID, other, testNow.Add(time.Hour))

	resp, err := f.svc.SetActiveOrganization(ctx, userID, other)
	require.NoError(t, err)
	assert.Equal(t, other.String(), resp.ActiveOrganizationID)

	_, err = f.svc.SetActiveOrganization(ctx, userID, uuid.New())
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestIsMember(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, &dto.RegisterRequest{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		user, org  string
		wantMember bool
	}{
		{"member", reg.User.ID, reg.ActiveOrganizationID, true},
		{"other org", reg.User.ID, uuid.NewString(), false},
		{"malformed user", "abc", reg.ActiveOrganizationID, false},
		{"malformed org", reg.User.ID, "abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := f.svc.IsMember(ctx, tt.user, tt.org)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMember, ok)
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture()

	require.NoError(t, f.svc.Logout("jti-1", time.Now().Add(time.Hour)))

	revoked, err := f.revs.IsRevoked("jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = f.revs.IsRevoked("jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
