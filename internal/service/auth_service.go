package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fin-extractor/internal/dto"
	"fin-extractor/internal/models"
	"fin-extractor/internal/repository"
	"fin-extractor/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type OrganizationStore interface {
	CreateWithOwner(ctx context.Context, org *models.Organization, member *models.Member) error
	FirstMembership(ctx context.Context, userID uuid.UUID) (*models.Member, error)
	GetMembership(ctx context.Context, userID, organizationID uuid.UUID) (*models.Member, error)
}

type AuthService struct {
	userRepo    UserStore
	orgRepo     OrganizationStore
	jwtManager  *auth.JWTManager
	revocations *auth.RevocationList
	logger      *zap.Logger
	now         func() time.Time
}

func NewAuthService(
	userRepo UserStore,
	orgRepo OrganizationStore,
	jwtManager *auth.JWTManager,
	revocations *auth.RevocationList,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		orgRepo:     orgRepo,
		jwtManager:  jwtManager,
		revocations: revocations,
		logger:      logger,
		now:         time.Now,
	}
}

// Register signs the user up and logs them in with a workspace active.
// Registering again with the same email and password is a login; a
// different password is rejected with ErrUserExists.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.createUser(ctx, req)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case !auth.CheckPasswordHash(req.Password, user.Password):
		return nil, ErrUserExists
	}

	member, err := s.ensureOrganization(ctx, user, req.Name)
	if err != nil {
		return nil, err
	}

	return s.issue(user, member.OrganizationID)
}

func (s *AuthService) createUser(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	username := req.Name
	if username == "" {
		username = models.EmailLocalPart(req.Email)
	}

	now := s.now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     req.Email,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// ensureOrganization returns the user's first membership, creating a
// personal workspace with the user as admin when there is none.
func (s *AuthService) ensureOrganization(ctx context.Context, user *models.User, name string) (*models.Member, error) {
	member, err := s.orgRepo.FirstMembership(ctx, user.ID)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	orgName := fmt.Sprintf("Workspace for %s", user.Email)
	if name != "" {
		orgName = fmt.Sprintf("%s's Workspace", name)
	}

	org := &models.Organization{
		ID:        uuid.New(),
		Name:      orgName,
		Slug:      fmt.Sprintf("%s-%d", models.EmailLocalPart(user.Email), now.UnixMilli()),
		CreatedAt: now,
	}
	member = &models.Member{
		ID:             uuid.New(),
		UserID:         user.ID,
		OrganizationID: org.ID,
		Role:           models.RoleAdmin,
		CreatedAt:      now,
	}

	if err := s.orgRepo.CreateWithOwner(ctx, org, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	member, err := s.firstMembership(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return s.issue(user, member.OrganizationID)
}

// RefreshToken exchanges a refresh token for a new pair. The user's first
// membership becomes the active organization.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh {
		return nil, ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	member, err := s.firstMembership(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return s.issue(user, member.OrganizationID)
}

// SetActiveOrganization issues tokens scoped to another organization the
// user belongs to.
func (s *AuthService) SetActiveOrganization(ctx context.Context, userID, organizationID uuid.UUID) (*dto.AuthResponse, error) {
	if _, err := s.membership(ctx, userID, organizationID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.issue(user, organizationID)
}

// Logout revokes the access token until its natural expiry.
func (s *AuthService) Logout(tokenID string, expiresAt time.Time) error {
	return s.revocations.Revoke(tokenID, expiresAt)
}

// IsMember reports whether the user belongs to the organization. Malformed
// IDs are reported as non-membership.
func (s *AuthService) IsMember(ctx context.Context, userID, organizationID string) (bool, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}
	oid, err := uuid.Parse(organizationID)
	if err != nil {
		return false, nil
	}

	_, err = s.membership(ctx, uid, oid)
	if errors.Is(err, ErrNotMember) {
		return false, nil
	}
	return err == nil, err
}

func (s *AuthService) membership(ctx context.Context, userID, organizationID uuid.UUID) (*models.Member, error) {
	member, err := s.orgRepo.GetMembership(ctx, userID, organizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotMember
	}
	return member, err
}

func (s *AuthService) firstMembership(ctx context.Context, userID uuid.UUID) (*models.Member, error) {
	member, err := s.orgRepo.FirstMembership(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoMembership
	}
	return member, err
}

func (s *AuthService) issue(user *models.User, organizationID uuid.UUID) (*dto.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID.String(), user.Email, organizationID.String())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:          accessToken,
		RefreshToken:         refreshToken,
		TokenType:            "Bearer",
		ExpiresIn:            int64(s.jwtManager.GetTokenDuration().Seconds()),
		ActiveOrganizationID: organizationID.String(),
		User: dto.UserResponse{
			ID:       user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
		},
	}, nil
}
