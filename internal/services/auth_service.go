package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/auth"
	"github.com/yukikurage/workspace-rbac-api/internal/constants"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/repository"
	"gorm.io/gorm"
)

// dummyPassword is hashed once and compared against when the email is unknown,
// so a failed lookup costs the same as a wrong password.
const dummyPassword = "dummy-password-for-timing"

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo   repository.UserRepository
	memberRepo repository.MemberRepository
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenService
	validate   *validator.Validate
	log        *logrus.Logger
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	memberRepo repository.MemberRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	log *logrus.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		memberRepo: memberRepo,
		hasher:     hasher,
		tokens:     tokens,
		validate:   validator.New(),
		log:        log,
		now:        time.Now,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email          string
	Password       string
	Name           string
	ProfilePicture string
}

// ProfileUpdate holds the optional fields of a profile edit. Nil fields are
// left unchanged; ClearCurrentWorkspace unsets the current workspace.
type ProfileUpdate struct {
	Name                  *string
	ProfilePicture        *string
	CurrentWorkspaceID    *uint64
	ClearCurrentWorkspace bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user. The email unique index backs up the lookup
// against concurrent registrations.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, apierrors.Wrapf(ErrPasswordTooShort, "Password must be at least %d characters", constants.MinPasswordLength)
	}
	if len(input.Password) > constants.MaxPasswordLength {
		return nil, apierrors.Wrapf(ErrPasswordTooLong, "Password must be at most %d bytes", constants.MaxPasswordLength)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := &models.User{
		Email:          email,
		PasswordHash:   hashedPassword,
		Name:           name,
		ProfilePicture: input.ProfilePicture,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Authenticate verifies credentials. An unknown email and a wrong password
// return the same error after the same amount of hashing work. Inactive
// users are rejected before the login is recorded.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.Verify(password, s.dummyPasswordHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now

	return user, nil
}

// Login authenticates the user and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *auth.IssuedToken, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// LoginWithOAuth signs in the user an OAuth provider vouched for, creating
// the account on first login. OAuth-only accounts get a random password hash
// that no password login can match.
func (s *AuthService) LoginWithOAuth(ctx context.Context, identity *auth.OAuthIdentity) (*models.User, *auth.IssuedToken, error) {
	if !identity.EmailVerified {
		return nil, nil, ErrEmailUnverified
	}
	email := normalizeEmail(identity.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, nil, ErrInvalidEmail
	}

	user, err := s.findOrCreateOAuthUser(ctx, email, identity)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now

	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

func (s *AuthService) findOrCreateOAuthUser(ctx context.Context, email string, identity *auth.OAuthIdentity) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user = &models.User{
		Email:          email,
		PasswordHash:   hashedPassword,
		Name:           name,
		ProfilePicture: identity.Picture,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent first login for the same email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.userRepo.FindByEmail(ctx, email)
			if findErr != nil {
				return nil, fmt.Errorf("failed to find user: %w", findErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("User registered via OAuth")
	return user, nil
}

// IssueToken issues an access token with the default lifetime.
func (s *AuthService) IssueToken(ctx context.Context, userID uint64) (*auth.IssuedToken, error) {
	token, err := s.tokens.Issue(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// GetByID retrieves a user by ID.
func (s *AuthService) GetByID(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email.
func (s *AuthService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateProfile merges the provided fields into the user's profile. The
// current workspace must be one the user belongs to.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.ProfilePicture != nil {
		user.ProfilePicture = *update.ProfilePicture
	}
	switch {
	case update.ClearCurrentWorkspace:
		user.CurrentWorkspaceID = nil
	case update.CurrentWorkspaceID != nil:
		workspaceID := *update.CurrentWorkspaceID
		if _, err := s.memberRepo.Find(ctx, workspaceID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotWorkspaceMember
			}
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		user.CurrentWorkspaceID = &workspaceID
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Logout revokes the presented token. Expired tokens are accepted so a client
// can always clean up; revoking an already revoked token succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.ParseForRevocation(token)
	if err != nil {
		return apierrors.Wrapf(auth.ErrInvalidToken, "Invalid token for logout")
	}
	userID, err := claims.UserID()
	if err != nil {
		return apierrors.Wrapf(auth.ErrInvalidToken, "Invalid token for logout")
	}

	if err := s.tokens.Revoke(ctx, claims.ID, userID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// LogoutAll revokes every token issued to the user and returns how many were live.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint64) (int, error) {
	n, err := s.tokens.RevokeAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke tokens: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "revoked": n}).Info("Revoked all tokens")
	return n, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.WithError(err).Error("Failed to prepare dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
