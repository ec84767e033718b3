package application

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/saransh1220/taskpulse/internal/modules/auth/domain"
	"github.com/saransh1220/taskpulse/internal/modules/auth/infrastructure/jwt"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// AuthService provides account registration and token issuance. The
// real-time core only consumes ValidateToken; everything else is the
// account surface around it.
type AuthService struct {
	repo                 domain.UserRepository
	jwtSecret            string
	jwtExpiry            time.Duration
	googleTokenValidator func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)
}

func NewAuthService(repo domain.UserRepository, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		repo:                 repo,
		jwtSecret:            jwtSecret,
		jwtExpiry:            jwtExpiry,
		googleTokenValidator: idtoken.Validate,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if req.Email == "" {
		return nil, errors.New("email is required")
	}
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, errors.New("invalid email format")
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hashedPass),
		Name:         req.Name,
		Role:         domain.RoleMember,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", errors.New("missing email or password")
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials // Don't reveal user existence
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	return jwt.GenerateToken(s.jwtSecret, s.jwtExpiry, user.ID, string(user.Role))
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*jwt.CustomClaims, error) {
	return jwt.ValidateToken(tokenStr, s.jwtSecret)
}

// GoogleLogin exchanges a Google ID token for an application JWT, creating
// the account on first sign-in.
func (s *AuthService) GoogleLogin(ctx context.Context, googleClientID string, req GoogleLoginRequest) (string, error) {
	validate := s.googleTokenValidator
	if validate == nil {
		validate = idtoken.Validate
	}

	payload, err := validate(ctx, req.Token, googleClientID)
	if err != nil {
		return "", errors.New("invalid google token")
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		return "", errors.New("email not provided by google")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", err
		}
		user = &domain.User{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: "", // No password for OAuth accounts
			Name:         name,
			Role:         domain.RoleMember,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if createErr := s.repo.Create(ctx, user); createErr != nil {
			log.Printf("[Auth Service] google sign-in account creation failed: %v", createErr)
			return "", createErr
		}
	}

	return jwt.GenerateToken(s.jwtSecret, s.jwtExpiry, user.ID, string(user.Role))
}
