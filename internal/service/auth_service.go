package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecosort/internal/config"
	"ecosort/internal/dto"
	"ecosort/internal/model"
	"ecosort/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
}

type authService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	cfg      *config.Config
}

func NewAuthService(users repository.UserRepository, profiles repository.ProfileRepository, cfg *config.Config) AuthService {
	return &authService{users: users, profiles: profiles, cfg: cfg}
}

// ── Login ─────────────────────────────────────────────────────────────────────

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	// Usernames are stored lowercase; fold here so "John" and "john" match.
	username := strings.ToLower(strings.TrimSpace(req.Username))

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.loginResponse(ctx, user)
}

// ── Refresh ───────────────────────────────────────────────────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	keyFn := func(*jwt.Token) (interface{}, error) { return []byte(s.cfg.JWTSecret), nil }
	token, err := jwt.Parse(refreshToken, keyFn, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: refresh token invalid or expired", ErrInvalidCredentials)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: malformed claims", ErrInvalidCredentials)
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: malformed token", ErrInvalidCredentials)
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed token", ErrInvalidCredentials)
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, fmt.Errorf("%w: user unknown or inactive", ErrInvalidCredentials)
	}
	return s.loginResponse(ctx, user)
}

// ── Register ──────────────────────────────────────────────────────────────────
// Creates the user row and, for residents, the profile row in one
// transaction — a resident without a profile can neither book nor earn.

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}
	if role == model.RoleResident && strings.TrimSpace(req.Address) == "" {
		return nil, fmt.Errorf("%w: residents must provide an address", ErrValidation)
	}
	if role == model.RoleResident && strings.TrimSpace(req.Zone) == "" {
		return nil, fmt.Errorf("%w: residents must provide a zone", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     strings.ToLower(strings.TrimSpace(req.Username)),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}

	txErr := runTx(ctx, s.users.DB(), func(tx *gorm.DB) error {
		if err := s.users.CreateTx(tx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrUsernameTaken, user.Username)
			}
			return err
		}
		if role != model.RoleResident {
			return nil
		}
		return s.profiles.CreateTx(tx, &model.ResidentProfile{
			UserID:  user.ID,
			Address: strings.TrimSpace(req.Address),
			Zone:    req.Zone,
			Points:  0,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := userToResponse(user)
	resp.Zone = req.Zone
	resp.Address = strings.TrimSpace(req.Address)
	return resp, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *authService) loginResponse(ctx context.Context, user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	resp := userToResponse(user)
	if user.Role == model.RoleResident {
		if profile, err := s.profiles.FindByUserID(ctx, user.ID); err == nil {
			resp.Zone = profile.Zone
			resp.Address = profile.Address
			resp.Points = profile.Points
		}
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         *resp,
	}, nil
}

func (s *authService) generateToken(user *model.User, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     string(user.Role),
		"zone":     user.AssignedZone,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func userToResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:           u.ID.String(),
		Username:     u.Username,
		Email:        u.Email,
		Role:         string(u.Role),
		AssignedZone: u.AssignedZone,
		Active:       u.Active,
	}
}
