package service_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"ecosort/internal/config"
	"ecosort/internal/dto"
	"ecosort/internal/model"
	"ecosort/internal/repository"
	"ecosort/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

// ── In-memory UserRepository stub ────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	return r.CreateTx(nil, u)
}

func (r *stubUserRepo) CreateTx(_ *gorm.DB, u *model.User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context, role model.Role, search string) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if role != "" && u.Role != role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(search)) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubUserRepo) UpdateAssignedZone(_ context.Context, id uuid.UUID, zone string) (int64, error) {
	u, ok := r.users[id]
	if !ok || u.Role != model.RoleCollector {
		return 0, nil
	}
	u.AssignedZone = &zone
	return 1, nil
}

func (r *stubUserRepo) DB() *gorm.DB { return nil }

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

func strPtr(s string) *string { return &s }

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    168,
	}
}

func seedUser(repo *stubUserRepo, username, password string, role model.Role) *model.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		panic(err)
	}
	u := &model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	repo.users[u.ID] = u
	return u
}

func buildAuthSvc() (service.AuthService, *stubUserRepo, *stubProfileRepo) {
	userRepo := newStubUserRepo()
	profileRepo := newStubProfileRepo()
	svc := service.NewAuthService(userRepo, profileRepo, newTestCfg())
	return svc, userRepo, profileRepo
}

// ── Tests: Login ─────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	svc, userRepo, profileRepo := buildAuthSvc()
	user := seedUser(userRepo, "aina", "secret123", model.RoleResident)
	profileRepo.profiles[user.ID] = &model.ResidentProfile{
		UserID:  user.ID,
		Address: "12, Jalan Teknokrat 3, Cyberjaya",
		Zone:    "Zone A",
		Points:  150,
	}

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "aina", Password: "secret123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "aina", resp.User.Username)
	assert.Equal(t, "Resident", resp.User.Role)
	assert.Equal(t, 150, resp.User.Points)
	assert.Equal(t, "Zone A", resp.User.Zone)
}

func TestLogin_FoldsUsername(t *testing.T) {
	svc, userRepo, _ := buildAuthSvc()
	seedUser(userRepo, "john", "secret123", model.RoleCollector)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "  John ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "john", resp.User.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo, _ := buildAuthSvc()
	seedUser(userRepo, "aina", "secret123", model.RoleResident)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "aina", Password: "nope"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := buildAuthSvc()

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "secret123"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, userRepo, _ := buildAuthSvc()
	user := seedUser(userRepo, "aina", "secret123", model.RoleResident)
	user.Active = false

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "aina", Password: "secret123"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogin_TokenCarriesRoleAndZone(t *testing.T) {
	svc, userRepo, _ := buildAuthSvc()
	user := seedUser(userRepo, "rashid", "secret123", model.RoleCollector)
	user.AssignedZone = strPtr("Zone B")

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "rashid", Password: "secret123"})
	require.NoError(t, err)

	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID.String(), claims["user_id"])
	assert.Equal(t, "rashid", claims["username"])
	assert.Equal(t, "Collector", claims["role"])
	assert.Equal(t, "Zone B", claims["zone"])
}

// ── Tests: Refresh ───────────────────────────────────────────────────────────

func TestRefresh_RoundTrip(t *testing.T) {
	svc, userRepo, _ := buildAuthSvc()
	seedUser(userRepo, "aina", "secret123", model.RoleResident)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "aina", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "aina", refreshed.User.Username)
}

func TestRefresh_Garbage(t *testing.T) {
	svc, _, _ := buildAuthSvc()

	_, err := svc.Refresh(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRefresh_Expired(t *testing.T) {
	svc, userRepo, _ := buildAuthSvc()
	user := seedUser(userRepo, "aina", "secret123", model.RoleResident)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), expired)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRefresh_DeactivatedUser(t *testing.T) {
	svc, userRepo, _ := buildAuthSvc()
	user := seedUser(userRepo, "aina", "secret123", model.RoleResident)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "aina", Password: "secret123"})
	require.NoError(t, err)

	user.Active = false
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

// ── Tests: Register ──────────────────────────────────────────────────────────

func TestRegister_ResidentCreatesProfile(t *testing.T) {
	svc, userRepo, profileRepo := buildAuthSvc()

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: " Aina ",
		Password: "secret123",
		Email:    strPtr("aina@example.com"),
		Role:     "Resident",
		Address:  "12, Jalan Teknokrat 3, Cyberjaya",
		Zone:     "Zone A",
	})
	require.NoError(t, err)

	assert.Equal(t, "aina", resp.Username, "stored lowercase, trimmed")
	assert.Equal(t, "Resident", resp.Role)
	assert.Equal(t, "Zone A", resp.Zone)
	assert.Equal(t, 0, resp.Points)

	user, err := userRepo.FindByUsername(context.Background(), "aina")
	require.NoError(t, err)
	profile, err := profileRepo.FindByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.Points)
	assert.Equal(t, "Zone A", profile.Zone)
}

func TestRegister_ResidentNeedsAddressAndZone(t *testing.T) {
	svc, _, _ := buildAuthSvc()

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "aina", Password: "secret123", Role: "Resident", Zone: "Zone A",
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.Register(context.Background(), dto.RegisterRequest{
		Username: "aina", Password: "secret123", Role: "Resident", Address: "somewhere",
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestRegister_CollectorSkipsProfile(t *testing.T) {
	svc, _, profileRepo := buildAuthSvc()

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "rashid", Password: "secret123", Role: "Collector",
	})
	require.NoError(t, err)
	assert.Equal(t, "Collector", resp.Role)
	assert.Empty(t, profileRepo.profiles, "staff accounts carry no resident profile")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, userRepo, _ := buildAuthSvc()
	seedUser(userRepo, "aina", "secret123", model.RoleResident)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "Aina", Password: "secret123", Role: "Resident",
		Address: "somewhere", Zone: "Zone A",
	})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestRegister_UnknownRole(t *testing.T) {
	svc, _, _ := buildAuthSvc()

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "aina", Password: "secret123", Role: "Superadmin",
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, userRepo, _ := buildAuthSvc()

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "rashid", Password: "secret123", Role: "Collector",
	})
	require.NoError(t, err)

	user, err := userRepo.FindByUsername(context.Background(), "rashid")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}
