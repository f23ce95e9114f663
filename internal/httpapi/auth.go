package httpapi

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vendorhub/backend/internal/apperr"
	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/metrics"
	"vendorhub/backend/internal/store"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidToken       = "Invalid or expired token"
	msgWeakPassword       = "Password must be at least 8 characters with uppercase, lowercase, and number"
)

// AuthManager issues and verifies bearer tokens and owns the account
// lifecycle: signup, login, profile and password changes.
type AuthManager struct {
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	users      UserStore
	metrics    *metrics.Metrics
	// dummyHash keeps unknown-email logins as slow as wrong-password ones.
	dummyHash []byte
}

type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (*domain.User, error)
}

type AuthOption func(*AuthManager)

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) AuthOption {
	return func(a *AuthManager) {
		a.bcryptCost = cost
	}
}

func WithAuthMetrics(m *metrics.Metrics) AuthOption {
	return func(a *AuthManager) {
		a.metrics = m
	}
}

type vendorClaims struct {
	jwtlib.RegisteredClaims
	Role string `json:"role"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, users UserStore, opts ...AuthOption) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}

	manager := &AuthManager{
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: 12,
		users:      users,
	}
	for _, opt := range opts {
		opt(manager)
	}
	manager.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), manager.bcryptCost)
	return manager
}

func (a *AuthManager) Register(ctx context.Context, req domain.SignupRequest) (domain.AuthResponse, error) {
	resp, err := a.register(ctx, req)
	a.metrics.ObserveAuth("signup", err)
	return resp, err
}

func (a *AuthManager) register(ctx context.Context, req domain.SignupRequest) (domain.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" || req.Role == "" {
		return domain.AuthResponse{}, apperr.Validation("Email, password, and role are required")
	}
	if !emailPattern.MatchString(email) {
		return domain.AuthResponse{}, apperr.Validation("Invalid email format")
	}
	if !isStrongPassword(req.Password) {
		return domain.AuthResponse{}, apperr.Validation(msgWeakPassword)
	}
	switch req.Role {
	case domain.RoleVendor, domain.RoleCustomer, domain.RoleAdmin:
	default:
		return domain.AuthResponse{}, apperr.Validation("Invalid role. Must be vendor, customer, or admin")
	}
	if req.Phone != nil && !isValidPhone(*req.Phone) {
		return domain.AuthResponse{}, apperr.Validation("Invalid phone number format")
	}

	hash, err := a.hashPassword(req.Password)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		Location:     req.Location,
		Phone:        req.Phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Role == domain.RoleVendor {
		user.BusinessName = req.BusinessName
	}

	created, err := a.users.CreateUser(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		return domain.AuthResponse{}, apperr.Conflict("User with this email already exists")
	}
	if err != nil {
		return domain.AuthResponse{}, err
	}
	return a.issue(*created)
}

func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	resp, err := a.login(ctx, req)
	a.metrics.ObserveAuth("login", err)
	return resp, err
}

func (a *AuthManager) login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return domain.AuthResponse{}, apperr.Validation("Email and password are required")
	}

	user, err := a.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(req.Password))
		return domain.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if !user.IsActive {
		return domain.AuthResponse{}, apperr.Forbidden("Account is deactivated. Please contact support.")
	}
	if !verifyPassword(user.PasswordHash, req.Password) {
		return domain.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	return a.issue(*user)
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &vendorClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithExpirationRequired())
	if err != nil || !token.Valid {
		return domain.Actor{}, apperr.Unauthorized(msgInvalidToken)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, apperr.Unauthorized(msgInvalidToken)
	}
	return domain.Actor{UserID: sub, Role: claims.Role}, nil
}

func (a *AuthManager) Me(ctx context.Context, userID string) (domain.User, error) {
	user, err := a.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

// UpdateProfile applies the fields present in req. Business name only sticks
// for vendors.
func (a *AuthManager) UpdateProfile(ctx context.Context, userID string, req domain.ProfileUpdateRequest) (domain.User, error) {
	user, err := a.Me(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if req.Phone != nil && *req.Phone != "" && !isValidPhone(*req.Phone) {
		return domain.User{}, apperr.Validation("Invalid phone number format")
	}
	if req.BusinessName != nil && user.Role == domain.RoleVendor {
		user.BusinessName = emptyToNil(req.BusinessName)
	}
	if req.Location != nil {
		user.Location = emptyToNil(req.Location)
	}
	if req.Phone != nil {
		user.Phone = emptyToNil(req.Phone)
	}
	user.UpdatedAt = time.Now().UTC()

	updated, err := a.users.UpdateUser(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	return *updated, nil
}

func (a *AuthManager) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperr.Validation("Current password and new password are required")
	}
	user, err := a.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !verifyPassword(user.PasswordHash, req.CurrentPassword) {
		return apperr.Unauthorized("Current password is incorrect")
	}
	if !isStrongPassword(req.NewPassword) {
		return apperr.Validation(msgWeakPassword)
	}

	hash, err := a.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	_, err = a.users.UpdateUser(ctx, user)
	return err
}

func (a *AuthManager) issue(user domain.User) (domain.AuthResponse, error) {
	token, err := a.sign(user.ID, user.Role, time.Now().UTC().Add(a.tokenTTL))
	if err != nil {
		return domain.AuthResponse{}, err
	}
	return domain.AuthResponse{User: user, Token: token}, nil
}

func (a *AuthManager) sign(userID, role string, expiresAt time.Time) (string, error) {
	claims := vendorClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "vendorhub",
		},
		Role: role,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *AuthManager) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || input == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

func isStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

func isValidPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10
}

func emptyToNil(v *string) *string {
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
