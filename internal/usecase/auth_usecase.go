package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// bcryptハッシュと平文を比較。
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// アクセストークン発行の約束。実装はmainのjwtIssuer。
type TokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error)
}

type AuthUsecase struct {
	users    repo.UserRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
	issuer   TokenIssuer
	clock    Clock
	logger   *zap.Logger
}

func NewAuthUsecase(
	users repo.UserRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	clock Clock,
	logger *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{users: users, hasher: hasher, verifier: verifier, issuer: issuer, clock: clock, logger: logger}
}

type UserOutput struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type LoginOutput struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      UserOutput `json:"user"`
}

// Register は会員登録。初期ロールは必ずUSER。
func (u *AuthUsecase) Register(ctx context.Context, email string, password string) (UserOutput, error) {
	email = strings.TrimSpace(email)

	// emailの形式チェック
	if !isValidEmailFormat(email) {
		return UserOutput{}, NewValidationError("invalid email format")
	}

	// password の長さチェック（最小12文字）
	if len(password) < 12 {
		return UserOutput{}, NewValidationError("password too short")
	}

	// よくある弱いパスワードの拒否
	if isWeakPassword(password) {
		return UserOutput{}, NewValidationError("weak password")
	}

	// email重複チェック
	existing, err := u.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return UserOutput{}, NewValidationError("email already exists")
	}
	if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		return UserOutput{}, u.storage("find user by email", err)
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		u.logger.Error("password hash failed", zap.Error(err))
		return UserOutput{}, NewStorageError()
	}

	now := u.clock.Now()
	user := &model.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleUser,
		TokenVersion: 0,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.users.Create(ctx, user); err != nil {
		return UserOutput{}, u.storage("create user", err)
	}

	return toUserOutput(user), nil
}

// Login は認証してアクセストークンを返す。
// メール不在とパスワード不一致は同じエラーにする（存在を漏らさない）。
func (u *AuthUsecase) Login(ctx context.Context, email string, password string) (LoginOutput, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginOutput{}, NewValidationError("email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrUserNotFound) {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, CodeNotAuthorized, "invalid credentials")
	}
	if err != nil {
		return LoginOutput{}, u.storage("find user by email", err)
	}

	if !u.verifier.Verify(password, user.PasswordHash) {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, CodeNotAuthorized, "invalid credentials")
	}
	if !user.IsActive {
		return LoginOutput{}, NewNotAuthorizedError("account is deactivated")
	}

	now := u.clock.Now()
	token, expiresAt, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		u.logger.Error("token issue failed", zap.Error(err))
		return LoginOutput{}, NewStorageError()
	}

	//最終ログイン更新（失敗してもログインは成立させる）
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.logger.Warn("last login update failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return LoginOutput{Token: token, ExpiresAt: expiresAt, User: toUserOutput(user)}, nil
}

func (u *AuthUsecase) storage(op string, err error) error {
	u.logger.Error("auth storage failure", zap.String("op", op), zap.Error(err))
	return NewStorageError()
}

// メールチェック
func isValidEmailFormat(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

// よくある弱いパスワード
func isWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password":     {},
		"password123":  {},
		"123456789012": {},
		"1234567890":   {},
		"qwertyuiop":   {},
		"letmein12345": {},
		"admin1234567": {},
	}

	_, ok := weak[normalized]
	return ok
}

func toUserOutput(u *model.User) UserOutput {
	return UserOutput{
		ID:       u.ID,
		Email:    u.Email,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

type BcryptPasswordVerifier struct{}

func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
