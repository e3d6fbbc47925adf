package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type issuerMock struct{ mock.Mock }

func (m *issuerMock) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	args := m.Called(userID, role, tokenVersion, now)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func newAuthUC(userRepo *UserRepoMock, issuer *issuerMock) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(userRepo,
		usecase.NewBcryptPasswordHasher(4), //テストはコストを下げて回す
		usecase.NewBcryptPasswordVerifier(),
		issuer, &fixedClock{t: testNow}, zap.NewNop())
}

func TestRegister_CreatesUserWithUserRole(t *testing.T) {
	userRepo := new(UserRepoMock)
	uc := newAuthUC(userRepo, new(issuerMock))

	userRepo.On("FindByEmail", mock.Anything, "taro@example.com").Return(nil, repo.ErrUserNotFound)

	var created *model.User
	userRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*model.User)
	}).Return(nil)

	out, err := uc.Register(context.Background(), "taro@example.com", "correct-horse-battery")

	assert.NoError(t, err)
	//初期ロールは必ずUSER
	assert.Equal(t, model.RoleUser, created.Role)
	assert.True(t, created.IsActive)
	//平文は保存しない
	assert.NotEqual(t, "correct-horse-battery", created.PasswordHash)
	assert.Equal(t, "taro@example.com", out.Email)
}

func TestRegister_ShortPasswordRejected(t *testing.T) {
	uc := newAuthUC(new(UserRepoMock), new(issuerMock))

	_, err := uc.Register(context.Background(), "taro@example.com", "short")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, he.Code)
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	uc := newAuthUC(new(UserRepoMock), new(issuerMock))

	_, err := uc.Register(context.Background(), "taro@example.com", "123456789012")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, he.Code)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	userRepo := new(UserRepoMock)
	uc := newAuthUC(userRepo, new(issuerMock))

	userRepo.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{ID: 1, Email: "taro@example.com"}, nil)

	_, err := uc.Register(context.Background(), "taro@example.com", "correct-horse-battery")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, he.Code)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_Succeeds(t *testing.T) {
	userRepo := new(UserRepoMock)
	issuer := new(issuerMock)
	uc := newAuthUC(userRepo, issuer)

	hasher := usecase.NewBcryptPasswordHasher(4)
	hashed, _ := hasher.Hash("correct-horse-battery")

	user := &model.User{ID: 7, Email: "taro@example.com", PasswordHash: hashed, Role: model.RoleUser, TokenVersion: 2, IsActive: true}
	userRepo.On("FindByEmail", mock.Anything, "taro@example.com").Return(user, nil)
	userRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	exp := testNow.Add(15 * time.Minute)
	issuer.On("Issue", int64(7), model.RoleUser, 2, testNow).Return("signed.jwt", exp, nil)

	out, err := uc.Login(context.Background(), "taro@example.com", "correct-horse-battery")

	assert.NoError(t, err)
	assert.Equal(t, "signed.jwt", out.Token)
	assert.Equal(t, exp, out.ExpiresAt)
	assert.Equal(t, int64(7), out.User.ID)
}

// メール不在もパスワード不一致も同じ401を返す
func TestLogin_UnknownEmailAndWrongPasswordLookSame(t *testing.T) {
	userRepo := new(UserRepoMock)
	uc := newAuthUC(userRepo, new(issuerMock))

	hasher := usecase.NewBcryptPasswordHasher(4)
	hashed, _ := hasher.Hash("correct-horse-battery")

	userRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repo.ErrUserNotFound)
	userRepo.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{ID: 7, PasswordHash: hashed, IsActive: true}, nil)

	_, err1 := uc.Login(context.Background(), "nobody@example.com", "whatever-password")
	_, err2 := uc.Login(context.Background(), "taro@example.com", "wrong-password-here")

	he1, ok1 := usecase.AsHTTPError(err1)
	he2, ok2 := usecase.AsHTTPError(err2)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, he1.Status, he2.Status)
	assert.Equal(t, he1.Message, he2.Message)
	assert.Equal(t, 401, he1.Status)
}

func TestLogin_DeactivatedAccountRejected(t *testing.T) {
	userRepo := new(UserRepoMock)
	uc := newAuthUC(userRepo, new(issuerMock))

	hasher := usecase.NewBcryptPasswordHasher(4)
	hashed, _ := hasher.Hash("correct-horse-battery")

	userRepo.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{ID: 7, PasswordHash: hashed, IsActive: false}, nil)

	_, err := uc.Login(context.Background(), "taro@example.com", "correct-horse-battery")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeNotAuthorized, he.Code)
}
