package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/martinmiralles/mar-pokemart/internal/auth"
	"github.com/martinmiralles/mar-pokemart/internal/domain"
	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
	"github.com/martinmiralles/mar-pokemart/pkg/pagination"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

const testSecret = "test-secret-key-for-testing"

func newTestUserService(repo *mockUserRepository) (*UserService, *recordingPublisher) {
	producer, rec := newTestProducer()
	jwt := auth.NewJWTManager(testSecret, time.Hour)
	return NewUserService(repo, jwt, producer, newTestLogger()), rec
}

func hashForTest(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}

// --- Register Tests ---

func TestRegister_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc, rec := newTestUserService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	token, err := svc.Register(ctx, RegisterInput{
		Name:     " Ash Ketchum ",
		Email:    "Ash@Pallet.Town",
		Password: "pikachu123",
	})

	require.NoError(t, err)
	require.NotNil(t, token.User)
	assert.Equal(t, "Ash Ketchum", token.User.Name)
	assert.Equal(t, "ash@pallet.town", token.User.Email)
	assert.False(t, token.User.IsAdmin)
	assert.NotEmpty(t, token.AccessToken)

	created := repo.Calls[0].Arguments.Get(1).(*domain.User)
	assert.NotEqual(t, "pikachu123", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("pikachu123")))

	claims, err := auth.NewJWTManager(testSecret, time.Hour).Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)

	assert.Equal(t, []string{"pokemart.user.registered"}, rec.published())
	repo.AssertExpectations(t)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.c", Password: "password1"}},
		{"missing email", RegisterInput{Name: "Misty", Password: "password1"}},
		{"short password", RegisterInput{Name: "Misty", Email: "a@b.c", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepository)
			svc, _ := newTestUserService(repo)

			_, err := svc.Register(context.Background(), tt.input)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(mockUserRepository)
	svc, rec := newTestUserService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "brock@pewter.gym"))

	_, err := svc.Register(ctx, RegisterInput{Name: "Brock", Email: "brock@pewter.gym", Password: "onix12345"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Empty(t, rec.published())
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	repo := new(mockUserRepository)
	svc, rec := newTestUserService(repo)
	rec.err = assert.AnError
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	token, err := svc.Register(ctx, RegisterInput{Name: "Brock", Email: "brock@pewter.gym", Password: "onix12345"})

	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _ := newTestUserService(repo)
	ctx := context.Background()

	user := &domain.User{ID: "u-1", Name: "Misty", Email: "misty@cerulean.gym", PasswordHash: hashForTest("starmie99"), IsAdmin: true}
	repo.On("GetByEmail", ctx, "misty@cerulean.gym").Return(user, nil)

	token, err := svc.Login(ctx, LoginInput{Email: "MISTY@cerulean.gym", Password: "starmie99"})

	require.NoError(t, err)
	assert.Equal(t, "u-1", token.User.ID)
	assert.True(t, token.User.IsAdmin)
	assert.NotEmpty(t, token.AccessToken)
	assert.True(t, token.ExpiresAt.After(time.Now()))
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _ := newTestUserService(repo)
	ctx := context.Background()

	user := &domain.User{ID: "u-1", Email: "misty@cerulean.gym", PasswordHash: hashForTest("starmie99")}
	repo.On("GetByEmail", ctx, "misty@cerulean.gym").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "misty@cerulean.gym", Password: "psyduck"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _ := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLogin_UnknownEmailStillComparesHash(t *testing.T) {
	var compared [][]byte
	orig := compareHash
	compareHash = func(hash, password []byte) error {
		compared = append(compared, hash)
		return orig(hash, password)
	}
	t.Cleanup(func() { compareHash = orig })

	repo := new(mockUserRepository)
	svc, _ := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "pokemart-no-such-user"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
	require.Len(t, compared, 1)
	cost, err := bcrypt.Cost(compared[0])
	require.NoError(t, err)
	assert.Equal(t, bcryptCost, cost)
}

// --- Profile Tests ---

func TestUpdateProfile_ChangesFields(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _ := newTestUserService(repo)
	ctx := context.Background()

	oldHash := hashForTest("oldpassword")
	user := &domain.User{ID: "u-1", Name: "Gary", Email: "gary@oak.lab", PasswordHash: oldHash}
	repo.On("GetByID", ctx, "u-1").Return(user, nil)
	repo.On("Update", ctx, user).Return(nil)

	token, err := svc.UpdateProfile(ctx, "u-1", UpdateProfileInput{
		Name:     strPtr("Blue"),
		Password: strPtr("newpassword"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Blue", token.User.Name)
	assert.Equal(t, "gary@oak.lab", token.User.Email)
	assert.NotEqual(t, oldHash, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpassword")))
}

func TestUpdateProfile_NotFound(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _ := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, "ghost").Return(nil, apperrors.NotFound("user", "ghost"))

	_, err := svc.UpdateProfile(ctx, "ghost", UpdateProfileInput{Name: strPtr("x")})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateProfile_EmptyName(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _ := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, "u-1").Return(&domain.User{ID: "u-1", Name: "Gary"}, nil)

	_, err := svc.UpdateProfile(ctx, "u-1", UpdateProfileInput{Name: strPtr("  ")})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// --- Admin Tests ---

func TestListUsers(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _ := newTestUserService(repo)
	ctx := context.Background()
	page := pagination.New(2, 5)

	repo.On("List", ctx, page).Return([]domain.User{{ID: "u-6"}}, 6, nil)

	users, total, err := svc.ListUsers(ctx, page)

	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 6, total)
}

func TestUpdateUser_PromotesToAdmin(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _ := newTestUserService(repo)
	ctx := context.Background()

	user := &domain.User{ID: "u-2", Name: "Erika", Email: "erika@celadon.gym"}
	repo.On("GetByID", ctx, "u-2").Return(user, nil)
	repo.On("Update", ctx, user).Return(nil)

	updated, err := svc.UpdateUser(ctx, "u-2", AdminUpdateInput{IsAdmin: boolPtr(true)})

	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)
	assert.Equal(t, "Erika", updated.Name)
}

func TestDeleteUser(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _ := newTestUserService(repo)
	ctx := context.Background()
	admin := &domain.Principal{ID: "admin", IsAdmin: true}

	repo.On("Delete", ctx, "u-3").Return(nil)

	require.NoError(t, svc.DeleteUser(ctx, admin, "u-3"))
	repo.AssertExpectations(t)
}

func TestDeleteUser_Self(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _ := newTestUserService(repo)
	admin := &domain.Principal{ID: "admin", IsAdmin: true}

	err := svc.DeleteUser(context.Background(), admin, "admin")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
