package services

import (
	"context"
	"errors"
	"testing"

	"simia-portal/internal/adapters/persistence/models"
	"simia-portal/internal/config"
	"simia-portal/internal/pkg/jwt"
	"simia-portal/internal/pkg/password"

	"gorm.io/gorm"
)

type stubUserRepo struct {
	users map[string]*models.User
}

func newStubUserRepo(users ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *stubUserRepo) Create(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *stubUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret"},
	}
}

func seedUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := password.Hash("admin123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:       "user-1",
		Username: "admin",
		Password: hash,
		Role:     "admin",
		Name:     "Anand (Admin)",
	}
}

func TestLoginSuccess(t *testing.T) {
	user := seedUser(t)
	service := NewAuthService(newStubUserRepo(user), testConfig())

	resp, err := service.Login(context.Background(), &LoginInput{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User.ID != "user-1" {
		t.Errorf("user ID = %q, want %q", resp.User.ID, "user-1")
	}
	if resp.Token == "" {
		t.Fatal("empty token")
	}

	claims, err := jwt.ValidateToken(resp.Token, "test-secret")
	if err != nil {
		t.Fatalf("token does not validate: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "admin" || claims.Role != "admin" {
		t.Errorf("claims = %+v, want id/username/role of the seeded user", claims)
	}
}

// Unknown username and wrong password must be indistinguishable.
func TestLoginFailuresAreUniform(t *testing.T) {
	service := NewAuthService(newStubUserRepo(seedUser(t)), testConfig())

	_, errUnknown := service.Login(context.Background(), &LoginInput{Username: "nobody", Password: "admin123"})
	_, errWrong := service.Login(context.Background(), &LoginInput{Username: "admin", Password: "wrong-pass"})

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", errUnknown)
	}
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Errorf("error messages differ: %q vs %q", errUnknown, errWrong)
	}
}

func TestGetUserByIDMissing(t *testing.T) {
	service := NewAuthService(newStubUserRepo(), testConfig())

	if _, err := service.GetUserByID(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByID(missing) = %v, want ErrUserNotFound", err)
	}
}
