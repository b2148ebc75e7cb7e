package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/telesdesk/helpdesk-service/internal/auth"
	"github.com/telesdesk/helpdesk-service/internal/config"
	"github.com/telesdesk/helpdesk-service/internal/domain"
	apperrors "github.com/telesdesk/helpdesk-service/pkg/util"
)

type fakeProfileRepo struct {
	profiles map[string]*domain.Profile
	nextID   int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func (f *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) error {
	f.nextID++
	profile.ID = "prof-" + string(rune('0'+f.nextID))
	clone := *profile
	f.profiles[profile.ID] = &clone
	return nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *profile
	return &clone, nil
}

func (f *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	for _, profile := range f.profiles {
		if profile.Email == email {
			clone := *profile
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeProfileRepo) Update(_ context.Context, profile *domain.Profile) error {
	stored, ok := f.profiles[profile.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.FullName = profile.FullName
	stored.AvatarURL = profile.AvatarURL
	return nil
}

func (f *fakeProfileRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	stored, ok := f.profiles[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.PasswordHash = passwordHash
	return nil
}

func (f *fakeProfileRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.profiles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.profiles, id)
	return nil
}

func (f *fakeProfileRepo) List(_ context.Context) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, profile := range f.profiles {
		out = append(out, *profile)
	}
	return out, nil
}

func provisionConfig() config.Config {
	return config.Config{
		Auth:      config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost},
		Provision: config.ProvisionConfig{EmailDomain: "telesdesk.com"},
	}
}

func adminProfile() *domain.Profile {
	return &domain.Profile{ID: "admin-1", FullName: "Root Admin", Role: domain.RoleAdmin}
}

func TestDeriveUsername(t *testing.T) {
	assert.Equal(t, "joao.silva", DeriveUsername("Joao", "Silva"))
	assert.Equal(t, "maria.souza", DeriveUsername("  MARIA ", " Souza "))
}

func TestCreateUserDerivesCredentials(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProvisionService(provisionConfig(), repo)

	profile, creds, err := svc.CreateUser(context.Background(), adminProfile(), CreateUserInput{
		FirstName: "Joao",
		LastName:  "Silva",
		Password:  "s3nh4-forte",
		Role:      domain.RoleAgent,
	})
	require.NoError(t, err)

	assert.Equal(t, "joao.silva", creds.Username)
	assert.Equal(t, "joao.silva@telesdesk.com", creds.Email)
	assert.Equal(t, "s3nh4-forte", creds.Password)

	assert.Equal(t, "Joao Silva", profile.FullName)
	assert.Equal(t, domain.RoleAgent, profile.Role)
	assert.NotEqual(t, "s3nh4-forte", profile.PasswordHash)
	require.NoError(t, auth.ComparePassword(profile.PasswordHash, "s3nh4-forte"))
}

func TestCreateUserDefaultsToUserRole(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProvisionService(provisionConfig(), repo)

	profile, _, err := svc.CreateUser(context.Background(), adminProfile(), CreateUserInput{
		FirstName: "Ana",
		LastName:  "Lima",
		Password:  "abc12345",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, profile.Role)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProvisionService(provisionConfig(), repo)

	_, _, err := svc.CreateUser(context.Background(), adminProfile(), CreateUserInput{
		FirstName: "Ana", LastName: "Lima", Password: "abc12345",
	})
	require.NoError(t, err)

	_, _, err = svc.CreateUser(context.Background(), adminProfile(), CreateUserInput{
		FirstName: "ana", LastName: "LIMA", Password: "outra-senha",
	})
	assert.True(t, apperrors.IsValidation(err))
	assert.Len(t, repo.profiles, 1)
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProvisionService(provisionConfig(), repo)

	_, _, err := svc.CreateUser(context.Background(), agentProfile(), CreateUserInput{
		FirstName: "Ana", LastName: "Lima", Password: "abc12345",
	})
	assert.True(t, apperrors.IsForbidden(err))

	_, _, err = svc.CreateUser(context.Background(), nil, CreateUserInput{
		FirstName: "Ana", LastName: "Lima", Password: "abc12345",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	assert.Empty(t, repo.profiles)
}

func TestCreateUserValidatesNames(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProvisionService(provisionConfig(), repo)

	_, _, err := svc.CreateUser(context.Background(), adminProfile(), CreateUserInput{
		FirstName: "  ", LastName: "Lima", Password: "abc12345",
	})
	assert.True(t, apperrors.IsValidation(err))

	_, _, err = svc.CreateUser(context.Background(), adminProfile(), CreateUserInput{
		FirstName: "Ana", LastName: "Lima",
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateUserChangesNameAndPassword(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProvisionService(provisionConfig(), repo)

	created, _, err := svc.CreateUser(context.Background(), adminProfile(), CreateUserInput{
		FirstName: "Ana", LastName: "Lima", Password: "abc12345",
	})
	require.NoError(t, err)

	newName := "Ana Lima Santos"
	newPassword := "nova-senha"
	require.NoError(t, svc.UpdateUser(context.Background(), adminProfile(), created.ID, &newName, &newPassword))

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima Santos", stored.FullName)
	require.NoError(t, auth.ComparePassword(stored.PasswordHash, "nova-senha"))
}

func TestUpdateUserNotFound(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProvisionService(provisionConfig(), repo)

	name := "Qualquer Nome"
	err := svc.UpdateUser(context.Background(), adminProfile(), "missing", &name, nil)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProvisionService(provisionConfig(), repo)

	created, _, err := svc.CreateUser(context.Background(), adminProfile(), CreateUserInput{
		FirstName: "Ana", LastName: "Lima", Password: "abc12345",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), adminProfile(), created.ID))
	assert.Empty(t, repo.profiles)

	err = svc.DeleteUser(context.Background(), adminProfile(), created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListUsersRequiresAdmin(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProvisionService(provisionConfig(), repo)

	_, err := svc.ListUsers(context.Background(), agentProfile())
	assert.True(t, apperrors.IsForbidden(err))
}

func TestLoginIssuesToken(t *testing.T) {
	repo := newFakeProfileRepo()
	provision := NewProvisionService(provisionConfig(), repo)
	authSvc := NewAuthService(provisionConfig(), repo)

	created, creds, err := provision.CreateUser(context.Background(), adminProfile(), CreateUserInput{
		FirstName: "Joao", LastName: "Silva", Password: "s3nh4-forte", Role: domain.RoleAgent,
	})
	require.NoError(t, err)

	profile, token, exp, err := authSvc.Login(context.Background(), creds.Email, "s3nh4-forte")
	require.NoError(t, err)
	assert.Equal(t, created.ID, profile.ID)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	claims, err := authSvc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.ProfileID)
	assert.Equal(t, domain.RoleAgent, claims.Role)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	repo := newFakeProfileRepo()
	provision := NewProvisionService(provisionConfig(), repo)
	authSvc := NewAuthService(provisionConfig(), repo)

	_, creds, err := provision.CreateUser(context.Background(), adminProfile(), CreateUserInput{
		FirstName: "Joao", LastName: "Silva", Password: "s3nh4-forte",
	})
	require.NoError(t, err)

	_, _, _, err = authSvc.Login(context.Background(), creds.Email, "errada")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, _, _, err = authSvc.Login(context.Background(), "ninguem@telesdesk.com", "tanto-faz")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}
