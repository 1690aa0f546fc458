package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/infra/persistence/postgres"
	"storefront/internal/infra/persistence/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Session = "test-secret"
	cfg.ApplyDefaults()

	return cfg
}

// testEnv is a sqlite-backed persistence layer shared by the service tests.
type testEnv struct {
	cfg       *config.Config
	txManager repository.TransactionManager
	repos     repository.RepositoryFactory
	logger    *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testdb.Open(t)

	return &testEnv{
		cfg:       newTestConfig(),
		txManager: postgres.NewTransactionManager(db),
		repos:     postgres.NewRepositoryFactory(db),
		logger:    newDiscardLogger(),
	}
}

func (e *testEnv) seedUser(t *testing.T, role entity.Role) service.Identity {
	t.Helper()

	user := &entity.User{
		Name:         "Shopper",
		Email:        uuid.NewString() + "@x.com",
		PasswordHash: "unused",
		Role:         role,
	}
	require.NoError(t, e.repos.UserRepo().Create(context.Background(), user))

	return service.Identity{UserID: user.ID, Role: role}
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64) *entity.Product {
	t.Helper()

	product := &entity.Product{Name: name, Price: price, Category: "men", SubCategory: "topwear", CreatedAt: time.Now()}
	require.NoError(t, e.repos.ProductRepo().Create(context.Background(), product))

	return product
}

func assertAppError(t *testing.T, err error, target *domainerrors.BaseError) {
	t.Helper()

	require.Error(t, err)
	assert.ErrorIs(t, err, target)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr), "expected an AppError, got %T", err)
	assert.Equal(t, target.HTTPCode(), appErr.HTTPCode())
}

func TestResolveSubject(t *testing.T) {
	self := uuid.New()
	other := uuid.New()
	customer := service.Identity{UserID: self, Role: entity.RoleCustomer}
	admin := service.Identity{UserID: self, Role: entity.RoleAdmin}

	tests := []struct {
		name      string
		actor     service.Identity
		requested uuid.UUID
		readOnly  bool
		want      uuid.UUID
		wantErr   *domainerrors.BaseError
	}{
		{name: "implicit self", actor: customer, requested: uuid.Nil, want: self},
		{name: "explicit self", actor: customer, requested: self, want: self},
		{name: "customer writing other", actor: customer, requested: other, wantErr: domainerrors.ErrForbidden},
		{name: "customer reading other", actor: customer, requested: other, readOnly: true, wantErr: domainerrors.ErrForbidden},
		{name: "admin reading other", actor: admin, requested: other, readOnly: true, want: other},
		{name: "admin writing other", actor: admin, requested: other, wantErr: domainerrors.ErrForbidden},
		{name: "anonymous", actor: service.Identity{}, wantErr: domainerrors.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveSubject(tt.actor, tt.requested, tt.readOnly)
			if tt.wantErr != nil {
				assertAppError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslateRepoError(t *testing.T) {
	assert.NoError(t, translateRepoError(nil, "noop"))
	assertAppError(t, translateRepoError(repository.ErrUserNotFound, "d"), domainerrors.ErrUserNotFound)
	assertAppError(t, translateRepoError(repository.ErrProductNotFound, "d"), domainerrors.ErrProductNotFound)
	assertAppError(t, translateRepoError(repository.ErrCartLineNotFound, "d"), domainerrors.ErrCartLineNotFound)
	assertAppError(t, translateRepoError(repository.ErrEmailTaken, "d"), domainerrors.ErrUserAlreadyExists)

	passthrough := domainerrors.ErrValidationFailed.WithDetails("x")
	assert.Same(t, passthrough, translateRepoError(passthrough, "d"))

	var dbErr *domainerrors.DatabaseExecuteError
	err := translateRepoError(assert.AnError, "boom")
	require.True(t, errors.As(err, &dbErr))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRoundMoney(t *testing.T) {
	assert.InDelta(t, 3.6, roundMoney(3.6), 1e-9)
	assert.InDelta(t, 0.33, roundMoney(1.0/3.0), 1e-9)
	assert.InDelta(t, 10.01, roundMoney(10.005000001), 1e-9)
}
