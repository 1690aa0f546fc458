package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

// fieldValidator checks single values; request structs are validated by the
// echo validator before they get here.
var fieldValidator = validator.New(validator.WithRequiredStructEnabled())

// userService implements the UserUsecase interface.
type userService struct {
	txManager    repository.TransactionManager
	repos        repository.RepositoryFactory
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger

	// dummyHash is compared against on unknown emails so both login
	// failures cost the same.
	dummyOnce sync.Once
	dummyHash string
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	Repos        repository.RepositoryFactory
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager:    params.TxManager,
		repos:        params.Repos,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// burnCheck spends one hash comparison on a throwaway digest.
func (srv *userService) burnCheck(password string) {
	srv.dummyOnce.Do(func() {
		srv.dummyHash, _ = srv.hasher.Hash(uuid.NewString())
	})
	srv.hasher.Check(password, srv.dummyHash)
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// normalizeEmail trims and lowercases an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(input *usecase.RegisterInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return domainerrors.ErrValidationFailed.WithDetails("name is required")
	}
	if err := fieldValidator.Var(input.Email, "required,email"); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("email is invalid")
	}
	if len(input.Password) < minPasswordLength || len(input.Password) > maxPasswordLength {
		return domainerrors.ErrValidationFailed.WithDetails("password must be between 8 and 72 characters")
	}

	return nil
}

// Register creates a customer account.
func (srv *userService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.PublicUser, error) {
	normalized := *input
	normalized.Email = normalizeEmail(input.Email)
	normalized.Name = strings.TrimSpace(input.Name)
	if err := validateRegistration(&normalized); err != nil {
		return nil, err
	}

	hash, err := srv.hasher.Hash(normalized.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	user := &entity.User{
		ID:           uuid.New(),
		Name:         normalized.Name,
		Phone:        strings.TrimSpace(normalized.Phone),
		Email:        normalized.Email,
		PasswordHash: hash,
		Role:         entity.RoleCustomer,
		Address:      normalized.Address,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, err := userRepo.FindByEmail(ctx, user.Email)
		if err == nil {
			return domainerrors.ErrUserAlreadyExists
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return translateRepoError(err, "failed to look up email")
		}

		return translateRepoError(userRepo.Create(ctx, user), "failed to create user")
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("User registered", slog.String("user_id", user.ID.String()))

	return user.Public(), nil
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("email and password are required")
	}

	user, err := srv.repos.UserRepo().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.burnCheck(input.Password)

			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, translateRepoError(err, "failed to look up user")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login rejected", slog.String("user_id", user.ID.String()))

		return nil, domainerrors.ErrInvalidCredentials
	}

	token, err := srv.tokenService.Issue(user.ID, user.Role)
	if err != nil {
		srv.log(ctx).Error("Failed to issue session token", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrInternalError, "failed to issue session token")
	}

	srv.log(ctx).Info("User logged in", slog.String("user_id", user.ID.String()))

	return &usecase.LoginOutput{
		Token:     token,
		ExpiresAt: time.Now().Add(srv.tokenService.TTL()),
		User:      user.Public(),
	}, nil
}

// Verify resolves a token to its user.
func (srv *userService) Verify(ctx context.Context, token string) (*entity.PublicUser, error) {
	identity, err := srv.tokenService.Verify(token)
	if err != nil {
		return nil, domainerrors.ErrUnauthenticated
	}

	user, err := srv.repos.UserRepo().FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUnauthenticated
		}

		return nil, translateRepoError(err, "failed to load session user")
	}

	return user.Public(), nil
}

// Profile returns the public profile of a user.
func (srv *userService) Profile(ctx context.Context, userID uuid.UUID) (*entity.PublicUser, error) {
	user, err := srv.repos.UserRepo().FindByID(ctx, userID)
	if err != nil {
		return nil, translateRepoError(err, "failed to load profile")
	}

	return user.Public(), nil
}
