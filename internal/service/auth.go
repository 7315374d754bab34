package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/micro-shop/internal/auth"
	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// UserDirectory — кусок user-клиента, нужный auth-сервису:
// пользователи живут в чужом сервисе, здесь хранятся только креды
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// RegisterInput — данные регистрации
type RegisterInput struct {
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=8"`
	Name     string         `json:"name" validate:"required"`
	Address  models.Address `json:"address"`
}

type AuthService interface {
	Register(ctx context.Context, input *RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	// VerifyToken проверяет токен локально, без сетевых вызовов.
	VerifyToken(token string) (*models.AuthContext, error)
	// Logout ничего не делает на сервере: JWT stateless, токен
	// выбрасывает клиент.
	Logout(ctx context.Context) error
}

type authService struct {
	log       *slog.Logger
	credsRepo storage.CredentialsStorage
	users     UserDirectory
	tokens    *auth.TokenManager
}

func NewAuthService(log *slog.Logger, credsRepo storage.CredentialsStorage, users UserDirectory, tokens *auth.TokenManager) AuthService {
	return &authService{
		log:       log,
		credsRepo: credsRepo,
		users:     users,
		tokens:    tokens,
	}
}

// Register создаёт пользователя в user-сервисе, сохраняет хэш пароля
// локально и возвращает свежий токен
func (s *authService) Register(ctx context.Context, input *RegisterInput) (string, error) {
	const op = "service.authService.Register"
	logger := s.log.With(slog.String("op", op), slog.String("email", input.Email))

	if err := validate.Struct(input); err != nil {
		return "", httperr.BadRequestf("invalid registration: %v", err)
	}

	// пользователь с таким email не должен существовать
	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil && !httperr.IsKind(err, httperr.KindNotFound) {
		logger.Error("failed to check existing user", slog.Any("error", err))
		return "", err
	}
	if existing != nil {
		return "", httperr.BadRequest("user already exists")
	}

	created, err := s.users.Create(ctx, &models.User{
		Email:   input.Email,
		Name:    input.Name,
		Address: input.Address,
		Role:    models.RoleUser,
	})
	if err != nil {
		logger.Error("failed to create user", slog.Any("error", err))
		return "", err
	}

	// Хеширование пароля с помощью bcrypt (автоматически добавляет соль)
	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	if _, err := s.credsRepo.CreateCredentials(ctx, &models.Credentials{
		Email:        input.Email,
		PasswordHash: passHash,
		UserID:       created.ID,
	}); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return "", httperr.BadRequest("email is already taken")
		}
		logger.Error("failed to store credentials", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to store credentials: %w", op, err)
	}

	token, err := s.tokens.NewToken(created)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user registered", slog.String("userID", created.ID))
	return token, nil
}

// Login сверяет пароль с хэшем и выдаёт токен. Любая причина отказа
// наружу выглядит одинаково.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "service.authService.Login"
	logger := s.log.With(slog.String("op", op), slog.String("email", email))
	logger.Info("checking credentials")

	creds, err := s.credsRepo.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrCredentialsNotFound) {
			logger.Warn("unknown email")
			return "", httperr.Unauthorized("invalid email or password")
		}
		logger.Error("failed to get credentials", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get credentials: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(creds.PasswordHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", httperr.Unauthorized("invalid email or password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if httperr.IsKind(err, httperr.KindNotFound) {
			return "", httperr.Unauthorized("invalid email or password")
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", err
	}

	token, err := s.tokens.NewToken(user)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.String("userID", user.ID))
	return token, nil
}

func (s *authService) VerifyToken(token string) (*models.AuthContext, error) {
	return s.tokens.Verify(token)
}

func (s *authService) Logout(ctx context.Context) error { return nil }
