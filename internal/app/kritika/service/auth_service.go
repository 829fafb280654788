package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/infrastructure"
	"kritika/internal/app/kritika/repository"
	"kritika/internal/app/kritika/util"
	"kritika/pkg/logger"
	"kritika/pkg/metrics"
)

const serviceName = "kritika"

// AuthService обрабатывает регистрацию и выдачу токенов
type AuthService struct {
	userRepo      repository.UserRepository
	jwtManager    *util.JWTManager
	mailPublisher infrastructure.MessagePublisher
}

func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *util.JWTManager,
	mailPublisher infrastructure.MessagePublisher,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtManager:    jwtManager,
		mailPublisher: mailPublisher,
	}
}

// Signup создает пользователя и ставит письмо с кодом подтверждения
// в очередь отправки. Повторный запрос с той же парой (username, email)
// не ошибка: пользователю уходит новый код.
func (s *AuthService) Signup(ctx context.Context, req *entity.SignupRequest) (*entity.SignupResponse, error) {
	if err := util.ValidateUsername(req.Username); err != nil {
		metrics.AuthSignups.WithLabelValues("failed").Inc()
		return nil, NewValidationError("%s", err.Error())
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		metrics.AuthSignups.WithLabelValues("failed").Inc()
		return nil, NewValidationError("%s", err.Error())
	}

	status := "resent"
	user, err := s.userRepo.GetByPair(ctx, req.Username, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.createUser(ctx, req)
		status = "created"
	}
	if err != nil {
		if IsValidationError(err) {
			metrics.AuthSignups.WithLabelValues("failed").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve signup user: %w", err)
	}

	code, err := util.GenerateConfirmationCode()
	if err != nil {
		return nil, err
	}
	codeHash, err := util.HashConfirmationCode(code)
	if err != nil {
		return nil, err
	}

	// Сначала код фиксируется в БД, и только потом событие уходит
	// в очередь: доставка письма асинхронная и at-least-once
	if err := s.userRepo.SetConfirmationCode(ctx, user.ID, codeHash); err != nil {
		return nil, err
	}
	if err := s.publishMailEvent(ctx, user, code); err != nil {
		return nil, err
	}

	metrics.AuthSignups.WithLabelValues(status).Inc()
	logger.Info().
		Str("username", user.Username).
		Str("status", status).
		Msg("signup accepted, confirmation mail queued")

	return &entity.SignupResponse{Username: user.Username, Email: user.Email}, nil
}

// IssueToken обменивает код подтверждения на access токен
func (s *AuthService) IssueToken(ctx context.Context, req *entity.TokenRequest) (*entity.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.AuthTokensIssued.WithLabelValues("unknown_user").Inc()
			return nil, ErrNotFound
		}
		return nil, err
	}

	if user.ConfirmationCodeHash == "" ||
		!util.CheckConfirmationCode(req.ConfirmationCode, user.ConfirmationCodeHash) {
		metrics.AuthTokensIssued.WithLabelValues("bad_code").Inc()
		return nil, ErrInvalidConfirmationCode
	}

	token, err := s.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	metrics.AuthTokensIssued.WithLabelValues("issued").Inc()
	logger.Info().Str("username", user.Username).Msg("access token issued")

	return &entity.TokenResponse{Token: token}, nil
}

// createUser вставляет нового пользователя. Уникальность решает
// constraint: при конфликте пара перечитывается, чтобы два одинаковых
// signup подряд не падали на гонке.
func (s *AuthService) createUser(ctx context.Context, req *entity.SignupRequest) (*entity.User, error) {
	user := &entity.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     entity.RoleUser,
	}

	err := s.userRepo.Create(ctx, user)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return nil, err
	}

	existing, pairErr := s.userRepo.GetByPair(ctx, req.Username, req.Email)
	if pairErr == nil {
		return existing, nil
	}
	if !errors.Is(pairErr, repository.ErrNotFound) {
		return nil, pairErr
	}
	return nil, s.diagnoseConflict(ctx, req)
}

// diagnoseConflict выясняет, какое именно поле занято другим
// пользователем. Сравнение без учета регистра: Reader и reader - это
// один и тот же занятый username.
func (s *AuthService) diagnoseConflict(ctx context.Context, req *entity.SignupRequest) error {
	if _, err := s.userRepo.GetByUsernameIgnoreCase(ctx, req.Username); err == nil {
		return NewValidationError("username %q is already taken", req.Username)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if _, err := s.userRepo.GetByEmailIgnoreCase(ctx, req.Email); err == nil {
		return NewValidationError("email %q is already taken", req.Email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return NewValidationError("username or email is already taken")
}

func (s *AuthService) publishMailEvent(ctx context.Context, user *entity.User, code string) error {
	event := entity.MailEvent{
		EventType: "CONFIRMATION_CODE",
		Username:  user.Username,
		Email:     user.Email,
		Code:      code,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal mail event: %w", err)
	}
	if err := s.mailPublisher.PublishMessage(ctx, user.Username, payload); err != nil {
		return fmt.Errorf("failed to queue confirmation mail: %w", err)
	}
	return nil
}
