package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/repository"
	"kritika/internal/app/kritika/repository/mocks"
	"kritika/internal/app/kritika/service"
	"kritika/internal/app/kritika/util"
)

// testServer поднимает полный роутер поверх моков репозиториев:
// обработчики и сервисы настоящие, база и Kafka подменены
type testServer struct {
	router         *gin.Engine
	userRepo       *mocks.MockUserRepository
	categoryRepo   *mocks.MockCategoryRepository
	genreRepo      *mocks.MockGenreRepository
	titleRepo      *mocks.MockTitleRepository
	reviewRepo     *mocks.MockReviewRepository
	commentRepo    *mocks.MockCommentRepository
	mailPublisher  *mocks.MockMessagePublisher
	eventPublisher *mocks.MockMessagePublisher
	jwtManager     *util.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	mr := miniredis.RunT(t)
	cache := util.NewRedisClientFromExisting(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	s := &testServer{
		userRepo:       new(mocks.MockUserRepository),
		categoryRepo:   new(mocks.MockCategoryRepository),
		genreRepo:      new(mocks.MockGenreRepository),
		titleRepo:      new(mocks.MockTitleRepository),
		reviewRepo:     new(mocks.MockReviewRepository),
		commentRepo:    new(mocks.MockCommentRepository),
		mailPublisher:  new(mocks.MockMessagePublisher),
		eventPublisher: new(mocks.MockMessagePublisher),
		jwtManager:     util.NewJWTManager("test-secret", time.Hour),
	}

	authService := service.NewAuthService(s.userRepo, s.jwtManager, s.mailPublisher)
	userService := service.NewUserService(s.userRepo)
	catalogService := service.NewCatalogService(s.categoryRepo, s.genreRepo, cache)
	titleService := service.NewTitleService(s.titleRepo, s.categoryRepo, s.genreRepo)
	reviewService := service.NewReviewService(s.reviewRepo, s.commentRepo, s.titleRepo, s.eventPublisher)

	s.router = SetupRoutes(
		NewAuthHandler(authService),
		NewCatalogHandler(catalogService),
		NewTitleHandler(titleService),
		NewReviewHandler(reviewService),
		NewUserHandler(userService),
		NewAuthMiddleware(s.jwtManager, s.userRepo),
	)
	return s
}

// tokenFor выпускает токен и учит мок отдавать пользователя по id,
// как это делает middleware на каждом запросе
func (s *testServer) tokenFor(t *testing.T, user *entity.User) string {
	t.Helper()
	s.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	token, err := s.jwtManager.GenerateAccessToken(user)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Signup(t *testing.T) {
	s := newTestServer(t)

	s.userRepo.On("GetByPair", mock.Anything, "reader", "reader@example.com").
		Return(nil, repository.ErrNotFound)
	s.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.User).ID = 7
		}).
		Return(nil)
	s.userRepo.On("SetConfirmationCode", mock.Anything, int64(7), mock.AnythingOfType("string")).Return(nil)
	s.mailPublisher.On("PublishMessage", mock.Anything, "reader", mock.Anything).Return(nil)

	w := s.do(t, http.MethodPost, "/auth/signup", "", gin.H{
		"username": "reader",
		"email":    "reader@example.com",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp entity.SignupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "reader", resp.Username)
	// Код подтверждения в ответ не попадает
	assert.NotContains(t, w.Body.String(), "confirmation")
}

func TestRouter_Signup_InvalidEmail(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/signup", "", gin.H{
		"username": "reader",
		"email":    "not-an-email",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	s.userRepo.AssertNotCalled(t, "GetByPair", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_Token(t *testing.T) {
	s := newTestServer(t)

	hash, err := util.HashConfirmationCode("secret-code")
	require.NoError(t, err)
	user := &entity.User{ID: 7, Username: "reader", Role: entity.RoleUser, ConfirmationCodeHash: hash}
	s.userRepo.On("GetByUsername", mock.Anything, "reader").Return(user, nil)

	w := s.do(t, http.MethodPost, "/auth/token", "", gin.H{
		"username":          "reader",
		"confirmation_code": "secret-code",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp entity.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := s.jwtManager.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
}

func TestRouter_Token_UnknownUser(t *testing.T) {
	s := newTestServer(t)

	s.userRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	w := s.do(t, http.MethodPost, "/auth/token", "", gin.H{
		"username":          "ghost",
		"confirmation_code": "whatever",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Categories_PublicRead(t *testing.T) {
	s := newTestServer(t)

	s.categoryRepo.On("GetAll", mock.Anything).
		Return([]entity.Category{{ID: 1, Name: "Книги", Slug: "books"}}, nil)

	w := s.do(t, http.MethodGet, "/categories", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp entity.CategoryListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Count)
}

func TestRouter_Categories_AnonymousWriteForbidden(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/categories", "", gin.H{"name": "Книги", "slug": "books"})

	// Чтение открыто всем, поэтому анонимная запись - недостаток прав
	assert.Equal(t, http.StatusForbidden, w.Code)
	s.categoryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRouter_Categories_UserWriteForbidden(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, &entity.User{ID: 7, Username: "reader", Role: entity.RoleUser})

	w := s.do(t, http.MethodPost, "/categories", token, gin.H{"name": "Книги", "slug": "books"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_Categories_AdminCreate(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, &entity.User{ID: 1, Username: "admin", Role: entity.RoleAdmin})

	s.categoryRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Category")).Return(nil)

	w := s.do(t, http.MethodPost, "/categories", token, gin.H{"name": "Книги", "slug": "books"})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouter_Titles_AnonymousWriteForbidden(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/titles", "", gin.H{
		"name":     "Солярис",
		"year":     1961,
		"category": "books",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	s.titleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_Titles_BadYearFilter(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/titles?year=abc", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Reviews_AnonymousCreateUnauthorized(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/titles/42/reviews", "", gin.H{"text": "Отлично", "score": 9})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Reviews_Create(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, &entity.User{ID: 7, Username: "reader", Role: entity.RoleUser})

	s.titleRepo.On("GetByID", mock.Anything, int64(42)).
		Return(&entity.Title{ID: 42, Name: "Солярис"}, nil)
	s.reviewRepo.On("ExistsByTitleAndAuthor", mock.Anything, int64(42), int64(7)).Return(false, nil)
	s.reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Review")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Review).ID = 100
		}).
		Return(nil)
	s.eventPublisher.On("PublishMessage", mock.Anything, "42", mock.Anything).Return(nil)

	w := s.do(t, http.MethodPost, "/titles/42/reviews", token, gin.H{"text": "Отлично", "score": 9})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp entity.ReviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "reader", resp.Author)
	assert.Equal(t, 9, resp.Score)
}

func TestRouter_Reviews_CreateOnMissingTitle(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, &entity.User{ID: 7, Username: "reader", Role: entity.RoleUser})

	s.titleRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, repository.ErrNotFound)

	w := s.do(t, http.MethodPost, "/titles/99/reviews", token, gin.H{"text": "В пустоту", "score": 5})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Reviews_ScoreOutOfRange(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, &entity.User{ID: 7, Username: "reader", Role: entity.RoleUser})

	w := s.do(t, http.MethodPost, "/titles/42/reviews", token, gin.H{"text": "Отлично", "score": 11})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	s.reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRouter_Users_ListRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, &entity.User{ID: 7, Username: "reader", Role: entity.RoleUser})

	w := s.do(t, http.MethodGet, "/users", token, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_Users_ListAsAdmin(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, &entity.User{ID: 1, Username: "admin", Role: entity.RoleAdmin})

	s.userRepo.On("List", mock.Anything, "", 10, 0).
		Return([]entity.User{{ID: 1, Username: "admin"}}, int64(1), nil)

	w := s.do(t, http.MethodGet, "/users", token, nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Users_Me(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, &entity.User{ID: 7, Username: "reader", Role: entity.RoleUser})

	w := s.do(t, http.MethodGet, "/users/me", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp entity.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "reader", resp.Username)
}

func TestRouter_Users_UpdateMeIgnoresRole(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, &entity.User{ID: 7, Username: "reader", Email: "reader@example.com", Role: entity.RoleUser})

	s.userRepo.On("Update", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)

	w := s.do(t, http.MethodPatch, "/users/me", token, gin.H{
		"role": "admin",
		"bio":  "люблю книги",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp entity.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.RoleUser, resp.Role)
	assert.Equal(t, "люблю книги", resp.Bio)
}

func TestRouter_Users_DeleteMeNotAllowed(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, &entity.User{ID: 7, Username: "reader", Role: entity.RoleUser})

	w := s.do(t, http.MethodDelete, "/users/me", token, nil)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_InvalidToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/users/me", "garbage-token", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_ExpiredToken(t *testing.T) {
	s := newTestServer(t)
	expired := util.NewJWTManager("test-secret", -time.Hour)
	token, err := expired.GenerateAccessToken(&entity.User{ID: 7, Username: "reader", Role: entity.RoleUser})
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/users/me", token, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
