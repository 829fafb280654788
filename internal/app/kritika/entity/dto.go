package entity

import "time"

// SignupRequest - запрос кода подтверждения
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

// SignupResponse - эхо принятых данных; код в ответ не попадает
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest - обмен кода подтверждения на access токен
type TokenRequest struct {
	Username         string `json:"username" validate:"required,max=100"`
	ConfirmationCode string `json:"confirmation_code" validate:"required,max=64"`
}

// TokenResponse - выданный access токен
type TokenResponse struct {
	Token string `json:"token"`
}

// CreateCategoryRequest - создание категории (только admin)
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50"`
}

// CreateGenreRequest - создание жанра (только admin)
type CreateGenreRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50"`
}

// CreateTitleRequest - создание произведения.
// Категория и жанры передаются слагами и должны существовать.
type CreateTitleRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        int      `json:"year" validate:"required"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"`
	Category    string   `json:"category" validate:"required,max=50"`
}

// UpdateTitleRequest - частичное обновление произведения
type UpdateTitleRequest struct {
	Name        *string   `json:"name" validate:"omitempty,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre"`
	Category    *string   `json:"category" validate:"omitempty,max=50"`
}

// CreateReviewRequest - создание отзыва; автор берётся из токена
type CreateReviewRequest struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"required,min=1,max=10"`
}

// UpdateReviewRequest - частичное обновление отзыва
type UpdateReviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score" validate:"omitempty,min=1,max=10"`
}

// CreateCommentRequest - создание комментария; автор берётся из токена
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// UpdateCommentRequest - частичное обновление комментария
type UpdateCommentRequest struct {
	Text *string `json:"text"`
}

// CreateUserRequest - создание пользователя администратором
type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Role      Role   `json:"role" validate:"omitempty,oneof=user moderator admin"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Bio       string `json:"bio"`
}

// UpdateUserRequest - частичное обновление пользователя.
// На /users/me поля username, email и role молча игнорируются.
type UpdateUserRequest struct {
	Username  *string `json:"username" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	Role      *Role   `json:"role" validate:"omitempty,oneof=user moderator admin"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
}

// ReviewResponse - представление отзыва с автором-username
type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

// CommentResponse - представление комментария с автором-username
type CommentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

// CategoryListResponse - страница списка категорий
type CategoryListResponse struct {
	Count   int64      `json:"count"`
	Results []Category `json:"results"`
}

// GenreListResponse - страница списка жанров
type GenreListResponse struct {
	Count   int64   `json:"count"`
	Results []Genre `json:"results"`
}

// TitleListResponse - страница списка произведений
type TitleListResponse struct {
	Count   int64   `json:"count"`
	Results []Title `json:"results"`
}

// ReviewListResponse - страница списка отзывов
type ReviewListResponse struct {
	Count   int64            `json:"count"`
	Results []ReviewResponse `json:"results"`
}

// CommentListResponse - страница списка комментариев
type CommentListResponse struct {
	Count   int64             `json:"count"`
	Results []CommentResponse `json:"results"`
}

// UserListResponse - страница списка пользователей
type UserListResponse struct {
	Count   int64  `json:"count"`
	Results []User `json:"results"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string `json:"message"`
}
