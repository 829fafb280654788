package entity

import (
	"time"
)

// User представляет пользователя в системе
type User struct {
	ID                   int64     `json:"-" gorm:"primaryKey"`
	Username             string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Email                string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Role                 Role      `json:"role" gorm:"size:20;not null;default:user"`
	FirstName            string    `json:"first_name" gorm:"size:150"`
	LastName             string    `json:"last_name" gorm:"size:150"`
	Bio                  string    `json:"bio"`
	IsSuperuser          bool      `json:"-" gorm:"not null;default:false"`
	IsStaff              bool      `json:"-" gorm:"not null;default:false"`
	ConfirmationCodeHash string    `json:"-" gorm:"size:100"` // bcrypt, не возвращаем в JSON
	CreatedAt            time.Time `json:"-"`
}

// IsAdmin объединяет роль admin и служебные флаги в один набор прав.
// Все проверки административного доступа идут только через этот метод.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser || u.IsStaff
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// Category представляет категорию произведений (книги, фильмы, музыка)
type Category struct {
	ID   int64  `json:"-" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"size:50;uniqueIndex;not null"`
}

// Genre представляет жанр произведения
type Genre struct {
	ID   int64  `json:"-" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"size:50;uniqueIndex;not null"`
}

// Title представляет произведение, на которое пишут отзывы
type Title struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:256;not null;index"`
	Year        int       `json:"year" gorm:"not null;index"`
	Description *string   `json:"description"`
	CategoryID  *int64    `json:"-" gorm:"index"`
	Category    *Category `json:"category" gorm:"constraint:OnDelete:SET NULL"`
	// Жанры связываются через genre_titles вручную, чтобы сохранять
	// порядок, в котором жанры были переданы при создании
	Genres []Genre `json:"genre" gorm:"-"`
	// rating считается агрегатом по отзывам на чтении и никогда не хранится
	Rating *float64 `json:"rating" gorm:"->;-:migration"`
}

// GenreTitle - связующая таблица произведение-жанр
type GenreTitle struct {
	ID      int64 `gorm:"primaryKey"`
	GenreID int64 `gorm:"not null;uniqueIndex:idx_genre_titles_genre_title"`
	TitleID int64 `gorm:"not null;uniqueIndex:idx_genre_titles_genre_title"`
	Genre   Genre `gorm:"foreignKey:GenreID;constraint:OnDelete:CASCADE"`
	Title   Title `gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE"`
}

// Review представляет отзыв на произведение.
// Пара (title_id, author_id) уникальна: один отзыв на произведение
// от одного автора, финальный арбитр - constraint в БД.
type Review struct {
	ID       int64     `json:"id" gorm:"primaryKey"`
	Text     string    `json:"text" gorm:"not null"`
	Score    int       `json:"score" gorm:"not null"`
	AuthorID int64     `json:"-" gorm:"not null;uniqueIndex:idx_reviews_title_author"`
	Author   *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	TitleID  int64     `json:"-" gorm:"not null;uniqueIndex:idx_reviews_title_author"`
	Title    *Title    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	PubDate  time.Time `json:"pub_date" gorm:"column:pub_date;autoCreateTime"`
}

// Comment представляет комментарий к отзыву
type Comment struct {
	ID       int64     `json:"id" gorm:"primaryKey"`
	Text     string    `json:"text" gorm:"not null"`
	AuthorID int64     `json:"-" gorm:"not null;index"`
	Author   *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ReviewID int64     `json:"-" gorm:"not null;index"`
	Review   *Review   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	PubDate  time.Time `json:"pub_date" gorm:"column:pub_date;autoCreateTime"`
}

// ReviewEvent - событие о новом отзыве для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED
	ReviewID  int64     `json:"review_id"`
	TitleID   int64     `json:"title_id"`
	AuthorID  int64     `json:"author_id"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// MailEvent - задание на отправку письма с кодом подтверждения.
// Кладётся в очередь после того, как код сохранён в БД; HTTP-ответ
// не ждёт доставки письма.
type MailEvent struct {
	EventType string    `json:"event_type"` // CONFIRMATION_CODE
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}
