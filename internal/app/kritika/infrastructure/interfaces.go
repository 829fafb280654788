package infrastructure

import "context"

// MessagePublisher - публикация событий в брокер сообщений
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// Mailer отправляет письма пользователям
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
