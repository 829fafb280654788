package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/infrastructure"
	"kritika/pkg/logger"
	"kritika/pkg/metrics"
)

const serviceName = "kritika"

// Worker читает задания на письма из Kafka и отправляет их по SMTP.
// Доставка at-least-once: offset коммитится только после успешной
// отправки, поэтому упавшее письмо уйдет повторно.
type Worker struct {
	reader   *kafka.Reader
	mailer   infrastructure.Mailer
	topic    string
	groupID  string
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewWorker(brokers []string, topic, groupID string, mailer infrastructure.Mailer) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       1e6,
		StartOffset:    kafka.FirstOffset,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &Worker{
		reader:   reader,
		mailer:   mailer,
		topic:    topic,
		groupID:  groupID,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start запускает worker в отдельной горутине
func (w *Worker) Start(ctx context.Context) {
	logger.Info().Str("topic", w.topic).Msg("starting mail worker")
	go w.consume(ctx)
}

// Stop останавливает worker и дожидается завершения цикла
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	if err := w.reader.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close mail worker reader")
	}
	logger.Info().Msg("mail worker stopped")
}

func (w *Worker) consume(ctx context.Context) {
	defer close(w.doneChan)

	for {
		select {
		case <-w.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := w.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if readCtx.Err() != nil {
					continue
				}
				metrics.RecordKafkaError(serviceName, w.topic, "consume")
				logger.Error().Err(err).Msg("failed to fetch mail event")
				time.Sleep(time.Second)
				continue
			}

			if err := w.processMessage(ctx, message); err != nil {
				metrics.MailDispatched.WithLabelValues("failed").Inc()
				logger.Error().
					Err(err).
					Int64("offset", message.Offset).
					Msg("failed to process mail event, will retry")
				// offset не коммитим: сообщение будет перечитано
				continue
			}

			metrics.RecordKafkaMessageConsumed(serviceName, w.topic, w.groupID)
			metrics.MailDispatched.WithLabelValues("success").Inc()
			if err := w.reader.CommitMessages(ctx, message); err != nil {
				logger.Error().Err(err).Msg("failed to commit mail event offset")
			}
		}
	}
}

func (w *Worker) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.MailEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal mail event: %w", err)
	}

	subject := "Код подтверждения"
	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВаш код подтверждения: %s\n\nОбменяйте его на токен через POST /auth/token.",
		event.Username, event.Code,
	)
	if err := w.mailer.Send(ctx, event.Email, subject, body); err != nil {
		return err
	}

	logger.Info().
		Str("username", event.Username).
		Int64("offset", message.Offset).
		Msg("confirmation mail sent")
	return nil
}
