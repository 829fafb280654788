package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kritika/internal/app/kritika/entity"
	"kritika/pkg/metrics"
)

const (
	categoriesCacheKey = "categories:all"
	genresCacheKey     = "genres:all"

	serviceName = "kritika"
)

// RedisClient кеширует справочники категорий и жанров.
// Кеш хранит полный список; пагинация и поиск режут его уже в сервисе.
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// NewRedisClientFromExisting оборачивает уже созданный клиент (для тестов)
func NewRedisClientFromExisting(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

func (r *RedisClient) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	return r.setList(ctx, categoriesCacheKey, categories, ttl)
}

func (r *RedisClient) GetCategories(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	ok, err := r.getList(ctx, categoriesCacheKey, &categories)
	if err != nil || !ok {
		return nil, err
	}
	return categories, nil
}

func (r *RedisClient) DeleteCategories(ctx context.Context) error {
	return r.deleteKey(ctx, categoriesCacheKey)
}

func (r *RedisClient) SetGenres(ctx context.Context, genres []entity.Genre, ttl time.Duration) error {
	return r.setList(ctx, genresCacheKey, genres, ttl)
}

func (r *RedisClient) GetGenres(ctx context.Context) ([]entity.Genre, error) {
	var genres []entity.Genre
	ok, err := r.getList(ctx, genresCacheKey, &genres)
	if err != nil || !ok {
		return nil, err
	}
	return genres, nil
}

func (r *RedisClient) DeleteGenres(ctx context.Context) error {
	return r.deleteKey(ctx, genresCacheKey)
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) setList(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}

	return nil
}

// getList возвращает (false, nil) при промахе кеша
func (r *RedisClient) getList(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss(serviceName, key)
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	metrics.RecordCacheHit(serviceName, key)
	return true, nil
}

func (r *RedisClient) deleteKey(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from cache: %w", key, err)
	}
	return nil
}
