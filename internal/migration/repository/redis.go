package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

// ErrProjectExists is returned by Create when the id is already stored.
var ErrProjectExists = errors.New("project already exists")

const (
	projectKeyPrefix = "codearch:project:" // codearch:project:{id} -> project JSON
	projectIndexKey  = "codearch:projects" // sorted set of ids scored by creation time (ms)
)

// RedisRepository stores each project as one JSON value plus a creation-time index.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) Create(ctx context.Context, p *domain.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	var created *redis.BoolCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, projectKey(p.ID), data, 0)
		// NX keeps the original creation score when the id already exists.
		pipe.ZAddNX(ctx, projectIndexKey, redis.Z{Score: float64(p.CreatedAt.UnixMilli()), Member: p.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	if !created.Val() {
		return fmt.Errorf("%w: %s", ErrProjectExists, p.ID)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	data, err := r.client.Get(ctx, projectKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return decodeProject(data)
}

// Save overwrites the stored value only if the project already exists.
func (r *RedisRepository) Save(ctx context.Context, p *domain.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	ok, err := r.client.SetXX(ctx, projectKey(p.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	if !ok {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *RedisRepository) List(ctx context.Context, limit int) ([]*domain.Project, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := r.client.ZRevRange(ctx, projectIndexKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list project ids: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Project{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = projectKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	out := make([]*domain.Project, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// index entry without a value
			continue
		}
		p, err := decodeProject([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func projectKey(id string) string {
	return projectKeyPrefix + id
}
