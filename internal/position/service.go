package position

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docuflow/records-console/internal/backend"
	"github.com/docuflow/records-console/internal/querycache"
)

// Position mutations refresh the users table, where positions are shown.
const invalidatedResource = "users"

type BackendAPI interface {
	PostJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error)
	PutJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error)
	Delete(ctx context.Context, path string) (*backend.Envelope, error)
}

type Service struct {
	client BackendAPI
	cache  *querycache.Cache
	logger *slog.Logger
}

func NewService(client BackendAPI, cache *querycache.Cache, logger *slog.Logger) *Service {
	return &Service{client: client, cache: cache, logger: logger}
}

func (s *Service) Create(ctx context.Context, dto FormDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}

	envelope, err := s.client.PostJSON(ctx, "/api/position", dto.payload())
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(invalidatedResource)
	s.cache.Invalidate("me")
	s.logger.Info("position created", "user_id", dto.UserID, "section_head", dto.SectionHead)
	return envelope.Message, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto FormDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}

	envelope, err := s.client.PutJSON(ctx, fmt.Sprintf("/api/position/%d", id), dto.payload())
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(invalidatedResource)
	s.cache.Invalidate("me")
	s.logger.Info("position updated", "id", id)
	return envelope.Message, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (string, error) {
	envelope, err := s.client.Delete(ctx, fmt.Sprintf("/api/position/%d", id))
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(invalidatedResource)
	s.cache.Invalidate("me")
	s.logger.Info("position deleted", "id", id)
	return envelope.Message, nil
}
