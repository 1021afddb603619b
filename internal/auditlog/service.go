package auditlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/docuflow/records-console/internal"
	"github.com/docuflow/records-console/internal/backend"
	"github.com/docuflow/records-console/internal/querycache"
)

const cacheResource = "audit-logs"

type BackendAPI interface {
	List(ctx context.Context, path string, params backend.ListParams) (*backend.Page, error)
}

type ListResult struct {
	Logs []AuditLog
	Page *backend.Page
}

type Service struct {
	client BackendAPI
	cache  *querycache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewService(client BackendAPI, cache *querycache.Cache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{client: client, cache: cache, ttl: ttl, logger: logger}
}

func (s *Service) List(ctx context.Context, params backend.ListParams) (*ListResult, error) {
	value, err := s.cache.Get(ctx, cacheResource, params.CacheKey(), s.ttl, func(ctx context.Context) (any, error) {
		page, err := s.client.List(ctx, "/api/activitylogs/all", params)
		if err != nil {
			s.logger.Error("failed to list audit logs", "error", err)
			return nil, err
		}

		var logs []AuditLog
		if err := page.DecodeInto(&logs); err != nil {
			return nil, internal.NewInternalError("failed to decode audit logs", err)
		}
		return &ListResult{Logs: logs, Page: page}, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*ListResult), nil
}
