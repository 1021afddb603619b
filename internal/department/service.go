package department

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/docuflow/records-console/internal"
	"github.com/docuflow/records-console/internal/backend"
	"github.com/docuflow/records-console/internal/querycache"
)

const cacheResource = "departments"

// BackendAPI is the slice of the backend client this service uses.
type BackendAPI interface {
	List(ctx context.Context, path string, params backend.ListParams) (*backend.Page, error)
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error)
	PutJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error)
	Delete(ctx context.Context, path string) (*backend.Envelope, error)
}

type ListResult struct {
	Departments []Department
	Page        *backend.Page
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

// List fetches one table page through the query cache.
func (s *Service) List(ctx context.Context, params backend.ListParams) (*ListResult, error) {
	value, err := s.cache.Get(ctx, cacheResource, params.CacheKey(), s.ttl, func(ctx context.Context) (any, error) {
		page, err := s.client.List(ctx, "/api/departments", params)
		if err != nil {
			s.logger.Error("failed to list departments", "error", err)
			return nil, err
		}

		var departments []Department
		if err := page.DecodeInto(&departments); err != nil {
			return nil, internal.NewInternalError("failed to decode departments", err)
		}
		return &ListResult{Departments: departments, Page: page}, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*ListResult), nil
}

// All returns every department for select options. Errors are swallowed
// after logging so a failed lookup leaves the select empty instead of
// breaking the page.
func (s *Service) All(ctx context.Context) []Department {
	result, err := s.List(ctx, backend.ListParams{Page: 1, PageSize: 200, SortColumn: "name"})
	if err != nil {
		s.logger.Error("failed to load department options", "error", err)
		return nil
	}
	return result.Departments
}

func (s *Service) Get(ctx context.Context, id int64) (*Department, error) {
	var response struct {
		Data Department `json:"data"`
	}
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/api/department/%d", id), nil, &response); err != nil {
		s.logger.Error("failed to get department", "id", id, "error", err)
		return nil, err
	}
	return &response.Data, nil
}

func (s *Service) Create(ctx context.Context, dto FormDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}

	envelope, err := s.client.PostJSON(ctx, "/api/department", dto)
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("department created", "name", dto.Name)
	return envelope.Message, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto FormDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}

	envelope, err := s.client.PutJSON(ctx, fmt.Sprintf("/api/department/%d", id), dto)
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("department updated", "id", id)
	return envelope.Message, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (string, error) {
	envelope, err := s.client.Delete(ctx, fmt.Sprintf("/api/department/%d", id))
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("department deleted", "id", id)
	return envelope.Message, nil
}
