package user

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

const cacheResource = "users"

type BackendAPI interface {
	List(ctx context.Context, path string, params backend.ListParams) (*backend.Page, error)
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error)
	PutJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error)
	PostMultipart(ctx context.Context, path string, payload *backend.MultipartPayload) (*backend.Envelope, error)
	Delete(ctx context.Context, path string) (*backend.Envelope, error)
}

type ListResult struct {
	Users []User
	Page  *backend.Page
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
		page, err := s.client.List(ctx, "/api/users", params)
		if err != nil {
			s.logger.Error("failed to list users", "error", err)
			return nil, err
		}

		var users []User
		if err := page.DecodeInto(&users); err != nil {
			return nil, internal.NewInternalError("failed to decode users", err)
		}
		return &ListResult{Users: users, Page: page}, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*ListResult), nil
}

// All returns users for select options (report reviewers); failures only
// log and yield an empty list.
func (s *Service) All(ctx context.Context) []User {
	result, err := s.List(ctx, backend.ListParams{Page: 1, PageSize: 200, SortColumn: "first_name"})
	if err != nil {
		s.logger.Error("failed to load user options", "error", err)
		return nil
	}
	return result.Users
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	var response struct {
		Data User `json:"data"`
	}
	if err := s.client.GetJSON(ctx, "/api/user/"+url.PathEscape(id), nil, &response); err != nil {
		s.logger.Error("failed to get user", "id", id, "error", err)
		return nil, err
	}
	return &response.Data, nil
}

// Create submits JSON, or multipart when an image is attached.
func (s *Service) Create(ctx context.Context, dto FormDTO) (string, error) {
	if err := dto.ValidateCreate(); err != nil {
		return "", err
	}

	var envelope *backend.Envelope
	var err error
	if dto.HasAttachments() {
		envelope, err = s.client.PostMultipart(ctx, "/api/user", dto.ToPayload(false))
	} else {
		envelope, err = s.client.PostJSON(ctx, "/api/user", dto.ToJSON())
	}
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("user created", "email", dto.Email, "role", dto.Role)
	return envelope.Message, nil
}

func (s *Service) Update(ctx context.Context, id string, dto FormDTO) (string, error) {
	if err := dto.ValidateUpdate(); err != nil {
		return "", err
	}

	var envelope *backend.Envelope
	var err error
	if dto.HasAttachments() {
		envelope, err = s.client.PostMultipart(ctx, "/api/user/"+url.PathEscape(id), dto.ToPayload(true))
	} else {
		envelope, err = s.client.PutJSON(ctx, "/api/user/"+url.PathEscape(id), dto.ToJSON())
	}
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("user updated", "id", id)
	return envelope.Message, nil
}

// UpdateProfile updates the signed-in operator's own record and drops the
// cached /api/me profile so the header reflects the change immediately.
func (s *Service) UpdateProfile(ctx context.Context, id string, dto ProfileDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}

	var envelope *backend.Envelope
	var err error
	if dto.HasAttachments() {
		envelope, err = s.client.PostMultipart(ctx, "/api/user/"+url.PathEscape(id), dto.ToPayload())
	} else {
		envelope, err = s.client.PutJSON(ctx, "/api/user/"+url.PathEscape(id), dto.ToJSON())
	}
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.cache.Invalidate("me")
	s.logger.Info("profile updated", "id", id)
	return envelope.Message, nil
}

func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	envelope, err := s.client.Delete(ctx, "/api/user/"+url.PathEscape(id))
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("user deleted", "id", id)
	return envelope.Message, nil
}

// UpdateStatus toggles a user between active and inactive.
func (s *Service) UpdateStatus(ctx context.Context, id string, status int) (string, error) {
	if status != StatusActive && status != StatusInactive {
		return "", internal.NewValidationError("invalid status value", internal.ErrCodeValidationFailed)
	}

	envelope, err := s.client.PutJSON(ctx, fmt.Sprintf("/api/user/%s/status", url.PathEscape(id)), map[string]int{
		"status": status,
	})
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("user status updated", "id", id, "status", status)
	return envelope.Message, nil
}

func (s *Service) ResetPassword(ctx context.Context, id string, dto ResetPasswordDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}

	envelope, err := s.client.PostJSON(ctx, fmt.Sprintf("/api/user/%s/reset-password", url.PathEscape(id)), map[string]string{
		"new_password": dto.NewPassword,
	})
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("user password reset", "id", id)
	return envelope.Message, nil
}
