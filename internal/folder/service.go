package folder

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

const cacheResource = "folders"

// reportFilename is the download name used when the backend does not
// suggest one.
const reportFilename = "records_digitization_report.pdf"

type BackendAPI interface {
	List(ctx context.Context, path string, params backend.ListParams) (*backend.Page, error)
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error)
	PostMultipart(ctx context.Context, path string, payload *backend.MultipartPayload) (*backend.Envelope, error)
	PostBinary(ctx context.Context, path string, payload any) ([]byte, string, error)
	Delete(ctx context.Context, path string) (*backend.Envelope, error)
}

type ListResult struct {
	Folders []Folder
	Page    *backend.Page
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
		page, err := s.client.List(ctx, "/api/folders", params)
		if err != nil {
			s.logger.Error("failed to list folders", "error", err)
			return nil, err
		}

		var folders []Folder
		if err := page.DecodeInto(&folders); err != nil {
			return nil, internal.NewInternalError("failed to decode folders", err)
		}
		return &ListResult{Folders: folders, Page: page}, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*ListResult), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Folder, error) {
	var response struct {
		Data Folder `json:"data"`
	}
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/api/folder/%d", id), nil, &response); err != nil {
		s.logger.Error("failed to get folder", "id", id, "error", err)
		return nil, err
	}
	return &response.Data, nil
}

// Create posts the folder form as multipart; the endpoint takes multipart
// whether or not files are attached.
func (s *Service) Create(ctx context.Context, dto FormDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}

	envelope, err := s.client.PostMultipart(ctx, "/api/folder", dto.ToPayload(false))
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("folder created", "name", dto.FolderName, "attachments", len(dto.Attachments))
	return envelope.Message, nil
}

// Update posts multipart with a _method=PUT override, the way the API
// tunnels file-bearing updates.
func (s *Service) Update(ctx context.Context, id int64, dto FormDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}

	envelope, err := s.client.PostMultipart(ctx, fmt.Sprintf("/api/folder/%d", id), dto.ToPayload(true))
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("folder updated", "id", id)
	return envelope.Message, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (string, error) {
	envelope, err := s.client.Delete(ctx, fmt.Sprintf("/api/folder/%d", id))
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("folder deleted", "id", id)
	return envelope.Message, nil
}

// Approve transitions a pending folder to approved. The caller is expected
// to have checked CanModerate; the backend enforces the rule regardless.
func (s *Service) Approve(ctx context.Context, id int64) (string, error) {
	envelope, err := s.client.PostJSON(ctx, fmt.Sprintf("/api/folder/%d/approve", id), nil)
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("folder approved", "id", id)
	return envelope.Message, nil
}

func (s *Service) Reject(ctx context.Context, id int64) (string, error) {
	envelope, err := s.client.PostJSON(ctx, fmt.Sprintf("/api/folder/%d/reject", id), nil)
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cacheResource)
	s.logger.Info("folder rejected", "id", id)
	return envelope.Message, nil
}

// DownloadURL resolves the archive reference for a folder's files.
func (s *Service) DownloadURL(ctx context.Context, id int64) (string, error) {
	var response struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/api/folder/%d/download", id), nil, &response); err != nil {
		s.logger.Error("failed to resolve folder archive", "id", id, "error", err)
		return "", err
	}
	if response.Data.URL == "" {
		return "", internal.ErrFolderNotFound
	}
	return response.Data.URL, nil
}

// GenerateReport posts the selection and returns the PDF bytes plus the
// filename to suggest to the browser.
func (s *Service) GenerateReport(ctx context.Context, dto ReportDTO) ([]byte, string, error) {
	if err := dto.Validate(); err != nil {
		return nil, "", err
	}

	content, filename, err := s.client.PostBinary(ctx, "/api/folder/generate-report", dto)
	if err != nil {
		s.logger.Error("report generation failed", "folders", len(dto.FolderIDs), "error", err)
		return nil, "", err
	}
	if filename == "" {
		filename = reportFilename
	}

	s.logger.Info("report generated", "folders", len(dto.FolderIDs), "bytes", len(content))
	return content, filename, nil
}
