package folder_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docuflow/records-console/internal/backend"
	"github.com/docuflow/records-console/internal/folder"
	"github.com/docuflow/records-console/internal/querycache"
)

// mockFolderBackend implements folder.BackendAPI and records every call.
type mockFolderBackend struct {
	listCalls  int
	paths      []string
	payload    any
	getJSON    func(path string, out any) error
	binary     []byte
	binaryName string
	err        error
}

func (m *mockFolderBackend) List(ctx context.Context, path string, params backend.ListParams) (*backend.Page, error) {
	m.listCalls++
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	rows, _ := json.Marshal([]folder.Folder{{ID: 1, FolderName: "Payroll 2019", Status: folder.StatusPending}})
	return &backend.Page{Data: rows, CurrentPage: params.Page, LastPage: 1, Total: 1}, nil
}

func (m *mockFolderBackend) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	m.paths = append(m.paths, path)
	if m.err != nil {
		return m.err
	}
	if m.getJSON != nil {
		return m.getJSON(path, out)
	}
	return nil
}

func (m *mockFolderBackend) PostJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error) {
	m.paths = append(m.paths, path)
	m.payload = payload
	if m.err != nil {
		return nil, m.err
	}
	return &backend.Envelope{Status: "success", Message: "Done"}, nil
}

func (m *mockFolderBackend) PostMultipart(ctx context.Context, path string, payload *backend.MultipartPayload) (*backend.Envelope, error) {
	m.paths = append(m.paths, path)
	m.payload = payload
	if m.err != nil {
		return nil, m.err
	}
	return &backend.Envelope{Status: "success", Message: "Saved"}, nil
}

func (m *mockFolderBackend) PostBinary(ctx context.Context, path string, payload any) ([]byte, string, error) {
	m.paths = append(m.paths, path)
	m.payload = payload
	if m.err != nil {
		return nil, "", m.err
	}
	return m.binary, m.binaryName, nil
}

func (m *mockFolderBackend) Delete(ctx context.Context, path string) (*backend.Envelope, error) {
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	return &backend.Envelope{Status: "success", Message: "Deleted"}, nil
}

var _ = Describe("Folder Service", func() {
	var (
		mock    *mockFolderBackend
		cache   *querycache.Cache
		service *folder.Service
	)

	validForm := folder.FormDTO{
		FolderName:    "Payroll 2019",
		StartDate:     "2019-01-01",
		EndDate:       "2019-12-31",
		DepartmentIDs: []int64{3},
	}

	BeforeEach(func() {
		mock = &mockFolderBackend{}
		cache = querycache.New()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = folder.NewService(mock, cache, time.Minute, logger)
	})

	Describe("List", func() {
		It("serves repeated renders from the cache", func() {
			params := backend.ListParams{Page: 1, PageSize: 10}

			first, err := service.List(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.List(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())

			Expect(mock.listCalls).To(Equal(1))
			Expect(first.Folders).To(HaveLen(1))
			Expect(mock.paths[0]).To(Equal("/api/folders"))
		})

		It("misses the cache when any parameter changes", func() {
			_, err := service.List(context.Background(), backend.ListParams{Page: 1})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.List(context.Background(), backend.ListParams{Page: 1, Filter: "payroll"})
			Expect(err).NotTo(HaveOccurred())

			Expect(mock.listCalls).To(Equal(2))
		})
	})

	Describe("mutations", func() {
		It("creates through the multipart endpoint and invalidates the list", func() {
			_, err := service.List(context.Background(), backend.ListParams{Page: 1})
			Expect(err).NotTo(HaveOccurred())

			message, err := service.Create(context.Background(), validForm)
			Expect(err).NotTo(HaveOccurred())
			Expect(message).To(Equal("Saved"))
			Expect(mock.paths).To(ContainElement("/api/folder"))

			_, err = service.List(context.Background(), backend.ListParams{Page: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(mock.listCalls).To(Equal(2))
		})

		It("refuses to create an invalid form without touching the backend", func() {
			_, err := service.Create(context.Background(), folder.FormDTO{})
			Expect(err).To(HaveOccurred())
			Expect(mock.paths).To(BeEmpty())
		})

		It("updates through POST with the folder id in the path", func() {
			_, err := service.Update(context.Background(), 5, validForm)
			Expect(err).NotTo(HaveOccurred())
			Expect(mock.paths).To(ContainElement("/api/folder/5"))
		})

		It("approves and rejects through their action endpoints", func() {
			_, err := service.Approve(context.Background(), 5)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Reject(context.Background(), 6)
			Expect(err).NotTo(HaveOccurred())

			Expect(mock.paths).To(ContainElement("/api/folder/5/approve"))
			Expect(mock.paths).To(ContainElement("/api/folder/6/reject"))
		})

		It("does not invalidate the list when the backend rejects the mutation", func() {
			_, err := service.List(context.Background(), backend.ListParams{Page: 1})
			Expect(err).NotTo(HaveOccurred())

			mock.err = errors.New("backend rejected")
			_, err = service.Delete(context.Background(), 5)
			Expect(err).To(HaveOccurred())

			mock.err = nil
			_, err = service.List(context.Background(), backend.ListParams{Page: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(mock.listCalls).To(Equal(1))
		})
	})

	Describe("DownloadURL", func() {
		It("returns the archive reference the backend resolves", func() {
			mock.getJSON = func(path string, out any) error {
				return json.Unmarshal([]byte(`{"data":{"url":"https://archive.example.com/folder-5.zip"}}`), out)
			}

			archiveURL, err := service.DownloadURL(context.Background(), 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(archiveURL).To(Equal("https://archive.example.com/folder-5.zip"))
			Expect(mock.paths).To(ContainElement("/api/folder/5/download"))
		})

		It("fails when the backend has no archive for the folder", func() {
			mock.getJSON = func(path string, out any) error {
				return json.Unmarshal([]byte(`{"data":{}}`), out)
			}

			_, err := service.DownloadURL(context.Background(), 5)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GenerateReport", func() {
		It("falls back to the default filename when the backend sends none", func() {
			mock.binary = []byte("%PDF-1.4")

			content, filename, err := service.GenerateReport(context.Background(), folder.ReportDTO{
				EffectiveDate: "2025-06-01",
				FolderIDs:     []int64{1},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(content).To(Equal([]byte("%PDF-1.4")))
			Expect(filename).To(Equal("records_digitization_report.pdf"))
			Expect(mock.paths).To(ContainElement("/api/folder/generate-report"))
		})

		It("keeps the filename the backend suggests", func() {
			mock.binary = []byte("%PDF-1.4")
			mock.binaryName = "report-2025-06.pdf"

			_, filename, err := service.GenerateReport(context.Background(), folder.ReportDTO{
				EffectiveDate: "2025-06-01",
				FolderIDs:     []int64{1},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(filename).To(Equal("report-2025-06.pdf"))
		})

		It("rejects an empty selection before calling the backend", func() {
			_, _, err := service.GenerateReport(context.Background(), folder.ReportDTO{EffectiveDate: "2025-06-01"})
			Expect(err).To(HaveOccurred())
			Expect(mock.paths).To(BeEmpty())
		})
	})
})
