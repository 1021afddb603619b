package department_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docuflow/records-console/internal/backend"
	"github.com/docuflow/records-console/internal/department"
	"github.com/docuflow/records-console/internal/querycache"
)

func TestDepartmentService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Service Suite")
}

// mockBackend implements department.BackendAPI
type mockBackend struct {
	listCalls int
	paths     []string
	methods   []string
	err       error
}

func (m *mockBackend) List(ctx context.Context, path string, params backend.ListParams) (*backend.Page, error) {
	m.listCalls++
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	rows, _ := json.Marshal([]department.Department{{ID: 3, Name: "Finance"}})
	return &backend.Page{Data: rows, CurrentPage: params.Page, LastPage: 1, Total: 1}, nil
}

func (m *mockBackend) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	m.paths = append(m.paths, path)
	if m.err != nil {
		return m.err
	}
	return json.Unmarshal([]byte(`{"data":{"id":3,"name":"Finance","description":"Budgets"}}`), out)
}

func (m *mockBackend) PostJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error) {
	m.paths = append(m.paths, path)
	m.methods = append(m.methods, "POST")
	if m.err != nil {
		return nil, m.err
	}
	return &backend.Envelope{Status: "success", Message: "Department created"}, nil
}

func (m *mockBackend) PutJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error) {
	m.paths = append(m.paths, path)
	m.methods = append(m.methods, "PUT")
	if m.err != nil {
		return nil, m.err
	}
	return &backend.Envelope{Status: "success", Message: "Department updated"}, nil
}

func (m *mockBackend) Delete(ctx context.Context, path string) (*backend.Envelope, error) {
	m.paths = append(m.paths, path)
	m.methods = append(m.methods, "DELETE")
	if m.err != nil {
		return nil, m.err
	}
	return &backend.Envelope{Status: "success", Message: "Department deleted"}, nil
}

var _ = Describe("Department Service", func() {
	var (
		mock    *mockBackend
		cache   *querycache.Cache
		service *department.Service
	)

	BeforeEach(func() {
		mock = &mockBackend{}
		cache = querycache.New()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = department.NewService(mock, cache, time.Minute, logger)
	})

	Describe("List", func() {
		It("caches a page until something invalidates it", func() {
			params := backend.ListParams{Page: 1, PageSize: 10}

			result, err := service.List(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Departments).To(HaveLen(1))

			_, err = service.List(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())
			Expect(mock.listCalls).To(Equal(1))
		})
	})

	Describe("All", func() {
		It("returns an empty list when the backend fails", func() {
			mock.err = errors.New("backend down")
			Expect(service.All(context.Background())).To(BeEmpty())
		})

		It("returns the options otherwise", func() {
			options := service.All(context.Background())
			Expect(options).To(HaveLen(1))
			Expect(options[0].Name).To(Equal("Finance"))
		})
	})

	Describe("Get", func() {
		It("unwraps the data envelope", func() {
			dept, err := service.Get(context.Background(), 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(dept.Name).To(Equal("Finance"))
			Expect(mock.paths).To(ContainElement("/api/department/3"))
		})
	})

	Describe("mutations", func() {
		It("creates with POST and invalidates the cached list", func() {
			_, err := service.List(context.Background(), backend.ListParams{Page: 1})
			Expect(err).NotTo(HaveOccurred())

			message, err := service.Create(context.Background(), department.FormDTO{Name: "Records"})
			Expect(err).NotTo(HaveOccurred())
			Expect(message).To(Equal("Department created"))
			Expect(mock.methods).To(Equal([]string{"POST"}))

			_, err = service.List(context.Background(), backend.ListParams{Page: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(mock.listCalls).To(Equal(2))
		})

		It("updates with PUT against the id path", func() {
			_, err := service.Update(context.Background(), 3, department.FormDTO{Name: "Records"})
			Expect(err).NotTo(HaveOccurred())
			Expect(mock.methods).To(Equal([]string{"PUT"}))
			Expect(mock.paths).To(ContainElement("/api/department/3"))
		})

		It("blocks an empty name before the backend sees it", func() {
			_, err := service.Create(context.Background(), department.FormDTO{})
			Expect(err).To(HaveOccurred())
			Expect(mock.methods).To(BeEmpty())
		})

		It("deletes and returns the server message", func() {
			message, err := service.Delete(context.Background(), 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(message).To(Equal("Department deleted"))
		})
	})
})
