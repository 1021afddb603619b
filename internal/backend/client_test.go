package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docuflow/records-console/internal"
	"github.com/docuflow/records-console/internal/backend"
)

func TestBackendClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Backend Client Suite")
}

var _ = Describe("ListParams", func() {
	It("omits empty filter and sort column but always sends sort_desc", func() {
		values := backend.ListParams{Page: 2, PageSize: 10}.Values()

		Expect(values.Get("page")).To(Equal("2"))
		Expect(values.Get("page_size")).To(Equal("10"))
		Expect(values.Has("filter")).To(BeFalse())
		Expect(values.Has("sort_column")).To(BeFalse())
		Expect(values.Get("sort_desc")).To(Equal("false"))
	})

	It("sends filter and sort when set", func() {
		values := backend.ListParams{Page: 1, PageSize: 25, Filter: "finance", SortColumn: "name", SortDesc: true}.Values()

		Expect(values.Get("filter")).To(Equal("finance"))
		Expect(values.Get("sort_column")).To(Equal("name"))
		Expect(values.Get("sort_desc")).To(Equal("true"))
	})

	It("defaults the page to 1", func() {
		values := backend.ListParams{}.Values()
		Expect(values.Get("page")).To(Equal("1"))
	})

	It("produces distinct cache keys for distinct params", func() {
		a := backend.ListParams{Page: 1, Filter: "a"}.CacheKey()
		b := backend.ListParams{Page: 1, Filter: "b"}.CacheKey()
		Expect(a).NotTo(Equal(b))
	})
})

var _ = Describe("Client", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	newClient := func(server *httptest.Server) *backend.Client {
		return backend.NewClient(backend.Config{BaseURL: server.URL}, logger)
	}

	Describe("List", func() {
		It("forwards the table params and decodes the paginator", func() {
			var gotQuery map[string][]string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query()
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"status":"success","data":{"data":[{"id":1,"name":"Finance"}],"current_page":2,"last_page":5,"total":42}}`))
			}))
			defer server.Close()

			page, err := newClient(server).List(context.Background(), "/api/departments", backend.ListParams{
				Page: 2, PageSize: 10, Filter: "fin",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(gotQuery["page"]).To(Equal([]string{"2"}))
			Expect(gotQuery["filter"]).To(Equal([]string{"fin"}))
			Expect(page.CurrentPage).To(Equal(2))
			Expect(page.LastPage).To(Equal(5))
			Expect(page.Total).To(Equal(42))

			var rows []struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			}
			Expect(page.DecodeInto(&rows)).To(Succeed())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Name).To(Equal("Finance"))
		})
	})

	Describe("authorization", func() {
		It("sends the bearer token from the request context", func() {
			var gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.Write([]byte(`{"status":"success"}`))
			}))
			defer server.Close()

			ctx := internal.ContextWithToken(context.Background(), "backend-token")
			_, err := newClient(server).PostJSON(ctx, "/api/department", map[string]string{"name": "IT"})

			Expect(err).NotTo(HaveOccurred())
			Expect(gotAuth).To(Equal("Bearer backend-token"))
		})

		It("sends no authorization header without a session", func() {
			var gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.Write([]byte(`{"status":"success"}`))
			}))
			defer server.Close()

			_, err := newClient(server).PostJSON(context.Background(), "/api/login", nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(gotAuth).To(BeEmpty())
		})
	})

	Describe("error mapping", func() {
		It("surfaces the server message on a rejected mutation", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(`{"status":"error","message":"The name has already been taken."}`))
			}))
			defer server.Close()

			_, err := newClient(server).PostJSON(context.Background(), "/api/department", map[string]string{"name": "IT"})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.GetDetailedMessage()).To(Equal("The name has already been taken."))
		})

		It("treats a 2xx envelope whose status is not success as an error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"error","message":"Folder is locked"}`))
			}))
			defer server.Close()

			_, err := newClient(server).PostJSON(context.Background(), "/api/folder/1/approve", nil)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.GetDetailedMessage()).To(Equal("Folder is locked"))
		})

		It("maps 404 to the record-not-found sentinel", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"status":"error","message":"Not found"}`))
			}))
			defer server.Close()

			err := newClient(server).GetJSON(context.Background(), "/api/department/99", nil, &struct{}{})
			Expect(err).To(MatchError(internal.ErrRecordNotFound))
		})

		It("maps 401 to the session-expired sentinel", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			err := newClient(server).GetJSON(context.Background(), "/api/me", nil, &struct{}{})
			Expect(err).To(MatchError(internal.ErrSessionExpired))
		})

		It("reports the backend as unavailable when the host is unreachable", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			server.Close()

			_, err := newClient(server).PostJSON(context.Background(), "/api/login", nil)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeBackendUnavailable))
		})
	})

	Describe("PostMultipart", func() {
		It("posts fields, repeated arrays, indexed files, and the method override", func() {
			var (
				gotValues  map[string][]string
				gotFile    []byte
				gotName    string
				gotHasFile bool
			)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.ParseMultipartForm(32 << 20)).To(Succeed())
				gotValues = r.MultipartForm.Value

				if headers := r.MultipartForm.File["uploaded_files[0]"]; len(headers) > 0 {
					gotHasFile = true
					gotName = headers[0].Filename
					file, err := headers[0].Open()
					Expect(err).NotTo(HaveOccurred())
					defer file.Close()
					gotFile, err = io.ReadAll(file)
					Expect(err).NotTo(HaveOccurred())
				}

				w.Write([]byte(`{"status":"success","message":"Folder updated"}`))
			}))
			defer server.Close()

			payload := backend.NewMultipartPayload()
			payload.SetField("folder_name", "Payroll 2019")
			payload.AddArrayField("department_id", "3")
			payload.AddArrayField("department_id", "7")
			payload.AddFile("uploaded_files[0]", "scan.pdf", "application/pdf", []byte("%PDF-1.4"))
			payload.SetField("current_files", "[12,13]")
			payload.OverrideMethod(http.MethodPut)

			envelope, err := newClient(server).PostMultipart(context.Background(), "/api/folder/5", payload)

			Expect(err).NotTo(HaveOccurred())
			Expect(envelope.Message).To(Equal("Folder updated"))
			Expect(gotValues["folder_name"]).To(Equal([]string{"Payroll 2019"}))
			Expect(gotValues["department_id[]"]).To(Equal([]string{"3", "7"}))
			Expect(gotValues["current_files"]).To(Equal([]string{"[12,13]"}))
			Expect(gotValues["_method"]).To(Equal([]string{"PUT"}))
			Expect(gotHasFile).To(BeTrue())
			Expect(gotName).To(Equal("scan.pdf"))
			Expect(gotFile).To(Equal([]byte("%PDF-1.4")))
		})
	})

	Describe("PostBinary", func() {
		It("returns the raw body and the suggested filename", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				var body map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body).To(HaveKey("folders"))

				w.Header().Set("Content-Type", "application/pdf")
				w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
				w.Write([]byte("%PDF-1.4 report"))
			}))
			defer server.Close()

			content, filename, err := newClient(server).PostBinary(context.Background(), "/api/folder/generate-report", map[string]any{
				"folders": []int64{1, 2},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(content).To(Equal([]byte("%PDF-1.4 report")))
			Expect(filename).To(Equal("report.pdf"))
		})

		It("returns an empty filename when the header is missing", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("%PDF-1.4"))
			}))
			defer server.Close()

			_, filename, err := newClient(server).PostBinary(context.Background(), "/api/folder/generate-report", map[string]any{})

			Expect(err).NotTo(HaveOccurred())
			Expect(filename).To(BeEmpty())
		})
	})
})
