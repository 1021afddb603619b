package folder_test

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docuflow/records-console/internal/core/validation"
	"github.com/docuflow/records-console/internal/folder"
)

var _ = Describe("FormDTO validation", func() {
	valid := func() folder.FormDTO {
		return folder.FormDTO{
			FolderName:    "Payroll Records 2019",
			StartDate:     "2019-01-01",
			EndDate:       "2019-12-31",
			DepartmentIDs: []int64{3},
		}
	}

	It("accepts a complete form", func() {
		Expect(valid().Validate()).To(Succeed())
	})

	It("requires the folder name", func() {
		dto := valid()
		dto.FolderName = ""

		fields := validation.FieldErrors(dto.Validate())
		Expect(fields).To(HaveKey("folder_name"))
	})

	It("rejects an end date before the start date", func() {
		dto := valid()
		dto.StartDate = "2019-12-31"
		dto.EndDate = "2019-01-01"

		fields := validation.FieldErrors(dto.Validate())
		Expect(fields).To(HaveKey("end_date"))
	})

	It("rejects malformed dates", func() {
		dto := valid()
		dto.StartDate = "01/01/2019"

		fields := validation.FieldErrors(dto.Validate())
		Expect(fields).To(HaveKey("start_date"))
	})

	It("rejects attachments with blocked extensions", func() {
		dto := valid()
		dto.Attachments = []folder.Attachment{{Filename: "virus.exe", Size: 100}}

		Expect(dto.Validate()).To(HaveOccurred())
	})

	It("rejects attachments over the size cap", func() {
		dto := valid()
		dto.Attachments = []folder.Attachment{{Filename: "scan.pdf", Size: validation.MaxAttachmentSize + 1}}

		Expect(dto.Validate()).To(HaveOccurred())
	})

	It("reports attachments as the multipart capability", func() {
		dto := valid()
		Expect(dto.HasAttachments()).To(BeFalse())

		dto.Attachments = []folder.Attachment{{Filename: "scan.pdf", Size: 10, Content: []byte("x")}}
		Expect(dto.HasAttachments()).To(BeTrue())
	})
})

var _ = Describe("FormDTO payload", func() {
	parsePayload := func(dto folder.FormDTO, update bool) (map[string][]string, map[string][]*multipart.FileHeader) {
		body, contentType, err := dto.ToPayload(update).Encode()
		Expect(err).NotTo(HaveOccurred())

		boundary := strings.TrimPrefix(contentType, "multipart/form-data; boundary=")
		reader := multipart.NewReader(body, boundary)
		form, err := reader.ReadForm(32 << 20)
		Expect(err).NotTo(HaveOccurred())
		return form.Value, form.File
	}

	It("writes one department_id[] part per department", func() {
		parent := int64(9)
		dto := folder.FormDTO{
			FolderName:    "Payroll Records 2019",
			StartDate:     "2019-01-01",
			EndDate:       "2019-12-31",
			ParentID:      &parent,
			DepartmentIDs: []int64{3, 7},
		}

		values, _ := parsePayload(dto, false)
		Expect(values["folder_name"]).To(Equal([]string{"Payroll Records 2019"}))
		Expect(values["parent_id"]).To(Equal([]string{"9"}))
		Expect(values["start_date"]).To(Equal([]string{"2019-01-01"}))
		Expect(values["end_date"]).To(Equal([]string{"2019-12-31"}))
		Expect(values["department_id[]"]).To(Equal([]string{"3", "7"}))
		Expect(values).NotTo(HaveKey("_method"))
		Expect(values).NotTo(HaveKey("current_files"))
	})

	It("indexes file parts and tunnels PUT with removed ids on update", func() {
		dto := folder.FormDTO{
			FolderName:     "Payroll Records 2019",
			DepartmentIDs:  []int64{3},
			RemovedFileIDs: []int64{12, 13},
			Attachments: []folder.Attachment{
				{Filename: "a.pdf", ContentType: "application/pdf", Size: 4, Content: []byte("aaaa")},
				{Filename: "b.pdf", ContentType: "application/pdf", Size: 4, Content: []byte("bbbb")},
			},
		}

		values, files := parsePayload(dto, true)
		Expect(values["_method"]).To(Equal([]string{http.MethodPut}))
		Expect(values["current_files"]).To(Equal([]string{"[12,13]"}))
		Expect(files).To(HaveKey("uploaded_files[0]"))
		Expect(files).To(HaveKey("uploaded_files[1]"))

		first, err := files["uploaded_files[0]"][0].Open()
		Expect(err).NotTo(HaveOccurred())
		defer first.Close()
		content, err := io.ReadAll(first)
		Expect(err).NotTo(HaveOccurred())
		Expect(content).To(Equal([]byte("aaaa")))
	})
})

var _ = Describe("ReportDTO validation", func() {
	It("requires an effective date and at least one folder", func() {
		fields := validation.FieldErrors(folder.ReportDTO{}.Validate())
		Expect(fields).To(HaveKey("effective_date"))
		Expect(fields).To(HaveKey("folders"))
	})

	It("accepts a dated selection", func() {
		dto := folder.ReportDTO{EffectiveDate: "2025-06-01", FolderIDs: []int64{1, 2}}
		Expect(dto.Validate()).To(Succeed())
	})
})
