package backend

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// MultipartPayload assembles a multipart/form-data body in insertion order:
// scalar fields, repeated array fields (key[]), file parts, and the _method
// override the API uses to tunnel PUT through POST.
type MultipartPayload struct {
	fields []formField
	files  []filePart
	method string
}

type formField struct {
	key   string
	value string
}

type filePart struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func NewMultipartPayload() *MultipartPayload {
	return &MultipartPayload{}
}

func (p *MultipartPayload) SetField(key, value string) *MultipartPayload {
	p.fields = append(p.fields, formField{key: key, value: value})
	return p
}

// AddArrayField appends one element of a repeated field, e.g.
// department_id[]=3.
func (p *MultipartPayload) AddArrayField(key, value string) *MultipartPayload {
	p.fields = append(p.fields, formField{key: key + "[]", value: value})
	return p
}

func (p *MultipartPayload) AddFile(field, filename, contentType string, content []byte) *MultipartPayload {
	p.files = append(p.files, filePart{
		field:       field,
		filename:    filename,
		contentType: contentType,
		content:     content,
	})
	return p
}

// OverrideMethod sets the _method field, turning the POST into a simulated
// PUT on the server side.
func (p *MultipartPayload) OverrideMethod(method string) *MultipartPayload {
	p.method = method
	return p
}

// HasAttachments reports whether any binary part is present. Callers use it
// as the capability check that selects multipart over JSON encoding.
func (p *MultipartPayload) HasAttachments() bool {
	return len(p.files) > 0
}

func (p *MultipartPayload) Encode() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, f := range p.fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.key, err)
		}
	}

	for _, f := range p.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
			escapeQuotes(f.field), escapeQuotes(f.filename)))
		contentType := f.contentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", f.field, err)
		}
		if _, err := part.Write(f.content); err != nil {
			return nil, "", fmt.Errorf("write file part %s: %w", f.field, err)
		}
	}

	if p.method != "" {
		if err := w.WriteField("_method", p.method); err != nil {
			return nil, "", fmt.Errorf("write _method field: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
