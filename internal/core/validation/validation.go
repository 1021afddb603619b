// Package validation carries form-validation helpers shared by the entity
// DTOs: flattening ozzo results into per-field messages and the attachment
// checks applied before anything is sent to the backend.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxAttachmentSize is the per-file upload cap.
const MaxAttachmentSize = 25 << 20 // 25 MB

// allowedAttachmentExts matches the file types the original console accepts
// for folder uploads and user images.
var allowedAttachmentExts = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
}

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// FieldErrors flattens an ozzo validation result into per-field messages for
// inline rendering. A nil map means err was not a validation error.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	errs, ok := err.(ozzo.Errors)
	if !ok {
		return nil
	}
	fields := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		fields[field] = fieldErr.Error()
	}
	return fields
}

// CheckAttachment validates an upload's name and size against the document
// allowlist before it is attached to a multipart payload.
func CheckAttachment(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedAttachmentExts[ext] {
		return fmt.Errorf("file type %s is not allowed", ext)
	}
	if size > MaxAttachmentSize {
		return fmt.Errorf("file %s exceeds the 25MB limit", filename)
	}
	return nil
}

// CheckImage validates a profile image upload.
func CheckImage(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return fmt.Errorf("image type %s is not allowed", ext)
	}
	if size > MaxAttachmentSize {
		return fmt.Errorf("image %s exceeds the 25MB limit", filename)
	}
	return nil
}
