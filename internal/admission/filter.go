package admission

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// PDFContentType is the only declared media type the filter admits.
const PDFContentType = "application/pdf"

// Upload is an admitted file held in memory.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Size returns the payload length in bytes.
func (u Upload) Size() int64 {
	return int64(len(u.Content))
}

// Filter decides whether an uploaded file may become a submission.
type Filter struct {
	policy        Policy
	maxBytes      int64
	verifyContent bool
}

// NewFilter builds a filter for the given policy and limits.
func NewFilter(policy Policy, maxBytes int64, verifyContent bool) *Filter {
	if maxBytes <= 0 {
		maxBytes = 20 * 1024 * 1024
	}
	return &Filter{policy: policy, maxBytes: maxBytes, verifyContent: verifyContent}
}

// Policy returns the filename policy in force.
func (f *Filter) Policy() Policy {
	return f.policy
}

// MaxBytes returns the size limit in force.
func (f *Filter) MaxBytes() int64 {
	return f.maxBytes
}

// Admit validates a multipart file and reads it into memory.
// Checks run in order: presence, declared type, filename, size, content.
func (f *Filter) Admit(header *multipart.FileHeader) (Upload, error) {
	if header == nil {
		return Upload{}, ErrNoFile
	}

	contentType := header.Header.Get("Content-Type")
	if err := f.CheckContentType(contentType); err != nil {
		return Upload{}, err
	}

	filename, err := f.CheckFilename(header.Filename)
	if err != nil {
		return Upload{}, err
	}

	if header.Size > f.maxBytes {
		return Upload{}, ErrTooLarge
	}

	handle, err := header.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer handle.Close()

	content, err := f.read(handle)
	if err != nil {
		return Upload{}, err
	}

	return Upload{Filename: filename, ContentType: PDFContentType, Content: content}, nil
}

// CheckContentType rejects anything but the PDF media type. Parameters are ignored.
func (f *Filter) CheckContentType(declared string) error {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !strings.EqualFold(mediaType, PDFContentType) {
		return ErrNotPDF
	}
	return nil
}

// CheckFilename normalizes the client filename and applies the policy.
func (f *Filter) CheckFilename(raw string) (string, error) {
	filename := NormalizeFilename(raw)
	if !f.policy.Match(filename) {
		return "", f.policy.rejection()
	}
	return filename, nil
}

func (f *Filter) read(r io.Reader) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(r, f.maxBytes+1)); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(buf.Len()) > f.maxBytes {
		return nil, ErrTooLarge
	}

	if f.verifyContent && !mimetype.Detect(buf.Bytes()).Is(PDFContentType) {
		return nil, ErrContentNotPDF
	}

	return buf.Bytes(), nil
}
