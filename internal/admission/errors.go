package admission

import "errors"

// ErrRejected matches every Rejection returned by the filter.
var ErrRejected = errors.New("file rejected")

// Rejection reasons, also used as metric labels.
const (
	ReasonMissing     = "missing"
	ReasonContentType = "content_type"
	ReasonFilename    = "filename"
	ReasonSize        = "size"
	ReasonContent     = "content"
)

// Rejection is a client-facing refusal of an uploaded file.
type Rejection struct {
	Reason  string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

// Is matches ErrRejected and any Rejection sharing the same reason.
func (r *Rejection) Is(target error) bool {
	if target == ErrRejected {
		return true
	}
	other, ok := target.(*Rejection)
	return ok && other.Reason == r.Reason
}

var (
	ErrNoFile        = &Rejection{Reason: ReasonMissing, Message: "no file uploaded"}
	ErrNotPDF        = &Rejection{Reason: ReasonContentType, Message: "only PDF files are allowed"}
	ErrBadFilename   = &Rejection{Reason: ReasonFilename, Message: "filename does not match the upload policy"}
	ErrTooLarge      = &Rejection{Reason: ReasonSize, Message: "file too large"}
	ErrContentNotPDF = &Rejection{Reason: ReasonContent, Message: "file content is not a valid PDF"}
)
