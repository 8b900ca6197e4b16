package respond

import (
	"fmt"
	"net/http"

	"github.com/janisto/echo-cards/internal/platform/validate"
)

const problemTypeBlank = "about:blank"

// ProblemDetails is an RFC 9457 problem. It doubles as an error so handlers
// can return it directly.
type ProblemDetails struct {
	Type     string        `json:"type"               cbor:"type"               example:"about:blank"`
	Title    string        `json:"title"              cbor:"title"              example:"Not Found"`
	Status   int           `json:"status"             cbor:"status"             example:"404"`
	Detail   string        `json:"detail,omitempty"   cbor:"detail,omitempty"   example:"card not found"`
	Instance string        `json:"instance,omitempty" cbor:"instance,omitempty" example:"/v1/cards/john-doe"`
	Errors   []ErrorDetail `json:"errors,omitempty"   cbor:"errors,omitempty"`
}

// ErrorDetail is one rejected form field.
type ErrorDetail struct {
	Message  string `json:"message"            cbor:"message"            example:"name is required"`
	Location string `json:"location,omitempty" cbor:"location,omitempty" example:"name"`
	Value    string `json:"value,omitempty"    cbor:"value,omitempty"    example:""`
}

func (p *ProblemDetails) Error() string {
	if p.Detail == "" {
		return fmt.Sprintf("%d %s", p.Status, p.Title)
	}
	return fmt.Sprintf("%d %s: %s", p.Status, p.Title, p.Detail)
}

// StatusCode lets Echo read the status of a returned problem.
func (p *ProblemDetails) StatusCode() int { return p.Status }

// NewError returns a problem with the standard title for status.
func NewError(status int, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBlank,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

func Error400(detail string) *ProblemDetails { return NewError(http.StatusBadRequest, detail) }
func Error401(detail string) *ProblemDetails { return NewError(http.StatusUnauthorized, detail) }
func Error404(detail string) *ProblemDetails { return NewError(http.StatusNotFound, detail) }
func Error409(detail string) *ProblemDetails { return NewError(http.StatusConflict, detail) }
func Error413(detail string) *ProblemDetails { return NewError(http.StatusRequestEntityTooLarge, detail) }
func Error500(detail string) *ProblemDetails { return NewError(http.StatusInternalServerError, detail) }
func Error503(detail string) *ProblemDetails { return NewError(http.StatusServiceUnavailable, detail) }

// Error422 returns an Unprocessable Entity problem listing the rejected fields.
func Error422(detail string, fields ...ErrorDetail) *ProblemDetails {
	p := NewError(http.StatusUnprocessableEntity, detail)
	p.Errors = fields
	return p
}

// FromValidation converts a validator failure into a 422 problem.
func FromValidation(ve *validate.ValidationError) *ProblemDetails {
	fields := make([]ErrorDetail, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		fields = append(fields, ErrorDetail{Message: f.Message, Location: f.Field, Value: f.Value})
	}
	if len(fields) == 0 {
		fields = nil
	}
	return Error422(ve.Message, fields...)
}
