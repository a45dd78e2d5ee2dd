package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ResponseBuilder provides a fluent API for building enveloped JSON responses.
type ResponseBuilder struct {
	statusCode int
	envelope   Envelope
	headers    map[string]string
}

// NewResponse creates a successful 200 response.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		envelope:   Envelope{Success: true},
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code. Codes of 400 and above mark the
// envelope unsuccessful.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	b.envelope.Success = code < 400
	return b
}

func (b *ResponseBuilder) Message(msg string) *ResponseBuilder {
	b.envelope.Message = msg
	return b
}

func (b *ResponseBuilder) Data(data any) *ResponseBuilder {
	b.envelope.Data = data
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.envelope)
}

// ErrorResponse creates an unsuccessful response with a message.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).Message(message)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch core.KindOf(err) {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict:
		return http.StatusConflict
	case core.KindAuthFailure:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// FromError builds the response for err. Unclassified errors surface as a
// generic internal error and are logged with their cause.
func FromError(r *http.Request, err error) *ResponseBuilder {
	status := StatusFor(err)
	var ce *core.Error
	if status == http.StatusInternalServerError && !errors.As(err, &ce) {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Unhandled error",
			log.FieldError, err.Error(),
			log.FieldPath, r.URL.Path,
		)
	}
	return ErrorResponse(status, core.MessageOf(err))
}

// writeChart streams rendered chart bytes. A non-empty filename makes the
// response an attachment.
func writeChart(w http.ResponseWriter, chart report.Chart, filename string) {
	w.Header().Set("Content-Type", chart.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(chart.Data)))
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(chart.Data)
}
