package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

const maxJSONBody = 1 << 20

// decodeJSON reads exactly one JSON object into dst. Unknown fields,
// trailing data and oversized bodies are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var (
			syntaxErr *json.SyntaxError
			typeErr   *json.UnmarshalTypeError
			maxErr    *http.MaxBytesError
		)
		switch {
		case errors.Is(err, io.EOF):
			return core.Invalid("Request body must not be empty")
		case errors.As(err, &syntaxErr):
			return core.Invalid(fmt.Sprintf("Invalid JSON at byte %d", syntaxErr.Offset))
		case errors.Is(err, io.ErrUnexpectedEOF):
			return core.Invalid("Invalid JSON: unexpected end of input")
		case errors.As(err, &typeErr):
			return core.Invalid(fmt.Sprintf("Invalid value for field %q", typeErr.Field))
		case errors.As(err, &maxErr):
			return core.Invalid("Request body too large")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return core.Invalid("Unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field "))
		}
		return core.Invalid("Invalid request body")
	}
	if dec.More() {
		return core.Invalid("Request body must contain a single JSON object")
	}
	return nil
}

// amountInput accepts an amount as a JSON number or string, with either
// decimal separator. Parsing is deferred so the error names the field.
type amountInput string

func (a *amountInput) UnmarshalJSON(b []byte) error {
	*a = amountInput(strings.Trim(strings.TrimSpace(string(b)), `"`))
	return nil
}

func (a amountInput) money(field string) (core.Money, error) {
	m, err := core.ParseAmount(string(a))
	if err != nil {
		return core.Money{}, core.Invalid(fmt.Sprintf("%s: %v", field, err))
	}
	return m, nil
}

// optional parses an amount that defaults to zero when absent.
func (a amountInput) optional(field string) (core.Money, error) {
	if a == "" || a == "null" {
		return core.Money{}, nil
	}
	return a.money(field)
}

// pathID parses the {id} wildcard.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Invalid("Invalid id")
	}
	return id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil, core.Invalid(name + " must be a YYYY-MM-DD date")
	}
	return &d, nil
}

// parseTimestamp accepts RFC 3339 or a bare date, which means midnight UTC.
func parseTimestamp(field, v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	if d, err := core.ParseDate(v); err == nil {
		return &d.Time, nil
	}
	return nil, core.Invalid(field + " must be an RFC 3339 timestamp or a YYYY-MM-DD date")
}

// sanitizeInput removes control characters except tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
