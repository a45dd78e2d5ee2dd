// Package report renders already-aggregated spending data into chart
// images and documents. It holds no business logic.
package report

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Kind selects the chart type.
type Kind string

const (
	Pie  Kind = "pie"
	Area Kind = "area"
	Bar  Kind = "bar"
)

// Format selects the output encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
	PDF  Format = "pdf"
)

// ParseFormat accepts png, jpg, jpeg and pdf in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "pdf":
		return PDF, nil
	}
	return "", core.Invalid("format must be one of png, jpg, pdf")
}

func (f Format) MIMEType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case PDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

func (f Format) Ext() string {
	return string(f)
}

// Filename is the attachment name of an exported report, e.g. expenses_monthly.pdf.
func Filename(w core.Window, f Format) string {
	return fmt.Sprintf("expenses_%s.%s", w, f.Ext())
}
