package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestAmountInput(t *testing.T) {
	var req struct {
		A amountInput `json:"a"`
		B amountInput `json:"b"`
		C amountInput `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12.5,"b":"7,25","c":null}`), &req))

	a, err := req.A.money("a")
	require.NoError(t, err)
	assert.Equal(t, core.Cents(1250), a)

	b, err := req.B.money("b")
	require.NoError(t, err)
	assert.Equal(t, core.Cents(725), b)

	c, err := req.C.optional("c")
	require.NoError(t, err)
	assert.True(t, c.IsZero())

	_, err = req.C.money("c")
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, core.MessageOf(err), "c:")
}

func TestDecodeJSONTooLarge(t *testing.T) {
	body := `{"username":"` + strings.Repeat("a", maxJSONBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	var dst loginRequest
	err := decodeJSON(rec, req, &dst)
	require.Error(t, err)
	assert.Equal(t, "Request body too large", core.MessageOf(err))
}

func TestParseTimestamp(t *testing.T) {
	ts, err := parseTimestamp("occurred_at", "")
	require.NoError(t, err)
	assert.Nil(t, ts)

	ts, err = parseTimestamp("occurred_at", "2024-06-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC), ts.UTC())

	ts, err = parseTimestamp("occurred_at", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *ts)

	_, err = parseTimestamp("occurred_at", "01/06/2024")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestPathID(t *testing.T) {
	for _, tt := range []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"12", 12, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"x", 0, false},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetPathValue("id", tt.raw)
		id, err := pathID(req)
		if tt.ok {
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		} else {
			assert.Error(t, err, tt.raw)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello\tworld", sanitizeInput("  hello\tworld\x00\x07 "))
	assert.Equal(t, "", sanitizeInput("   "))
}
