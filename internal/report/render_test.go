package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

var magic = map[Format][]byte{
	PNG:  []byte("\x89PNG"),
	JPEG: {0xff, 0xd8},
	PDF:  []byte("%PDF"),
}

func categories() []core.CategoryAmount {
	return []core.CategoryAmount{
		{Name: "Housing", Amount: core.Cents(80000)},
		{Name: "Shopping", Amount: core.Cents(12050)},
		{Name: "Transportation", Amount: core.Cents(3000)},
	}
}

func trend(n int) core.BalanceTrend {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	t := core.BalanceTrend{Current: core.Cents(10000), Transactions: n}
	if n == 0 {
		return t
	}
	for i := n; i > 0; i-- {
		t.Points = append(t.Points, core.BalancePoint{
			At:      now.AddDate(0, 0, -i),
			Balance: core.Cents(10000 + int64(i)*500),
		})
	}
	t.Points = append(t.Points, core.BalancePoint{At: now, Balance: t.Current})
	return t
}

func TestRenderChart_Formats(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		data Data
	}{
		{"pie", Pie, Data{Title: "Expenses by Category (Monthly)", Categories: categories()}},
		{"empty pie", Pie, Data{Title: "Last Month Expenses"}},
		{"area", Area, Data{Title: "Balance Trend (Last 30 Days)", Trend: trend(4)}},
		{"single point area", Area, Data{Title: "Balance Trend (Last 30 Days)", Trend: trend(1)}},
		{"empty area", Area, Data{Title: "Balance Trend (Last 30 Days)", Trend: trend(0)}},
		{"bar", Bar, Data{Title: "Monthly Expenses", Categories: categories()}},
		{"empty bar", Bar, Data{Title: "Weekly Expenses"}},
	}

	for _, tc := range cases {
		for format, prefix := range magic {
			t.Run(tc.name+"/"+string(format), func(t *testing.T) {
				chart, err := RenderChart(tc.data, tc.kind, format)
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(chart.Data, prefix), "unexpected header % x", chart.Data[:8])
				assert.Equal(t, format.MIMEType(), chart.MIMEType)
				assert.Equal(t, string(format), chart.Ext)
			})
		}
	}
}

func TestRenderChart_Unsupported(t *testing.T) {
	_, err := RenderChart(Data{}, Kind("radar"), PNG)
	assert.Error(t, err)

	_, err = RenderChart(Data{Categories: categories()}, Pie, Format("gif"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"png":  PNG,
		"PNG":  PNG,
		"jpg":  JPEG,
		"jpeg": JPEG,
		" pdf": PDF,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("svg")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "expenses_monthly.pdf", Filename(core.Monthly, PDF))
	assert.Equal(t, "expenses_weekly.jpg", Filename(core.Weekly, JPEG))

	// an alias names the file after the window it resolves to
	daily, err := core.ParseWindow("daily")
	require.NoError(t, err)
	assert.Equal(t, "expenses_weekly.pdf", Filename(daily, PDF))
	assert.Equal(t, "image/jpeg", JPEG.MIMEType())
	assert.Equal(t, "application/pdf", PDF.MIMEType())
}

func TestKey(t *testing.T) {
	d := Data{Title: "Weekly", Categories: []core.CategoryAmount{{Name: "Housing", Amount: core.Cents(500)}}}

	k1, err := Key(d, Pie, PNG)
	require.NoError(t, err)
	k2, err := Key(d, Pie, PNG)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	other, err := Key(d, Pie, PDF)
	require.NoError(t, err)
	assert.NotEqual(t, k1, other)

	d.Categories[0].Amount = core.Cents(501)
	changed, err := Key(d, Pie, PNG)
	require.NoError(t, err)
	assert.NotEqual(t, k1, changed)
}
