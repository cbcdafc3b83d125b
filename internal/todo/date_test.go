package todo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "2025-12-31", "2025-12-31"},
		{"padded", "  2025-01-02 ", "2025-01-02"},
		{"rfc3339 utc", "2025-12-31T10:20:30Z", "2025-12-31"},
		{"rfc3339 offset keeps written date", "2025-12-31T23:30:00-05:00", "2025-12-31"},
		{"fractional", "2026-01-01T00:00:00.123Z", "2026-01-01"},
		{"no zone", "2026-03-04T05:06:07", "2026-03-04"},
		{"basic form", "20260304", "2026-03-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, d.String())
		})
	}
}

func TestParseDate_Malformed(t *testing.T) {
	for _, in := range []string{"", "not-a-date", "2025-13-01", "2025-02-30", "31/12/2025", "tomorrow"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDate(in)
			require.ErrorIs(t, err, ErrMalformedDate)
		})
	}
}

func TestDate_Encoding(t *testing.T) {
	d := NewDate(2025, time.November, 9)

	b, err := json.Marshal(struct {
		Due Date `json:"due"`
	}{d})
	require.NoError(t, err)
	require.JSONEq(t, `{"due":"2025-11-09"}`, string(b))

	var got Date
	require.NoError(t, got.Scan("2025-11-09"))
	require.True(t, got.Equal(d))

	require.NoError(t, got.Scan(time.Date(2025, time.November, 9, 0, 0, 0, 0, time.UTC)))
	require.True(t, got.Equal(d))

	require.Error(t, got.Scan(42))

	v, err := d.Value()
	require.NoError(t, err)
	require.Equal(t, "2025-11-09", v)
}
