package ledger

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type storeTimestamp struct {
	t time.Time
}

func (s storeTimestamp) AsTime() time.Time { return s.t }

func TestNormalizeTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	local := want.In(time.FixedZone("ART", -3*60*60))

	tests := []struct {
		name  string
		input any
		want  time.Time
	}{
		{name: "time value", input: want, want: want},
		{name: "time in another zone", input: local, want: want},
		{name: "time pointer", input: &want, want: want},
		{name: "nil time pointer", input: (*time.Time)(nil), want: Epoch},
		{name: "zero time", input: time.Time{}, want: Epoch},
		{name: "store timestamp", input: storeTimestamp{t: want}, want: want},
		{name: "seconds pair", input: TimestampPair{Seconds: want.Unix()}, want: want},
		{name: "seconds pair pointer", input: &TimestampPair{Seconds: want.Unix(), Nanoseconds: 5_000_000}, want: want.Add(5 * time.Millisecond)},
		{name: "map with seconds", input: map[string]any{"seconds": want.Unix(), "nanoseconds": 0}, want: want},
		{name: "map with underscore keys", input: map[string]any{"_seconds": float64(want.Unix()), "_nanoseconds": float64(0)}, want: want},
		{name: "map without seconds", input: map[string]any{"nanoseconds": 10}, want: Epoch},
		{name: "epoch millis int64", input: want.UnixMilli(), want: want},
		{name: "epoch millis int", input: int(want.UnixMilli()), want: want},
		{name: "epoch millis float", input: float64(want.UnixMilli()), want: want},
		{name: "epoch millis json number", input: json.Number("1709294400000"), want: want},
		{name: "rfc3339 string", input: "2024-03-01T09:00:00-03:00", want: want},
		{name: "date only string", input: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "garbage string", input: "yesterday", want: Epoch},
		{name: "empty string", input: "", want: Epoch},
		{name: "nil", input: nil, want: Epoch},
		{name: "bool", input: true, want: Epoch},
		{name: "NaN", input: math.NaN(), want: Epoch},
		{name: "infinite millis", input: math.Inf(1), want: Epoch},
		{name: "millis beyond nanosecond range", input: float64(1e19), want: Epoch},
		{name: "negative millis beyond nanosecond range", input: float64(-1e19), want: Epoch},
		{name: "json number beyond int64", input: json.Number("1e19"), want: Epoch},
		{name: "map with seconds beyond int64", input: map[string]any{"seconds": float64(1e19)}, want: Epoch},
		{name: "struct", input: struct{ X int }{X: 1}, want: Epoch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTimestamp(tt.input)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNormalizeTimestamp_TruncatesToMillisecond(t *testing.T) {
	input := time.Date(2024, 3, 1, 12, 0, 0, 1_999_999, time.UTC)
	got := NormalizeTimestamp(input)
	assert.Equal(t, 1_000_000, got.Nanosecond())
}
