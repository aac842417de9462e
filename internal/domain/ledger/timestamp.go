package ledger

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Epoch is the fallback for missing or unrecognized timestamps. Events carrying
// it sort before every event with a real date.
var Epoch = time.Unix(0, 0).UTC()

// TimestampPair is the seconds/nanoseconds encoding used by document stores.
type TimestampPair struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// Time converts the pair to a time.Time
func (p TimestampPair) Time() time.Time {
	return time.Unix(p.Seconds, p.Nanoseconds)
}

// timeProvider is satisfied by store-native timestamp types that can convert themselves.
type timeProvider interface {
	AsTime() time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// NormalizeTimestamp converts any supported timestamp encoding to a UTC time
// truncated to the millisecond. Supported encodings:
//
//   - time.Time and *time.Time
//   - values with an AsTime() time.Time method
//   - TimestampPair, or a map with seconds/_seconds and nanoseconds/_nanoseconds keys
//   - numbers and json.Number, read as epoch milliseconds
//   - strings in RFC 3339 or a few close variants
//
// Anything else, including nil, yields Epoch.
func NormalizeTimestamp(value any) time.Time {
	t, ok := decodeTimestamp(value)
	if !ok || t.IsZero() {
		return Epoch
	}
	return t.UTC().Truncate(time.Millisecond)
}

func decodeTimestamp(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case TimestampPair:
		return v.Time(), true
	case *TimestampPair:
		if v == nil {
			return time.Time{}, false
		}
		return v.Time(), true
	case timeProvider:
		return v.AsTime(), true
	case map[string]any:
		return pairFromMap(v)
	case string:
		return parseTimestampString(v)
	case json.Number:
		if ms, err := v.Int64(); err == nil {
			return time.UnixMilli(ms), true
		}
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromMillisFloat(f)
	case float64:
		return fromMillisFloat(v)
	case float32:
		return fromMillisFloat(float64(v))
	case decimal.Decimal:
		return time.UnixMilli(v.IntPart()), true
	}

	if ms, ok := toInt64(value); ok {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}

func pairFromMap(m map[string]any) (time.Time, bool) {
	secRaw, ok := m["seconds"]
	if !ok {
		secRaw, ok = m["_seconds"]
	}
	if !ok {
		return time.Time{}, false
	}
	seconds, ok := toInt64(secRaw)
	if !ok {
		return time.Time{}, false
	}
	nanoRaw, ok := m["nanoseconds"]
	if !ok {
		nanoRaw = m["_nanoseconds"]
	}
	nanos, _ := toInt64(nanoRaw)
	return time.Unix(seconds, nanos), true
}

func parseTimestampString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// maxMillisFloat is the largest epoch-ms magnitude whose nanosecond count fits an int64.
const maxMillisFloat = float64(math.MaxInt64 / int64(time.Millisecond))

func fromMillisFloat(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.Abs(f) > maxMillisFloat {
		return time.Time{}, false
	}
	return time.Unix(0, int64(f*float64(time.Millisecond))), true
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if math.IsNaN(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float32:
		return toInt64(float64(v))
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return toInt64(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}
