package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueKind tags the storage type of a single cell
type ValueKind string

const (
	KindMissing  ValueKind = "missing"
	KindNumber   ValueKind = "number"
	KindText     ValueKind = "text"
	KindBool     ValueKind = "bool"
	KindDatetime ValueKind = "datetime"
)

// Value is one typed cell. The zero Value is missing.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
	ts   time.Time
}

// Null returns a missing value
func Null() Value { return Value{kind: KindMissing} }

// Number returns a numeric value
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a string value. The empty string is kept as Text but reports missing.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Datetime returns a timestamp value, normalised to UTC
func Datetime(t time.Time) Value { return Value{kind: KindDatetime, ts: t.UTC()} }

// ValueOf tags a raw scalar without interpreting string contents.
// Unsupported types are stored as their fmt representation.
func ValueOf(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case float64:
		return Number(v)
	case float32:
		return Number(float64(v))
	case int:
		return Number(float64(v))
	case int8:
		return Number(float64(v))
	case int16:
		return Number(float64(v))
	case int32:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case uint:
		return Number(float64(v))
	case uint8:
		return Number(float64(v))
	case uint16:
		return Number(float64(v))
	case uint32:
		return Number(float64(v))
	case uint64:
		return Number(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return Number(f)
		}
		return Text(v.String())
	case string:
		return Text(v)
	case bool:
		return Bool(v)
	case time.Time:
		return Datetime(v)
	default:
		return Text(fmt.Sprint(v))
	}
}

// Kind returns the storage tag
func (v Value) Kind() ValueKind {
	if v.kind == "" {
		return KindMissing
	}
	return v.kind
}

// IsMissing reports null, absent or empty-string cells
func (v Value) IsMissing() bool {
	switch v.Kind() {
	case KindMissing:
		return true
	case KindText:
		return v.str == ""
	}
	return false
}

// Number coerces the value to a finite float. Numbers pass through, text is
// parsed after trimming; booleans, timestamps and missing values never coerce.
func (v Value) Number() (float64, bool) {
	switch v.Kind() {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return v.num, true
	case KindText:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Bool returns the boolean payload for KindBool values
func (v Value) Bool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.b, true
}

// Time returns the timestamp payload for KindDatetime values
func (v Value) Time() (time.Time, bool) {
	if v.Kind() != KindDatetime {
		return time.Time{}, false
	}
	return v.ts, true
}

// String returns the display form used for frequency counting and labels
func (v Value) String() string {
	switch v.Kind() {
	case KindNumber:
		return FormatNumber(v.num)
	case KindText:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDatetime:
		return v.ts.Format(time.RFC3339)
	}
	return ""
}

// Key identifies the value including its type, so Number(1) and Text("1") differ
func (v Value) Key() string {
	if v.Kind() == KindMissing {
		return string(KindMissing)
	}
	return string(v.Kind()) + ":" + v.String()
}

// Equal compares kind and payload
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNumber:
		return v.num == other.num
	case KindText:
		return v.str == other.str
	case KindBool:
		return v.b == other.b
	case KindDatetime:
		return v.ts.Equal(other.ts)
	}
	return true
}

// Raw returns the Go scalar behind the value
func (v Value) Raw() interface{} {
	switch v.Kind() {
	case KindNumber:
		return v.num
	case KindText:
		return v.str
	case KindBool:
		return v.b
	case KindDatetime:
		return v.ts
	}
	return nil
}

// MarshalJSON writes the raw scalar
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind() == KindNumber && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Raw())
}

// UnmarshalJSON accepts any JSON scalar
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch raw.(type) {
	case map[string]interface{}, []interface{}:
		return fmt.Errorf("cell value must be a scalar, got %s", string(data))
	}
	*v = ValueOf(raw)
	return nil
}

// FormatNumber renders a float without exponent or trailing zeros
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
