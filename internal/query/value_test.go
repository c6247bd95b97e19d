package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce_Precedence(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
	}{
		{"2024-01-01", KindDate},
		{"2024-01-01T10:30:00Z", KindDate},
		{"2024-01-01 10:30:00", KindDate},
		{"42", KindInt},
		{"-7", KindInt},
		{"alice", KindString},
		{"5 apples", KindString},
		{"3.14", KindString},
		{"3:04PM", KindString},
		{"Jan  2 15:04:05", KindString},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.kind, Coerce(tt.raw).Kind)
		})
	}
}

func TestCoerce_Payloads(t *testing.T) {
	d := Coerce("2024-03-05")
	require.Equal(t, KindDate, d.Kind)
	assert.True(t, d.Time.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))

	n := Coerce("42")
	require.Equal(t, KindInt, n.Kind)
	assert.Equal(t, int64(42), n.Int)

	s := Coerce("hello world")
	assert.Equal(t, "hello world", s.Str)
}

func TestValue_RoundTrip(t *testing.T) {
	for _, raw := range []string{"2024-12-31", "2024-01-01T08:00:00+07:00", "17", "golang"} {
		v := Coerce(raw)
		again := Coerce(v.String())
		assert.True(t, v.Equal(again), "round trip of %q: %v != %v", raw, v, again)
	}
}

func TestValue_Any(t *testing.T) {
	assert.Equal(t, int64(3), Int(3).Any())
	assert.Equal(t, "x", String("x").Any())
	assert.Equal(t, true, Bool(true).Any())
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, ts, Date(ts).Any())
}

func TestValue_EqualDiffersByKind(t *testing.T) {
	assert.False(t, Int(1).Equal(String("1")))
	assert.False(t, Bool(true).Equal(Int(1)))
	assert.True(t, Bool(false).Equal(Bool(false)))
}

func TestCoerce_YearlessLayoutsStayText(t *testing.T) {
	v := Coerce("3:04PM")
	require.Equal(t, KindString, v.Kind)
	assert.Equal(t, "3:04PM", v.Str)
}

func TestValue_TextKeepsToken(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
	}{
		{"2024", KindInt},
		{"007", KindInt},
		{"2024-01-01", KindDate},
		{"golang", KindString},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := Coerce(tt.raw)
			require.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, tt.raw, v.Text())
		})
	}

	assert.Equal(t, "12", Int(12).Text())
	assert.Equal(t, "1", Bool(true).Text())
	assert.Equal(t, "x", Value{Kind: KindString, Str: "x"}.Text())
}
