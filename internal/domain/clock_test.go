package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	c, err := ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, NewClockTime(9, 30, 0), c)

	c, err = ParseClockTime("23:59:58")
	require.NoError(t, err)
	assert.Equal(t, "23:59:58", c.String())

	c, err = ParseClockTime("07:15:00.000000")
	require.NoError(t, err)
	assert.Equal(t, NewClockTime(7, 15, 0), c)

	_, err = ParseClockTime("25:00")
	assert.Error(t, err)
	_, err = ParseClockTime("noon")
	assert.Error(t, err)
}

func TestClockTimeJSON(t *testing.T) {
	var h OpeningHours
	require.NoError(t, json.Unmarshal([]byte(`{"day":3,"openAt":"08:00","closeAt":"12:30:00"}`), &h))
	assert.Equal(t, Wednesday, h.Day)
	assert.Equal(t, NewClockTime(8, 0, 0), h.OpenAt)

	out, err := json.Marshal(h.CloseAt)
	require.NoError(t, err)
	assert.JSONEq(t, `"12:30:00"`, string(out))
}

func TestClockTimeScan(t *testing.T) {
	var c ClockTime
	require.NoError(t, c.Scan("10:05:00"))
	assert.Equal(t, NewClockTime(10, 5, 0), c)
	require.NoError(t, c.Scan([]byte("11:00:00")))
	assert.Equal(t, NewClockTime(11, 0, 0), c)
	assert.Error(t, c.Scan(42))
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-01"`), &d))
	assert.Equal(t, NewDate(2024, 3, 1), d)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-03-01"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"01/03/2024"`), &d))
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, NewPageRequest(1, 2), 5)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, int64(5), p.TotalElements)

	empty := NewPage[int](nil, NewPageRequest(0, 0), 0)
	assert.NotNil(t, empty.Content)
	assert.Equal(t, DefaultPageSize, empty.Size)
	assert.Equal(t, MaxPageSize, NewPageRequest(0, 1000).Size)
}

func TestNewPageRequestKeepsOffsetInRange(t *testing.T) {
	for _, size := range []int{1, 5, 100} {
		req := NewPageRequest(1e17, size)
		assert.GreaterOrEqual(t, req.Offset(), 0)
		assert.LessOrEqual(t, req.Offset(), math.MaxInt32)
	}
	assert.Equal(t, 3, NewPageRequest(3, 10).Page)
}
