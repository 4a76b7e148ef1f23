package table

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVTrimsHeaderAndPadsRows(t *testing.T) {
	tb, err := ReadCSV(strings.NewReader(" traderId , profit_factor\n1,2.5\n2\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"traderId", "profit_factor"}, tb.Columns())
	assert.Equal(t, 2, tb.Len())
	assert.Equal(t, "", tb.Cell(1, "profit_factor"))
	assert.True(t, math.IsNaN(tb.Float(1, "profit_factor")))
	assert.Equal(t, 2.5, tb.Float(0, "profit_factor"))
}

func TestReadCSVEmptyStream(t *testing.T) {
	tb, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, tb.Width())
	assert.True(t, tb.IsEmpty())
}

func TestReadCSVRejectsExtraFields(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2,3\n"))
	require.Error(t, err)
}

func TestReadCSVDuplicateHeaders(t *testing.T) {
	tb, err := ReadCSV(strings.NewReader("a,a,a\n1,2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a.1", "a.2"}, tb.Columns())
}

func TestFloatsCountsCoercionFailures(t *testing.T) {
	tb := New([]string{"x"}, [][]string{{"1"}, {"abc"}, {""}, {"inf"}})
	vals, failed := tb.Floats("x")

	assert.Equal(t, 1, failed)
	assert.Equal(t, 1.0, vals[0])
	assert.True(t, math.IsNaN(vals[1]))
	assert.True(t, math.IsNaN(vals[2]))
	assert.True(t, math.IsInf(vals[3], 1))
}

func TestWithColumnInsertsWithoutMutating(t *testing.T) {
	base := New([]string{"a", "b"}, [][]string{{"1", "2"}})
	next := base.WithColumn("s", []string{"x"}, 1)

	assert.Equal(t, []string{"a", "s", "b"}, next.Columns())
	assert.Equal(t, []string{"1", "x", "2"}, next.Row(0))
	assert.Equal(t, []string{"a", "b"}, base.Columns())
}

func TestMoveAndDropColumns(t *testing.T) {
	base := New([]string{"a", "b", "c"}, [][]string{{"1", "2", "3"}})

	moved := base.MoveColumn("c", 0)
	assert.Equal(t, []string{"c", "a", "b"}, moved.Columns())
	assert.Equal(t, []string{"3", "1", "2"}, moved.Row(0))

	dropped := moved.DropColumns("a", "missing")
	assert.Equal(t, []string{"c", "b"}, dropped.Columns())
}

func TestConcatUnionsColumns(t *testing.T) {
	first := New([]string{"a", "b"}, [][]string{{"1", "2"}})
	second := New([]string{"b", "c"}, [][]string{{"3", "4"}})

	out := Concat(first, second)
	assert.Equal(t, []string{"a", "b", "c"}, out.Columns())
	assert.Equal(t, []string{"1", "2", ""}, out.Row(0))
	assert.Equal(t, []string{"", "3", "4"}, out.Row(1))
}

func TestFindIsCaseInsensitive(t *testing.T) {
	tb := New([]string{"TraderID", "HourOfDay_utc"}, nil)

	name, ok := tb.Find("traderid")
	require.True(t, ok)
	assert.Equal(t, "TraderID", name)

	name, ok = tb.FindPrefix("hourofday")
	require.True(t, ok)
	assert.Equal(t, "HourOfDay_utc", name)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tb := New([]string{"a", "b"}, [][]string{{"1", "x,y"}})
	var buf bytes.Buffer
	require.NoError(t, tb.WriteCSV(&buf))
	assert.Equal(t, "a,b\n1,\"x,y\"\n", buf.String())
}
