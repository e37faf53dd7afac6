package ds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func members(items []ZItem) []string {
	res := make([]string, 0, len(items))
	for _, item := range items {
		res = append(res, item.Member)
	}
	return res
}

func TestZSet_AddOrder(t *testing.T) {
	z := NewZSet()
	assert.True(t, z.Add("b", 1))
	assert.True(t, z.Add("a", 1))
	assert.True(t, z.Add("c", 0.5))
	assert.False(t, z.Add("c", 3))

	assert.Equal(t, 3, z.Len())
	assert.Equal(t, []string{"a", "b", "c"}, members(z.Items()))

	score, ok := z.Score("c")
	assert.True(t, ok)
	assert.Equal(t, 3.0, score)

	rank, ok := z.Rank("b", false)
	assert.True(t, ok)
	assert.Equal(t, 1, rank)
	rank, _ = z.Rank("a", true)
	assert.Equal(t, 2, rank)
	_, ok = z.Rank("zz", false)
	assert.False(t, ok)

	assert.True(t, z.Remove("a"))
	assert.False(t, z.Remove("a"))
	assert.Equal(t, []string{"b", "c"}, members(z.Items()))
}

func TestZSet_Ranges(t *testing.T) {
	z := NewZSet()
	for i, m := range []string{"one", "two", "three", "four", "five"} {
		z.Add(m, float64(i+1))
	}

	assert.Equal(t, []string{"two", "three"}, members(z.RangeByRank(1, 2, false)))
	assert.Equal(t, []string{"five", "four"}, members(z.RangeByRank(0, 1, true)))
	assert.Empty(t, z.RangeByRank(7, 9, false))

	min, _ := ParseScoreBorder("(2")
	max, _ := ParseScoreBorder("4")
	assert.Equal(t, []string{"three", "four"}, members(z.RangeByScore(min, max, false, 0, -1)))
	assert.Equal(t, []string{"four", "three"}, members(z.RangeByScore(min, max, true, 0, -1)))
	assert.Equal(t, 2, z.Count(min, max))

	all, _ := ParseScoreBorder("-inf")
	top, _ := ParseScoreBorder("+inf")
	assert.Equal(t, []string{"two", "three"}, members(z.RangeByScore(all, top, false, 1, 2)))
	assert.Equal(t, []string{"four"}, members(z.RangeByScore(all, top, true, 1, 1)))
	assert.Empty(t, z.RangeByScore(all, top, false, 0, 0))

	_, err := ParseScoreBorder("abc")
	assert.Equal(t, ErrInvalidBorder, err)
	b, err := ParseScoreBorder("(-inf")
	assert.Nil(t, err)
	assert.True(t, math.IsInf(b.Value, -1))
	assert.True(t, b.Exclude)
}

func TestZSet_CloneIsIndependent(t *testing.T) {
	z := NewZSet()
	z.Add("a", 1)
	z.Add("b", 2)

	c := z.Clone()
	c.Add("c", 3)
	c.Remove("a")

	assert.Equal(t, []string{"a", "b"}, members(z.Items()))
	assert.Equal(t, []string{"b", "c"}, members(c.Items()))
}
