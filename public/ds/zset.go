package ds

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/google/btree"
)

var ErrInvalidBorder = errors.New("min or max is not a float")

type ZItem struct {
	Member string
	Score  float64
}

func zLess(a, b ZItem) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Member < b.Member
}

// ZSet keeps member -> score in a map and (score, member) order in a btree
type ZSet struct {
	dict map[string]float64
	tree *btree.BTreeG[ZItem]
}

func NewZSet() *ZSet {
	return &ZSet{
		dict: make(map[string]float64),
		tree: btree.NewG[ZItem](32, zLess),
	}
}

// Add inserts or rescores member, reports whether the member is new
func (z *ZSet) Add(member string, score float64) bool {
	old, ok := z.dict[member]
	if ok {
		if old == score {
			return false
		}
		z.tree.Delete(ZItem{Member: member, Score: old})
	}
	z.dict[member] = score
	z.tree.ReplaceOrInsert(ZItem{Member: member, Score: score})
	return !ok
}

func (z *ZSet) Score(member string) (float64, bool) {
	score, ok := z.dict[member]
	return score, ok
}

func (z *ZSet) Remove(member string) bool {
	score, ok := z.dict[member]
	if !ok {
		return false
	}
	delete(z.dict, member)
	z.tree.Delete(ZItem{Member: member, Score: score})
	return true
}

func (z *ZSet) Len() int {
	return len(z.dict)
}

// Rank returns the 0 based position of member
func (z *ZSet) Rank(member string, reverse bool) (int, bool) {
	score, ok := z.dict[member]
	if !ok {
		return 0, false
	}
	target := ZItem{Member: member, Score: score}
	rank := 0
	z.tree.Ascend(func(item ZItem) bool {
		if item == target {
			return false
		}
		rank++
		return true
	})
	if reverse {
		rank = z.Len() - 1 - rank
	}
	return rank, true
}

// RangeByRank returns items in [start, stop], both already clamped to [0, Len)
func (z *ZSet) RangeByRank(start, stop int, reverse bool) []ZItem {
	if start > stop || start >= z.Len() {
		return []ZItem{}
	}
	items := make([]ZItem, 0, stop-start+1)
	i := 0
	visit := func(item ZItem) bool {
		if i > stop {
			return false
		}
		if i >= start {
			items = append(items, item)
		}
		i++
		return true
	}
	if reverse {
		z.tree.Descend(visit)
	} else {
		z.tree.Ascend(visit)
	}
	return items
}

// RangeByScore returns items within [min, max], skipping offset of them and
// returning at most limit, limit < 0 means no limit
func (z *ZSet) RangeByScore(min, max ScoreBorder, reverse bool, offset, limit int) []ZItem {
	items := make([]ZItem, 0)
	visit := func(item ZItem) bool {
		if !min.Below(item.Score) {
			return !reverse
		}
		if !max.Above(item.Score) {
			return reverse
		}
		if offset > 0 {
			offset--
			return true
		}
		if limit == 0 {
			return false
		}
		items = append(items, item)
		if limit > 0 {
			limit--
		}
		return true
	}
	if reverse {
		z.tree.Descend(visit)
	} else {
		z.tree.AscendGreaterOrEqual(ZItem{Score: min.Value}, visit)
	}
	return items
}

func (z *ZSet) Count(min, max ScoreBorder) int {
	return len(z.RangeByScore(min, max, false, 0, -1))
}

// Items returns every item in ascending order
func (z *ZSet) Items() []ZItem {
	items := make([]ZItem, 0, z.Len())
	z.tree.Ascend(func(item ZItem) bool {
		items = append(items, item)
		return true
	})
	return items
}

// Clone is copy on write for the tree, later writes to either copy stay private
func (z *ZSet) Clone() *ZSet {
	dict := make(map[string]float64, len(z.dict))
	for k, v := range z.dict {
		dict[k] = v
	}
	return &ZSet{dict: dict, tree: z.tree.Clone()}
}

// ScoreBorder is one end of a score range, "(" makes it exclusive
type ScoreBorder struct {
	Value   float64
	Exclude bool
}

// Below reports whether score satisfies the border used as a minimum
func (b ScoreBorder) Below(score float64) bool {
	if b.Exclude {
		return b.Value < score
	}
	return b.Value <= score
}

// Above reports whether score satisfies the border used as a maximum
func (b ScoreBorder) Above(score float64) bool {
	if b.Exclude {
		return b.Value > score
	}
	return b.Value >= score
}

func ParseScoreBorder(s string) (ScoreBorder, error) {
	border := ScoreBorder{}
	if strings.HasPrefix(s, "(") {
		border.Exclude = true
		s = s[1:]
	}
	switch strings.ToLower(s) {
	case "-inf":
		border.Value = math.Inf(-1)
		return border, nil
	case "+inf", "inf":
		border.Value = math.Inf(1)
		return border, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return border, ErrInvalidBorder
	}
	border.Value = v
	return border, nil
}
