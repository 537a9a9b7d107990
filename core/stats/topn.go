package stats

import (
	"sort"

	"github.com/costlens/costlens/schema"
)

// ColumnValue extracts the value of a flattened statistic column from a
// group. "count" always resolves; other columns resolve only when the
// statistic was defined for the group.
func ColumnValue(g *schema.GroupStats, column string) (float64, bool) {
	if column == "count" {
		return float64(g.Count), true
	}
	if c, ok := g.Cell(column); ok && c.Valid {
		return c.Value, true
	}
	return 0, false
}

// TopN returns the n groups with the highest (desc) or lowest (asc) value
// in the given column. Groups where the column is undefined sink to the
// end regardless of direction. Ties break by lexical GroupKey order so
// selection is deterministic. The input slice is not modified.
func TopN(groups []schema.GroupStats, column string, n int, dir schema.Direction) []schema.GroupStats {
	ranked := make([]schema.GroupStats, len(groups))
	copy(ranked, groups)

	sort.SliceStable(ranked, func(i, j int) bool {
		vi, oki := ColumnValue(&ranked[i], column)
		vj, okj := ColumnValue(&ranked[j], column)
		if oki != okj {
			return oki
		}
		if oki && vi != vj {
			if dir == schema.Ascending {
				return vi < vj
			}
			return vi > vj
		}
		return ranked[i].Key.Less(ranked[j].Key)
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
