package ingest

import "strings"

// Cell is a single parsed value. Absent columns and spreadsheet NaN
// sentinels are resolved to Missing here, once, so nothing downstream has to
// re-check for them.
type Cell struct {
	Value   string
	Present bool
}

func (c Cell) Or(fallback string) string {
	if !c.Present {
		return fallback
	}
	return c.Value
}

// Row maps a column header to its cell for one data line of the file.
type Row map[string]Cell

func (r Row) Get(column string) Cell {
	if c, ok := r[column]; ok {
		return c
	}
	return Cell{}
}

// newCell normalizes one raw field. Pandas-style NaN sentinels come through
// spreadsheet exports as literal text.
func newCell(raw string) Cell {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "nan") {
		return Cell{}
	}
	return Cell{Value: v, Present: true}
}
