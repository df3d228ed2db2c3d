package parser

import "github.com/launchdash/dashboard/internal/util"

// columnIndex maps normalized header names to record positions.
// The first occurrence of a duplicated header wins.
type columnIndex struct {
	names []string
	pos   map[string]int
}

func newColumnIndex(header []string) columnIndex {
	idx := columnIndex{
		names: make([]string, 0, len(header)),
		pos:   make(map[string]int, len(header)),
	}
	for i, raw := range header {
		name := util.NormalizeHeader(raw)
		if name == "" {
			continue
		}
		idx.names = append(idx.names, name)
		if _, dup := idx.pos[name]; !dup {
			idx.pos[name] = i
		}
	}
	return idx
}

func (c columnIndex) has(name string) bool {
	_, ok := c.pos[name]
	return ok
}

// get returns the trimmed cell for name; ok is false when the column is
// absent or the record is too short to contain it.
func (c columnIndex) get(record []string, name string) (string, bool) {
	i, ok := c.pos[name]
	if !ok || i >= len(record) {
		return "", false
	}
	return util.NormalizeHeader(record[i]), true
}
