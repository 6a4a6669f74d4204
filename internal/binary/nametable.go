package binary

// nameTable assigns a stable index to every string payload a module's
// operands reference, so block/function/global names survive a round
// trip through the container's compact per-operand encoding (spec.md §9,
// Open Question #1). Index 0 is reserved for the empty string, used as
// the "no name" sentinel for optional fields like Instruction.ResultName.
type nameTable struct {
	names []string
	index map[string]uint32
}

func newNameTable() *nameTable {
	return &nameTable{names: []string{""}, index: map[string]uint32{"": 0}}
}

// intern returns name's stable index, assigning one if this is the first
// time name has been seen.
func (t *nameTable) intern(name string) uint32 {
	if idx, ok := t.index[name]; ok {
		return idx
	}
	idx := uint32(len(t.names))
	t.names = append(t.names, name)
	t.index[name] = idx
	return idx
}

// nameTableReader is the decode-side counterpart: a flat slice indexed
// directly by the indices written by nameTable.intern.
type nameTableReader struct {
	names []string
}

func (r *nameTableReader) at(idx uint32) string {
	if int(idx) >= len(r.names) {
		return ""
	}
	return r.names[idx]
}
