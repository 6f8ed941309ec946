package ainfile

import "github.com/dolthub/swiss"

// SymbolTable indexes same-named entries (functions, locals, HLL
// functions, ...) by name, keeping every index that shares a name so the
// `name#N` duplicate-disambiguation scheme (§4.2) can pick the Nth one.
// Backed by a Swiss-table map for O(1) lookup even on files with tens of
// thousands of functions, where asm_resolve_arg's linear scan in the
// original source would otherwise dominate assembly time.
type SymbolTable struct {
	byName *swiss.Map[string, []int]
}

// NewSymbolTable returns an empty table sized for roughly n entries.
func NewSymbolTable(n int) *SymbolTable {
	if n < 1 {
		n = 1
	}
	return &SymbolTable{byName: swiss.NewMap[string, []int](uint32(n))}
}

// Add records that name is held by the given index. Call once per entry,
// in table order, so that duplicate occurrences come back out in the
// order the file model stores them (Nth duplicate == index N in this
// slice, matching parse_identifier's `name#N` convention).
func (t *SymbolTable) Add(name string, index int) {
	indices, _ := t.byName.Get(name)
	indices = append(indices, index)
	t.byName.Put(name, indices)
}

// Lookup returns the nth (0-based) index registered under name, and
// whether it was found.
func (t *SymbolTable) Lookup(name string, nth int) (int, bool) {
	indices, ok := t.byName.Get(name)
	if !ok || nth < 0 || nth >= len(indices) {
		return 0, false
	}
	return indices[nth], true
}

// Count returns how many entries are registered under name.
func (t *SymbolTable) Count(name string) int {
	indices, ok := t.byName.Get(name)
	if !ok {
		return 0
	}
	return len(indices)
}
