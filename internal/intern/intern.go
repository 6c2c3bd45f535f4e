// Package intern implements a place/transition name interning table: a
// scoped struct, never process-global state, so two tables never share or
// contend on entries. No other package in this repository constructs one.
package intern

// Table assigns small dense integer IDs to strings, backwards and
// forwards, so a caller can build dense arrays indexed by place or
// transition rather than carry string keys through hot loops.
type Table struct {
	ids    map[string]int
	names  []string
}

func New() *Table {
	return &Table{ids: map[string]int{}}
}

// Intern returns s's ID, assigning a fresh one the first time s is seen.
func (t *Table) Intern(s string) int {
	if id, ok := t.ids[s]; ok {
		return id
	}
	id := len(t.names)
	t.ids[s] = id
	t.names = append(t.names, s)
	return id
}

// Lookup returns s's ID without assigning one, and whether it was found.
func (t *Table) Lookup(s string) (int, bool) {
	id, ok := t.ids[s]
	return id, ok
}

// Name returns the string an ID was interned from.
func (t *Table) Name(id int) string {
	return t.names[id]
}

// Len returns the number of distinct strings interned so far.
func (t *Table) Len() int { return len(t.names) }
