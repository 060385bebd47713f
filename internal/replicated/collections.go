package replicated

import "sort"

// Tx mutation methods. All run with the document lock held.

// ListAppend appends a value to a named list.
func (tx *Tx) ListAppend(name, value string) {
	op := tx.doc.nextOp(name, OpListInsert)
	op.Elem = ElemID{Site: tx.doc.site, Seq: op.Lamport}
	op.Value = value
	tx.doc.listFor(name).applyInsert(op)
	tx.ops = append(tx.ops, op)
}

// ListRemoveAt removes the element at a live index. Out-of-range indexes
// are silent no-ops.
func (tx *Tx) ListRemoveAt(name string, index int) {
	l := tx.doc.listFor(name)
	elem, ok := l.elemAt(index)
	if !ok {
		return
	}
	tx.removeElem(name, elem)
}

// ListRemoveValue removes the first live element holding the value.
// Unknown values are silent no-ops.
func (tx *Tx) ListRemoveValue(name, value string) {
	l := tx.doc.listFor(name)
	elem, ok := l.elemOf(value)
	if !ok {
		return
	}
	tx.removeElem(name, elem)
}

func (tx *Tx) removeElem(name string, elem ElemID) {
	op := tx.doc.nextOp(name, OpListRemove)
	op.Elem = elem
	tx.doc.listFor(name).applyRemove(op)
	tx.ops = append(tx.ops, op)
}

// ListSnapshot reads the list inside the transaction.
func (tx *Tx) ListSnapshot(name string) []string {
	return tx.doc.listFor(name).snapshot()
}

// ListContains reads membership inside the transaction.
func (tx *Tx) ListContains(name, value string) bool {
	return tx.doc.listFor(name).contains(value)
}

// MapSet writes a key in a named map.
func (tx *Tx) MapSet(name, key, value string) {
	op := tx.doc.nextOp(name, OpMapSet)
	op.Key = key
	op.Value = value
	tx.doc.mapFor(name).apply(op)
	tx.ops = append(tx.ops, op)
}

// MapDelete removes a key from a named map.
func (tx *Tx) MapDelete(name, key string) {
	op := tx.doc.nextOp(name, OpMapDelete)
	op.Key = key
	tx.doc.mapFor(name).apply(op)
	tx.ops = append(tx.ops, op)
}

// MapGet reads one key inside the transaction.
func (tx *Tx) MapGet(name, key string) (string, bool) {
	return tx.doc.mapFor(name).get(key)
}

// MapSnapshot reads a map inside the transaction.
func (tx *Tx) MapSnapshot(name string) map[string]string {
	return tx.doc.mapFor(name).snapshot()
}

// list is a replicated ordered collection. Elements are kept sorted by
// (lamport, site, seq); removal tombstones the element so removes commute
// with concurrent inserts, and a remove arriving before its insert is
// remembered in the removed set.
type list struct {
	elems   []element
	removed map[ElemID]bool
}

type element struct {
	id      ElemID
	lamport uint64
	site    string
	value   string
	dead    bool
}

func (l *list) applyInsert(op Op) bool {
	if l.known(op.Elem) {
		return false
	}
	e := element{
		id:      op.Elem,
		lamport: op.Lamport,
		site:    op.Site,
		value:   op.Value,
	}
	if l.removed[op.Elem] {
		e.dead = true
		delete(l.removed, op.Elem)
	}

	i := sort.Search(len(l.elems), func(i int) bool {
		return !less(l.elems[i], e)
	})
	l.elems = append(l.elems, element{})
	copy(l.elems[i+1:], l.elems[i:])
	l.elems[i] = e
	return !e.dead
}

func (l *list) applyRemove(op Op) bool {
	for i := range l.elems {
		if l.elems[i].id == op.Elem {
			if l.elems[i].dead {
				return false
			}
			l.elems[i].dead = true
			return true
		}
	}
	// Remove arrived before its insert.
	if l.removed[op.Elem] {
		return false
	}
	l.removed[op.Elem] = true
	return true
}

func (l *list) known(id ElemID) bool {
	for i := range l.elems {
		if l.elems[i].id == id {
			return true
		}
	}
	return false
}

func (l *list) elemAt(index int) (ElemID, bool) {
	n := 0
	for i := range l.elems {
		if l.elems[i].dead {
			continue
		}
		if n == index {
			return l.elems[i].id, true
		}
		n++
	}
	return ElemID{}, false
}

func (l *list) elemOf(value string) (ElemID, bool) {
	for i := range l.elems {
		if !l.elems[i].dead && l.elems[i].value == value {
			return l.elems[i].id, true
		}
	}
	return ElemID{}, false
}

func (l *list) snapshot() []string {
	var out []string
	for i := range l.elems {
		if !l.elems[i].dead {
			out = append(out, l.elems[i].value)
		}
	}
	return out
}

func (l *list) contains(value string) bool {
	_, ok := l.elemOf(value)
	return ok
}

func less(a, b element) bool {
	if a.lamport != b.lamport {
		return a.lamport < b.lamport
	}
	if a.site != b.site {
		return a.site < b.site
	}
	return a.id.Seq < b.id.Seq
}

// lwwMap is a replicated map with last-writer-wins register semantics per
// key, ordered by (lamport, site).
type lwwMap struct {
	entries map[string]mapEntry
}

type mapEntry struct {
	value   string
	lamport uint64
	site    string
	dead    bool
}

func (m *lwwMap) apply(op Op) bool {
	cur, ok := m.entries[op.Key]
	if ok {
		if op.Lamport < cur.lamport ||
			(op.Lamport == cur.lamport && op.Site <= cur.site) {
			return false
		}
	}
	m.entries[op.Key] = mapEntry{
		value:   op.Value,
		lamport: op.Lamport,
		site:    op.Site,
		dead:    op.Kind == OpMapDelete,
	}
	return true
}

func (m *lwwMap) get(key string) (string, bool) {
	e, ok := m.entries[key]
	if !ok || e.dead {
		return "", false
	}
	return e.value, true
}

func (m *lwwMap) snapshot() map[string]string {
	out := make(map[string]string)
	for k, e := range m.entries {
		if !e.dead {
			out[k] = e.value
		}
	}
	return out
}
