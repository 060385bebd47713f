// Package replicated implements the shared document the interaction
// pipeline mutates: named ordered lists and last-writer-wins maps with
// atomic multi-collection transactions, change notification, and a
// conflict-free merge of remote operations. Commits are local and
// synchronous; replication to peers happens asynchronously through the
// change feed.
package replicated

import (
	"sync"

	"github.com/google/uuid"
)

// OpKind identifies a replicated operation.
type OpKind string

const (
	OpListInsert OpKind = "listInsert"
	OpListRemove OpKind = "listRemove"
	OpMapSet     OpKind = "mapSet"
	OpMapDelete  OpKind = "mapDelete"
)

// ElemID identifies one list element globally: the site that created it
// plus that site's sequence counter.
type ElemID struct {
	Site string `json:"site"`
	Seq  uint64 `json:"seq"`
}

// Op is one replicated operation, also the JSON wire form for the sync
// feed. Ordering between concurrent ops is (Lamport, Site).
type Op struct {
	Site       string `json:"site"`
	Lamport    uint64 `json:"lamport"`
	Collection string `json:"collection"`
	Kind       OpKind `json:"kind"`
	Elem       ElemID `json:"elem,omitempty"`
	Value      string `json:"value,omitempty"`
	Key        string `json:"key,omitempty"`
}

// Observer receives the batched operations of one committed transaction.
// Observers run after commit, outside the document lock.
type Observer func(ops []Op)

// Doc is one replica of the shared document. All local mutation goes
// through Transact; reads take consistent snapshots.
type Doc struct {
	mu      sync.Mutex
	site    string
	clock   uint64
	lists   map[string]*list
	maps    map[string]*lwwMap
	obsMu   sync.Mutex
	obs     map[int]Observer
	obsNext int
}

// NewDoc creates a replica with the given site id; an empty site gets a
// fresh uuid.
func NewDoc(site string) *Doc {
	if site == "" {
		site = uuid.NewString()
	}
	return &Doc{
		site:  site,
		lists: make(map[string]*list),
		maps:  make(map[string]*lwwMap),
		obs:   make(map[int]Observer),
	}
}

// Site returns this replica's site id.
func (d *Doc) Site() string {
	return d.site
}

// OnChange registers an observer for committed transactions and returns an
// unsubscribe function.
func (d *Doc) OnChange(fn Observer) func() {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()
	id := d.obsNext
	d.obsNext++
	d.obs[id] = fn
	return func() {
		d.obsMu.Lock()
		defer d.obsMu.Unlock()
		delete(d.obs, id)
	}
}

// Tx is a handle for mutations inside one transaction. It is only valid
// during the Transact callback.
type Tx struct {
	doc *Doc
	ops []Op
}

// Transact applies fn atomically: every mutation commits together and
// observers see the batch exactly once. The commit itself is synchronous
// and in-memory; callers never wait on replication.
func (d *Doc) Transact(fn func(tx *Tx)) {
	d.mu.Lock()
	tx := &Tx{doc: d}
	fn(tx)
	ops := tx.ops
	d.mu.Unlock()

	if len(ops) > 0 {
		d.notify(ops)
	}
}

// ApplyRemote merges operations from another replica. Application is
// idempotent and commutative for concurrent ops, so replicas converge
// regardless of arrival order. Observers are notified with the ops that
// actually changed state.
func (d *Doc) ApplyRemote(ops []Op) {
	d.mu.Lock()
	var applied []Op
	for _, op := range ops {
		if op.Site == d.site {
			continue // our own op echoed back
		}
		if op.Lamport > d.clock {
			d.clock = op.Lamport
		}
		if d.applyOne(op) {
			applied = append(applied, op)
		}
	}
	d.mu.Unlock()

	if len(applied) > 0 {
		d.notify(applied)
	}
}

func (d *Doc) applyOne(op Op) bool {
	switch op.Kind {
	case OpListInsert:
		return d.listFor(op.Collection).applyInsert(op)
	case OpListRemove:
		return d.listFor(op.Collection).applyRemove(op)
	case OpMapSet, OpMapDelete:
		return d.mapFor(op.Collection).apply(op)
	}
	return false
}

func (d *Doc) notify(ops []Op) {
	d.obsMu.Lock()
	fns := make([]Observer, 0, len(d.obs))
	for _, fn := range d.obs {
		fns = append(fns, fn)
	}
	d.obsMu.Unlock()
	for _, fn := range fns {
		fn(ops)
	}
}

func (d *Doc) nextOp(collection string, kind OpKind) Op {
	d.clock++
	return Op{
		Site:       d.site,
		Lamport:    d.clock,
		Collection: collection,
		Kind:       kind,
	}
}

func (d *Doc) listFor(name string) *list {
	l, ok := d.lists[name]
	if !ok {
		l = &list{removed: make(map[ElemID]bool)}
		d.lists[name] = l
	}
	return l
}

func (d *Doc) mapFor(name string) *lwwMap {
	m, ok := d.maps[name]
	if !ok {
		m = &lwwMap{entries: make(map[string]mapEntry)}
		d.maps[name] = m
	}
	return m
}

// ListSnapshot returns the live values of a named list in order.
func (d *Doc) ListSnapshot(name string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listFor(name).snapshot()
}

// ListContains reports whether a named list currently holds the value.
func (d *Doc) ListContains(name, value string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listFor(name).contains(value)
}

// MapSnapshot returns the live entries of a named map.
func (d *Doc) MapSnapshot(name string) map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mapFor(name).snapshot()
}

// MapGet returns one value from a named map.
func (d *Doc) MapGet(name, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mapFor(name).get(key)
}
