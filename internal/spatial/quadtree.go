package spatial

// Quadtree tuning constants.
const (
	// splitThreshold is the number of items a node holds before it splits.
	splitThreshold = 8
	// maxDepth bounds subdivision so heavily overlapping items cannot
	// recurse forever.
	maxDepth = 10
)

// DefaultRegion is the build region used by the scene index. It is
// deliberately much larger than any screen so items pushed off-canvas by a
// pan/zoom transform still land inside the tree without re-deriving bounds.
var DefaultRegion = Rect{X: -4096, Y: -4096, W: 12288, H: 12288}

// Index is a region quadtree over axis-aligned item bounds. Build once,
// query many times, throw away.
type Index struct {
	root  *node
	count int
}

type node struct {
	bounds   Rect
	items    []Item
	children *[4]node
	depth    int
}

// Build constructs an index over the given region containing all items.
// Items whose bounds fall outside the region are kept at the root so a
// query can still find them.
func Build(region Rect, items []Item) *Index {
	idx := &Index{root: &node{bounds: region}}
	for _, it := range items {
		idx.root.insert(it)
		idx.count++
	}
	return idx
}

// Len returns the number of items in the index.
func (idx *Index) Len() int {
	return idx.count
}

// QueryCircle returns every item whose bounding box intersects the circle.
// Subtrees whose region does not intersect the circle are skipped
// (broad phase); each surviving candidate gets an exact box/circle test, so
// the returned set contains no false positives.
func (idx *Index) QueryCircle(c Circle) []Item {
	var out []Item
	idx.root.queryCircle(c, &out)
	return out
}

func (n *node) insert(it Item) {
	if n.children == nil {
		n.items = append(n.items, it)
		if len(n.items) > splitThreshold && n.depth < maxDepth {
			n.split()
		}
		return
	}

	if child := n.childFor(it.Bounds); child != nil {
		child.insert(it)
		return
	}
	// Straddles a boundary: stays at this node.
	n.items = append(n.items, it)
}

func (n *node) split() {
	hw := n.bounds.W / 2
	hh := n.bounds.H / 2
	n.children = &[4]node{
		{bounds: Rect{n.bounds.X, n.bounds.Y, hw, hh}, depth: n.depth + 1},
		{bounds: Rect{n.bounds.X + hw, n.bounds.Y, hw, hh}, depth: n.depth + 1},
		{bounds: Rect{n.bounds.X, n.bounds.Y + hh, hw, hh}, depth: n.depth + 1},
		{bounds: Rect{n.bounds.X + hw, n.bounds.Y + hh, hw, hh}, depth: n.depth + 1},
	}

	items := n.items
	n.items = nil
	for _, it := range items {
		if child := n.childFor(it.Bounds); child != nil {
			child.insert(it)
		} else {
			n.items = append(n.items, it)
		}
	}
}

// childFor returns the single child that fully contains r, or nil if r
// straddles a boundary or lies outside this node.
func (n *node) childFor(r Rect) *node {
	for i := range n.children {
		c := &n.children[i]
		if r.X >= c.bounds.X && r.X+r.W <= c.bounds.X+c.bounds.W &&
			r.Y >= c.bounds.Y && r.Y+r.H <= c.bounds.Y+c.bounds.H {
			return c
		}
	}
	return nil
}

func (n *node) queryCircle(c Circle, out *[]Item) {
	for _, it := range n.items {
		if it.Bounds.IntersectsCircle(c) {
			*out = append(*out, it)
		}
	}
	if n.children == nil {
		return
	}
	for i := range n.children {
		child := &n.children[i]
		if child.bounds.IntersectsCircle(c) {
			child.queryCircle(c, out)
		}
	}
}
