package grapheme

// Iterator walks grapheme clusters in a byte slice in a single pass.
//
// Example:
//
//	it := grapheme.NewIterator(text)
//	for it.Next() {
//	    fmt.Printf("cluster %d at byte %d: %q\n", it.Index(), it.Offset(), it.Cluster())
//	}
type Iterator struct {
	b      []byte
	off    int // start of the current cluster
	next   int // start of the following cluster
	index  int
	state  int
	primed bool
}

// NewIterator creates an iterator over the clusters in b.
func NewIterator(b []byte) *Iterator {
	return &Iterator{b: b, index: -1, state: -1}
}

// Seek positions the iterator so the next call to Next yields the cluster
// starting at off. off must be a cluster boundary. The cluster index restarts
// from zero at the seek point.
func (it *Iterator) Seek(off int) {
	if off < 0 {
		off = 0
	}
	if off > len(it.b) {
		off = len(it.b)
	}
	it.off = off
	it.next = off
	it.index = -1
	it.state = -1
	it.primed = false
}

// Next advances to the next cluster. Returns false at end of input.
func (it *Iterator) Next() bool {
	if it.next >= len(it.b) {
		it.off = len(it.b)
		return false
	}
	n, state := clusterLen(it.b, it.next, it.state)
	it.off = it.next
	it.next += n
	it.state = state
	it.index++
	it.primed = true
	return true
}

// Cluster returns the bytes of the current cluster.
func (it *Iterator) Cluster() []byte {
	if !it.primed {
		return nil
	}
	return it.b[it.off:it.next]
}

// Offset returns the byte offset of the current cluster.
func (it *Iterator) Offset() int {
	return it.off
}

// End returns the byte offset just past the current cluster.
func (it *Iterator) End() int {
	return it.next
}

// Index returns the index of the current cluster (0-based), or -1 before
// the first call to Next.
func (it *Iterator) Index() int {
	return it.index
}
