// Package trie provides a prefix tree keyed by token texts, used to look up
// the longest run of tokens that forms a known sequence.
package trie

// Node is one vertex of a Trie. A node is terminal when a sequence ends at
// it, in which case it carries that sequence's payload.
type Node[P any] struct {
	children map[string]*Node[P]
	payload  P
	terminal bool
}

// Child returns the child reached by key, or nil.
func (n *Node[P]) Child(key []byte) *Node[P] {
	if n == nil {
		return nil
	}
	return n.children[string(key)]
}

// HasChildren reports whether any sequence continues past n.
func (n *Node[P]) HasChildren() bool {
	return n != nil && len(n.children) > 0
}

// Payload returns the payload of a terminal node.
func (n *Node[P]) Payload() (P, bool) {
	if n == nil || !n.terminal {
		var zero P
		return zero, false
	}
	return n.payload, true
}

// Trie maps sequences of token texts to payloads.
type Trie[P any] struct {
	root *Node[P]
	size int
}

// New returns an empty Trie.
func New[P any]() *Trie[P] {
	return &Trie[P]{root: &Node[P]{}}
}

// Root returns the root node. The root itself is never terminal.
func (t *Trie[P]) Root() *Node[P] {
	return t.root
}

// Len returns the number of sequences stored.
func (t *Trie[P]) Len() int {
	return t.size
}

// Insert stores payload under path. It reports whether an existing payload
// for the same path was replaced. An empty path is ignored.
func (t *Trie[P]) Insert(path [][]byte, payload P) bool {
	if len(path) == 0 {
		return false
	}

	node := t.root
	for _, key := range path {
		child := node.children[string(key)]
		if child == nil {
			if node.children == nil {
				node.children = make(map[string]*Node[P])
			}
			child = &Node[P]{}
			node.children[string(key)] = child
		}
		node = child
	}

	replaced := node.terminal
	node.payload = payload
	node.terminal = true
	if !replaced {
		t.size++
	}
	return replaced
}

// LongestMatch walks the trie greedily. key(i) supplies the i-th key of the
// candidate sequence and reports false when there is none. key is only called
// while the current node has children, so a caller may consume input lazily.
// It returns the length of the longest stored sequence found and its
// payload, or zero when nothing matched.
func (t *Trie[P]) LongestMatch(key func(i int) ([]byte, bool)) (int, P) {
	var (
		best    int
		payload P
	)

	node := t.root
	for i := 0; node.HasChildren(); i++ {
		k, ok := key(i)
		if !ok {
			break
		}
		node = node.Child(k)
		if node == nil {
			break
		}
		if node.terminal {
			best = i + 1
			payload = node.payload
		}
	}

	return best, payload
}
