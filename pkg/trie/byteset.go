package trie

// ByteSet is a set of byte values, used as a fast first-key filter ahead of
// a trie lookup.
type ByteSet [4]uint64

// Add inserts b.
func (s *ByteSet) Add(b byte) {
	s[b>>6] |= 1 << (b & 63)
}

// Has reports whether b is in the set.
func (s *ByteSet) Has(b byte) bool {
	return s[b>>6]&(1<<(b&63)) != 0
}
