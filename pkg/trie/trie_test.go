package trie_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/unitex/pkg/trie"
)

func path(keys ...string) [][]byte {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out
}

// feed returns a key function over keys that records how many were requested.
func feed(keys []string, asked *int) func(int) ([]byte, bool) {
	return func(i int) ([]byte, bool) {
		*asked = i + 1
		if i >= len(keys) {
			return nil, false
		}
		return []byte(keys[i]), true
	}
}

// lookup returns the payload stored under exactly keys.
func lookup[P any](tr *trie.Trie[P], keys ...string) (P, bool) {
	var asked int
	n, got := tr.LongestMatch(feed(keys, &asked))
	if n != len(keys) || n == 0 {
		var zero P
		return zero, false
	}
	return got, true
}

func TestInsertAndLookup(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	assert.False(t, tr.Insert(path(`\alpha`), "α"))
	assert.False(t, tr.Insert(path(`\mathbb`, "A"), "𝔸"))
	assert.False(t, tr.Insert(path(), "ignored"))
	assert.Equal(t, 2, tr.Len())

	got, ok := lookup(tr, `\mathbb`, "A")
	require.True(t, ok)
	assert.Equal(t, "𝔸", got)

	_, ok = lookup(tr, `\mathbb`)
	assert.False(t, ok, "interior node is not terminal")

	_, ok = lookup(tr, `\beta`)
	assert.False(t, ok)
}

func TestInsertReplaces(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	tr.Insert(path("x"), "first")
	assert.True(t, tr.Insert(path("x"), "second"))
	assert.Equal(t, 1, tr.Len())

	got, _ := lookup(tr, "x")
	assert.Equal(t, "second", got)
}

func TestLongestMatch(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	tr.Insert(path("a"), "A")
	tr.Insert(path("a", "b", "c"), "ABC")
	tr.Insert(path("x", "y"), "XY")

	tests := []struct {
		name  string
		keys  []string
		wantN int
		want  string
	}{
		{"longest wins", []string{"a", "b", "c", "d"}, 3, "ABC"},
		{"falls back to shorter", []string{"a", "b", "d"}, 1, "A"},
		{"prefix only", []string{"x"}, 0, ""},
		{"no match", []string{"q"}, 0, ""},
		{"empty input", nil, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var asked int
			n, got := tr.LongestMatch(feed(tt.keys, &asked))
			assert.Equal(t, tt.wantN, n)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLongestMatchStopsAtLeaf(t *testing.T) {
	t.Parallel()

	tr := trie.New[int]()
	tr.Insert(path("a", "b"), 1)

	var asked int
	n, got := tr.LongestMatch(feed([]string{"a", "b", "c", "d"}, &asked))
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, got)
	assert.Equal(t, 2, asked, "no key is requested past a leaf")
}

func TestNodeNavigation(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	tr.Insert(path("a", "b"), "AB")

	root := tr.Root()
	assert.True(t, root.HasChildren())
	_, ok := root.Payload()
	assert.False(t, ok)

	a := root.Child([]byte("a"))
	require.NotNil(t, a)
	_, ok = a.Payload()
	assert.False(t, ok)

	b := a.Child([]byte("b"))
	require.NotNil(t, b)
	assert.False(t, b.HasChildren())
	payload, ok := b.Payload()
	assert.True(t, ok)
	assert.Equal(t, "AB", payload)

	var missing *trie.Node[string]
	assert.Nil(t, missing.Child([]byte("z")))
	assert.False(t, missing.HasChildren())
}

func TestByteSet(t *testing.T) {
	t.Parallel()

	var s trie.ByteSet
	for _, b := range []byte{0, 63, 64, 200, 255} {
		s.Add(b)
	}

	for i := range 256 {
		b := byte(i)
		want := b == 0 || b == 63 || b == 64 || b == 200 || b == 255
		assert.Equal(t, want, s.Has(b), "byte %d", b)
	}
}
