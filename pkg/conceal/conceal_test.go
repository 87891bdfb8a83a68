package conceal_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/unitex/pkg/conceal"
	"github.com/yaklabco/unitex/pkg/rules"
	"github.com/yaklabco/unitex/pkg/token"
)

const table = `\alpha	α
\beta	β
a	𝑎
a b	𝒶
\mathbb{R}	ℝ
_1	₁
_2	₂
_{i}	ᵢ
^2	²
^{+}	⁺
`

func compile(t *testing.T, src string) *rules.Set {
	t.Helper()

	parsed, err := rules.Parse("table.tsv", strings.NewReader(src))
	require.NoError(t, err)
	return rules.Compile(parsed, rules.Options{})
}

// line tokenizes the first line of input.
func line(input string) (*token.Arena, []token.Handle) {
	arena := &token.Arena{}
	arena.Reset()
	tk := token.NewTokenizer(strings.NewReader(input))

	var tokens []token.Handle
	for {
		h := tk.Next(arena)
		tokens = append(tokens, h)
		if arena.IsLineEnd(h) {
			return arena, tokens
		}
	}
}

func concealString(engine *conceal.Engine, input string) string {
	arena, tokens := line(input)
	ann := engine.Conceal(arena, tokens, nil)
	return string(conceal.AppendLine(nil, arena, tokens, ann))
}

func TestConceal(t *testing.T) {
	t.Parallel()

	engine := conceal.New(compile(t, table))

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"control word", "\\alpha x\n", "α x\n"},
		{"keeps spacing", "  \\alpha\t \\beta\n", "  α\t β\n"},
		{"longest match", "a b\n", "𝒶\n"},
		{"shorter match", "a c\n", "𝑎 c\n"},
		{"multi token key", "\\mathbb{R}^2", "ℝ²"},
		{"inner whitespace dropped", "\\mathbb {R}", "ℝ"},
		{"bare subscript", "x_1\n", "x₁\n"},
		{"subscript group", "x_{12}\n", "x₁₂\n"},
		{"direct group rule", "x_{i}\n", "xᵢ\n"},
		{"mixed group", "x_{1i2}\n", "x₁ᵢ₂\n"},
		{"superscript group", "e^{2+}", "e²⁺"},
		{"group with unknown body", "x_{13}\n", "x_{13}\n"},
		{"unclosed group", "x_{12\n", "x_{12\n"},
		{"failed group resumes at its body", "x_{a3}\n", "x_{𝑎3}\n"},
		{"failed group rescans matched body", "x_{1a}\n", "x_{1𝑎}\n"},
		{"control word needs exact name", "\\alphabet\n", "\\alphabet\n"},
		{"no rule", "no rule here\n", "no rule here\n"},
		{"invalid bytes pass through", "\xff\\alpha\n", "\xffα\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, concealString(engine, tt.input))
		})
	}
}

func TestConcealAnnotations(t *testing.T) {
	t.Parallel()

	engine := conceal.New(compile(t, table))
	arena, tokens := line("x_{12}")

	ann := engine.Conceal(arena, tokens, make([]conceal.Annotation, 0, 1))
	require.Len(t, ann, len(tokens))

	spans := make([]int, len(ann))
	for i, a := range ann {
		spans[i] = a.Span
	}
	// x _ { 1 2 } EOS
	assert.Equal(t, []int{0, 2, 0, 1, 1, 1, 0}, spans)
	assert.Empty(t, ann[1].Glyph)
	assert.Equal(t, "₁", ann[3].Glyph.String())
	assert.Equal(t, "₂", ann[4].Glyph.String())
}

func TestConcealReusesAnnotations(t *testing.T) {
	t.Parallel()

	engine := conceal.New(compile(t, table))

	arena, tokens := line("\\alpha \\beta a b a b x y z")
	ann := engine.Conceal(arena, tokens, nil)

	arena, tokens = line("x_{13}")
	ann = engine.Conceal(arena, tokens, ann)
	assert.Equal(t, "x_{13}", string(conceal.AppendLine(nil, arena, tokens, ann)))
}

func TestAppendLineWithoutAnnotations(t *testing.T) {
	t.Parallel()

	arena, tokens := line("  \\alpha_{1}\t\n")
	assert.Equal(t, "  \\alpha_{1}\t\n", string(conceal.AppendLine(nil, arena, tokens, nil)))
}
