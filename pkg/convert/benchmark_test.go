package convert_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/unitex/pkg/convert"
	"github.com/yaklabco/unitex/pkg/rules"
)

func benchConverter(b *testing.B, mode convert.Mode) *convert.Converter {
	b.Helper()

	set, err := rules.LoadFiles([]string{filepath.Join("testdata", "rules.tsv")},
		rules.Options{InverseOnly: mode == convert.Reverse})
	if err != nil {
		b.Fatal(err)
	}
	conv, err := convert.New(set, convert.Options{Mode: mode})
	if err != nil {
		b.Fatal(err)
	}
	return conv
}

func benchInput(b *testing.B, name string) []byte {
	b.Helper()

	input, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		b.Fatal(err)
	}
	return bytes.Repeat(input, 64)
}

// Benchmark concealing a TeX document.
func BenchmarkConceal(b *testing.B) {
	conv := benchConverter(b, convert.Forward)
	input := benchInput(b, "forward.input")
	ctx := context.Background()

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for range b.N {
		if _, err := conv.Convert(ctx, bytes.NewReader(input), io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark restoring a concealed document.
func BenchmarkRestore(b *testing.B) {
	conv := benchConverter(b, convert.Reverse)
	input := benchInput(b, "forward.golden")
	ctx := context.Background()

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for range b.N {
		if _, err := conv.Convert(ctx, bytes.NewReader(input), io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}
