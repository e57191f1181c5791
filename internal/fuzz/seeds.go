package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10
	maxFuzzInput = 16 << 10
)

var typeSeeds = []string{
	"Int",
	"?",
	"Never",
	"ref ?",
	"uni mut Map[String, Array[?]]",
	"mut std.option.Option[T]",
	"(Int, ref String)",
	"fn move (String, ref Foo) -> uni Bar",
	"fn ()",
	"Pointer[UInt8]",
	"Array[",
	"uni uni Int",
	"fn -> -> Int",
	"((((",
}

// manifestSeeds returns the manifests under testdata/manifests.
func manifestSeeds(f *testing.F) [][]byte {
	f.Helper()
	root := filepath.Join("..", "..", "testdata", "manifests")
	var out [][]byte
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".toml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil || len(data) > maxSeedBytes {
			return nil
		}
		out = append(out, data)
		return nil
	})
	return out
}

func clip(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
