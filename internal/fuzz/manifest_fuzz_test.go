package fuzztests

import (
	"testing"

	"keel/internal/decl"
	"keel/internal/types"
)

func FuzzDeclareManifest(f *testing.F) {
	for _, seed := range manifestSeeds(f) {
		f.Add(seed)
	}
	f.Add([]byte("[[modules]]\nname = \"app\"\n"))
	f.Add([]byte("[[bindings]]\nmodule = \"app\"\n"))

	f.Fuzz(func(t *testing.T, input []byte) {
		p, err := decl.Decode(clip(input))
		if err != nil {
			return
		}
		_, _ = decl.Declare(types.New(), p)
	})
}
