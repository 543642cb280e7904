// Package verify checks that a patched module is still a well-formed
// WebAssembly binary by compiling it with wazero.
package verify

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
)

// Module compiles bin with a throwaway interpreter runtime and returns the
// validation error wazero reports, if any. It does not instantiate the
// module, so no start function or import resolution runs.
func Module(ctx context.Context, bin []byte) error {
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, bin)
	if err != nil {
		return fmt.Errorf("compile module: %w", err)
	}
	return compiled.Close(ctx)
}
