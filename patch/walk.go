package patch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CandidateSuffix is the filename suffix of wasm-bindgen background module
// artifacts.
const CandidateSuffix = "_bg.wasm"

// Candidates returns the module files a patch run should process. A regular
// file is its own single candidate regardless of name; a directory is
// walked recursively and every file ending in CandidateSuffix is collected,
// in walk order.
func Candidates(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var out []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), CandidateSuffix) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
