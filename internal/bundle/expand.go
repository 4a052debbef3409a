package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves bundle arguments into a sorted, de-duplicated list of files.
// Arguments containing glob metacharacters are matched with doublestar
// (e.g. traces/**/*.json.gz); plain arguments must name existing files.
func Expand(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("bundle not found: %w", err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("bundle %s is a directory, use a glob such as %s", arg, filepath.Join(arg, "**", "*.json*"))
			}
			add(filepath.Clean(arg))
			continue
		}

		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern matching failed for %q: %w", arg, err)
		}
		for _, m := range matches {
			add(filepath.Clean(m))
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no bundles matched %s", strings.Join(args, " "))
	}
	slices.Sort(paths)
	return paths, nil
}
