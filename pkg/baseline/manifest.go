package baseline

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ManifestOptions selects the files of a data folder that go into a manifest.
type ManifestOptions struct {
	// Include patterns; a file must match at least one.
	Include []string
	// Exclude patterns; a file matching any of them is skipped.
	Exclude []string
	// Prefix is prepended to every listed path.
	Prefix string
}

// DefaultManifestOptions lists every .txt file outside _deprecated folders
// under the es_stable_data/ prefix.
func DefaultManifestOptions() ManifestOptions {
	return ManifestOptions{
		Include: []string{"**/*.txt"},
		Exclude: []string{"_deprecated/**", "**/_deprecated/**"},
		Prefix:  "es_stable_data/",
	}
}

// BuildManifest walks fsys and returns the sorted manifest entries.
func BuildManifest(fsys fs.FS, opts ManifestOptions) ([]string, error) {
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}

	var entries []string
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !matchAny(opts.Include, name) || matchAny(opts.Exclude, name) {
			return nil
		}
		entries = append(entries, opts.Prefix+name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk data folder: %w", err)
	}

	sort.Strings(entries)
	return entries, nil
}

// FormatManifest renders entries one per line with a trailing newline.
func FormatManifest(entries []string) string {
	if len(entries) == 0 {
		return ""
	}
	return strings.Join(entries, "\n") + "\n"
}

func matchAny(patterns []string, name string) bool {
	name = path.Clean(name)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
