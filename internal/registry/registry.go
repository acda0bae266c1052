package registry

import (
	"fmt"
	"io/fs"
	"strings"
)

// ParseFunc transforms raw file content before it is stored in the registry.
type ParseFunc func(content string) (any, error)

// Load recursively collects files whose names end in one of extensions from
// fsys into a nested map. Keys are the slash-separated path segments of each
// file with the matched extension stripped; values are the parsed contents.
// A nil parse stores the raw text unchanged.
func Load(fsys fs.FS, extensions []string, parse ParseFunc) (map[string]any, error) {
	out := map[string]any{}
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := matchExtension(path, extensions)
		if ext == "" {
			return nil
		}

		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		value := any(string(raw))
		if parse != nil {
			value, err = parse(string(raw))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
		}
		insert(out, strings.Split(strings.TrimSuffix(path, ext), "/"), value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func matchExtension(path string, extensions []string) string {
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return ext
		}
	}
	return ""
}

func insert(m map[string]any, segments []string, value any) {
	for _, segment := range segments[:len(segments)-1] {
		next, ok := m[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[segment] = next
		}
		m = next
	}
	m[segments[len(segments)-1]] = value
}
