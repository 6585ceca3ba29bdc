package schema

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Source identifies where a schema document originated so loaders can operate
// on files, fs.FS entries, or URLs without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string {
	return s.raw
}

func (s urlSource) Kind() SourceKind {
	return SourceKindURL
}

// SourceFromURL parses the supplied URL string and returns a Source. It panics
// if the URL is invalid to surface configuration mistakes early.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("schema: invalid URL %q: %v", raw, err))
	}
	return urlSource{raw: raw}
}

// Sibling resolves a variant schema reference relative to the source of the
// base document. Absolute URLs and absolute file paths are returned as-is.
func Sibling(base Source, ref string) Source {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return SourceFromURL(ref)
	}
	if base == nil {
		return SourceFromFile(ref)
	}
	switch base.Kind() {
	case SourceKindURL:
		parsed, err := url.Parse(base.Location())
		if err != nil {
			return SourceFromFile(ref)
		}
		resolved, err := parsed.Parse(ref)
		if err != nil {
			return SourceFromFile(ref)
		}
		return SourceFromURL(resolved.String())
	case SourceKindFS:
		return SourceFromFS(path.Join(path.Dir(base.Location()), ref))
	default:
		if filepath.IsAbs(ref) {
			return SourceFromFile(ref)
		}
		return SourceFromFile(filepath.Join(filepath.Dir(base.Location()), ref))
	}
}
