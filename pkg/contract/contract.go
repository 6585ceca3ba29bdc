// Package contract checks that the endpoints referenced by form schemas and
// grid configs exist in the backend OpenAPI document.
package contract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrEmptyDocument is returned when the OpenAPI document declares no paths.
var ErrEmptyDocument = errors.New("contract: document does not contain any paths")

// Spec is a loaded OpenAPI document indexed for endpoint lookups.
type Spec struct {
	doc    *openapi3.T
	routes []route
}

type route struct {
	template string
	segments []string
	methods  []string
}

// Load parses an OpenAPI 3 document. External references are not followed.
func Load(ctx context.Context, data []byte) (*Spec, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, ErrEmptyDocument
	}

	s := &Spec{doc: doc}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		methods := make([]string, 0, 4)
		for method := range item.Operations() {
			methods = append(methods, strings.ToUpper(method))
		}
		sort.Strings(methods)
		s.routes = append(s.routes, route{
			template: path,
			segments: split(path),
			methods:  methods,
		})
	}
	sort.Slice(s.routes, func(i, j int) bool { return s.routes[i].template < s.routes[j].template })
	return s, nil
}

// Title returns the document title.
func (s *Spec) Title() string {
	if s.doc.Info == nil {
		return ""
	}
	return s.doc.Info.Title
}

// Paths lists the declared path templates in order.
func (s *Spec) Paths() []string {
	out := make([]string, len(s.routes))
	for i, r := range s.routes {
		out[i] = r.template
	}
	return out
}

// Reference is one backend call a schema or grid makes.
type Reference struct {
	Origin string
	Method string
	Path   string
}

// Violation is a reference the document cannot serve.
type Violation struct {
	Reference
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s %s -> %s", v.Origin, v.Method, v.Path, v.Message)
}

// Check resolves every reference against the document. Query strings are
// ignored; placeholders such as {id} or {value} match any path parameter.
func (s *Spec) Check(refs []Reference) []Violation {
	var out []Violation
	for _, ref := range refs {
		method := strings.ToUpper(ref.Method)
		if method == "" {
			method = http.MethodGet
		}
		segments := split(ref.Path)
		matched := false
		allowed := false
		for _, r := range s.routes {
			if !matches(r.segments, segments) {
				continue
			}
			matched = true
			if slices.Contains(r.methods, method) {
				allowed = true
				break
			}
		}
		switch {
		case !matched:
			out = append(out, Violation{Reference: ref, Message: "path not declared"})
		case !allowed:
			out = append(out, Violation{Reference: ref, Message: "method " + method + " not declared"})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Origin != out[j].Origin {
			return out[i].Origin < out[j].Origin
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func matches(template, path []string) bool {
	if len(template) != len(path) {
		return false
	}
	for i, seg := range template {
		if isParam(seg) || isParam(path[i]) {
			continue
		}
		if seg != path[i] {
			return false
		}
	}
	return true
}

func isParam(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

func split(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
