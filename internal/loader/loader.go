// Package loader resolves schema sources from disk, an fs.FS, or HTTP.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// maxDocumentBytes caps remote schema payloads.
const maxDocumentBytes = 4 << 20

// Loader implements schema.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

var _ schema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options schema.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:      options.FileSystem,
		http:    httpClient,
		timeout: timeout,
	}
}

// Load fetches the raw bytes behind src.
func (l *Loader) Load(ctx context.Context, src schema.Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch src.Kind() {
	case schema.SourceKindFile:
		return loadFile(src.Location())
	case schema.SourceKindFS:
		return loadFromFS(l.fs, src.Location())
	case schema.SourceKindURL:
		if l.http == nil {
			return nil, errors.New("loader: http support disabled")
		}
		return loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		return nil, fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
}
