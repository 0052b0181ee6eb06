package img

import (
	_ "embed"
	"sync"

	"golang.org/x/sync/singleflight"
)

// The two static icons every digest reuses: the title row's external
// link marker and the "no results" placeholder. Loaded once at build
// time via embed; bundled lazily per mode.
var (
	//go:embed assets/external_link.png
	externalLinkPNG []byte

	//go:embed assets/no_results.png
	noResultsPNG []byte
)

var (
	staticGroup singleflight.Group
	staticMu    sync.RWMutex
	staticCache = map[string]Bundle{}
)

// ExternalLink returns the external-link icon bundle for the mode.
func ExternalLink(mode Mode, opts Options) (Bundle, error) {
	return staticBundle("external_link", externalLinkPNG, mode, opts)
}

// NoResults returns the no-results icon bundle for the mode.
func NoResults(mode Mode, opts Options) (Bundle, error) {
	return staticBundle("no_results", noResultsPNG, mode, opts)
}

// staticBundle caches attachment-mode bundles for the process lifetime
// (temp file + hash computed once, single-flight under concurrent first
// use). Inline bundles are cheap data URIs and re-encode every call,
// which also keeps a test-injected encoder effective.
func staticBundle(key string, data []byte, mode Mode, opts Options) (Bundle, error) {
	if mode == Inline {
		return New(Inline, BufferSource(data), opts)
	}

	staticMu.RLock()
	cached, ok := staticCache[key]
	staticMu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := staticGroup.Do(key, func() (any, error) {
		b, err := New(Attachment, BufferSource(data), opts)
		if err != nil {
			return nil, err
		}
		staticMu.Lock()
		staticCache[key] = b
		staticMu.Unlock()
		return b, nil
	})
	if err != nil {
		return Bundle{}, err
	}
	return v.(Bundle), nil
}
