// Package assetcache keeps the static application shell usable offline. It
// maintains versioned cache generations of a fixed asset manifest and serves
// GET requests cache-first, falling back to the cached shell document when
// both the cache and the upstream miss.
package assetcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	applog "github.com/alexcho121/expense/internal/log"
	"github.com/alexcho121/expense/internal/metrics"
)

// CachePrefix namespaces this application's cache generations. Activation
// only ever deletes caches carrying this prefix; anything else in the same
// storage belongs to someone else and survives.
const CachePrefix = "expense-tracker-cache"

// ErrAssetInstall reports a failed install step. The new generation is
// discarded whole; the previous one stays active so the application remains
// usable offline under the old version.
var ErrAssetInstall = errors.New("asset cache install failed")

// Config configures a Manager.
type Config struct {
	// Version tags the cache generation, e.g. "v2".
	Version string
	// Manifest is the fixed list of asset paths populated on install.
	Manifest []string
	// Shell is the root document path served when everything else fails.
	Shell string
	Logger  *applog.Logger
	Metrics *metrics.Metrics
}

// Manager fronts an upstream asset origin with versioned cache generations.
type Manager struct {
	upstream http.Handler
	storage  CacheStorage
	version  string
	manifest []string
	shell    string
	log      *applog.Logger
	metrics  *metrics.Metrics
}

func New(upstream http.Handler, storage CacheStorage, cfg Config) *Manager {
	shell := cfg.Shell
	if shell == "" {
		shell = "/index.html"
	}
	return &Manager{
		upstream: upstream,
		storage:  storage,
		version:  cfg.Version,
		manifest: cfg.Manifest,
		shell:    shell,
		log:      cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

// CacheName returns the current generation's key.
func (m *Manager) CacheName() string {
	return CachePrefix + "-" + m.version
}

// Install proactively fetches every manifest asset from the upstream into the
// current generation. Population is all-or-nothing: one failed asset fails
// the whole step and the partially filled generation is discarded.
func (m *Manager) Install(ctx context.Context) error {
	cache := m.CacheName()

	g, gctx := errgroup.WithContext(ctx)
	for _, path := range m.manifest {
		path := path
		g.Go(func() error {
			entry, err := m.fetch(gctx, path)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", path, err)
			}
			if err := m.storage.Put(gctx, cache, path, entry); err != nil {
				return fmt.Errorf("store %s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if delErr := m.storage.Delete(ctx, cache); delErr != nil {
			m.log.Warn("Failed to discard partial cache generation", "cache", cache, "error", delErr)
		}
		m.metrics.CacheInstalls.WithLabelValues("failure").Inc()
		return fmt.Errorf("%w: %v", ErrAssetInstall, err)
	}

	m.metrics.CacheInstalls.WithLabelValues("success").Inc()
	m.log.Info("Cache generation installed", "cache", cache, "assets", len(m.manifest))
	return nil
}

// Activate reclaims storage from prior generations: every cache carrying the
// application prefix except the current one is deleted. Foreign caches are
// never touched.
func (m *Manager) Activate(ctx context.Context) error {
	names, err := m.storage.Names(ctx)
	if err != nil {
		return fmt.Errorf("enumerate caches: %w", err)
	}

	current := m.CacheName()
	for _, name := range names {
		if name == current || !strings.HasPrefix(name, CachePrefix+"-") {
			continue
		}
		if err := m.storage.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete stale cache %s: %w", name, err)
		}
		m.log.Info("Stale cache generation deleted", "cache", name)
	}
	return nil
}

// ServeHTTP intercepts GET requests with a cache-first policy: a cached match
// wins; otherwise the asset is fetched upstream and a copy is stored under
// the current generation before being returned. When cache and upstream both
// fail, the cached shell document is served no matter what was requested —
// even for sub-resources, a deliberate simplification carried over from the
// one-page nature of the app. Non-GET requests pass straight through.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		m.upstream.ServeHTTP(w, r)
		return
	}

	ctx := r.Context()
	cache := m.CacheName()
	path := r.URL.Path

	if entry, ok, err := m.storage.Match(ctx, cache, path); err == nil && ok {
		m.metrics.CacheHits.Inc()
		writeEntry(w, entry)
		return
	} else if err != nil {
		m.log.Warn("Cache lookup failed", "path", path, "error", err)
	}

	m.metrics.CacheMisses.Inc()
	entry, err := m.fetch(ctx, path)
	if err == nil {
		if putErr := m.storage.Put(ctx, cache, path, entry); putErr != nil {
			m.log.Warn("Failed to cache fetched asset", "path", path, "error", putErr)
		}
		writeEntry(w, entry)
		return
	}

	m.log.Warn("Upstream fetch failed, falling back to shell", "path", path, "error", err)
	if shell, ok, shellErr := m.storage.Match(ctx, cache, m.shell); shellErr == nil && ok {
		m.metrics.CacheFallbacks.Inc()
		writeEntry(w, shell)
		return
	}
	http.Error(w, "offline and no cached content available", http.StatusServiceUnavailable)
}

// fetch asks the upstream handler for a single asset and captures the
// response as a cacheable entry. Non-2xx responses count as failures so
// error pages never poison the cache.
func (m *Manager) fetch(ctx context.Context, path string) (Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Entry{}, err
	}

	rec := &responseCapture{status: http.StatusOK, header: make(http.Header)}
	m.upstream.ServeHTTP(rec, req)

	if rec.status < 200 || rec.status > 299 {
		return Entry{}, fmt.Errorf("upstream returned status %d", rec.status)
	}
	return Entry{
		Status:      rec.status,
		ContentType: rec.header.Get("Content-Type"),
		Body:        rec.body.Bytes(),
	}, nil
}

// responseCapture buffers an upstream handler's response so it can be stored
// as a cache entry.
type responseCapture struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func (r *responseCapture) Header() http.Header { return r.header }

func (r *responseCapture) WriteHeader(code int) { r.status = code }

func (r *responseCapture) Write(p []byte) (int, error) { return r.body.Write(p) }

func writeEntry(w http.ResponseWriter, e Entry) {
	if e.ContentType != "" {
		w.Header().Set("Content-Type", e.ContentType)
	}
	w.WriteHeader(e.Status)
	_, _ = w.Write(e.Body)
}
