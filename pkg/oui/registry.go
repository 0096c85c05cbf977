// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package oui

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/serializer"
)

const (
	// DefaultURL is the IEEE MA-L registry in text form.
	DefaultURL = "https://standards-oui.ieee.org/oui/oui.txt"

	// Unknown is returned for prefixes missing from the registry.
	Unknown = "Unknown"

	// DefaultCacheFile is the cache file name used when no path is configured.
	DefaultCacheFile = "oui.json"

	prefixLen = 6
)

var base16Line = regexp.MustCompile(`^\s*([0-9A-Fa-f]{6})\s+\(base 16\)\s+(.*)$`)

// Option configures a Registry.
type Option func(*Registry)

// WithCachePath sets the cache file location.
func WithCachePath(path string) Option {
	return func(r *Registry) {
		r.cachePath = path
	}
}

// WithURL overrides the registry download location.
func WithURL(url string) Option {
	return func(r *Registry) {
		r.url = url
	}
}

// WithMaxAge sets the cache age after which New refreshes it.
func WithMaxAge(d time.Duration) Option {
	return func(r *Registry) {
		r.maxAge = d
	}
}

// WithHttpReader sets the reader used to download the registry.
func WithHttpReader(h *serializer.HttpReader) Option {
	return func(r *Registry) {
		r.http = h
	}
}

// WithUserAgent sets the User-Agent sent with registry downloads. It has no
// effect together with WithHttpReader.
func WithUserAgent(ua string) Option {
	return func(r *Registry) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Registry maps OUI prefixes to vendor names. Safe for concurrent use.
type Registry struct {
	cachePath string
	url       string
	maxAge    time.Duration
	http      *serializer.HttpReader
	userAgent string
	now       func() time.Time

	mu          sync.RWMutex
	vendors     map[string]string
	lastAttempt time.Time
}

// New builds a Registry, refreshing the cache first when it is missing or
// stale. It never fails; problems are logged and leave the registry with
// whatever the cache holds.
func New(ctx context.Context, opts ...Option) *Registry {
	r := &Registry{
		cachePath: defaultCachePath(),
		url:       DefaultURL,
		maxAge:    defaults.OUIMaxAge,
		userAgent: serializer.HttpReaderUserAgent,
		now:       time.Now,
		vendors:   map[string]string{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.http == nil {
		r.http = serializer.NewHttpReader(
			serializer.WithTotalTimeout(defaults.OUIDownloadTimeout),
			serializer.WithUserAgent(r.userAgent),
		)
	}

	r.RefreshIfStale(ctx)

	if r.Len() == 0 {
		if err := r.load(); err != nil {
			slog.Warn("oui cache unavailable, vendors will resolve to Unknown",
				"path", r.cachePath, "error", err)
		}
	}

	ouiEntries.Set(float64(r.Len()))
	slog.Debug("oui registry ready", "path", r.cachePath, "entries", r.Len())
	return r
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return DefaultCacheFile
	}
	return filepath.Join(dir, "macdiff", DefaultCacheFile)
}

// Stale reports whether the cache file is missing or older than the maximum age.
func (r *Registry) Stale() bool {
	info, err := os.Stat(r.cachePath)
	if err != nil {
		return true
	}
	return r.now().Sub(info.ModTime()) > r.maxAge
}

// RefreshIfStale refreshes the registry when the cache is stale and reports
// whether it did. Failures are logged and keep the current table. After a
// failure, further attempts wait for defaults.OUIRetryInterval.
func (r *Registry) RefreshIfStale(ctx context.Context) bool {
	if !r.Stale() {
		return false
	}

	r.mu.Lock()
	if !r.lastAttempt.IsZero() && r.now().Sub(r.lastAttempt) < defaults.OUIRetryInterval {
		r.mu.Unlock()
		return false
	}
	r.lastAttempt = r.now()
	r.mu.Unlock()

	if err := r.Refresh(ctx); err != nil {
		slog.Warn("oui registry refresh failed, using cached copy",
			"path", r.cachePath, "error", err)
		return false
	}
	return true
}

// Refresh downloads and parses the registry, then rewrites the cache file.
// The in-memory table is replaced as soon as parsing succeeds, so a failed
// cache write still leaves fresh data in use for this process.
func (r *Registry) Refresh(ctx context.Context) error {
	start := time.Now()
	data, err := r.http.ReadWithContext(ctx, r.url)
	if err != nil {
		ouiRefreshTotal.WithLabelValues("download_error").Inc()
		return errors.Wrap(errors.ErrCodeUnavailable, "failed to download oui registry", err)
	}

	vendors, err := Parse(strings.NewReader(string(data)))
	if err != nil {
		ouiRefreshTotal.WithLabelValues("parse_error").Inc()
		return errors.Wrap(errors.ErrCodeInternal, "failed to parse oui registry", err)
	}
	if len(vendors) == 0 {
		ouiRefreshTotal.WithLabelValues("parse_error").Inc()
		return errors.New(errors.ErrCodeInternal, "oui registry contained no entries")
	}

	r.mu.Lock()
	r.vendors = vendors
	r.mu.Unlock()
	ouiEntries.Set(float64(len(vendors)))

	content, err := json.Marshal(vendors)
	if err != nil {
		return fmt.Errorf("failed to encode oui cache: %w", err)
	}
	if err := serializer.WriteFile(r.cachePath, content, 0o644); err != nil {
		ouiRefreshTotal.WithLabelValues("write_error").Inc()
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write oui cache", err,
			map[string]any{"path": r.cachePath})
	}

	ouiRefreshTotal.WithLabelValues("success").Inc()
	slog.Info("oui registry refreshed",
		"entries", len(vendors),
		"path", r.cachePath,
		"duration", time.Since(start).String())
	return nil
}

func (r *Registry) load() error {
	vendors, err := serializer.FromFile[map[string]string](r.cachePath)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.vendors = *vendors
	r.mu.Unlock()
	return nil
}

// Lookup returns the vendor for mac, or Unknown. Separators ('.', '-', ':')
// are ignored and case does not matter.
func (r *Registry) Lookup(mac string) string {
	key := Prefix(mac)
	if key == "" {
		return Unknown
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.vendors[key]; ok {
		return v
	}
	return Unknown
}

// Len returns the number of known prefixes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.vendors)
}

// CachePath returns the cache file location.
func (r *Registry) CachePath() string {
	return r.cachePath
}

// Prefix returns the upper-case six hex digit OUI of mac, or "" when mac is
// too short.
func Prefix(mac string) string {
	cleaned := strings.NewReplacer(".", "", "-", "", ":", "").Replace(mac)
	if len(cleaned) < prefixLen {
		return ""
	}
	return strings.ToUpper(cleaned[:prefixLen])
}

// Parse extracts "<hex> (base 16) <vendor>" lines from the IEEE text format.
func Parse(rd io.Reader) (map[string]string, error) {
	vendors := make(map[string]string)
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		m := base16Line.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[2])
		if name == "" {
			continue
		}
		vendors[strings.ToUpper(m[1])] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan registry: %w", err)
	}
	return vendors, nil
}
