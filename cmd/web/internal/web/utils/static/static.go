package static

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
)

// CachedFile holds an embedded asset and the metadata used in HTTP cache
// headers.
type CachedFile struct {
	ETag         string
	ContentType  string
	LastModified time.Time
	Data         []byte
}

// StaticCache serves an embedded filesystem from memory. Entries are
// computed once and never change, so no locking is needed.
type StaticCache struct {
	entries map[string]CachedFile
}

// NewStaticCache reads every file in fsys and computes its ETag and
// content type.
func NewStaticCache(fsys fs.FS) (*StaticCache, error) {
	c := &StaticCache{entries: make(map[string]CachedFile)}
	started := time.Now().UTC().Truncate(time.Second)

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}

		ct := mime.TypeByExtension(filepath.Ext(path))
		if ct == "" {
			ct = mimetype.Detect(data).String()
		}

		c.entries[path] = CachedFile{
			ETag:         fmt.Sprintf("\"%x\"", sha256.Sum256(data)),
			ContentType:  ct,
			LastModified: started,
			Data:         data,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Lookup returns the cached entry for path.
func (s *StaticCache) Lookup(path string) (CachedFile, bool) {
	f, ok := s.entries[path]
	return f, ok
}

// ServeStaticFile serves cached files for request paths under prefix.
func (s *StaticCache) ServeStaticFile(prefix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := strings.TrimPrefix(c.Request().URL.Path, prefix)

		f, ok := s.entries[path]
		if !ok {
			return echo.ErrNotFound
		}

		h := c.Response().Header()
		h.Set("ETag", f.ETag)
		h.Set(echo.HeaderLastModified, f.LastModified.Format(http.TimeFormat))

		// dist/ assets are not fingerprinted; revalidate every time.
		if strings.HasPrefix(path, "dist/") {
			h.Set(echo.HeaderCacheControl, "no-cache, must-revalidate")
		} else {
			h.Set(echo.HeaderCacheControl, "public, max-age=3600, stale-while-revalidate=300")
		}

		if inm := c.Request().Header.Get("If-None-Match"); inm != "" && inm == f.ETag {
			return c.NoContent(http.StatusNotModified)
		}

		return c.Blob(http.StatusOK, f.ContentType, f.Data)
	}
}
