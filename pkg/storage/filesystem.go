package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// StoredFile describes an uploaded file: its public URL plus the storage path
// needed to delete it later.
type StoredFile struct {
	URL  string `json:"url"`
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// LocalStorage persists uploads on disk under a base directory and serves
// them from a URL prefix.
type LocalStorage struct {
	baseDir   string
	urlPrefix string
	publicURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, urlPrefix, publicURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{
		baseDir:   baseDir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Save writes the bytes under a unique name inside folder and returns the
// stored file metadata. Names follow folder/timestamp_random_original so two
// uploads of the same file never collide.
func (s *LocalStorage) Save(folder, originalName string, data []byte) (*StoredFile, error) {
	if folder == "" {
		folder = "publications"
	}
	if !ValidFolder(folder) {
		return nil, fmt.Errorf("invalid upload folder %q", folder)
	}
	name := fmt.Sprintf("%d_%s_%s", time.Now().UnixMilli(), randomSuffix(), sanitize(originalName))
	relPath := path.Join(folder, name)

	full := filepath.Join(s.baseDir, filepath.FromSlash(relPath))
	if !s.within(full) {
		return nil, fmt.Errorf("upload path %q escapes the storage directory", relPath)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("prepare upload directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &StoredFile{
		URL:  s.publicURL + s.urlPrefix + "/" + relPath,
		Path: relPath,
		Name: originalName,
		Size: int64(len(data)),
	}, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(relPath string) error {
	full := filepath.Join(s.baseDir, filepath.FromSlash(relPath))
	if !s.within(full) {
		return fmt.Errorf("path %q escapes the storage directory", relPath)
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// PathFromURL extracts the storage path from a public upload URL so callers
// holding only the URL can delete the file. Returns "" when the URL does not
// point into this storage.
func (s *LocalStorage) PathFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := u.Path
	// url.Parse already decoded one level; decode again so a double-encoded
	// traversal cannot slip past the checks below.
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	if !strings.HasPrefix(p, s.urlPrefix+"/") {
		return ""
	}
	rel := strings.TrimPrefix(p, s.urlPrefix+"/")
	if rel == "" || strings.Contains(rel, "..") || strings.ContainsRune(rel, '\\') {
		return ""
	}
	if !s.within(filepath.Join(s.baseDir, filepath.FromSlash(rel))) {
		return ""
	}
	return rel
}

// Dir exposes the base directory so the router can serve it statically.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// ValidFolder reports whether folder is a single path segment with no
// traversal, the only shape Save accepts.
func ValidFolder(folder string) bool {
	if folder == "" || folder == "." {
		return false
	}
	return !strings.ContainsAny(folder, `/\`) && !strings.Contains(folder, "..")
}

// within reports whether full resolves inside the base directory.
func (s *LocalStorage) within(full string) bool {
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return false
	}
	return abs == base || strings.HasPrefix(abs, base+string(filepath.Separator))
}

func sanitize(name string) string {
	name = path.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

func randomSuffix() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
