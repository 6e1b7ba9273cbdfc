// Package cookiefile keeps the session cookie on disk between runs.
package cookiefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// file is the on-disk layout. Cookies are only restored for the origin
// they were saved for.
type file struct {
	Origin  string        `json:"origin"`
	SavedAt time.Time     `json:"saved_at"`
	Cookies []savedCookie `json:"cookies"`
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Load returns the cookies saved for origin. A missing file, or one saved
// for a different origin, yields no cookies and no error.
func Load(path, origin string) ([]*http.Cookie, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cookiefile.Load: %w", err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("cookiefile.Load: %s: %w", path, err)
	}
	if f.Origin != origin {
		return nil, nil
	}
	cookies := make([]*http.Cookie, 0, len(f.Cookies))
	for _, c := range f.Cookies {
		if c.Name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return cookies, nil
}

// Save writes cookies for origin, creating the parent directory. Saving no
// cookies removes the file.
func Save(path, origin string, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return Remove(path)
	}
	f := file{Origin: origin, SavedAt: time.Now().UTC()}
	for _, c := range cookies {
		f.Cookies = append(f.Cookies, savedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("cookiefile.Save: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("cookiefile.Save: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("cookiefile.Save: %w", err)
	}
	return nil
}

// Remove deletes the file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cookiefile.Remove: %w", err)
	}
	return nil
}

// Exists reports whether a cookie file is present.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
