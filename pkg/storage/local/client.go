package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/electrosoundpack/storefront-backend/pkg/config"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
)

// ErrNotFound is returned when a directory or object does not exist.
var ErrNotFound = errors.New("object not found")

// ErrInvalidName is returned for names that would escape their directory.
var ErrInvalidName = errors.New("invalid object name")

// Object describes one stored file.
type Object struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Client stores objects as files under a root directory, one subdirectory per prefix.
type Client struct {
	root string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func NewClient(ctx context.Context, cfg config.MediaConfig, logg *logger.Logger) (*Client, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return nil, errors.New("media root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating media root: %w", err)
	}

	client := &Client{root: abs}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("media root health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "media_root", abs), "local storage initialized")
	}
	return client, nil
}

func (c *Client) Root() string {
	if c == nil {
		return ""
	}
	return c.root
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.root == "" {
		return errors.New("local storage not initialized")
	}
	info, err := os.Stat(c.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", c.root)
	}
	return nil
}

// EnsureDir creates the prefix directory. created is false when it already existed.
func (c *Client) EnsureDir(ctx context.Context, prefix string) (bool, error) {
	dir, err := c.dir(prefix)
	if err != nil {
		return false, err
	}
	if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
		return false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveDir deletes the prefix directory and everything in it. Missing directories are ignored.
func (c *Client) RemoveDir(ctx context.Context, prefix string) error {
	dir, err := c.dir(prefix)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// List returns the regular files under prefix sorted by name.
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	dir, err := c.dir(prefix)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	objects := make([]Object, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		objects = append(objects, Object{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

// Put writes r to prefix/name, replacing any existing file.
func (c *Client) Put(ctx context.Context, prefix, name string, r io.Reader) (int64, error) {
	path, err := c.path(prefix, name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return 0, err
	}
	n, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		if copyErr != nil {
			return 0, copyErr
		}
		return 0, closeErr
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, err
	}
	return n, nil
}

// Open returns the stored file for reading.
func (c *Client) Open(ctx context.Context, prefix, name string) (*os.File, error) {
	path, err := c.path(prefix, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete removes prefix/name.
func (c *Client) Delete(ctx context.Context, prefix, name string) error {
	path, err := c.path(prefix, name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (c *Client) dir(prefix string) (string, error) {
	if c == nil || c.root == "" {
		return "", errors.New("local storage not initialized")
	}
	if !validSegment(prefix) {
		return "", ErrInvalidName
	}
	return filepath.Join(c.root, prefix), nil
}

func (c *Client) path(prefix, name string) (string, error) {
	dir, err := c.dir(prefix)
	if err != nil {
		return "", err
	}
	if !validSegment(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(dir, name), nil
}

func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`) && !strings.ContainsRune(s, 0)
}
