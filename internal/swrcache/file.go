package swrcache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend keeps one JSON file per key in a directory.
type FileBackend struct {
	dir string
}

// NewFileBackend returns a backend rooted at dir. The directory is created
// on first write.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (f *FileBackend) Name() string { return "file" }

func (f *FileBackend) Read(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.pathForKey(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Write replaces the entry atomically through a temp file and rename.
func (f *FileBackend) Write(_ context.Context, key string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, sanitizeKey(key)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}

	return os.Rename(name, f.pathForKey(key))
}

func (f *FileBackend) Delete(_ context.Context, key string) error {
	err := os.Remove(f.pathForKey(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FileBackend) DeletePrefix(_ context.Context, prefix string) error {
	return f.removeMatching(sanitizeKey(prefix))
}

func (f *FileBackend) Clear(_ context.Context) error {
	return f.removeMatching("")
}

func (f *FileBackend) removeMatching(prefix string) error {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(f.dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileBackend) pathForKey(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+".json")
}

func defaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "twcatele", "lists")
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}

	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		ch := key[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
