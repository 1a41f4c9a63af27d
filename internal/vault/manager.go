package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrNoteNotFound is returned when a note does not exist in the vault.
	ErrNoteNotFound = errors.New("note not found")
	// ErrInvalidPath is returned for empty paths or paths escaping the vault root.
	ErrInvalidPath = errors.New("invalid note path")
)

// Manager reads and appends to markdown notes under a single vault root.
type Manager struct {
	root  string
	locks sync.Map // rel path -> *sync.Mutex
}

// NewManager creates a vault manager rooted at root, which must be an existing directory.
func NewManager(root string) (*Manager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", abs)
	}

	return &Manager{root: abs}, nil
}

// Root returns the absolute vault root.
func (m *Manager) Root() string {
	return m.root
}

// Resolve returns the absolute path of a note given its vault-relative path.
func (m *Manager) Resolve(relPath string) (string, error) {
	rel, err := cleanRelPath(relPath)
	if err != nil {
		return "", err
	}
	return buildAbsPath(m.root, rel)
}

// Read returns the full text of a note.
func (m *Manager) Read(ctx context.Context, relPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	abs, err := m.Resolve(relPath)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNoteNotFound, relPath)
		}
		return "", fmt.Errorf("failed to read note %s: %w", relPath, err)
	}
	return string(data), nil
}

// Append writes text to the end of an existing note. Appends to the same
// note are serialized; concurrent callers land in completion order.
func (m *Manager) Append(ctx context.Context, relPath, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := m.Resolve(relPath)
	if err != nil {
		return err
	}

	mu := m.lockFor(abs)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(abs, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNoteNotFound, relPath)
		}
		return fmt.Errorf("failed to open note %s: %w", relPath, err)
	}

	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to note %s: %w", relPath, err)
	}
	return f.Close()
}

func (m *Manager) lockFor(abs string) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(abs, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func cleanRelPath(raw string) (string, error) {
	trimmed := strings.TrimSpace(filepath.ToSlash(raw))
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	for _, segment := range strings.Split(trimmed, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: path traversal detected", ErrInvalidPath)
		}
	}

	cleaned := path.Clean("/" + trimmed)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, raw)
	}

	return cleaned, nil
}

func buildAbsPath(root, rel string) (string, error) {
	root = filepath.Clean(root)
	abs := filepath.Join(root, filepath.FromSlash(rel))

	if !strings.HasPrefix(abs, root+string(os.PathSeparator)) && abs != root {
		return "", fmt.Errorf("%w: path escapes vault root", ErrInvalidPath)
	}
	return abs, nil
}
