package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Namer hands out unique file names inside one folder. A name is taken when
// it was handed out before or, unless overwriting, a file of that name
// already exists; the next candidates are "name (1).ext", "name (2).ext" and
// so on.
type Namer struct {
	dir       string
	overwrite bool

	mu    sync.Mutex
	taken map[string]bool
}

// NewNamer returns a namer for dir. With overwrite set, files left over from
// an earlier run are replaced instead of skipped.
func NewNamer(dir string, overwrite bool) *Namer {
	return &Namer{dir: dir, overwrite: overwrite, taken: make(map[string]bool)}
}

// Reserve returns the path of a fresh file for name and ext.
func (n *Namer) Reserve(name, ext string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	file := name + ext
	for i := 1; n.taken[file] || (!n.overwrite && exists(filepath.Join(n.dir, file))); i++ {
		file = fmt.Sprintf("%s (%d)%s", name, i, ext)
	}
	n.taken[file] = true
	return filepath.Join(n.dir, file)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
