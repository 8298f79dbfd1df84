//go:build debug

package ui

import (
	"io/fs"
	"os"
)

// StaticFS returns a live filesystem rooted at ui/static (debug: reads
// from disk so page edits are visible without recompiling Go).
func StaticFS() fs.FS {
	return os.DirFS("ui/static")
}
