// Package registry lists the game files the extractor knows about, together
// with the per-file constants that cannot be discovered structurally: skybox
// policy, menu texture list addresses and golden self-test values.
package registry

import (
	"path"
	"path/filepath"
	"strings"
)

// Group is the coarse family a file belongs to.
type Group int

const (
	GroupTrack Group = iota
	GroupCar
	GroupShared
	GroupMenu
)

func (g Group) String() string {
	switch g {
	case GroupTrack:
		return "track"
	case GroupCar:
		return "car"
	case GroupShared:
		return "shared"
	case GroupMenu:
		return "menu"
	}
	return "unknown"
}

// MenuList is one count-prefixed list of texture headers inside a menu file.
type MenuList struct {
	Address  int
	Paletted bool
}

// Expect holds reference values for one file. Meshes < 0 means the mesh
// count has not been recorded.
type Expect struct {
	Size     int
	Textures int
	Meshes   int
}

// File describes one known container.
type File struct {
	Name   string // base name without extension, e.g. "AIRPORT"
	Path   string // slash-separated path relative to the game directory
	Group  Group
	Skybox bool
	Menu   []MenuList
	Expect Expect
}

// Registry is an immutable set of known files.
type Registry struct {
	files  []File
	byName map[string]int
}

// New builds a registry from files. Names are matched case-insensitively.
func New(files []File) *Registry {
	r := &Registry{files: files, byName: make(map[string]int, len(files))}
	for i, f := range files {
		r.byName[strings.ToUpper(f.Name)] = i
	}
	return r
}

// Files returns all known files in registry order.
func (r *Registry) Files() []File {
	out := make([]File, len(r.files))
	copy(out, r.files)
	return out
}

// Len returns the number of known files.
func (r *Registry) Len() int { return len(r.files) }

// Lookup finds a file by base name ("DAM") or by any path whose base name,
// without extension, matches ("TRACKS\\DAM.UBR", "/games/dda/tracks/dam.ubr").
func (r *Registry) Lookup(name string) (File, bool) {
	i, ok := r.byName[strings.ToUpper(BaseName(name))]
	if !ok {
		return File{}, false
	}
	return r.files[i], true
}

// Resolve returns the on-disk location of f under dir.
func (f File) Resolve(dir string) string {
	return filepath.Join(dir, filepath.FromSlash(f.Path))
}

// OutputDir is the folder, relative to the output root, that receives the
// extracted data of f.
func (f File) OutputDir() string {
	return filepath.FromSlash(strings.TrimSuffix(f.Path, path.Ext(f.Path)))
}

// BaseName strips directories (either separator) and the extension from a
// path, preserving case.
func BaseName(p string) string {
	if i := strings.LastIndexAny(p, `\/`); i >= 0 {
		p = p[i+1:]
	}
	if i := strings.LastIndexByte(p, '.'); i >= 0 {
		p = p[:i]
	}
	return p
}

// Recorded reports whether reference values exist for the file.
func (e Expect) Recorded() bool { return e.Size > 0 }

// SkyboxSentinels are block names that end the skybox search even when they
// differ from the primary table's name. DAM names its skybox block "Dams".
var SkyboxSentinels = [][4]byte{{'D', 'a', 'm', 's'}}

// FileFor returns the registered file matching p. Unknown files get the
// default layout: skybox enabled, no menu lists, nothing to compare against.
func (r *Registry) FileFor(p string) File {
	if f, ok := r.Lookup(p); ok {
		return f
	}
	return File{
		Name:   BaseName(p),
		Path:   path.Base(filepath.ToSlash(p)),
		Group:  GroupShared,
		Skybox: true,
		Expect: Expect{Meshes: -1},
	}
}
