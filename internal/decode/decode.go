// Package decode runs the full read-only pipeline over one container:
// table walk, texture copy parameters, geometry scan and mesh build.
package decode

import (
	"github.com/pkg/errors"

	"dda-extractor/internal/mesh"
	"dda-extractor/internal/registry"
	"dda-extractor/internal/table"
	"dda-extractor/internal/texture"
	"dda-extractor/internal/ubr"
	"dda-extractor/internal/vif"
)

// Options tunes a decode pass.
type Options struct {
	Logf       func(format string, args ...any)
	ScanBudget int // 0 selects vif.DefaultBudget
}

// Result is everything decoded from one container. It is not modified after
// File or Container returns.
type Result struct {
	File      registry.File
	Container *ubr.Container
	Kind      ubr.Kind

	Tables   []table.Table
	Menus    []table.MenuTextures
	Textures []texture.CopyParams
	// Skipped holds textures whose copy parameters pointed outside the
	// container. They are counted but not exported.
	Skipped []error

	Packets []table.PacketEntry
	Scan    vif.Result
	Meshes  []mesh.Mesh
}

// TextureCount is the number of texture records found: table entries, or
// menu headers for menu files.
func (r *Result) TextureCount() int {
	n := 0
	for _, t := range r.Tables {
		n += len(t.Entries)
	}
	for _, m := range r.Menus {
		n += len(m.Headers)
	}
	return n
}

// MaterialNames lists the display name of every table texture in table
// order. Mesh material indices point into this list.
func (r *Result) MaterialNames() []string {
	var names []string
	for _, t := range r.Tables {
		names = append(names, t.Names...)
	}
	for _, m := range r.Menus {
		for _, h := range m.Headers {
			names = append(names, registry.BaseName(h.Path))
		}
	}
	return names
}

// File reads and decodes the container at path.
func File(path string, f registry.File, opts Options) (*Result, error) {
	c, err := ubr.Open(path)
	if err != nil {
		return nil, err
	}
	return Container(c, f, opts)
}

// Container decodes c as the registered file f.
func Container(c *ubr.Container, f registry.File, opts Options) (*Result, error) {
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	kind, err := c.Kind()
	if f.Group == registry.GroupMenu {
		kind, err = ubr.KindMenu, nil
	}
	if err != nil {
		return nil, err
	}

	res := &Result{File: f, Container: c, Kind: kind}
	w := table.NewWalker(c, kind, Layout(f))

	if kind == ubr.KindMenu {
		if res.Menus, err = w.MenuTextures(); err != nil {
			return nil, errors.WithMessage(err, f.Name)
		}
		for _, m := range res.Menus {
			ps, err := texture.MenuParams(c, m)
			if err != nil {
				res.skip(logf, err)
				continue
			}
			res.Textures = append(res.Textures, ps...)
		}
		return res, nil
	}

	if res.Tables, err = w.Tables(); err != nil {
		return nil, errors.WithMessage(err, f.Name)
	}
	for _, t := range res.Tables {
		for i, e := range t.Entries {
			ps, err := texture.TableParams(c, kind, e, t.Names[i])
			if err != nil {
				res.skip(logf, err)
				continue
			}
			res.Textures = append(res.Textures, ps...)
		}
	}

	if !kind.HasMeshes() {
		return res, nil
	}
	if res.Packets, err = w.Packets(); err != nil {
		return nil, errors.WithMessage(err, f.Name)
	}
	sc := vif.NewScanner(c, kind, vif.Options{Budget: opts.ScanBudget, Logf: logf})
	if res.Scan, err = sc.Scan(res.Packets); err != nil {
		return nil, errors.WithMessage(err, f.Name)
	}
	if res.Meshes, err = mesh.BuildAll(c, kind, res.Scan.Records, res.Packets); err != nil {
		return nil, errors.WithMessage(err, f.Name)
	}
	return res, nil
}

func (r *Result) skip(logf func(string, ...any), err error) {
	r.Skipped = append(r.Skipped, err)
	logf("%s: skipping texture: %v", r.File.Name, err)
}

// Layout converts the registry's per-file constants for the table walker.
func Layout(f registry.File) table.Layout {
	l := table.Layout{Skybox: f.Skybox, SkyboxSentinels: registry.SkyboxSentinels}
	for _, m := range f.Menu {
		l.Menu = append(l.Menu, table.MenuList{Address: m.Address, Paletted: m.Paletted})
	}
	return l
}
