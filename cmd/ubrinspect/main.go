package main

import (
	"flag"
	"fmt"
	"os"

	"dda-extractor/internal/decode"
	"dda-extractor/internal/registry"
)

func main() {
	budget := flag.Int("scan-budget", 0, "Bytes searched for each geometry marker (default: 4096)")
	verbose := flag.Bool("v", false, "Print scan diagnostics and every texture entry")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: ubrinspect [-v] [-scan-budget N] FILE.UBR")
		os.Exit(2)
	}
	path := flag.Arg(0)

	opts := decode.Options{ScanBudget: *budget}
	if *verbose {
		opts.Logf = func(format string, args ...any) {
			fmt.Printf("  "+format+"\n", args...)
		}
	}

	f := registry.Default().FileFor(path)
	res, err := decode.File(path, f, opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: kind=%s, size=%#x, group=%s\n", f.Name, res.Kind, res.Container.Len(), f.Group)
	if f.Expect.Recorded() {
		fmt.Printf("  Reference: size=%#x, textures=%d, meshes=%d\n", f.Expect.Size, f.Expect.Textures, f.Expect.Meshes)
	}

	for i, t := range res.Tables {
		fmt.Printf("Table[%d] @%#x %q: %d entries\n", i, t.Address, string(t.Header.Name[:]), len(t.Entries))
		if !*verbose {
			continue
		}
		for j, e := range t.Entries {
			fmt.Printf("  [%3d] %-24s %-8s %4dx%-4d mips=%d tex=%#x pal=%#x\n",
				j, t.Names[j], e.Clut, e.Width, e.Height, e.MipmapCount, e.TexturePosition, e.PalettePosition)
		}
	}
	for i, m := range res.Menus {
		fmt.Printf("Menu list[%d] @%#x paletted=%v: %d headers\n", i, m.List, m.Paletted, len(m.Headers))
		if !*verbose {
			continue
		}
		for j, h := range m.Headers {
			fmt.Printf("  [%3d] %-40s %4dx%-4d\n", j, h.Path, h.Width, h.Height)
		}
	}
	fmt.Printf("Textures: %d records, %d exportable, %d skipped\n", res.TextureCount(), len(res.Textures), len(res.Skipped))
	for _, err := range res.Skipped {
		fmt.Printf("  %v\n", err)
	}

	if !res.Kind.HasMeshes() {
		return
	}

	fmt.Printf("Packets: %d\n", len(res.Packets))
	scan := res.Scan
	fmt.Printf("Scan: %d records, %d aborts, %d count mismatches\n", len(scan.Records), len(scan.Aborts), scan.Mismatches)
	aborts := map[string]int{}
	for _, a := range scan.Aborts {
		aborts[a.State.String()]++
	}
	for state, n := range aborts {
		fmt.Printf("  aborted in %s: %d\n", state, n)
	}

	verts, tris := 0, 0
	for i, m := range res.Meshes {
		v := 0
		for _, sm := range m.SubMeshes {
			v += len(sm.Positions)
		}
		verts += v
		tris += m.TriangleCount()
		if *verbose {
			fmt.Printf("  Mesh[%d]: verts=%d, tris=%d, scale=%v, center=%v\n", i, v, m.TriangleCount(), m.Scale, m.Center)
		}
	}
	fmt.Printf("Meshes: %d, vertices: %d, triangles: %d\n", len(res.Meshes), verts, tris)
}
