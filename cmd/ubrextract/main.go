package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"dda-extractor/internal/batch"
	"dda-extractor/internal/config"
	"dda-extractor/internal/decode"
	"dda-extractor/internal/registry"
	"dda-extractor/internal/selftest"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	gameDir := flag.String("game", "", "Path to the game directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: <game>/EXTRACTED)")
	files := flag.String("files", "", "Comma separated file names to extract, e.g. DAM,ZTAXI (default: all)")
	format := flag.String("format", "", "Texture format: png, webp or tga (default: png)")
	scale := flag.Int("scale", 0, "Integer texture upscale factor (default: 1)")
	filter := flag.String("filter", "", "Upscale filter: nearest or smooth (default: nearest)")
	noScene := flag.Bool("no-scene", false, "Do not write scene.glb for track and car meshes")
	force := flag.Bool("force", false, "Export textures even when the output folder exists")
	budget := flag.Int("scan-budget", 0, "Bytes searched for each geometry marker (default: 4096)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	texWorkers := flag.Int("texture-workers", 0, "Concurrent texture writes per file (default: NumCPU/workers)")
	verbose := flag.Bool("v", false, "Print geometry scan diagnostics")
	runSelftest := flag.Bool("selftest", false, "Compare the game files with reference values and exit")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		GameDir:    *gameDir,
		OutputDir:  *outputDir,
		Files:      *files,
		Format:     *format,
		Scale:      *scale,
		Filter:     *filter,
		NoScene:    *noScene,
		Force:      *force,
		ScanBudget: *budget,
		Workers:    *workers,
		Verbose:    *verbose,

		TextureWorkers: *texWorkers,
	})

	if cfg.GameDir == "" {
		fmt.Fprintln(os.Stderr, "Error: cannot find the game directory. Use -game flag or config.json.")
		os.Exit(1)
	}

	texOpts, err := cfg.TextureOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	decodeOpts := decode.Options{ScanBudget: cfg.ScanBudget}
	if cfg.Verbose {
		decodeOpts.Logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
		}
	}

	// Select files
	reg := registry.Default()
	selected := reg.Files()
	if len(cfg.Files) > 0 {
		selected = selected[:0]
		for _, name := range cfg.Files {
			f, ok := reg.Lookup(name)
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: unknown file %q\n", name)
				os.Exit(1)
			}
			selected = append(selected, f)
		}
	}

	if *runSelftest {
		fmt.Printf("Self-test: %s\n", cfg.GameDir)
		reports := selftest.Run(cfg.GameDir, selected, decodeOpts)
		if selftest.Print(os.Stdout, reports) > 0 {
			os.Exit(1)
		}
		return
	}

	// Print summary
	fmt.Printf("UBR extractor → %s\n", texOpts.Format)
	fmt.Printf("Files: %d, Workers: %d (textures: %d per file)\n", len(selected), cfg.Workers, texOpts.Workers)
	fmt.Printf("Game: %s\n", cfg.GameDir)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		GameDir:   cfg.GameDir,
		OutputDir: cfg.OutputDir,
		Textures:  texOpts,
		Scene:     !cfg.NoScene,
		Force:     cfg.Force,
		Workers:   cfg.Workers,
		Decode:    decodeOpts,
	}

	results := batch.Run(ctx, batchCfg, selected)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed, images, kept := 0, 0, 0, 0
	var errors []batch.Result
	for _, r := range results {
		images += len(r.Images)
		if r.Kept {
			kept++
		}
		if r.Success {
			success++
			if r.Aborts > 0 || len(r.Failed) > 0 {
				fmt.Printf("  %s: %d meshes, %d scan aborts, %d textures not exported\n",
					r.Name, r.Meshes, r.Aborts, len(r.Failed))
			}
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Extracted: %d/%d files, %d textures\n", success, len(selected), images)
	if kept > 0 {
		fmt.Printf("Kept existing textures of %d files (use -force to re-export)\n", kept)
	}

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Path, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, batch.ManifestFile)
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, batch.NewManifest(batchCfg, results, start)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
