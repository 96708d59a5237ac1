package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"dda-extractor/internal/decode"
	"dda-extractor/internal/export"
	"dda-extractor/internal/registry"
)

// Config holds all shared settings for a batch run.
type Config struct {
	GameDir   string
	OutputDir string
	Textures  export.TextureOptions
	Scene     bool
	Force     bool
	Workers   int
	Decode    decode.Options
}

// Result holds the outcome of processing one file.
type Result struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Kind   string `json:"kind,omitempty"`
	Size   int    `json:"size"`
	Output string `json:"output,omitempty"`

	Textures   int                `json:"textures"`
	Images     []export.ImageInfo `json:"images,omitempty"`
	Kept       bool               `json:"kept_existing,omitempty"`
	Meshes     int                `json:"meshes"`
	Aborts     int                `json:"aborts"`
	Mismatches int                `json:"mismatches"`
	Scene      string             `json:"scene,omitempty"`

	// Failed lists textures that could not be exported; the file as a
	// whole still counts as a success.
	Failed  []string `json:"failed,omitempty"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
}

// Run processes all files using a worker pool. A file that fails never stops
// the others.
func Run(ctx context.Context, cfg Config, files []registry.File) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	total := len(files)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f files/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	fileChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range fileChan {
				results[idx] = processFile(ctx, cfg, files[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range files {
		fileChan <- i
	}
	close(fileChan)

	wg.Wait()
	close(done)

	return results
}

func processFile(ctx context.Context, cfg Config, f registry.File) Result {
	r := Result{Name: f.Name, Path: f.Path}
	if err := ctx.Err(); err != nil {
		r.Error = err.Error()
		return r
	}

	res, err := decode.File(f.Resolve(cfg.GameDir), f, cfg.Decode)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Kind = res.Kind.String()
	r.Size = res.Container.Len()
	r.Textures = res.TextureCount()
	r.Meshes = len(res.Meshes)
	r.Aborts = len(res.Scan.Aborts)
	r.Mismatches = res.Scan.Mismatches
	for _, err := range res.Skipped {
		r.Failed = append(r.Failed, err.Error())
	}

	outDir := filepath.Join(cfg.OutputDir, f.OutputDir())
	r.Output = outDir

	// An existing folder means an earlier run exported these textures.
	if _, err := os.Stat(outDir); err == nil && !cfg.Force {
		r.Kept = true
	} else if len(res.Textures) > 0 {
		images, failed, err := export.Textures(ctx, outDir, res.Textures, cfg.Textures)
		r.Images = images
		for _, e := range failed {
			r.Failed = append(r.Failed, e.Error())
		}
		if err != nil {
			r.Error = err.Error()
			return r
		}
	}

	if cfg.Scene && len(res.Meshes) > 0 {
		path, err := export.WriteScene(outDir, res.Meshes, res.MaterialNames(), cfg.Textures.Format)
		if err != nil {
			r.Error = err.Error()
			return r
		}
		r.Scene = path
	}

	r.Success = true
	return r
}
