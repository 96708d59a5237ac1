package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"dda-extractor/internal/export"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"game_dir": "/games/dda", "files": ["DAM", "ZTAXI"], "format": "webp", "scale": 2}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GameDir != "/games/dda" || len(cfg.Files) != 2 || cfg.Format != "webp" || cfg.Scale != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file: want error")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("bad json: want error")
	}
}

func TestResolveDefaults(t *testing.T) {
	game := t.TempDir()
	cfg := Config{GameDir: game}
	cfg.Resolve(Flags{})

	if cfg.OutputDir != filepath.Join(game, "EXTRACTED") {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.Format != "png" || cfg.Scale != 1 || cfg.Filter != "nearest" {
		t.Errorf("export defaults = %q %d %q", cfg.Format, cfg.Scale, cfg.Filter)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.TextureWorkers != 1 {
		t.Errorf("TextureWorkers = %d, want 1 with one file per CPU", cfg.TextureWorkers)
	}
}

func TestResolveTextureWorkers(t *testing.T) {
	cfg := Config{GameDir: t.TempDir(), Workers: 1}
	cfg.Resolve(Flags{})
	if cfg.TextureWorkers != runtime.NumCPU() {
		t.Errorf("single file worker: TextureWorkers = %d, want %d", cfg.TextureWorkers, runtime.NumCPU())
	}

	cfg = Config{GameDir: t.TempDir(), TextureWorkers: 2}
	cfg.Resolve(Flags{TextureWorkers: 6})
	if cfg.TextureWorkers != 6 {
		t.Errorf("flag override: TextureWorkers = %d, want 6", cfg.TextureWorkers)
	}
	opts, err := cfg.TextureOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Workers != 6 {
		t.Errorf("TextureOptions().Workers = %d, want 6", opts.Workers)
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := Config{GameDir: "/a", OutputDir: "out", Format: "png", Workers: 2}
	cfg.Resolve(Flags{
		GameDir: "/b",
		Files:   " DAM, ,ZTAXI ",
		Format:  "tga",
		Workers: 8,
		Force:   true,
	})
	if cfg.GameDir != "/b" || cfg.Format != "tga" || cfg.Workers != 8 || !cfg.Force {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.OutputDir != filepath.Join("/b", "out") {
		t.Errorf("relative OutputDir = %q", cfg.OutputDir)
	}
	if len(cfg.Files) != 2 || cfg.Files[0] != "DAM" || cfg.Files[1] != "ZTAXI" {
		t.Errorf("Files = %q", cfg.Files)
	}
}

func TestDetectGameDir(t *testing.T) {
	game := t.TempDir()
	if err := os.Mkdir(filepath.Join(game, "TRACKS"), 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(game)

	var cfg Config
	cfg.Resolve(Flags{})
	got, _ := filepath.EvalSymlinks(cfg.GameDir)
	want, _ := filepath.EvalSymlinks(game)
	if got != want {
		t.Errorf("GameDir = %q, want %q", cfg.GameDir, game)
	}
}

func TestTextureOptions(t *testing.T) {
	cfg := Config{Format: "webp", Scale: 4, Filter: "smooth", Force: true, TextureWorkers: 3}
	opts, err := cfg.TextureOptions()
	if err != nil {
		t.Fatal(err)
	}
	want := export.TextureOptions{Format: export.WebP, Scale: 4, Filter: export.Smooth, Workers: 3, Overwrite: true}
	if opts != want {
		t.Errorf("opts = %+v, want %+v", opts, want)
	}

	cfg.Format = "gif"
	if _, err := cfg.TextureOptions(); err == nil {
		t.Error("gif: want error")
	}
	cfg.Format, cfg.Filter = "png", "bilinear"
	if _, err := cfg.TextureOptions(); err == nil {
		t.Error("bilinear: want error")
	}
}
