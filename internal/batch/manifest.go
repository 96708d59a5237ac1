package batch

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ManifestFile is the name of the manifest written to the output root.
const ManifestFile = "manifest.json"

// Manifest records one extraction run.
type Manifest struct {
	RunID     string    `json:"run_id"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	GameDir   string    `json:"game_dir"`
	OutputDir string    `json:"output_dir"`
	Format    string    `json:"format"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Files     []Result  `json:"files"`
}

// NewManifest summarises a run under a fresh run id.
func NewManifest(cfg Config, results []Result, started time.Time) Manifest {
	m := Manifest{
		RunID:     uuid.NewString(),
		Started:   started.UTC(),
		Finished:  time.Now().UTC(),
		GameDir:   cfg.GameDir,
		OutputDir: cfg.OutputDir,
		Format:    string(cfg.Textures.Format),
		Files:     results,
	}
	for _, r := range results {
		if r.Success {
			m.Succeeded++
		} else {
			m.Failed++
		}
	}
	return m
}

// WriteManifest writes m as indented JSON.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "manifest")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "write %s", path)
}
