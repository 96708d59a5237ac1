// Package selftest decodes the shipped game files and compares them with the
// reference values kept in the registry.
package selftest

import (
	"fmt"
	"io"

	"dda-extractor/internal/decode"
	"dda-extractor/internal/registry"
)

// Check is one compared value.
type Check struct {
	What string
	Want int
	Got  int
}

// OK reports whether the value matched.
func (c Check) OK() bool { return c.Want == c.Got }

// Report is the outcome for one file.
type Report struct {
	File   registry.File
	Checks []Check
	Aborts int
	Err    error
}

// Pass reports whether the file decoded and every check matched.
func (r Report) Pass() bool {
	if r.Err != nil {
		return false
	}
	for _, c := range r.Checks {
		if !c.OK() {
			return false
		}
	}
	return true
}

// Verify compares a decode result with the file's reference values. Counts
// recorded as negative are not compared.
func Verify(f registry.File, res *decode.Result) []Check {
	checks := []Check{{What: "size", Want: f.Expect.Size, Got: res.Container.Len()}}
	if f.Expect.Textures >= 0 {
		checks = append(checks, Check{What: "textures", Want: f.Expect.Textures, Got: res.TextureCount()})
	}
	if f.Expect.Meshes >= 0 {
		checks = append(checks, Check{What: "meshes", Want: f.Expect.Meshes, Got: len(res.Meshes)})
	}
	return checks
}

// Run decodes every file with recorded reference values under gameDir. A
// failing file never stops the run.
func Run(gameDir string, files []registry.File, opts decode.Options) []Report {
	var reports []Report
	for _, f := range files {
		if !f.Expect.Recorded() {
			continue
		}
		r := Report{File: f}
		res, err := decode.File(f.Resolve(gameDir), f, opts)
		if err != nil {
			r.Err = err
		} else {
			r.Checks = Verify(f, res)
			r.Aborts = len(res.Scan.Aborts)
		}
		reports = append(reports, r)
	}
	return reports
}

// Print writes one line per file and per failed check, followed by a
// summary, and returns the number of failed files.
func Print(w io.Writer, reports []Report) int {
	failed := 0
	for _, r := range reports {
		if r.Pass() {
			fmt.Fprintf(w, "  PASS %s\n", r.File.Path)
			continue
		}
		failed++
		fmt.Fprintf(w, "  FAIL %s\n", r.File.Path)
		if r.Err != nil {
			fmt.Fprintf(w, "       %v\n", r.Err)
		}
		for _, c := range r.Checks {
			if !c.OK() {
				fmt.Fprintf(w, "       %s: got %d, want %d\n", c.What, c.Got, c.Want)
			}
		}
	}
	fmt.Fprintf(w, "Self-test: %d/%d passed\n", len(reports)-failed, len(reports))
	return failed
}
