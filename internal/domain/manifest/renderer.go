// Package manifest renders deployment manifests from templates.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/bmatcuk/doublestar/v4"
)

// templateSuffix marks renderable files inside the template directory.
const templateSuffix = ".tmpl"

// ErrNoTemplates is returned when the template directory holds nothing to
// render.
var ErrNoTemplates = errors.New("no manifest templates found")

// Renderer renders every *.tmpl file under a template directory into an
// output directory, preserving relative paths and stripping the suffix.
type Renderer struct {
	templateDir string
	outputDir   string
}

// NewRenderer creates a Renderer reading from templateDir and writing to
// outputDir.
func NewRenderer(templateDir, outputDir string) *Renderer {
	return &Renderer{
		templateDir: templateDir,
		outputDir:   outputDir,
	}
}

// Render renders all templates with the given data and returns the written
// file paths in sorted order. Referencing a key absent from data is an
// error; a silently empty manifest field is worse than a failed render.
func (r *Renderer) Render(data map[string]any) ([]string, error) {
	sources, err := r.discover()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoTemplates, r.templateDir)
	}

	written := make([]string, 0, len(sources))
	for _, rel := range sources {
		outPath, err := r.renderOne(rel, data)
		if err != nil {
			return nil, err
		}
		written = append(written, outPath)
	}

	sort.Strings(written)
	return written, nil
}

// discover finds template files relative to the template directory.
func (r *Renderer) discover() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(r.templateDir), "**/*"+templateSuffix)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", r.templateDir, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// renderOne renders a single template file and returns the output path.
func (r *Renderer) renderOne(rel string, data map[string]any) (string, error) {
	src := filepath.Join(r.templateDir, filepath.FromSlash(rel))
	raw, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(rel).
		Funcs(sprig.FuncMap()).
		Option("missingkey=error").
		Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", rel, err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", rel, err)
	}

	outPath := filepath.Join(r.outputDir, filepath.FromSlash(strings.TrimSuffix(rel, templateSuffix)))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, []byte(out.String()), 0o644); err != nil {
		return "", err
	}
	return outPath, nil
}
