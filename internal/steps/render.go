package steps

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/relay/internal/domain/environment"
	"github.com/felixgeelhaar/relay/internal/domain/manifest"
	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
)

// manifestRenderStep renders deployment manifests from a template directory
// into the per-run artifact directory. Rendering is local work, so it runs
// even in a dry run; the artifacts are the point of a dry run.
type manifestRenderStep struct {
	baseStep
	profile     environment.Profile
	with        map[string]string
	artifactDir string
}

func (s *manifestRenderStep) Run(rc pipeline.RunContext, ec *pipeline.ExecutionContext) error {
	templateDir := s.with["templates"]
	if templateDir == "" {
		return pipeline.NewValidationError(s.name, "no templates directory configured")
	}

	outputDir := filepath.Join(s.artifactDir, ec.Get(KeyRunID), "manifests")

	renderer := manifest.NewRenderer(templateDir, outputDir)
	paths, err := renderer.Render(map[string]any{
		"Context": ec.Snapshot(),
		"Env":     profileData(s.profile),
		"Values":  s.with,
	})
	if err != nil {
		return fmt.Errorf("rendering manifests: %w", err)
	}

	ec.Set(KeyManifestDir, outputDir)
	ec.Set(KeyManifestPaths, strings.Join(paths, ","))
	return nil
}

// profileData flattens an environment profile for template access.
func profileData(p environment.Profile) map[string]string {
	data := map[string]string{
		"name":            p.Name,
		"cluster_context": p.ClusterContext,
		"namespace":       p.Namespace,
		"repo":            p.Repo,
		"base_branch":     p.BaseBranch,
		"webhook_url":     p.WebhookURL,
	}
	for key, value := range p.Extra {
		data[key] = value
	}
	return data
}
