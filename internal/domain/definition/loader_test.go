package definition

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validDoc = `
version: v0.1.0
pipelines:
  rollback:
    description: Revert a merged change and redeploy.
    steps:
      - name: check-approval
        kind: analyze
        uses: vcs:analyze
        produces: [vcs.reviewed]
      - name: revert-branch
        kind: mutate
        uses: vcs:revert-branch
        requires: [vcs.reviewed, env.repo]
        produces: [vcs.branch]
        retryable: true
        timeout: 120s
      - name: announce
        kind: notify
        uses: notify:webhook
        requires: [env.webhook_url]
`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoader_LoadValidDocument(t *testing.T) {
	loader := NewLoader("v0.3.0")

	doc, err := loader.Load(writeDoc(t, validDoc))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def, err := doc.Pipeline("rollback")
	if err != nil {
		t.Fatalf("Pipeline() error = %v", err)
	}
	if len(def.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(def.Steps))
	}
	if def.Steps[1].Timeout.Duration() != 120*time.Second {
		t.Errorf("timeout = %v, want 120s", def.Steps[1].Timeout.Duration())
	}
	if !def.Steps[1].Retryable {
		t.Error("retryable not decoded")
	}
}

func TestLoader_NotFound(t *testing.T) {
	_, err := NewLoader("v0.3.0").Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, &UserError{Code: ErrCodeNotFound}) {
		t.Errorf("error = %v, want %s", err, ErrCodeNotFound)
	}
}

func TestLoader_MalformedYAML(t *testing.T) {
	_, err := NewLoader("v0.3.0").Load(writeDoc(t, "pipelines: [unclosed"))
	if !errors.Is(err, &UserError{Code: ErrCodeParse}) {
		t.Errorf("error = %v, want %s", err, ErrCodeParse)
	}
}

func TestLoader_SchemaRejectsUnknownKind(t *testing.T) {
	doc := `
pipelines:
  p:
    steps:
      - name: odd
        kind: decorate
        uses: vcs:analyze
`
	_, err := NewLoader("v0.3.0").Load(writeDoc(t, doc))
	if !errors.Is(err, &UserError{Code: ErrCodeSchema}) {
		t.Errorf("error = %v, want %s", err, ErrCodeSchema)
	}
}

func TestLoader_SchemaRejectsMissingUses(t *testing.T) {
	doc := `
pipelines:
  p:
    steps:
      - name: s
        kind: analyze
`
	_, err := NewLoader("v0.3.0").Load(writeDoc(t, doc))
	if !errors.Is(err, &UserError{Code: ErrCodeSchema}) {
		t.Errorf("error = %v, want %s", err, ErrCodeSchema)
	}
}

func TestLoader_RejectsUnknownAction(t *testing.T) {
	doc := `
pipelines:
  p:
    steps:
      - {name: s, kind: analyze, uses: bogus:action}
`
	_, err := NewLoader("v0.3.0").Load(writeDoc(t, doc))
	if !errors.Is(err, &UserError{Code: ErrCodeInvalid}) {
		t.Errorf("error = %v, want %s", err, ErrCodeInvalid)
	}
}

func TestActionNames_Sorted(t *testing.T) {
	names := ActionNames()
	if len(names) == 0 {
		t.Fatal("no built-in actions")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
	for _, name := range names {
		if !IsKnownAction(name) {
			t.Errorf("IsKnownAction(%q) = false", name)
		}
	}
}

func TestLoader_RejectsDuplicateStepNames(t *testing.T) {
	doc := `
pipelines:
  p:
    steps:
      - {name: twice, kind: analyze, uses: vcs:analyze}
      - {name: twice, kind: notify, uses: notify:webhook}
`
	_, err := NewLoader("v0.3.0").Load(writeDoc(t, doc))
	if !errors.Is(err, &UserError{Code: ErrCodeInvalid}) {
		t.Errorf("error = %v, want %s", err, ErrCodeInvalid)
	}
}

func TestLoader_RejectsUnsatisfiedRequires(t *testing.T) {
	doc := `
pipelines:
  p:
    steps:
      - name: deploy
        kind: mutate
        uses: cluster:apply
        requires: [manifest.paths]
`
	_, err := NewLoader("v0.3.0").Load(writeDoc(t, doc))
	if !errors.Is(err, &UserError{Code: ErrCodeInvalid}) {
		t.Errorf("error = %v, want %s", err, ErrCodeInvalid)
	}
}

func TestLoader_SeedKeysSatisfyRequires(t *testing.T) {
	doc := `
pipelines:
  p:
    steps:
      - name: deploy
        kind: mutate
        uses: cluster:apply
        requires: [env.namespace, run.id]
`
	if _, err := NewLoader("v0.3.0").Load(writeDoc(t, doc)); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
}

func TestLoader_VersionGate(t *testing.T) {
	doc := `
version: v9.0.0
pipelines:
  p:
    steps:
      - {name: s, kind: analyze, uses: vcs:analyze}
`
	_, err := NewLoader("v0.3.0").Load(writeDoc(t, doc))
	if !errors.Is(err, &UserError{Code: ErrCodeVersion}) {
		t.Errorf("error = %v, want %s", err, ErrCodeVersion)
	}
}

func TestLoader_OlderRequirementAccepted(t *testing.T) {
	doc := `
version: v0.1.0
pipelines:
  p:
    steps:
      - {name: s, kind: analyze, uses: vcs:analyze}
`
	if _, err := NewLoader("v0.3.0").Load(writeDoc(t, doc)); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
}

func TestDocument_UnknownPipeline(t *testing.T) {
	doc, err := NewLoader("v0.3.0").Load(writeDoc(t, validDoc))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err = doc.Pipeline("missing")
	if !errors.Is(err, &UserError{Code: ErrCodeUnknownPipeline}) {
		t.Errorf("error = %v, want %s", err, ErrCodeUnknownPipeline)
	}
}

func TestDuration_RejectsNegative(t *testing.T) {
	doc := `
pipelines:
  p:
    steps:
      - {name: s, kind: analyze, uses: vcs:analyze, timeout: -5s}
`
	_, err := NewLoader("v0.3.0").Load(writeDoc(t, doc))
	if err == nil {
		t.Error("Load() accepted a negative timeout")
	}
}
