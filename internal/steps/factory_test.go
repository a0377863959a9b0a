package steps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/relay/internal/domain/definition"
	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
)

func TestFactory_UnknownActionRejected(t *testing.T) {
	_, err := NewFactory(Deps{}).Build(definition.StepDef{
		Name: "mystery", Kind: "mutate", Uses: "teleport:engage",
	}, testProfile)

	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestFactory_CoversEveryDeclaredAction(t *testing.T) {
	factory := NewFactory(Deps{})
	for _, action := range definition.ActionNames() {
		_, err := factory.Build(definition.StepDef{
			Name: "step-under-test", Kind: "analyze", Uses: action,
		}, testProfile)
		assert.NoError(t, err, "action %q declared but not buildable", action)
	}
}

func TestFactory_InvalidStepNameRejected(t *testing.T) {
	_, err := NewFactory(Deps{}).Build(definition.StepDef{
		Name: "Bad Name", Kind: "analyze", Uses: "vcs:analyze",
	}, testProfile)

	assert.Error(t, err)
}

func TestFactory_BuildCarriesDeclaredAttributes(t *testing.T) {
	step, err := NewFactory(Deps{}).Build(definition.StepDef{
		Name:      "apply",
		Kind:      "mutate",
		Uses:      "cluster:apply",
		Requires:  []string{"manifest.paths"},
		Produces:  nil,
		Retryable: true,
		Timeout:   definition.NewDuration(45 * time.Second),
	}, testProfile)
	require.NoError(t, err)

	assert.Equal(t, "apply", step.Name().String())
	assert.Equal(t, pipeline.KindMutate, step.Kind())
	assert.Equal(t, []pipeline.ContextKey{"manifest.paths"}, step.Requires())
	assert.True(t, step.Retryable())
	assert.Equal(t, 45*time.Second, step.Timeout())
}

func TestBuildPipeline_SeedsEnvironmentAndRunKeys(t *testing.T) {
	def := definition.PipelineDef{
		Steps: []definition.StepDef{
			{
				Name: "check-pr", Kind: "analyze", Uses: "vcs:analyze",
				Requires: []string{"env.repo", "run.id"},
				Produces: []string{"vcs.pr_state"},
				With:     map[string]string{"pr_number": "42"},
			},
			{
				Name: "announce", Kind: "notify", Uses: "notify:webhook",
				Requires: []string{"vcs.pr_state"},
			},
		},
	}

	p, err := NewFactory(Deps{VCS: newFakeVCS(), Notifier: &fakeNotifier{}}).
		BuildPipeline("verify", def, testProfile)
	require.NoError(t, err)
	assert.Equal(t, "verify", p.Name())
	assert.Len(t, p.Steps(), 2)
}

func TestBuildPipeline_UnsatisfiedRequiresSurface(t *testing.T) {
	def := definition.PipelineDef{
		Steps: []definition.StepDef{
			{
				Name: "apply", Kind: "mutate", Uses: "cluster:apply",
				Requires: []string{"manifest.paths"},
			},
		},
	}

	_, err := NewFactory(Deps{Cluster: newFakeCluster()}).
		BuildPipeline("deploy", def, testProfile)
	assert.ErrorIs(t, err, pipeline.ErrUnsatisfiedRequires)
}
