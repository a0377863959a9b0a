package definition

import "sort"

// knownActions is the vocabulary of built-in uses: actions. The step factory
// binds each one to its collaborators; validation rejects anything else at
// load time so a bad action name never survives to execution.
var knownActions = map[string]bool{
	"vcs:analyze":       true,
	"vcs:revert-branch": true,
	"vcs:open-pr":       true,
	"manifest:render":   true,
	"cluster:apply":     true,
	"cluster:rollout":   true,
	"cluster:scale":     true,
	"infra:plan":        true,
	"infra:apply":       true,
	"notify:webhook":    true,
}

// IsKnownAction reports whether uses names a built-in action.
func IsKnownAction(uses string) bool {
	return knownActions[uses]
}

// ActionNames returns the built-in action names in sorted order.
func ActionNames() []string {
	names := make([]string, 0, len(knownActions))
	for name := range knownActions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
