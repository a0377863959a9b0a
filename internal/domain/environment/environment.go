// Package environment loads deployment environment profiles from an INI
// file. A profile's values seed the execution context under env.* keys.
package environment

import (
	"errors"
	"fmt"
	"os"
	"sort"

	ini "gopkg.in/ini.v1"

	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
)

// Errors returned by profile lookup.
var (
	ErrProfileNotFound = errors.New("environment profile not found")
	ErrNoProfiles      = errors.New("environments file defines no profiles")
)

// Profile describes one deployment environment.
type Profile struct {
	Name           string
	ClusterContext string
	Namespace      string
	Repo           string
	BaseBranch     string
	WebhookURL     string
	Extra          map[string]string
}

// Profiles is the set of named environment profiles.
type Profiles map[string]Profile

// Get returns the named profile.
func (p Profiles) Get(name string) (Profile, error) {
	profile, ok := p[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (known: %v)", ErrProfileNotFound, name, p.Names())
	}
	return profile, nil
}

// Names returns the profile names in sorted order.
func (p Profiles) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads profiles from the INI file at path. Each section is one
// environment; the well-known keys map to Profile fields, everything else
// lands in Extra.
func Load(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes profiles from raw INI bytes.
func Parse(data []byte) (Profiles, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parsing environments file: %w", err)
	}

	profiles := make(Profiles)
	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}

		profile := Profile{
			Name:  section.Name(),
			Extra: make(map[string]string),
		}
		for _, key := range section.Keys() {
			switch key.Name() {
			case "cluster_context":
				profile.ClusterContext = key.String()
			case "namespace":
				profile.Namespace = key.String()
			case "repo":
				profile.Repo = key.String()
			case "base_branch":
				profile.BaseBranch = key.String()
			case "webhook_url":
				profile.WebhookURL = key.String()
			default:
				profile.Extra[key.Name()] = key.String()
			}
		}
		profiles[profile.Name] = profile
	}

	if len(profiles) == 0 {
		return nil, ErrNoProfiles
	}
	return profiles, nil
}

// Seed writes the profile's values into ec under env.* keys.
func (p Profile) Seed(ec *pipeline.ExecutionContext) {
	set := func(key, value string) {
		if value != "" {
			ec.Set(pipeline.ContextKey("env."+key), value)
		}
	}
	set("name", p.Name)
	set("cluster_context", p.ClusterContext)
	set("namespace", p.Namespace)
	set("repo", p.Repo)
	set("base_branch", p.BaseBranch)
	set("webhook_url", p.WebhookURL)
	for key, value := range p.Extra {
		set(key, value)
	}
}

// SeedKeys returns the context keys Seed would write, for static pipeline
// validation.
func (p Profile) SeedKeys() []pipeline.ContextKey {
	ec := pipeline.NewExecutionContext()
	p.Seed(ec)
	return ec.Keys()
}
