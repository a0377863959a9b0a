// Package settings holds tool-level configuration loaded from a TOML file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// EnvVar names the environment variable overriding the settings path.
const EnvVar = "RELAY_SETTINGS"

// Settings configures runner defaults and storage locations.
type Settings struct {
	// ReportDir is where run reports are persisted.
	ReportDir string `toml:"report_dir"`
	// ArtifactDir is where rendered manifests are written per run.
	ArtifactDir string `toml:"artifact_dir"`
	// StepTimeout bounds one step attempt.
	StepTimeout duration `toml:"step_timeout"`
	// Retries is the retry bound for retryable steps.
	Retries int `toml:"retries"`
	// RetryDelay is the fixed delay between attempts.
	RetryDelay duration `toml:"retry_delay"`
	// NoColor disables colored output.
	NoColor bool `toml:"no_color"`
}

// duration decodes TOML duration strings ("300s", "5m").
type duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("duration %q must not be negative", text)
	}
	*d = duration(parsed)
	return nil
}

// StepTimeoutOr returns the configured step timeout or fallback.
func (s Settings) StepTimeoutOr(fallback time.Duration) time.Duration {
	if s.StepTimeout > 0 {
		return time.Duration(s.StepTimeout)
	}
	return fallback
}

// RetryDelayOr returns the configured retry delay or fallback.
func (s Settings) RetryDelayOr(fallback time.Duration) time.Duration {
	if s.RetryDelay > 0 {
		return time.Duration(s.RetryDelay)
	}
	return fallback
}

// Default returns the settings used when no file exists.
func Default() Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".local", "share", "relay")
	return Settings{
		ReportDir:   filepath.Join(base, "reports"),
		ArtifactDir: filepath.Join(base, "artifacts"),
		Retries:     1,
	}
}

// Load resolves and reads settings. Resolution order: the explicit path,
// $RELAY_SETTINGS, then ~/.config/relay/settings.toml. A missing file is
// not an error; defaults apply.
func Load(explicit string) (Settings, error) {
	path := resolvePath(explicit)
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit != "" {
				// An explicitly named file must exist.
				return Settings{}, fmt.Errorf("settings file %s: %w", path, err)
			}
			return Default(), nil
		}
		return Settings{}, err
	}

	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return Settings{}, fmt.Errorf("settings file %s:\n%s", path, derr.String())
		}
		return Settings{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return s, nil
}

// resolvePath picks the settings file location.
func resolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvVar); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "relay", "settings.toml")
}
