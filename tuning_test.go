package rigid2d_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytearena/rigid2d"
)

func TestLoadTuningMissingFileUsesDefaults(t *testing.T) {
	tuning, err := rigid2d.LoadTuning(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if tuning != rigid2d.DefaultTuning() {
		t.Fatalf("missing file should yield defaults")
	}
}

func TestLoadTuningOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := []byte("velocity_threshold: 2.5\nmax_translation: 4.0\nmax_sub_steps: 4\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	tuning, err := rigid2d.LoadTuning(path)
	if err != nil {
		t.Fatal(err)
	}

	if tuning.VelocityThreshold != 2.5 {
		t.Fatalf("velocity_threshold = %v", tuning.VelocityThreshold)
	}
	if tuning.MaxTranslation != 4.0 {
		t.Fatalf("max_translation = %v", tuning.MaxTranslation)
	}
	if tuning.MaxSubSteps != 4 {
		t.Fatalf("max_sub_steps = %v", tuning.MaxSubSteps)
	}

	// Untouched fields keep their defaults.
	d := rigid2d.DefaultTuning()
	if tuning.LinearSlop != d.LinearSlop || tuning.Baumgarte != d.Baumgarte {
		t.Fatalf("unspecified fields lost their defaults: %+v", tuning)
	}
}

func TestLoadTuningMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- not yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := rigid2d.LoadTuning(path); err == nil {
		t.Fatalf("malformed tuning file should error")
	}
}

func TestTuningApply(t *testing.T) {
	defaults := rigid2d.DefaultTuning()
	defer defaults.Apply()

	tuning := defaults
	tuning.VelocityThreshold = 9.0
	tuning.Apply()

	if rigid2d.VelocityThreshold != 9.0 {
		t.Fatalf("Apply did not install the override")
	}

	defaults.Apply()
	if rigid2d.VelocityThreshold != defaults.VelocityThreshold {
		t.Fatalf("defaults not restored")
	}
}
