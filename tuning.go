package rigid2d

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is a serializable snapshot of the package tunables. A host can ship
// a tuning.yaml next to its assets and apply it at startup instead of
// patching the package vars one by one. Zero-valued fields in a loaded file
// fall back to the defaults, so a file only needs to name what it changes.
type Tuning struct {
	AABBExtension         float64 `yaml:"aabb_extension,omitempty"`
	AABBMultiplier        float64 `yaml:"aabb_multiplier,omitempty"`
	LinearSlop            float64 `yaml:"linear_slop,omitempty"`
	AngularSlop           float64 `yaml:"angular_slop,omitempty"`
	PolygonRadius         float64 `yaml:"polygon_radius,omitempty"`
	MaxSubSteps           int     `yaml:"max_sub_steps,omitempty"`
	MaxTOIContacts        int     `yaml:"max_toi_contacts,omitempty"`
	VelocityThreshold     float64 `yaml:"velocity_threshold,omitempty"`
	MaxLinearCorrection   float64 `yaml:"max_linear_correction,omitempty"`
	MaxAngularCorrection  float64 `yaml:"max_angular_correction,omitempty"`
	MaxTranslation        float64 `yaml:"max_translation,omitempty"`
	MaxRotation           float64 `yaml:"max_rotation,omitempty"`
	Baumgarte             float64 `yaml:"baumgarte,omitempty"`
	TOIBaumgarte          float64 `yaml:"toi_baumgarte,omitempty"`
	TimeToSleep           float64 `yaml:"time_to_sleep,omitempty"`
	LinearSleepTolerance  float64 `yaml:"linear_sleep_tolerance,omitempty"`
	AngularSleepTolerance float64 `yaml:"angular_sleep_tolerance,omitempty"`
}

// DefaultTuning returns the canonical defaults.
func DefaultTuning() Tuning {
	return Tuning{
		AABBExtension:         0.1,
		AABBMultiplier:        2.0,
		LinearSlop:            0.005,
		AngularSlop:           2.0 / 180.0 * math.Pi,
		PolygonRadius:         2.0 * 0.005,
		MaxSubSteps:           8,
		MaxTOIContacts:        32,
		VelocityThreshold:     1.0,
		MaxLinearCorrection:   0.2,
		MaxAngularCorrection:  8.0 / 180.0 * math.Pi,
		MaxTranslation:        2.0,
		MaxRotation:           0.5 * math.Pi,
		Baumgarte:             0.2,
		TOIBaumgarte:          0.75,
		TimeToSleep:           0.5,
		LinearSleepTolerance:  0.01,
		AngularSleepTolerance: 2.0 / 180.0 * math.Pi,
	}
}

// LoadTuning reads a YAML tuning file. Fields absent from the file keep the
// defaults. A missing file is not an error; a malformed one is.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, err
	}

	if err := yaml.Unmarshal(data, &t); err != nil {
		return DefaultTuning(), fmt.Errorf("rigid2d: parsing tuning %s: %w", path, err)
	}

	t.fillDefaults()
	return t, nil
}

func (t *Tuning) fillDefaults() {
	d := DefaultTuning()
	if t.AABBExtension == 0 {
		t.AABBExtension = d.AABBExtension
	}
	if t.AABBMultiplier == 0 {
		t.AABBMultiplier = d.AABBMultiplier
	}
	if t.LinearSlop == 0 {
		t.LinearSlop = d.LinearSlop
	}
	if t.AngularSlop == 0 {
		t.AngularSlop = d.AngularSlop
	}
	if t.PolygonRadius == 0 {
		t.PolygonRadius = 2.0 * t.LinearSlop
	}
	if t.MaxSubSteps == 0 {
		t.MaxSubSteps = d.MaxSubSteps
	}
	if t.MaxTOIContacts == 0 {
		t.MaxTOIContacts = d.MaxTOIContacts
	}
	if t.VelocityThreshold == 0 {
		t.VelocityThreshold = d.VelocityThreshold
	}
	if t.MaxLinearCorrection == 0 {
		t.MaxLinearCorrection = d.MaxLinearCorrection
	}
	if t.MaxAngularCorrection == 0 {
		t.MaxAngularCorrection = d.MaxAngularCorrection
	}
	if t.MaxTranslation == 0 {
		t.MaxTranslation = d.MaxTranslation
	}
	if t.MaxRotation == 0 {
		t.MaxRotation = d.MaxRotation
	}
	if t.Baumgarte == 0 {
		t.Baumgarte = d.Baumgarte
	}
	if t.TOIBaumgarte == 0 {
		t.TOIBaumgarte = d.TOIBaumgarte
	}
	if t.TimeToSleep == 0 {
		t.TimeToSleep = d.TimeToSleep
	}
	if t.LinearSleepTolerance == 0 {
		t.LinearSleepTolerance = d.LinearSleepTolerance
	}
	if t.AngularSleepTolerance == 0 {
		t.AngularSleepTolerance = d.AngularSleepTolerance
	}
}

// Apply installs the tuning into the package tunables. Call before creating
// worlds; shapes capture PolygonRadius at construction time.
func (t Tuning) Apply() {
	AABBExtension = t.AABBExtension
	AABBMultiplier = t.AABBMultiplier
	LinearSlop = t.LinearSlop
	AngularSlop = t.AngularSlop
	PolygonRadius = t.PolygonRadius
	MaxSubSteps = t.MaxSubSteps
	MaxTOIContacts = t.MaxTOIContacts
	VelocityThreshold = t.VelocityThreshold
	MaxLinearCorrection = t.MaxLinearCorrection
	MaxAngularCorrection = t.MaxAngularCorrection
	MaxTranslation = t.MaxTranslation
	MaxRotation = t.MaxRotation
	Baumgarte = t.Baumgarte
	TOIBaumgarte = t.TOIBaumgarte
	TimeToSleep = t.TimeToSleep
	LinearSleepTolerance = t.LinearSleepTolerance
	AngularSleepTolerance = t.AngularSleepTolerance
}
