package config

var Presets = map[string]*Config{
	"sphere-coarse": {
		Case: "sphere3d", Precision: "single", GridSize: []int{64, 32, 32},
		EquatorPoints: 24, Duration: 10.0,
	},
	"sphere-fine": {
		Case: "sphere3d", Precision: "double", GridSize: []int{128, 64, 64},
		EquatorPoints: 48, Duration: 10.0,
	},
	"disk": {
		Case: "disk2d", Precision: "double", GridSize: []int{128, 64},
		PerimeterPoints: 48, Duration: 20.0,
	},
	"flapping-rod": {
		Case: "rod2d", Precision: "double", GridSize: []int{128, 64},
		RodElements: 24, Duration: 20.0,
		Stiffness: -1e4, Damping: -4e1,
	},
}

// GetPreset merges a named preset over the default configuration, so
// presets only spell out what they change.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Case = p.Case
	if p.Precision != "" {
		cfg.Precision = p.Precision
	}
	if p.GridSize != nil {
		cfg.GridSize = p.GridSize
	}
	if p.EquatorPoints != 0 {
		cfg.EquatorPoints = p.EquatorPoints
	}
	if p.PerimeterPoints != 0 {
		cfg.PerimeterPoints = p.PerimeterPoints
	}
	if p.RodElements != 0 {
		cfg.RodElements = p.RodElements
	}
	if p.Duration != 0 {
		cfg.Duration = p.Duration
	}
	if p.Stiffness != 0 {
		cfg.Stiffness = p.Stiffness
	}
	if p.Damping != 0 {
		cfg.Damping = p.Damping
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
