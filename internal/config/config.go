package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultStiffness        = -6e5
	DefaultDamping          = -3.5e2
	DefaultDiameterFraction = 0.4
	DefaultDtPrefactor      = 0.25
	DefaultDuration         = 10.0
)

// Config describes one demo coupling case. Stiffness and damping follow
// the penalty-forcing sign convention (non-positive).
type Config struct {
	Case       string  `yaml:"case"`      // sphere3d, disk2d, rod2d
	Precision  string  `yaml:"precision"` // single or double
	GridSize   []int   `yaml:"grid_size"` // cells per axis, x first
	FreeStream float64 `yaml:"free_stream_velocity"`
	Density    float64 `yaml:"density"`

	Stiffness    float64 `yaml:"stiffness"`
	Damping      float64 `yaml:"damping"`
	KernelWidth  int     `yaml:"interp_kernel_width"`
	NumThreads   int     `yaml:"num_threads"`
	ResetForcing bool    `yaml:"reset_eulerian_forcing"`

	// DiameterFraction sizes the body relative to the shortest
	// cross-stream extent of the domain.
	DiameterFraction float64 `yaml:"diameter_fraction"`
	EquatorPoints    int     `yaml:"forcing_points_along_equator"`
	PerimeterPoints  int     `yaml:"forcing_points_along_perimeter"`
	RodElements      int     `yaml:"rod_elements"`

	// Duration is the non-dimensional end time in body flow timescales.
	Duration    float64 `yaml:"duration"`
	DtPrefactor float64 `yaml:"dt_prefactor"`
}

func DefaultConfig() *Config {
	return &Config{
		Case:             "sphere3d",
		Precision:        "double",
		GridSize:         []int{64, 32, 32},
		FreeStream:       1.0,
		Density:          1.0,
		Stiffness:        DefaultStiffness,
		Damping:          DefaultDamping,
		KernelWidth:      2,
		NumThreads:       4,
		ResetForcing:     true,
		DiameterFraction: DefaultDiameterFraction,
		EquatorPoints:    24,
		PerimeterPoints:  32,
		RodElements:      16,
		Duration:         DefaultDuration,
		DtPrefactor:      DefaultDtPrefactor,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch c.Case {
	case "sphere3d", "disk2d", "rod2d":
	default:
		return fmt.Errorf("config: unknown case %q", c.Case)
	}
	switch c.Precision {
	case "single", "double":
	default:
		return fmt.Errorf("config: precision must be single or double, got %q", c.Precision)
	}
	wantDim := 3
	if c.Case != "sphere3d" {
		wantDim = 2
	}
	if len(c.GridSize) != wantDim {
		return fmt.Errorf("config: case %s needs a %dD grid_size, got %d axes",
			c.Case, wantDim, len(c.GridSize))
	}
	if c.FreeStream <= 0 {
		return fmt.Errorf("config: free_stream_velocity must be positive, got %g", c.FreeStream)
	}
	if c.Density <= 0 {
		return fmt.Errorf("config: density must be positive, got %g", c.Density)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if c.DtPrefactor <= 0 || c.DtPrefactor > 1 {
		return fmt.Errorf("config: dt_prefactor must be in (0,1], got %g", c.DtPrefactor)
	}
	if c.DiameterFraction <= 0 || c.DiameterFraction >= 1 {
		return fmt.Errorf("config: diameter_fraction must be in (0,1), got %g", c.DiameterFraction)
	}
	return nil
}
