package views

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrUnknownView is returned when a request names a view that is not in
// the registry.
var ErrUnknownView = errors.New("unknown view")

// DefaultExcludedStages are the stage markers dropped from "active
// pipeline" aggregations when a view does not configure its own set.
var DefaultExcludedStages = []string{"A Closed", "X Lost", "F Inbox", "S Stalled"}

// Targets are the monthly goals a view sets for an account executive.
type Targets struct {
	MonthlyMeetings int     `yaml:"monthly_meetings" json:"monthly_meetings" validate:"gte=0"`
	MonthlyWeighted float64 `yaml:"monthly_weighted" json:"monthly_weighted" validate:"gte=0"`
}

// View is one business unit: its own deal set, sheet source and targets.
// Targets maps owner names to per-AE goals; DefaultTargets applies to
// owners not listed.
type View struct {
	Name           string             `yaml:"name" validate:"required,excludesall= "`
	Label          string             `yaml:"label"`
	SheetURL       string             `yaml:"sheet_url" validate:"omitempty,url"`
	ExcludedStages []string           `yaml:"excluded_stages"`
	DefaultTargets Targets            `yaml:"default_targets"`
	Targets        map[string]Targets `yaml:"targets" validate:"dive"`
}

type configFile struct {
	Views []View `yaml:"views" validate:"required,min=1,dive"`
}

// Registry holds the loaded view configuration. Read-only after Load.
type Registry struct {
	views map[string]View
	order []string
}

// Load reads and validates the YAML views file.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading views config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse builds a Registry from raw YAML.
func Parse(raw []byte) (*Registry, error) {
	var cfg configFile
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing views config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid views config: %w", err)
	}

	reg := &Registry{views: make(map[string]View, len(cfg.Views))}
	for _, v := range cfg.Views {
		if _, exists := reg.views[v.Name]; exists {
			return nil, fmt.Errorf("invalid views config: duplicate view %q", v.Name)
		}
		reg.views[v.Name] = v
		reg.order = append(reg.order, v.Name)
	}
	return reg, nil
}

// Get resolves a view by name.
func (r *Registry) Get(name string) (View, error) {
	v, ok := r.views[name]
	if !ok {
		return View{}, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	return v, nil
}

// Names lists the configured views in file order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ExcludedStageSet returns the view's excluded stages as a lookup set,
// falling back to the defaults when none are configured.
func (v View) ExcludedStageSet() map[string]bool {
	stages := v.ExcludedStages
	if len(stages) == 0 {
		stages = DefaultExcludedStages
	}
	set := make(map[string]bool, len(stages))
	for _, s := range stages {
		set[s] = true
	}
	return set
}

// TargetsFor returns the goals for an owner, falling back to the view's
// defaults.
func (v View) TargetsFor(owner string) Targets {
	if t, ok := v.Targets[owner]; ok {
		return t
	}
	return v.DefaultTargets
}
