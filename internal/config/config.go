// Package config loads the VM tunables that would otherwise be scattered
// flags: spec.md §4.4's max call-frame depth, a cooperative step budget,
// and whether the VM's "pretty" display form (spec.md §4.5) colorizes its
// output. It is read once at process start, the way the teacher reserves
// mainer's EnvPrefix plumbing for exactly this purpose (see
// internal/maincmd.Cmd's mainer.Parser.EnvPrefix).
package config

import "github.com/caarlos0/env/v6"

// Runtime holds every environment-driven VM tunable.
type Runtime struct {
	MaxFrames    int  `env:"HINTON_MAX_FRAMES" envDefault:"1000"`
	MaxSteps     int  `env:"HINTON_MAX_STEPS" envDefault:"0"`
	DisableColor bool `env:"HINTON_DISABLE_COLOR" envDefault:"false"`
}

// Load reads Runtime from the process environment, falling back to the
// struct tag defaults for anything unset.
func Load() (Runtime, error) {
	var r Runtime
	if err := env.Parse(&r); err != nil {
		return Runtime{}, err
	}
	return r, nil
}
