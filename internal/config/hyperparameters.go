package config

import "github.com/chewxy/math32"

// Hyperparameters are shared by the value store, the policies and the trainer
// of a single run. Only the trainer mutates them, through Decay.
type Hyperparameters struct {
	Exploration float32 `yaml:"exploration" env-default:"0.9"`
	Learning    float32 `yaml:"learning" env-default:"0.1"`
	Discount    float32 `yaml:"discount" env-default:"0.9"`
	K           float32 `yaml:"k" env-default:"0.05"`
}

func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Exploration: 0.9,
		Learning:    0.1,
		Discount:    0.9,
		K:           0.05,
	}
}

// Annealing moves a hyperparameter by Step every Every episodes once Warmup
// episodes have passed, never beyond Limit.
type Annealing struct {
	Warmup int     `yaml:"warmup"`
	Every  int     `yaml:"every"`
	Step   float32 `yaml:"step"`
	Limit  float32 `yaml:"limit"`
}

func (that Annealing) due(episode int) bool {
	return that.Every > 0 && episode > that.Warmup && episode%that.Every == 0
}

type Schedule struct {
	Episodes    int       `yaml:"episodes"`
	RefineAfter int       `yaml:"refine-after"`
	LogEvery    int       `yaml:"log-every"`
	Exploration Annealing `yaml:"exploration"`
	K           Annealing `yaml:"k"`
}

func DefaultSchedule() Schedule {
	return Schedule{
		Episodes:    500_000,
		RefineAfter: 200_000,
		LogEvery:    100_000,
		Exploration: Annealing{Warmup: 100_000, Every: 10_000, Step: 0.1, Limit: 0.1},
		K:           Annealing{Warmup: 100_000, Every: 5_000, Step: 0.05, Limit: 4},
	}
}

func DefaultMinimaxSchedule() Schedule {
	return Schedule{
		Episodes:    500_000,
		RefineAfter: 10_000,
		LogEvery:    10_000,
		Exploration: Annealing{Warmup: 5_000, Every: 1_000, Step: 0.1, Limit: 0.1},
		K:           Annealing{Warmup: 10_000, Every: 5_000, Step: 0.05, Limit: 4},
	}
}

// withDefaults fills every unset field from def. The two training schedules
// differ, so a struct tag default cannot serve both.
func (that Schedule) withDefaults(def Schedule) Schedule {
	if that.Episodes == 0 {
		that.Episodes = def.Episodes
	}

	if that.RefineAfter == 0 {
		that.RefineAfter = def.RefineAfter
	}

	if that.LogEvery == 0 {
		that.LogEvery = def.LogEvery
	}

	if that.Exploration == (Annealing{}) {
		that.Exploration = def.Exploration
	}

	if that.K == (Annealing{}) {
		that.K = def.K
	}

	return that
}

// Decay is called once at each episode boundary. Exploration falls towards its
// floor and K rises towards its ceiling on independent schedules. It reports
// whether anything changed.
func (that *Hyperparameters) Decay(episode int, schedule Schedule) bool {
	changed := false

	if schedule.Exploration.due(episode) && that.Exploration > schedule.Exploration.Limit {
		that.Exploration = math32.Max(that.Exploration-schedule.Exploration.Step, schedule.Exploration.Limit)
		changed = true
	}

	if schedule.K.due(episode) && that.K < schedule.K.Limit {
		that.K = math32.Min(that.K+schedule.K.Step, schedule.K.Limit)
		changed = true
	}

	return changed
}
