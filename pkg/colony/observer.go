package colony

import "time"

// Improvement reports a new best-so-far tour.
type Improvement struct {
	Iteration int
	Ant       int
	Length    float64
}

// Generation summarizes one finished generation.
type Generation struct {
	Iteration      int
	Best           float64 // best-so-far length after this generation
	GenerationBest float64
	Mean           float64
	Fallbacks      int
	Duration       time.Duration
}

// Observer receives progress events. Calls happen on the goroutine running
// [Colony.Run], after the generation barrier, in ant enumeration order.
type Observer interface {
	OnImprovement(Improvement)
	OnGeneration(Generation)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnImprovement(Improvement) {}
func (NopObserver) OnGeneration(Generation)   {}

// ObserverFuncs adapts plain functions to [Observer]. Nil fields are skipped.
type ObserverFuncs struct {
	Improvement func(Improvement)
	Generation  func(Generation)
}

func (o ObserverFuncs) OnImprovement(i Improvement) {
	if o.Improvement != nil {
		o.Improvement(i)
	}
}

func (o ObserverFuncs) OnGeneration(g Generation) {
	if o.Generation != nil {
		o.Generation(g)
	}
}

// Observers fans events out to several observers in order.
type Observers []Observer

func (obs Observers) OnImprovement(i Improvement) {
	for _, o := range obs {
		o.OnImprovement(i)
	}
}

func (obs Observers) OnGeneration(g Generation) {
	for _, o := range obs {
		o.OnGeneration(g)
	}
}
