package tui

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// baseSpinner holds the animation frames and cadence. The cycle below
// bounces back through the interior so the animation reverses smoothly.
var baseSpinner = spinner.Spinner{
	Frames: []string{"·", "✢", "*", "✶", "✻", "✽"},
	FPS:    120 * time.Millisecond,
}

// spinnerVerbs rotate randomly each turn while the simulator "thinks".
var spinnerVerbs = []string{
	"Thinking",
	"Computing",
	"Pondering",
	"Processing",
	"Contemplating",
	"Cogitating",
	"Deliberating",
	"Musing",
}

// spinnerCycle returns the frames followed by the reversed interior,
// skipping both endpoints so they are not shown twice per bounce.
func spinnerCycle() []string {
	frames := baseSpinner.Frames
	cycle := make([]string, 0, 2*len(frames)-2)
	cycle = append(cycle, frames...)
	for i := len(frames) - 2; i >= 1; i-- {
		cycle = append(cycle, frames[i])
	}
	return cycle
}

// randomSpinnerVerb picks a verb for the next turn.
func randomSpinnerVerb() string {
	return spinnerVerbs[rand.Intn(len(spinnerVerbs))]
}
