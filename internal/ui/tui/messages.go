// Package tui provides a Bubble Tea terminal UI showing addon install progress.
package tui

import (
	"time"

	"github.com/testruction/cilium-addon/internal/addons/helm"
)

// AddonStartedMsg reports that an addon deployment began.
type AddonStartedMsg struct {
	Name string
}

// AddonFinishedMsg reports the outcome of an addon deployment.
type AddonFinishedMsg struct {
	Name     string
	Result   *helm.InstallResult
	Duration time.Duration
	Err      error
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the operation is complete.
type DoneMsg struct{}
