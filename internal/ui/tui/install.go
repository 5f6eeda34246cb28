package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/helm"
)

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramObserver forwards deployment events to a Bubble Tea program.
type ProgramObserver struct {
	sender Sender
}

var _ addons.Observer = (*ProgramObserver)(nil)

// NewProgramObserver creates an observer sending to s.
func NewProgramObserver(s Sender) *ProgramObserver {
	return &ProgramObserver{sender: s}
}

// AddonStarted implements addons.Observer.
func (o *ProgramObserver) AddonStarted(name string) {
	o.sender.Send(AddonStartedMsg{Name: name})
}

// AddonFinished implements addons.Observer.
func (o *ProgramObserver) AddonFinished(name string, result *helm.InstallResult, duration time.Duration, err error) {
	o.sender.Send(AddonFinishedMsg{Name: name, Result: result, Duration: duration, Err: err})
}

// RunInstallTUI wraps an addon deployment with the progress view.
// deployFn must report progress through the observer it receives.
func RunInstallTUI(
	ctx context.Context,
	deployFn func(ctx context.Context, observer addons.Observer) error,
	clusterName, region string,
	addonNames []string,
) error {
	m := NewInstallModel(clusterName, region, addonNames)

	p := tea.NewProgram(m, tea.WithContext(ctx))

	go func() {
		if err := deployFn(ctx, NewProgramObserver(p)); err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	if fm.Err != nil {
		return fm.Err
	}
	if !fm.Done {
		return fmt.Errorf("install interrupted")
	}
	return nil
}
