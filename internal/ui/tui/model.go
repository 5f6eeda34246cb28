package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// AddonStep is the display state of one addon deployment.
type AddonStep struct {
	Name      string
	Release   string
	Namespace string
	Revision  int
	Status    string
	Duration  time.Duration
	Active    bool
	Done      bool
	Err       error
}

// Model is the Bubble Tea model for the install progress view.
type Model struct {
	// Cluster info
	ClusterName string
	Region      string

	Steps     []AddonStep
	StartTime time.Time

	// Animation
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
}

// NewInstallModel creates a model listing addons in deployment order.
func NewInstallModel(clusterName, region string, addonNames []string) Model {
	steps := make([]AddonStep, len(addonNames))
	for i, name := range addonNames {
		steps[i] = AddonStep{Name: name}
	}
	return Model{
		ClusterName: clusterName,
		Region:      region,
		Steps:       steps,
		StartTime:   time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case AddonStartedMsg:
		step := m.step(msg.Name)
		step.Active = true

	case AddonFinishedMsg:
		m.finishStep(msg)
		if msg.Err != nil {
			m.Err = msg.Err
			return m, tea.Quit
		}

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// step returns the step for name, appending one for addons that were not
// known when the model was created.
func (m *Model) step(name string) *AddonStep {
	for i := range m.Steps {
		if m.Steps[i].Name == name {
			return &m.Steps[i]
		}
	}
	m.Steps = append(m.Steps, AddonStep{Name: name})
	return &m.Steps[len(m.Steps)-1]
}

func (m *Model) finishStep(msg AddonFinishedMsg) {
	step := m.step(msg.Name)
	step.Active = false
	step.Duration = msg.Duration
	if msg.Err != nil {
		step.Err = msg.Err
		return
	}

	step.Done = true
	if msg.Result != nil {
		step.Release = msg.Result.Release
		step.Namespace = msg.Result.Namespace
		step.Revision = msg.Result.Revision
		step.Status = msg.Result.Status
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
