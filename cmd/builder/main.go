// Command builder walks through a short question-and-answer flow and
// prints a custom robustness metric definition as JSON, ready for the
// rapid CLI or the HTTP API. It only assembles configuration; all
// metric logic lives in internal/metrics.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rapidlabs/rapid/internal/robustnessapi"
)

type step int

const (
	stepThreshold step = iota
	stepFocus
	stepIndication
	stepUpperPercentile
	stepLowerPercentile
	stepSinglePercentile
	stepDone
)

type model struct {
	step    step
	cursor  int
	choices []string

	hasThreshold bool
	t1           string
	t3           string
	upper        float64
	lower        float64
	single       float64
	singlePct    bool

	input textinput.Model
	err   string
}

func initialModel() *model {
	ti := textinput.New()
	ti.Placeholder = "e.g. 90 for the 90th percentile"
	ti.CharLimit = 6

	return &model{
		step:    stepThreshold,
		choices: []string{"yes", "no"},
		input:   ti,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		if !m.input.Focused() {
			return m, tea.Quit
		}
	case "up", "k":
		if !m.input.Focused() && m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if !m.input.Focused() && m.cursor < len(m.choices)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		return m.advance()
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) advance() (tea.Model, tea.Cmd) {
	m.err = ""
	switch m.step {
	case stepThreshold:
		m.hasThreshold = m.cursor == 0
		m.step = stepFocus
		m.cursor = 0
		if m.hasThreshold {
			m.choices = []string{
				"minimise the magnitude of failure",
				"maximise the number of acceptable scenarios",
			}
		} else {
			m.choices = []string{
				"make the best decision",
				"avoid making the wrong decision",
			}
		}
	case stepFocus:
		if m.hasThreshold {
			if m.cursor == 0 {
				m.t1 = "satisficing_regret"
			} else {
				m.t1 = "satisfice"
				m.t3 = "f_mean"
			}
		} else {
			if m.cursor == 0 {
				m.t1 = "identity"
			} else {
				m.t1 = "regret_from_best_da"
			}
		}
		if m.t3 != "" {
			// Aggregation already fixed; go straight to the
			// percentile range.
			m.step = stepUpperPercentile
			m.focusInput()
		} else {
			m.step = stepIndication
			m.cursor = 0
			m.choices = []string{
				"an indication of the level of performance",
				"the range of performance",
			}
		}
	case stepIndication:
		if m.cursor == 0 {
			m.t3 = "f_mean"
			m.singlePct = true
			m.step = stepSinglePercentile
		} else {
			m.t3 = "f_range"
			m.step = stepUpperPercentile
		}
		m.focusInput()
	case stepUpperPercentile:
		v, ok := m.percentileInput()
		if !ok {
			return m, nil
		}
		m.upper = v
		m.step = stepLowerPercentile
		m.focusInput()
	case stepLowerPercentile:
		v, ok := m.percentileInput()
		if !ok {
			return m, nil
		}
		m.lower = v
		m.step = stepDone
		return m, tea.Quit
	case stepSinglePercentile:
		v, ok := m.percentileInput()
		if !ok {
			return m, nil
		}
		m.single = v
		m.step = stepDone
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) focusInput() {
	m.input.SetValue("")
	m.input.Focus()
}

func (m *model) percentileInput() (float64, bool) {
	v, err := strconv.ParseFloat(m.input.Value(), 64)
	if err != nil || v < 0 || v > 100 {
		m.err = "enter a percentage between 0 and 100"
		return 0, false
	}
	return v / 100, true
}

func (m *model) View() string {
	var prompt string
	switch m.step {
	case stepThreshold:
		prompt = "Does a meaningful threshold for the level of performance exist?\n" +
			"(e.g. supply must exceed demand, or cost must stay within budget)\n\n"
	case stepFocus:
		prompt = "What is most important?\n\n"
	case stepIndication:
		prompt = "What is most important to know?\n\n"
	case stepUpperPercentile:
		return m.inputView("Upper percentile (0-100, lower = more risk averse):")
	case stepLowerPercentile:
		return m.inputView("Lower percentile (0-100):")
	case stepSinglePercentile:
		return m.inputView("Percentile reflecting your risk aversion (0-100):")
	case stepDone:
		return ""
	}

	for i, choice := range m.choices {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		prompt += fmt.Sprintf("%s %s\n", cursor, choice)
	}
	prompt += "\n(up/down to move, enter to select, q to quit)\n"
	return prompt
}

func (m *model) inputView(label string) string {
	s := label + "\n\n" + m.input.View() + "\n"
	if m.err != "" {
		s += "\n" + m.err + "\n"
	}
	return s
}

func (m *model) request() robustnessapi.MetricRequest {
	req := robustnessapi.MetricRequest{
		T1:       m.t1,
		T2:       "select_percentiles",
		T3:       m.t3,
		F:        "<performance column>",
		Maximise: true,
	}
	if m.singlePct {
		req.Percentiles = []float64{m.single}
	} else {
		req.Percentiles = []float64{m.lower, m.upper}
	}
	return req
}

func main() {
	m := initialModel()
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "builder error: %v\n", err)
		os.Exit(1)
	}
	if m.step != stepDone {
		return
	}

	out, err := sonic.MarshalIndent(m.request(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	if m.t1 == "satisficing_regret" || m.t1 == "satisfice" {
		fmt.Println("// set \"threshold\" or \"threshold_column\" before using this metric")
	}
}
