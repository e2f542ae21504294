// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the operator aborts the prompt
var ErrCancelled = errors.New("prompt cancelled")

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF79C6")).
			Padding(0, 1).
			Width(30)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// inputModel is a single-line text prompt
type inputModel struct {
	message   string
	value     string
	submitted bool
	cancelled bool
}

func newInputModel(message string) inputModel {
	return inputModel{message: message}
}

func (m inputModel) Init() tea.Cmd {
	return nil
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "enter":
		m.submitted = true
		return m, tea.Quit
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "backspace":
		if m.value != "" {
			runes := []rune(m.value)
			m.value = string(runes[:len(runes)-1])
		}
		return m, nil
	}

	if keyMsg.Type == tea.KeyRunes || keyMsg.Type == tea.KeySpace {
		for _, r := range keyMsg.Runes {
			if r >= 32 && r != 127 {
				m.value += string(r)
			}
		}
	}
	return m, nil
}

func (m inputModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.message))
	b.WriteString("\n")
	b.WriteString(inputStyle.Render(m.value + "█"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: submit • esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

// Terminal asks the operator on a TTY
type Terminal struct {
	in  io.Reader
	out io.Writer

	// one prompt on screen at a time
	mu sync.Mutex
}

// NewTerminal prompts on stdin/stdout
func NewTerminal() *Terminal {
	return &Terminal{in: os.Stdin, out: os.Stdout}
}

// NewTerminalWithIO prompts on the given streams
func NewTerminalWithIO(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

func (t *Terminal) Prompt(ctx context.Context, message string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	program := tea.NewProgram(newInputModel(message),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)

	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	model, ok := final.(inputModel)
	if !ok || model.cancelled || !model.submitted {
		return "", ErrCancelled
	}
	return strings.TrimSpace(model.value), nil
}
