/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const promptWidth = 40

// promptField is one credential the prompt asks for.
type promptField struct {
	label string
	input textinput.Model
	dst   *string
}

// promptModel is the bubbletea model that collects missing credentials.
type promptModel struct {
	fields    []promptField
	focused   int
	done      bool
	cancelled bool
	err       error
	styles    styles
}

func newPromptModel(s *Settings) *promptModel {
	st := newStyles()
	m := &promptModel{styles: st}

	add := func(label, placeholder string, dst *string, secret bool) {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Width = promptWidth
		ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan))
		ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaForeground))
		ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment))

		if secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}

		m.fields = append(m.fields, promptField{label: label, input: ti, dst: dst})
	}

	if s.Controller.Address == "" {
		add("Controller address:", "apic1.example.net", &s.Controller.Address, false)
	}

	if s.Controller.Username == "" {
		add("Username:", "admin", &s.Controller.Username, false)
	}

	if s.Controller.Password == "" {
		add("Password:", "Enter password", &s.Controller.Password, true)
	}

	if len(m.fields) > 0 {
		m.fields[0].input.Focus()
	}

	return m
}

func (*promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // Default case handles all unlisted keys
		switch keyMsg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.next()
		case tea.KeyTab, tea.KeyDown:
			m.move(1)
			return m, textinput.Blink
		case tea.KeyShiftTab, tea.KeyUp:
			m.move(-1)
			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd

	if m.focused < len(m.fields) {
		m.fields[m.focused].input, cmd = m.fields[m.focused].input.Update(msg)
	}

	return m, cmd
}

func (m *promptModel) next() (tea.Model, tea.Cmd) {
	if strings.TrimSpace(m.fields[m.focused].input.Value()) == "" {
		m.err = fmt.Errorf("%w: %s", errEmptyField, strings.TrimSuffix(m.fields[m.focused].label, ":"))
		return m, nil
	}

	m.err = nil

	if m.focused == len(m.fields)-1 {
		m.done = true
		return m, tea.Quit
	}

	m.move(1)

	return m, textinput.Blink
}

func (m *promptModel) move(delta int) {
	m.fields[m.focused].input.Blur()
	m.focused = (m.focused + delta + len(m.fields)) % len(m.fields)
	m.fields[m.focused].input.Focus()
}

func (m *promptModel) View() string {
	var content strings.Builder

	content.WriteString(m.styles.title.Render("portradar: controller login") + "\n\n")

	for i := range m.fields {
		label := m.styles.label.Render(m.fields[i].label)
		if i == m.focused {
			label = m.styles.focused.Render(m.fields[i].label)
		}

		content.WriteString(lipgloss.JoinVertical(lipgloss.Left, label, m.fields[i].input.View()))
		content.WriteString("\n\n")
	}

	content.WriteString(m.styles.help.Render("Enter → next field | Tab → switch field | Ctrl+C/Esc → quit"))

	if m.err != nil {
		content.WriteString("\n\n" + m.styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return m.styles.app.Render(content.String())
}

// apply copies the entered values into the settings fields.
func (m *promptModel) apply() {
	for i := range m.fields {
		v := m.fields[i].input.Value()
		if m.fields[i].input.EchoMode != textinput.EchoPassword {
			v = strings.TrimSpace(v)
		}

		*m.fields[i].dst = v
	}
}

// CredentialPrompt fills missing controller credentials in s.
type CredentialPrompt interface {
	Prompt(s *Settings) error
}

// TerminalPrompt asks on the terminal when stdin is one and otherwise reads
// the password from the first line of stdin.
type TerminalPrompt struct {
	In  io.Reader
	Out io.Writer
	// IsTerminal overrides terminal detection.
	IsTerminal func() bool
}

// NewTerminalPrompt returns a prompt bound to the process stdin and stderr.
func NewTerminalPrompt() *TerminalPrompt {
	return &TerminalPrompt{
		In:  os.Stdin,
		Out: os.Stderr,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Prompt implements CredentialPrompt.
func (p *TerminalPrompt) Prompt(s *Settings) error {
	if s.Controller.Address != "" && s.Controller.Username != "" && s.Controller.Password != "" {
		return nil
	}

	if p.IsTerminal == nil || !p.IsTerminal() {
		return p.readPiped(s)
	}

	m := newPromptModel(s)

	final, err := tea.NewProgram(m, tea.WithInput(p.In), tea.WithOutput(p.Out)).Run()
	if err != nil {
		return fmt.Errorf("credential prompt: %w", err)
	}

	result, ok := final.(*promptModel)
	if !ok || result.cancelled || !result.done {
		return errPromptCancelled
	}

	result.apply()

	return nil
}

// readPiped takes the password from stdin; other missing fields are left
// for validation to report.
func (p *TerminalPrompt) readPiped(s *Settings) error {
	if s.Controller.Password != "" || p.In == nil {
		return nil
	}

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading password from stdin: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errEmptyPassword
	}

	s.Controller.Password = password

	return nil
}
