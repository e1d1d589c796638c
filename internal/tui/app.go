package tui

// app.go implements the terminal frontend: a path prompt, an async
// conversion command, and result/error screens over the same core service
// the web frontend uses.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pairlist/pairlist/internal/core"
)

type mode int

const (
	modePrompt mode = iota
	modeBusy
	modeResult
	modeError
)

const (
	maxOutputLines = 12
	maxRecent      = 5
)

type convertedMsg struct{ conv *core.Conversion }
type convertFailedMsg struct{ err error }
type savedMsg string
type saveFailedMsg struct{ err error }

type Model struct {
	service *core.Service
	timeout time.Duration

	mode      mode
	pathInput textinput.Model
	spinner   spinner.Model

	lastPath string
	conv     *core.Conversion
	err      error
	savedTo  string
	saveErr  error
	recent   []*core.Conversion

	width    int
	height   int
	quitting bool
}

func NewModel(service *core.Service, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/roster.csv"
	ti.CharLimit = 300
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle

	return Model{
		service:   service,
		timeout:   timeout,
		pathInput: ti,
		spinner:   sp,
		width:     80,
		height:    24,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case convertedMsg:
		m.mode = modeResult
		m.conv = msg.conv
		m.recent = append(m.recent, msg.conv)
		return m, nil

	case convertFailedMsg:
		m.mode = modeError
		m.err = msg.err
		return m, nil

	case savedMsg:
		m.savedTo = string(msg)
		m.saveErr = nil
		return m, nil

	case saveFailedMsg:
		m.saveErr = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.mode != modeBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modePrompt:
			return m.updatePrompt(msg)
		case modeBusy:
			return m.updateBusy(msg)
		case modeResult:
			return m.updateResult(msg)
		case modeError:
			return m.updateError(msg)
		}
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.pathInput.SetValue("")
		return m, nil

	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			return m, nil
		}
		m.lastPath = path
		m.mode = modeBusy
		return m, tea.Batch(m.spinner.Tick, m.convertCmd(path))
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m Model) updateBusy(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "s":
		if m.conv != nil && len(m.conv.Records) > 0 {
			return m, saveOutputCmd(m.conv, m.lastPath)
		}
		return m, nil

	case "n", "enter", "esc":
		return m.backToPrompt(), nil
	}
	return m, nil
}

func (m Model) updateError(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "enter", "esc":
		return m.backToPrompt(), nil
	}
	return m, nil
}

func (m Model) backToPrompt() Model {
	m.mode = modePrompt
	m.conv = nil
	m.err = nil
	m.savedTo = ""
	m.saveErr = nil
	m.pathInput.Focus()
	m.pathInput.CursorEnd()
	return m
}

// convertCmd runs one conversion off the Update loop. The extension check
// happens here rather than in the service so the web frontend can keep its
// own multipart-specific version.
func (m Model) convertCmd(path string) tea.Cmd {
	service := m.service
	timeout := m.timeout

	return func() tea.Msg {
		if ext := filepath.Ext(path); !strings.EqualFold(ext, ".csv") {
			return convertFailedMsg{fmt.Errorf("invalid file type %q: only .csv files are accepted", ext)}
		}

		f, err := os.Open(path)
		if err != nil {
			return convertFailedMsg{fmt.Errorf("open %s: %w", path, err)}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		conv, err := service.Convert(ctx, filepath.Base(path), f)
		if err != nil {
			return convertFailedMsg{err}
		}
		return convertedMsg{conv}
	}
}

// saveOutputCmd writes the flattened output next to the source file, with
// the extension swapped to .txt. An existing file is overwritten.
func saveOutputCmd(conv *core.Conversion, srcPath string) tea.Cmd {
	return func() tea.Msg {
		base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
		if base == "" {
			base = "output"
		}
		dest := filepath.Join(filepath.Dir(srcPath), base+".txt")

		if err := os.WriteFile(dest, []byte(conv.Output), 0o644); err != nil {
			return saveFailedMsg{fmt.Errorf("save output: %w", err)}
		}
		return savedMsg(dest)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.mode {
	case modeBusy:
		return m.viewBusy()
	case modeResult:
		return m.viewResult()
	case modeError:
		return m.viewError()
	default:
		return m.viewPrompt()
	}
}

func (m Model) viewPrompt() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pairlist"))
	b.WriteString(dimStyle.Render("  turn a CSV roster into username@displayName pairs"))
	b.WriteString("\n\n")

	b.WriteString(promptStyle.Render(" CSV file: "))
	b.WriteString(m.pathInput.View())
	b.WriteString("\n")

	if len(m.recent) > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(" Recent:"))
		b.WriteString("\n")

		start := len(m.recent) - maxRecent
		if start < 0 {
			start = 0
		}
		for i := len(m.recent) - 1; i >= start; i-- {
			conv := m.recent[i]
			line := fmt.Sprintf("   %s  %s  %d records",
				conv.CreatedAt.Format("15:04"), conv.Filename, len(conv.Records))
			b.WriteString(truncate(line, m.width) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  enter: convert   esc: clear   ctrl+c: quit"))
	return b.String()
}

func (m Model) viewBusy() string {
	return "\n " + m.spinner.View() + "Converting " + dimStyle.Render(m.lastPath) + "\n"
}

func (m Model) viewResult() string {
	conv := m.conv
	var b strings.Builder

	b.WriteString(titleStyle.Render("pairlist"))
	b.WriteString("  " + conv.Filename + dimStyle.Render("  ("+conv.SizeHuman+")"))
	b.WriteString("\n\n")

	if a := conv.Analysis; a != nil {
		chips := []string{
			chipStyle.Render(fmt.Sprintf("%d records", a.ValidRecords)),
			chipStyle.Render(fmt.Sprintf("%d short rows skipped", a.SkippedShort)),
			chipStyle.Render(fmt.Sprintf("%d empty rows skipped", a.SkippedEmpty)),
			chipStyle.Render(fmt.Sprintf("%dms", a.ProcessingTimeMs)),
		}
		b.WriteString(" " + strings.Join(chips, " ") + "\n")

		if len(a.Duplicates) > 0 {
			names := make([]string, len(a.Duplicates))
			for i, d := range a.Duplicates {
				names[i] = d.Username
			}
			b.WriteString(warnStyle.Render(" ! duplicate usernames: " + strings.Join(names, ", ")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(conv.Records) == 0 {
		b.WriteString(warnStyle.Render(" No valid data rows found in the file."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("  n: convert another   q: quit"))
		return b.String()
	}

	b.WriteString(m.renderOutputBox(conv.Output))
	b.WriteString("\n")

	if m.saveErr != nil {
		b.WriteString(errorStyle.Render(" ✗ " + m.saveErr.Error()))
		b.WriteString("\n")
	} else if m.savedTo != "" {
		b.WriteString(successStyle.Render(" ✓ saved to " + m.savedTo))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  s: save as .txt   n: convert another   q: quit"))
	return b.String()
}

func (m Model) viewError() string {
	userMsg := core.MapError(m.err)

	var b strings.Builder
	b.WriteString(titleStyle.Render("pairlist"))
	b.WriteString("\n\n")
	b.WriteString(errorStyle.Render(" ✗ " + userMsg.Message))
	b.WriteString("\n")
	if userMsg.Action != "" {
		b.WriteString(dimStyle.Render("   " + userMsg.Action))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("   [" + userMsg.Code + "]"))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("  enter: try again   q: quit"))
	return b.String()
}

func (m Model) renderOutputBox(output string) string {
	lines := strings.Split(output, "\n")

	shown := lines
	var more int
	if len(lines) > maxOutputLines {
		shown = lines[:maxOutputLines]
		more = len(lines) - maxOutputLines
	}

	inner := m.width - 6
	if inner < 20 {
		inner = 20
	}
	for i, line := range shown {
		shown[i] = truncate(line, inner)
	}

	box := outputBoxStyle.Render(strings.Join(shown, "\n"))
	if more > 0 {
		box += "\n" + dimStyle.Render(fmt.Sprintf("   … %d more lines", more))
	}
	return box
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 2 || len(runes) <= width {
		return s
	}
	return string(runes[:width-2]) + ".."
}
