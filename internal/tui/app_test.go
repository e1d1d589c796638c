package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pairlist/pairlist/internal/core"
)

const twoRowRoster = "username,displayName\njohn_doe,John Doe\njane_smith,Jane Smith"

func newTestModel() Model {
	service := core.NewService(core.Options{})
	return NewModel(service, time.Minute)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func writeRoster(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	return path
}

func TestNewModel_StartsAtPrompt(t *testing.T) {
	m := newTestModel()

	if m.mode != modePrompt {
		t.Errorf("mode = %d, want modePrompt", m.mode)
	}
	view := m.View()
	if !strings.Contains(view, "CSV file:") {
		t.Errorf("prompt view should show the path prompt, got %q", view)
	}
}

func TestUpdate_TypingFillsPathInput(t *testing.T) {
	m := newTestModel()

	var model tea.Model = m
	for _, r := range "team.csv" {
		model, _ = model.Update(keyMsg(string(r)))
	}

	got := model.(Model).pathInput.Value()
	if got != "team.csv" {
		t.Errorf("path input = %q, want %q", got, "team.csv")
	}
}

func TestUpdate_EnterWithEmptyPathStaysAtPrompt(t *testing.T) {
	m := newTestModel()

	model, cmd := m.Update(keyMsg("enter"))
	if model.(Model).mode != modePrompt {
		t.Error("empty path should not leave the prompt")
	}
	if cmd != nil {
		t.Error("empty path should not start a conversion")
	}
}

func TestUpdate_EnterStartsConversion(t *testing.T) {
	m := newTestModel()
	m.pathInput.SetValue("team.csv")

	model, cmd := m.Update(keyMsg("enter"))
	got := model.(Model)

	if got.mode != modeBusy {
		t.Errorf("mode = %d, want modeBusy", got.mode)
	}
	if got.lastPath != "team.csv" {
		t.Errorf("lastPath = %q, want %q", got.lastPath, "team.csv")
	}
	if cmd == nil {
		t.Fatal("expected a conversion command")
	}
}

func TestConvertCmd_HappyPath(t *testing.T) {
	m := newTestModel()
	path := writeRoster(t, "team.csv", twoRowRoster)

	msg := m.convertCmd(path)()
	done, ok := msg.(convertedMsg)
	if !ok {
		t.Fatalf("expected convertedMsg, got %T (%v)", msg, msg)
	}

	if done.conv.Filename != "team.csv" {
		t.Errorf("Filename = %q, want %q", done.conv.Filename, "team.csv")
	}
	if len(done.conv.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(done.conv.Records))
	}
	want := "john_doe@John Doe,\njane_smith@Jane Smith"
	if done.conv.Output != want {
		t.Errorf("Output = %q, want %q", done.conv.Output, want)
	}
}

func TestConvertCmd_WrongExtension(t *testing.T) {
	m := newTestModel()
	path := writeRoster(t, "team.txt", twoRowRoster)

	msg := m.convertCmd(path)()
	failed, ok := msg.(convertFailedMsg)
	if !ok {
		t.Fatalf("expected convertFailedMsg, got %T", msg)
	}
	if code := core.MapError(failed.err).Code; code != "FILE002" {
		t.Errorf("error code = %q, want FILE002", code)
	}
}

func TestConvertCmd_MissingFile(t *testing.T) {
	m := newTestModel()

	msg := m.convertCmd(filepath.Join(t.TempDir(), "nope.csv"))()
	failed, ok := msg.(convertFailedMsg)
	if !ok {
		t.Fatalf("expected convertFailedMsg, got %T", msg)
	}
	if !strings.Contains(failed.err.Error(), "open") {
		t.Errorf("error should mention the open failure, got %v", failed.err)
	}
}

func TestUpdate_ConvertedShowsResult(t *testing.T) {
	m := newTestModel()
	m.mode = modeBusy
	m.lastPath = "team.csv"

	records, err := core.Extract(twoRowRoster)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	analysis, err := core.Analyze(twoRowRoster)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	conv := &core.Conversion{
		Filename:  "team.csv",
		SizeHuman: "56 B",
		Records:   records,
		Output:    core.Flatten(records),
		Analysis:  analysis,
		CreatedAt: time.Now(),
	}

	model, _ := m.Update(convertedMsg{conv})
	got := model.(Model)

	if got.mode != modeResult {
		t.Fatalf("mode = %d, want modeResult", got.mode)
	}
	if len(got.recent) != 1 {
		t.Errorf("recent = %d entries, want 1", len(got.recent))
	}

	view := got.View()
	if !strings.Contains(view, "john_doe@John Doe,") {
		t.Errorf("result view should show the output, got %q", view)
	}
	if !strings.Contains(view, "2 records") {
		t.Errorf("result view should show the record count, got %q", view)
	}
}

func TestUpdate_ConvertFailedShowsError(t *testing.T) {
	m := newTestModel()
	m.mode = modeBusy

	model, _ := m.Update(convertFailedMsg{core.ErrEmptyInput})
	got := model.(Model)

	if got.mode != modeError {
		t.Fatalf("mode = %d, want modeError", got.mode)
	}

	view := got.View()
	if !strings.Contains(view, "INPUT001") {
		t.Errorf("error view should show the error code, got %q", view)
	}
	if !strings.Contains(view, "contains no data") {
		t.Errorf("error view should describe the problem, got %q", view)
	}
}

func TestUpdate_ResultViewHandlesNoRecords(t *testing.T) {
	m := newTestModel()

	analysis, err := core.Analyze("username,displayName\n,\n")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	conv := &core.Conversion{Filename: "team.csv", SizeHuman: "24 B", Analysis: analysis}

	model, _ := m.Update(convertedMsg{conv})
	view := model.(Model).View()

	if !strings.Contains(view, "No valid data rows") {
		t.Errorf("empty result should warn about missing rows, got %q", view)
	}
}

func TestSaveOutputCmd_WritesNextToSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "team.csv")
	conv := &core.Conversion{Output: "john_doe@John Doe,\njane_smith@Jane Smith"}

	msg := saveOutputCmd(conv, src)()
	saved, ok := msg.(savedMsg)
	if !ok {
		t.Fatalf("expected savedMsg, got %T (%v)", msg, msg)
	}

	wantPath := filepath.Join(dir, "team.txt")
	if string(saved) != wantPath {
		t.Errorf("saved path = %q, want %q", saved, wantPath)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read saved output: %v", err)
	}
	if string(data) != conv.Output {
		t.Errorf("saved content = %q, want %q", data, conv.Output)
	}
}

func TestUpdate_SavedShowsConfirmation(t *testing.T) {
	m := newTestModel()
	m.mode = modeResult
	m.conv = &core.Conversion{
		Filename:  "team.csv",
		SizeHuman: "56 B",
		Records:   []core.Record{{Username: "john_doe", DisplayName: "John Doe"}},
		Output:    "john_doe@John Doe",
	}

	model, _ := m.Update(savedMsg("/tmp/team.txt"))
	view := model.(Model).View()

	if !strings.Contains(view, "saved to /tmp/team.txt") {
		t.Errorf("result view should confirm the save, got %q", view)
	}
}

func TestUpdate_NewConversionResetsState(t *testing.T) {
	m := newTestModel()
	m.mode = modeResult
	m.conv = &core.Conversion{Filename: "team.csv"}
	m.savedTo = "/tmp/team.txt"

	model, _ := m.Update(keyMsg("n"))
	got := model.(Model)

	if got.mode != modePrompt {
		t.Errorf("mode = %d, want modePrompt", got.mode)
	}
	if got.conv != nil {
		t.Error("conv should be cleared")
	}
	if got.savedTo != "" {
		t.Error("savedTo should be cleared")
	}
}

func TestUpdate_QuitFromResult(t *testing.T) {
	m := newTestModel()
	m.mode = modeResult
	m.conv = &core.Conversion{Filename: "team.csv"}

	model, cmd := m.Update(keyMsg("q"))
	if !model.(Model).quitting {
		t.Error("q should mark the model as quitting")
	}
	if cmd == nil {
		t.Error("q should return tea.Quit")
	}
	if model.(Model).View() != "" {
		t.Error("quitting view should be empty")
	}
}
