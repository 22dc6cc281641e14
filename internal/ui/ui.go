package ui

import (
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasktrack/internal/config"
	"tasktrack/internal/debug"
	"tasktrack/internal/nav"
	"tasktrack/internal/storage"
	"tasktrack/internal/task"
	"tasktrack/internal/watch"
)

// FileChangedMsg is sent when another process rewrites the data file.
type FileChangedMsg struct{}

type Model struct {
	machine    *nav.Machine
	cfg        config.Config
	watcher    *watch.Watcher
	input      textinput.Model
	copy       func(string) error
	width      int
	confirmDel bool
	promptKey  string
}

// watchedFile acknowledges its own saves so the watcher stays quiet.
type watchedFile struct {
	storage.File
	w *watch.Watcher
}

func (f watchedFile) Save(tasks []task.Task) error {
	if err := f.File.Save(tasks); err != nil {
		return err
	}
	if f.w != nil {
		f.w.Acknowledge()
	}
	return nil
}

// Run starts the program with an empty collection; tasks come in through
// the load command. archive may be nil, which disables export.
func Run(cfg config.Config, archive *storage.Archive) error {
	w, err := watch.New(cfg.DataFile, watch.WithOnError(func(err error) {
		debug.Warn("watch %s: %v", cfg.DataFile, err)
	}))
	if err == nil {
		if err := w.Start(); err != nil {
			debug.Warn("file watch disabled: %v", err)
			w = nil
		} else {
			defer w.Stop()
		}
	} else {
		w = nil
	}

	var opts []nav.Option
	if archive != nil {
		opts = append(opts, nav.WithExporter(archive))
	}
	machine := nav.New(task.NewStore(), watchedFile{File: storage.File{Path: cfg.DataFile}, w: w}, opts...)

	m := New(machine, cfg, w)
	program := tea.NewProgram(m)
	_, err = program.Run()
	return err
}

// New builds a model around machine. w may be nil.
func New(machine *nav.Machine, cfg config.Config, w *watch.Watcher) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	machine.SetStatus(fmt.Sprintf("Press '%s' to add, '%s' to load %s.", cfg.Keys.Add, cfg.Keys.Load, filepath.Base(cfg.DataFile)))
	return Model{
		machine: machine,
		cfg:     cfg,
		watcher: w,
		input:   ti,
		copy:    clipboard.WriteAll,
		width:   80,
	}
}

func (m Model) Init() tea.Cmd {
	return watchFileCmd(m.watcher)
}

func watchFileCmd(w *watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.machine.Prompting() {
			return m.updatePromptMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 10
	case FileChangedMsg:
		m.machine.SetStatus(fmt.Sprintf("%s changed on disk, press %s to reload",
			filepath.Base(m.cfg.DataFile), m.cfg.Keys.Load))
		return m, watchFileCmd(m.watcher)
	}
	return m, nil
}

func (m Model) updatePromptMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "ctrl+c":
		m.machine.Cancel()
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	case m.cfg.Keys.Confirm:
		m.machine.Submit(m.input.Value())
		m.syncInput(true)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	ctx := m.machine.Context()
	if key == m.cfg.Keys.Copy && ctx == nav.TaskList {
		m.copySelected()
		return m, nil
	}

	cmd := commandFor(m.cfg.Keys, key)
	if cmd == nav.CmdDelete && ctx == nav.TaskList {
		if t, ok := m.machine.SelectedTask(); ok {
			m.confirmDel = true
			m.machine.SetStatus(fmt.Sprintf("Delete \"%s\"? y/n", t.Title))
			return m, nil
		}
	}

	m.machine.Dispatch(cmd)
	if m.machine.Quitting() {
		return m, tea.Quit
	}
	m.syncInput(false)
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		m.confirmDel = false
		return m, tea.Quit
	case "n", "N", m.cfg.Keys.Cancel:
		m.confirmDel = false
		m.machine.SetStatus("Delete cancelled")
	case "y", "Y":
		m.confirmDel = false
		m.machine.Dispatch(nav.CmdDelete)
	}
	return m, nil
}

// syncInput points the text input at the machine's prompt. After a submit
// that re-asks the same prompt the typed text is cleared.
func (m *Model) syncInput(submitted bool) {
	p := m.machine.Snapshot().Prompt
	if !p.Active {
		m.promptKey = ""
		m.input.SetValue("")
		m.input.Blur()
		return
	}
	if submitted || p.Label != m.promptKey {
		m.input.SetValue(p.Value)
		m.input.CursorEnd()
	}
	m.promptKey = p.Label
	m.input.Focus()
}

func (m *Model) copySelected() {
	t, ok := m.machine.SelectedTask()
	if !ok {
		m.machine.SetStatus("No task selected")
		return
	}
	text := copyText(t)
	if err := m.copy(text); err != nil {
		m.machine.SetStatus(fmt.Sprintf("copy failed: %v", err))
		return
	}
	m.machine.SetStatus(fmt.Sprintf("Copied %q to clipboard", t.Title))
}

func copyText(t task.Task) string {
	return fmt.Sprintf("%s (%s, priority %d)", t.Title, t.Deadline, t.Priority)
}

// commandFor maps a key to a command. Arrow keys always move.
func commandFor(k config.Keymap, key string) nav.Command {
	switch key {
	case "up":
		return nav.CmdUp
	case "down":
		return nav.CmdDown
	}
	bindings := []struct {
		key string
		cmd nav.Command
	}{
		{k.Quit, nav.CmdQuit},
		{k.Add, nav.CmdAdd},
		{k.Delete, nav.CmdDelete},
		{k.Up, nav.CmdUp},
		{k.Down, nav.CmdDown},
		{k.Toggle, nav.CmdToggle},
		{k.EnterSubtasks, nav.CmdEnterSubtasks},
		{k.ExitSubtasks, nav.CmdExitSubtasks},
		{k.EditTitle, nav.CmdEditTitle},
		{k.EditNote, nav.CmdEditNote},
		{k.EditDeadline, nav.CmdEditDeadline},
		{k.ManageTags, nav.CmdManageTags},
		{k.Sort, nav.CmdSort},
		{k.Save, nav.CmdSave},
		{k.Load, nav.CmdLoad},
		{k.Search, nav.CmdSearch},
		{k.Export, nav.CmdExport},
	}
	for _, b := range bindings {
		if b.key == key {
			return b.cmd
		}
	}
	return nav.CmdNone
}
