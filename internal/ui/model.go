package ui

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/nconklindev/sheetview/internal/catalog"
	"github.com/nconklindev/sheetview/internal/config"
	"github.com/nconklindev/sheetview/internal/converter"
	"github.com/nconklindev/sheetview/internal/types"
	"github.com/nconklindev/sheetview/internal/view"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

const (
	msgUnsupported = "No supported files found. Please provide Excel or CSV files."
	msgDecode      = "Failed to parse one or more files. Please ensure they are not corrupted."
)

type state int

const (
	stateFilePicker state = iota
	stateLoading
	stateTable
	stateFilter
	stateColumns
	stateFiles
)

// Options configure a Model.
type Options struct {
	Settings config.Settings
	// Files are loaded as one batch when the program starts.
	Files  []string
	Log    logrus.FieldLogger
	Decode converter.DecodeFunc
}

// interaction is transient UI state. None of it is part of the view config.
type interaction struct {
	cursorRow int
	cursorCol int
	scrollCol int

	showFilters  bool
	filterColumn string
	optionCursor int

	columnCursor int

	fileCursor int
	fileSort   catalog.SortField
	fileDesc   bool
	marked     map[types.FileID]bool

	editingPage bool
	showHelp    bool
}

type Model struct {
	state     state
	returnTo  state
	keys      keyMap
	help      help.Model
	ui        interaction
	banner    string
	width     int
	height    int
	pageInput textinput.Model
	textInput textinput.Model

	filepicker filepicker.Model
	progress   progress.Model

	settings config.Settings
	catalog  *catalog.Catalog
	engine   *view.Engine
	decode   converter.DecodeFunc
	log      logrus.FieldLogger
	pending  []string

	progressChan chan float64
	resultChan   chan batchLoadedMsg
}

type batchLoadedMsg struct {
	result catalog.BatchResult
	err    error
}

type openFilesMsg []string

type progressMsg float64

func New(opts Options) Model {
	if opts.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Log = l
	}
	if opts.Decode == nil {
		opts.Decode = converter.Decode
	}

	fp := filepicker.New()
	fp.AllowedTypes = []string{".csv", ".xls", ".xlsx"}
	fp.CurrentDirectory, _ = os.Getwd()
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(accentSoft)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(accentSoft)
	fp.Styles.File = lipgloss.NewStyle().Foreground(white)
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	pageInput := textinput.New()
	pageInput.Prompt = "page: "
	pageInput.CharLimit = 9

	textInput := textinput.New()
	textInput.Prompt = "contains: "

	return Model{
		state:      stateFilePicker,
		keys:       defaultKeyMap(),
		help:       help.New(),
		ui:         interaction{marked: make(map[types.FileID]bool)},
		pageInput:  pageInput,
		textInput:  textInput,
		filepicker: fp,
		progress:   progress.New(progress.WithGradient("#FF8C42", "#FF9F5A")),
		settings:   opts.Settings,
		catalog:    catalog.New(opts.Log),
		engine:     view.NewEngine(opts.Settings.ViewOptions(), opts.Settings.PageSize),
		decode:     opts.Decode,
		log:        opts.Log,
		pending:    opts.Files,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.filepicker.Init()}
	if len(m.pending) > 0 {
		files := m.pending
		cmds = append(cmds, func() tea.Msg { return openFilesMsg(files) })
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.engine.SetAvailableWidth(msg.Width)

		height := msg.Height - 10
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)
		m.progress.Width = min(60, max(10, msg.Width-8))
		return m, nil

	case openFilesMsg:
		return m.loadFiles([]string(msg))

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateLoading {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case batchLoadedMsg:
		return m.finishBatch(msg), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case stateTable:
			return m.updateTable(msg)
		case stateFilter:
			return m.updateFilter(msg)
		case stateColumns:
			return m.updateColumns(msg)
		case stateFiles:
			return m.updateFiles(msg)
		case stateFilePicker:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "esc":
				if m.catalog.Len() > 0 {
					m.state = stateTable
					return m, nil
				}
			}
		}
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			return m.loadFiles([]string{path})
		}
		if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
			m.log.WithField("file", path).Warn("unsupported file selected")
			m.banner = msgUnsupported
		}
		return m, cmd
	}

	return m, nil
}

// loadFiles starts a batch decode in the background and reports progress
// until the batch completes.
func (m Model) loadFiles(paths []string) (Model, tea.Cmd) {
	if m.state != stateLoading {
		m.returnTo = m.state
	}
	m.state = stateLoading
	m.banner = ""
	m.progressChan = make(chan float64, len(paths)+1)
	m.resultChan = make(chan batchLoadedMsg, 1)

	progressChan := m.progressChan
	resultChan := m.resultChan
	cat := m.catalog
	decode := m.decode
	log := m.log
	opts := catalog.LoadOptions{
		Strict:   m.settings.StrictBatch,
		Parallel: m.settings.MaxParallelDecodes,
		Progress: progressChan,
	}

	run := func() {
		defer close(resultChan)
		defer close(progressChan)

		var (
			sources []catalog.Source
			errs    []error
		)
		for _, p := range paths {
			src, err := catalog.FromPath(p)
			if err != nil {
				log.WithFields(logrus.Fields{"file": p, "error": err}).Error("cannot open file")
				errs = append(errs, err)
				continue
			}
			sources = append(sources, src)
		}
		if len(sources) == 0 && len(errs) > 0 {
			resultChan <- batchLoadedMsg{err: errors.Join(errs...)}
			return
		}

		res, err := cat.LoadBatch(context.Background(), sources, decode, opts)
		resultChan <- batchLoadedMsg{result: res, err: errors.Join(append(errs, err)...)}
	}

	cmd := func() tea.Msg {
		go run()
		return waitForProgress(progressChan, resultChan)()
	}
	return m, tea.Batch(m.progress.SetPercent(0), cmd)
}

func waitForProgress(progressChan chan float64, resultChan chan batchLoadedMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return res
			}
			return nil
		}

		return progressMsg(p)
	}
}

// finishBatch shows the outcome of a batch and switches to the selected file
// if it changed.
func (m Model) finishBatch(msg batchLoadedMsg) Model {
	switch {
	case errors.Is(msg.err, catalog.ErrUnsupportedFileType):
		m.banner = msgUnsupported
	case msg.err != nil:
		m.banner = msgDecode
		m.log.WithError(msg.err).Error("batch load failed")
	}

	m.syncSelection()
	m.state = m.returnTo
	if m.catalog.Len() > 0 && (m.state == stateFilePicker || m.state == stateLoading) {
		m.state = stateTable
	}
	if m.catalog.Len() == 0 {
		m.state = stateFilePicker
	}
	return m
}

// syncSelection points the engine at the catalog's selected file.
func (m *Model) syncSelection() {
	selected := m.catalog.Selected()
	if selected == m.engine.Dataset() {
		return
	}
	m.engine.SetDataset(selected)
	m.ui.cursorRow, m.ui.cursorCol, m.ui.scrollCol = 0, 0, 0
	m.ui.filterColumn = ""
	m.ui.editingPage = false
	if selected != nil {
		m.log.WithField("file", selected.Name).Debug("file selected")
	}
}

func (m Model) View() string {
	var body string
	switch m.state {
	case stateFilePicker:
		body = m.viewFilePicker()
	case stateLoading:
		body = m.viewLoading()
	case stateTable:
		body = m.viewTable()
	case stateFilter:
		body = m.viewFilter()
	case stateColumns:
		body = m.viewColumns()
	case stateFiles:
		body = m.viewFiles()
	}
	if m.banner != "" {
		return lipgloss.JoinVertical(lipgloss.Left, ErrorStyle.Render("✗ "+m.banner), body)
	}
	return body
}
