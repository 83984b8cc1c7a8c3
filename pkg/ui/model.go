// Package ui is the tg viewer: a full-screen bubbletea program showing a
// forest in a tree-grid with a markdown detail pane for the active row.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treegrid/internal/datasource"
	"github.com/vanderheijden86/treegrid/pkg/config"
	"github.com/vanderheijden86/treegrid/pkg/debug"
	"github.com/vanderheijden86/treegrid/pkg/treegrid"
	"github.com/vanderheijden86/treegrid/pkg/watcher"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

// FileChangedMsg is sent when a watched data file changes on disk.
type FileChangedMsg struct {
	Path string
}

// ReloadedMsg carries the result of reloading every data file.
type ReloadedMsg struct {
	Forest []treegrid.TreeNode
	Err    error
}

// WatchFileCmd returns a command that waits for the next file change.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		return FileChangedMsg{Path: <-w.Changed()}
	}
}

// ReloadCmd reloads paths in the background.
func ReloadCmd(paths []string) tea.Cmd {
	return func() tea.Msg {
		forest, err := datasource.LoadForest(context.Background(), paths...)
		return ReloadedMsg{Forest: forest, Err: err}
	}
}

// Options configures a Model.
type Options struct {
	Forest []treegrid.TreeNode
	// Paths are reloaded on FileChangedMsg.
	Paths   []string
	Config  config.Config
	Watcher *watcher.Watcher
	// GlamourStyle names a glamour standard style; "" detects from the
	// terminal.
	GlamourStyle string
	// Clipboard replaces the system clipboard writer.
	Clipboard func(string) error
}

// selection records the last keyboard select reported by the grid.
type selection struct {
	rowID, columnID string
	set             bool
}

// Model is the viewer's bubbletea model.
type Model struct {
	grid    *treegrid.Grid
	forest  []treegrid.TreeNode
	paths   []string
	watcher *watcher.Watcher
	theme   treegrid.Theme

	keys     keyMap
	help     help.Model
	detail   viewport.Model
	md       *glamour.TermRenderer
	mdStyle  string
	copyText func(string) error
	sel      *selection

	detailWidth   int
	detailFor     string
	scroll        int
	width, height int

	statusMsg     string
	statusIsError bool
}

// NewModel builds the viewer around forest. Expansion starts from the
// persisted state when present, else from ui.expand_depth.
func NewModel(opts Options) Model {
	cfg := opts.Config
	stateDir := cfg.ResolvedStateDir()

	expanded := treegrid.ExpandedToDepth(opts.Forest, cfg.UI.ExpandDepth)
	for id, v := range treegrid.LoadExpanded(stateDir) {
		expanded[id] = v
	}
	var store treegrid.Store = treegrid.NewLocalStore(treegrid.InitialState{ExpandedRows: expanded})
	if stateDir != "" {
		store = treegrid.NewPersistentStore(store, stateDir)
	}

	theme := treegrid.DefaultTheme(lipgloss.DefaultRenderer())
	keys := cfg.KeyMap()
	sel := &selection{}

	grid := treegrid.New(treegrid.Options{
		Data:          opts.Forest,
		Columns:       ColumnsFor(opts.Forest),
		RenderCell:    renderCell,
		IncludeHeader: cfg.UI.IncludeHeader,
		State:         treegrid.StateConfig{Controlled: store},
		KeyMap:        &keys,
		Theme:         &theme,
		OnRowKeyboardSelect: func(rowID string) {
			*sel = selection{rowID: rowID, set: true}
		},
		OnCellKeyboardSelect: func(rowID, columnID string) {
			*sel = selection{rowID: rowID, columnID: columnID, set: true}
		},
	})
	grid.Focus()

	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	m := Model{
		grid:        grid,
		forest:      opts.Forest,
		paths:       opts.Paths,
		watcher:     opts.Watcher,
		theme:       theme,
		keys:        newKeyMap(keys),
		help:        help.New(),
		detail:      viewport.New(cfg.UI.DetailWidth, defaultHeight-2),
		mdStyle:     opts.GlamourStyle,
		copyText:    copyText,
		sel:         sel,
		detailWidth: cfg.UI.DetailWidth,
		width:       defaultWidth,
		height:      defaultHeight,
		statusMsg:   fmt.Sprintf("Loaded %d nodes", treegrid.CountNodes(opts.Forest)),
	}
	m.layout()
	return m
}

// describeSelect turns a keyboard select into status text.
func (m Model) describeSelect(sel selection) string {
	if sel.columnID == "" || sel.columnID == idColumnID {
		return fmt.Sprintf("Selected %s", sel.rowID)
	}
	if linkFields[sel.columnID] {
		if n, ok := findNode(m.forest, sel.rowID); ok {
			return "Link: " + n.Field(sel.columnID)
		}
	}
	return fmt.Sprintf("Selected %s of %s", sel.columnID, sel.rowID)
}

// Grid exposes the embedded tree-grid.
func (m Model) Grid() *treegrid.Grid { return m.grid }

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) { return m.statusMsg, m.statusIsError }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.md = nil
		m.detailFor = "\x00" // re-wrap at the new width
		m.layout()
		return m, nil

	case FileChangedMsg:
		debug.Log("ui: reload after change to %s", msg.Path)
		if len(m.paths) == 0 {
			return m, m.Init()
		}
		return m, ReloadCmd(m.paths)

	case ReloadedMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Reload error: %v", msg.Err)
			m.statusIsError = true
		} else {
			diff := datasource.DiffForests(m.forest, msg.Forest)
			m.setForest(msg.Forest)
			m.statusMsg = "Reloaded: " + diff.Summary()
			m.statusIsError = false
			// Duplicate ids still render, as they do at startup.
			if err := datasource.Validate(msg.Forest); err != nil {
				m.statusMsg += fmt.Sprintf(" (warning: %v)", err)
				m.statusIsError = true
			}
		}
		return m, m.Init()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.grid.HandleKey(msg) {
		if m.sel.set {
			m.statusMsg, m.statusIsError = m.describeSelect(*m.sel), false
			*m.sel = selection{}
		}
		m.layout()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Yank):
		id := m.currentRowID()
		if id == "" {
			break
		}
		if err := m.copyText(id); err != nil {
			m.statusMsg = fmt.Sprintf("Clipboard error: %v", err)
			m.statusIsError = true
		} else {
			m.statusMsg = fmt.Sprintf("Copied %s to clipboard", id)
			m.statusIsError = false
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	default:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

// setForest swaps in reloaded data; rows keep their expansion state.
func (m *Model) setForest(forest []treegrid.TreeNode) {
	m.forest = forest
	m.grid.SetColumns(ColumnsFor(forest))
	m.grid.SetData(forest)
	m.detailFor = "\x00" // force re-render
	m.layout()
}

// currentRowID is the focused row, falling back to the tabbable row.
func (m Model) currentRowID() string {
	if id := m.grid.CurrentFocus().RowID; id != "" {
		return id
	}
	return m.grid.TabbableRowID()
}

func (m Model) bodyHeight() int {
	h := m.height - 2 // status + help
	if m.help.ShowAll {
		h -= len(m.keys.FullHelp()[0]) - 1
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) gridWidth() int {
	if m.detailWidth <= 0 || m.width < m.detailWidth*2 {
		return m.width
	}
	return m.width - m.detailWidth - 1
}

func (m Model) detailVisible() bool {
	return m.gridWidth() != m.width
}

// bodyRows is how many grid rows fit below the header.
func (m Model) bodyRows() int {
	rows := m.bodyHeight()
	if m.grid.IncludeHeader() {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// layout resizes the panes, keeps the current row on screen and refreshes
// the detail pane when the current row changed.
func (m *Model) layout() {
	body := m.bodyHeight()
	m.grid.SetSize(m.gridWidth(), body)
	m.help.Width = m.width

	rows := m.bodyRows()
	if line := treegrid.IndexOf(m.grid.Rows(), m.currentRowID()); line >= 0 {
		if line < m.scroll {
			m.scroll = line
		}
		if line >= m.scroll+rows {
			m.scroll = line - rows + 1
		}
	}
	if m.scroll < 0 {
		m.scroll = 0
	}

	if !m.detailVisible() {
		return
	}
	m.detail.Width = m.detailWidth - 2
	m.detail.Height = body - 2
	if id := m.currentRowID(); id != m.detailFor {
		m.detailFor = id
		m.detail.SetContent(m.renderDetail(id))
		m.detail.GotoTop()
	}
}

func findNode(forest []treegrid.TreeNode, id string) (treegrid.TreeNode, bool) {
	for _, n := range forest {
		if n.ID == id {
			return n, true
		}
		if found, ok := findNode(n.Children, id); ok {
			return found, true
		}
	}
	return treegrid.TreeNode{}, false
}

func (m *Model) renderDetail(id string) string {
	n, ok := findNode(m.forest, id)
	if !ok {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", n.ID)
	if desc := n.Field(descriptionField); desc != "" {
		sb.WriteString(desc)
		sb.WriteString("\n")
	} else {
		sb.WriteString("_No description._\n")
	}
	src := sb.String()

	if m.md == nil {
		opt := glamour.WithAutoStyle()
		if m.mdStyle != "" {
			opt = glamour.WithStandardStyle(m.mdStyle)
		}
		r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(m.detail.Width))
		if err != nil {
			debug.Log("ui: markdown renderer unavailable: %v", err)
			return src
		}
		m.md = r
	}
	out, err := m.md.Render(src)
	if err != nil {
		return src
	}
	return out
}

// View implements tea.Model.
func (m Model) View() string {
	body := m.bodyHeight()
	lines := strings.Split(m.grid.View(), "\n")

	var header []string
	if m.grid.IncludeHeader() && len(lines) > 0 {
		header, lines = []string{lines[0]}, lines[1:]
	}
	if m.scroll < len(lines) {
		lines = lines[m.scroll:]
	}
	if rows := m.bodyRows(); len(lines) > rows {
		lines = lines[:rows]
	}
	lines = append(header, lines...)
	gridPane := lipgloss.NewStyle().
		Width(m.gridWidth()).
		Height(body).
		Render(strings.Join(lines, "\n"))

	main := gridPane
	if m.detailVisible() {
		detailPane := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.theme.Border).
			Render(m.detail.View())
		main = lipgloss.JoinHorizontal(lipgloss.Top, gridPane, " ", detailPane)
	}

	statusStyle := m.theme.Base
	if m.statusIsError {
		statusStyle = statusStyle.Foreground(lipgloss.Color("#FF5555"))
	}
	status := statusStyle.Render(m.statusMsg)

	return lipgloss.JoinVertical(lipgloss.Left, main, status, m.help.View(m.keys))
}
