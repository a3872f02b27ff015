package cli

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mindmap/pkg/editor"
	"github.com/matzehuels/mindmap/pkg/mindmap"
	"github.com/matzehuels/mindmap/pkg/store"
)

// moveStep is how far H/J/K/L move the active node.
const moveStep = 10

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	editCursorStyle   = lipgloss.NewStyle().Reverse(true)
)

// =============================================================================
// EditorModel - Interactive mind-map editor
// =============================================================================

// saveDoneMsg reports the end of a background save.
type saveDoneMsg struct{ err error }

// EditorModel is the bubbletea model for editing one document. The cursor
// walks the outline of the graph and keeps the session's active node in
// step with it; every edit goes through the session.
type EditorModel struct {
	ctx   context.Context
	sess  *editor.Session
	store store.Store

	lines   []treeLine
	Cursor  int
	Offset  int
	Height  int
	editing bool
	saving  bool
	quitArm bool

	status    string
	statusErr bool
}

// NewEditorModel creates an editor over sess that saves to st. The root is
// selected initially.
func NewEditorModel(ctx context.Context, sess *editor.Session, st store.Store) EditorModel {
	m := EditorModel{ctx: ctx, sess: sess, store: st, Height: 20}
	m.refresh()
	return m
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	case saveDoneMsg:
		m.saving = false
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus("Saved")
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

func (m EditorModel) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" && key != "ctrl+c" && key != "esc" {
		m.quitArm = false
	}

	switch key {
	case "q", "ctrl+c", "esc":
		if m.sess.Dirty() && !m.quitArm {
			m.quitArm = true
			m.status, m.statusErr = "Unsaved changes. Press q again to quit, s to save.", true
			return m, nil
		}
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			m.selectCursor()
		}
	case "down", "j":
		if m.Cursor < len(m.lines)-1 {
			m.Cursor++
			m.selectCursor()
		}
	case "enter", "e":
		if _, ok := m.sess.Active(); ok {
			m.editing = true
			m.status = ""
		}
	case "a", "tab":
		if _, err := m.sess.AddChildToActive(""); err != nil {
			m.setError(err)
			break
		}
		m.sess.SetPending("")
		m.editing = true
		m.status = ""
		m.refresh()
	case "d", "delete":
		if err := m.sess.DeleteActive(); err != nil {
			m.setError(err)
			break
		}
		m.setStatus("Deleted")
		m.refresh()
	case "H", "J", "K", "L":
		m.moveActive(key)
	case "s", "ctrl+s":
		if m.saving {
			break
		}
		m.saving = true
		m.status, m.statusErr = "Saving…", false
		return m, m.save()
	}
	return m, nil
}

func (m EditorModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		if strings.TrimSpace(m.sess.Pending()) == "" {
			m.cancelEdit()
			break
		}
		if err := m.sess.CommitLabel(); err != nil {
			m.setError(err)
		}
		m.refresh()
	case tea.KeyEsc:
		m.editing = false
		m.cancelEdit()
	case tea.KeyCtrlC:
		m.editing = false
		m.cancelEdit()
		return m.updateBrowsing(msg)
	case tea.KeyBackspace:
		text := m.sess.Pending()
		if _, size := utf8.DecodeLastRuneInString(text); size > 0 {
			m.sess.SetPending(text[:len(text)-size])
		}
	case tea.KeySpace:
		m.sess.SetPending(m.sess.Pending() + " ")
	case tea.KeyRunes:
		m.sess.SetPending(m.sess.Pending() + string(msg.Runes))
	}
	return m, nil
}

// cancelEdit restores the pending label from the stored one.
func (m *EditorModel) cancelEdit() {
	if id, ok := m.sess.Active(); ok {
		m.sess.Select(id)
	}
}

func (m *EditorModel) moveActive(key string) {
	id, ok := m.sess.Active()
	if !ok {
		return
	}
	n, ok := m.sess.Graph().Node(id)
	if !ok {
		return
	}
	pos := n.Position
	switch key {
	case "H":
		pos.X -= moveStep
	case "L":
		pos.X += moveStep
	case "K":
		pos.Y -= moveStep
	case "J":
		pos.Y += moveStep
	}
	if err := m.sess.Move(id, pos); err != nil {
		m.setError(err)
		return
	}
	m.refresh()
}

func (m EditorModel) save() tea.Cmd {
	ctx, sess, st := m.ctx, m.sess, m.store
	return func() tea.Msg {
		return saveDoneMsg{err: sess.Save(ctx, st)}
	}
}

// refresh rebuilds the outline and puts the cursor on the active node. If
// nothing is active, the node under the cursor becomes active.
func (m *EditorModel) refresh() {
	m.lines = outline(m.sess.Graph())
	if id, ok := m.sess.Active(); ok {
		for i, l := range m.lines {
			if l.Node.ID == id && !l.Revisit {
				m.Cursor = i
				m.scroll()
				return
			}
		}
	}
	m.Cursor = min(m.Cursor, len(m.lines)-1)
	m.Cursor = max(m.Cursor, 0)
	m.selectCursor()
}

func (m *EditorModel) selectCursor() {
	if m.Cursor < len(m.lines) {
		m.sess.Select(m.lines[m.Cursor].Node.ID)
	}
	m.scroll()
}

func (m *EditorModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *EditorModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *EditorModel) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

// Session returns the session being edited.
func (m EditorModel) Session() *editor.Session {
	return m.sess
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render(m.sess.Title())
	if m.sess.Dirty() {
		title += StyleWarning.Render(" •")
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ rename  a add  d delete  H/J/K/L move  s save  q quit"))
	b.WriteString("\n\n")

	activeID, _ := m.sess.Active()
	pending := m.sess.Pending()
	end := min(m.Offset+m.Height, len(m.lines))
	for i := m.Offset; i < end; i++ {
		l := m.lines[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		label := l.Node.Label
		if m.editing && l.Node.ID == activeID && !l.Revisit {
			label = pending + editCursorStyle.Render(" ")
		}
		line := cursor + strings.Repeat("  ", l.Depth) + label
		if l.Revisit {
			line += " " + iconRevisit
		}

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case l.Revisit:
			b.WriteString(listDimStyle.Render(line))
		case l.Node.IsRoot:
			b.WriteString(styleRoot.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	g := m.sess.Graph()
	info := fmt.Sprintf("  %d nodes · %d edges", g.NodeCount(), g.EdgeCount())
	if n, ok := g.Node(activeID); ok {
		info += "  " + formatPosition(n.Position)
	}
	b.WriteString(listDimStyle.Render(info))
	b.WriteString("\n")
	if m.status != "" {
		if m.statusErr {
			b.WriteString(StyleError.Render("  " + m.status))
		} else {
			b.WriteString(StyleSuccess.Render("  " + m.status))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// activeNode returns the node under the cursor.
func (m EditorModel) activeNode() (mindmap.Node, bool) {
	id, ok := m.sess.Active()
	if !ok {
		return mindmap.Node{}, false
	}
	return m.sess.Graph().Node(id)
}
