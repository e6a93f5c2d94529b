package inventory

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/timvw/panectl/internal/model"
)

// TreeStyles styles the rendered inventory tree.
type TreeStyles struct {
	Root       lipgloss.Style
	Session    lipgloss.Style
	Window     lipgloss.Style
	Pane       lipgloss.Style
	Current    lipgloss.Style // the current selection, if present
	Enumerator lipgloss.Style
}

// PlainStyles renders without colors, for pipes and tests.
func PlainStyles() TreeStyles {
	s := lipgloss.NewStyle()
	return TreeStyles{Root: s, Session: s, Window: s, Pane: s, Current: s.Bold(true), Enumerator: s}
}

// Render writes s as a tree: sessions, then windows, then panes. The
// current selection is marked with "*".
func Render(w io.Writer, s Snapshot, current model.Target, st TreeStyles) error {
	ns, _, _ := s.Counts()
	root := tree.Root(st.Root.Render(fmt.Sprintf("tmux (%s)", s.String()))).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(st.Enumerator)
	if ns == 0 {
		_, err := fmt.Fprintln(w, root.String())
		return err
	}

	for _, sess := range orderedValues(s.Sessions) {
		sessLabel, sessStyle := sess, st.Session
		if sess == current.Session {
			sessLabel, sessStyle = "* "+sess, st.Current
		}
		sessNode := tree.Root(sessStyle.Render(sessLabel))

		for _, win := range orderedValues(s.Windows[sess]) {
			winTarget := model.Target{Session: sess, Window: win}
			winLabel, winStyle := "window "+win, st.Window
			if sess == current.Session && win == current.Window {
				winLabel, winStyle = "* "+winLabel, st.Current
			}
			winNode := tree.Root(winStyle.Render(winLabel))

			for _, pane := range orderedValues(s.Panes[winTarget.WindowTarget()]) {
				paneLabel, paneStyle := "pane "+pane, st.Pane
				if sess == current.Session && win == current.Window && pane == current.Pane {
					paneLabel, paneStyle = "* "+paneLabel, st.Current
				}
				winNode.Child(paneStyle.Render(paneLabel))
			}
			sessNode.Child(winNode)
		}
		root.Child(sessNode)
	}

	_, err := fmt.Fprintln(w, root.String())
	return err
}
