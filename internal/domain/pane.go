package domain

// Pane is the right-hand view state: WelcomePane or EditingPane.
type Pane interface {
	isPane()
}

// WelcomePane is shown when no edit is in progress.
type WelcomePane struct{}

// EditingPane is shown while an editor is open.
type EditingPane struct {
	Editor Editor
}

func (WelcomePane) isPane() {}

func (EditingPane) isPane() {}

// CanDelete reports whether the pane offers a delete affordance for its target.
func (p EditingPane) CanDelete() bool {
	return !p.Editor.Creating()
}

// PaneName returns a short label for a pane variant.
func PaneName(p Pane) string {
	switch p := p.(type) {
	case EditingPane:
		if p.Editor.Creating() {
			return "create"
		}
		return "edit"
	default:
		return "welcome"
	}
}
