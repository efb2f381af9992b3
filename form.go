package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ruturaj2003/r-L-Tech/internal/crud"
)

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formClose
	formConfirmDelete
	formSwitchToEdit
)

const selectPlaceholder = "Select…"

// formView is the modal over the page. It edits the orchestrator's draft
// and hands submit, close and delete confirmation back to the page model.
type formView[T any] struct {
	orch   *crud.Orchestrator[T]
	inputs map[string]*textinput.Model
	focus  int
	notice *crud.Notice
}

func newFormView[T any](orch *crud.Orchestrator[T]) *formView[T] {
	f := &formView[T]{orch: orch, inputs: map[string]*textinput.Model{}}
	for _, fd := range orch.Form().Fields {
		if fd.Kind != crud.Text {
			continue
		}
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		f.inputs[fd.Name] = &in
	}
	return f
}

// Reload copies the draft into the inputs and focuses the first field.
func (f *formView[T]) Reload() {
	f.notice = nil
	f.focus = 0
	f.syncInputs()
}

func (f *formView[T]) syncInputs() {
	for name, in := range f.inputs {
		in.SetValue(f.orch.Value(name))
		in.CursorEnd()
	}
	f.focusInput()
}

func (f *formView[T]) SetNotice(n *crud.Notice) { f.notice = n }

// fields are the draft fields drawn in the form body. The delete reason is
// drawn by the delete dialog instead.
func (f *formView[T]) fields() []crud.Field {
	form := f.orch.Form()
	out := make([]crud.Field, 0, len(form.Fields))
	for _, fd := range form.Fields {
		if fd.Name == form.ReasonField {
			continue
		}
		if f.orch.Visible(fd.Name) {
			out = append(out, fd)
		}
	}
	return out
}

func (f *formView[T]) focused() (crud.Field, bool) {
	fields := f.fields()
	if f.focus < 0 || f.focus >= len(fields) {
		return crud.Field{}, false
	}
	return fields[f.focus], true
}

func (f *formView[T]) moveFocus(delta int) {
	n := len(f.fields())
	if n == 0 {
		return
	}
	f.focus = (f.focus + delta + n) % n
	f.focusInput()
}

func (f *formView[T]) focusInput() {
	cur, _ := f.focused()
	for name, in := range f.inputs {
		if name == cur.Name && f.orch.Editable(name) {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// options returns the choices of a select, led by an empty placeholder when
// the field has no value yet.
func (f *formView[T]) options(fd crud.Field) []crud.Option {
	opts := f.orch.Options(fd.Name)
	if len(opts) == 0 {
		for _, v := range fd.Enum {
			opts = append(opts, crud.Option{Label: v, Value: v})
		}
	}
	if fd.Required || fd.Name == f.orch.Form().ReasonField {
		return append([]crud.Option{{Label: selectPlaceholder, Value: ""}}, opts...)
	}
	return opts
}

func (f *formView[T]) cycle(fd crud.Field, delta int) error {
	opts := f.options(fd)
	if len(opts) == 0 {
		return nil
	}
	cur := f.orch.Value(fd.Name)
	idx := 0
	for i, o := range opts {
		if o.Value == cur {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(opts)) % len(opts)
	return f.orch.SetField(fd.Name, opts[idx].Value)
}

func (f *formView[T]) label(fd crud.Field, value string) string {
	for _, o := range f.options(fd) {
		if o.Value == value {
			return o.Label
		}
	}
	if value == "" {
		return selectPlaceholder
	}
	return value
}

func (f *formView[T]) reasonField() (crud.Field, bool) {
	form := f.orch.Form()
	for _, fd := range form.Fields {
		if fd.Name == form.ReasonField {
			return fd, true
		}
	}
	return crud.Field{}, false
}

// Update handles a key while the form is open. Local edits are applied to
// the orchestrator here; anything that needs the page comes back as an
// action.
func (f *formView[T]) Update(msg tea.KeyMsg) (formAction, tea.Cmd) {
	if f.orch.Submitting() {
		return formNone, nil
	}
	switch f.orch.Phase() {
	case crud.ConfirmingClose:
		switch msg.String() {
		case "y":
			_ = f.orch.ConfirmDiscard()
		case "n", "esc", "enter":
			f.orch.ResumeEditing()
			f.focusInput()
		}
		return formNone, nil
	case crud.ConfirmingDelete:
		switch msg.String() {
		case "esc":
			f.orch.CancelDelete()
		case "enter", "ctrl+s":
			return formConfirmDelete, nil
		case "left", "h", "up", "k":
			if fd, ok := f.reasonField(); ok {
				_ = f.cycle(fd, -1)
			}
		case "right", "l", "down", "j", " ":
			if fd, ok := f.reasonField(); ok {
				_ = f.cycle(fd, 1)
			}
		}
		return formNone, nil
	}

	switch msg.String() {
	case "esc":
		return formClose, nil
	case "ctrl+s", "enter":
		if f.orch.Rule().CanSubmit() {
			return formSubmit, nil
		}
		return formNone, nil
	case "tab", "down":
		f.moveFocus(1)
		return formNone, nil
	case "shift+tab", "up":
		f.moveFocus(-1)
		return formNone, nil
	}

	if msg.String() == "e" && f.orch.Mode() == crud.View {
		return formSwitchToEdit, nil
	}
	fd, ok := f.focused()
	if !ok || !f.orch.Editable(fd.Name) {
		return formNone, nil
	}
	if fd.Kind == crud.Select {
		switch msg.String() {
		case "left", "h":
			_ = f.cycle(fd, -1)
		case "right", "l", " ":
			_ = f.cycle(fd, 1)
		}
		return formNone, nil
	}

	in := f.inputs[fd.Name]
	if in == nil {
		return formNone, nil
	}
	updated, cmd := in.Update(msg)
	*in = updated
	if in.Value() != f.orch.Value(fd.Name) {
		_ = f.orch.SetField(fd.Name, in.Value())
	}
	return formNone, cmd
}

func (f *formView[T]) title() string {
	noun := f.orch.Form().Noun
	switch f.orch.Mode() {
	case crud.Create:
		return "Add " + noun
	case crud.Edit:
		return "Edit " + noun
	case crud.Delete:
		return "Delete " + noun
	default:
		return noun + " Details"
	}
}

func (f *formView[T]) View(s styles, width int, spinner string) string {
	switch f.orch.Phase() {
	case crud.ConfirmingClose:
		return f.closeDialog(s, width)
	case crud.ConfirmingDelete:
		return f.deleteDialog(s, width, spinner)
	}

	var sb strings.Builder
	sb.WriteString(s.overlayHdr.Render(f.title()))
	sb.WriteRune('\n')

	fields := f.fields()
	for i, fd := range fields {
		label := fd.Label
		if fd.Required && f.orch.Rule().Editable {
			label += " *"
		}
		lbl := s.fieldLabel.Render(label)
		if i == f.focus && f.orch.Editable(fd.Name) {
			lbl = s.fieldLabel.Copy().Inherit(s.fieldFocus).Render(label)
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lbl, f.valueView(s, fd, i == f.focus)))
		sb.WriteRune('\n')
		if msg := f.orch.FieldError(fd.Name); msg != "" {
			sb.WriteString(s.fieldError.Render(strings.Repeat(" ", 16) + msg))
			sb.WriteRune('\n')
		}
	}

	if n := f.notice; n != nil && n.Kind == crud.NoticeFailure {
		sb.WriteRune('\n')
		sb.WriteString(s.noticeErr.Render(n.Title))
		sb.WriteRune('\n')
		sb.WriteString(s.hint.Render(n.Detail))
		sb.WriteRune('\n')
	}

	sb.WriteRune('\n')
	sb.WriteString(f.buttons(s, spinner))

	style := s.overlay
	if f.orch.Rule().Destructive {
		style = s.overlayDanger
	}
	return style.Width(overlayWidth(width)).Render(sb.String())
}

func (f *formView[T]) valueView(s styles, fd crud.Field, focused bool) string {
	value := f.orch.Value(fd.Name)
	if !f.orch.Editable(fd.Name) {
		if fd.Kind == crud.Select {
			value = f.label(fd, value)
		}
		return s.fieldReadOnly.Render(value)
	}
	if fd.Kind == crud.Select {
		text := f.label(fd, value)
		if focused {
			return s.fieldFocus.Render("‹ " + text + " ›")
		}
		return s.fieldValue.Render("  " + text)
	}
	if in := f.inputs[fd.Name]; in != nil {
		return in.View()
	}
	return s.fieldValue.Render(value)
}

func (f *formView[T]) buttons(s styles, spinner string) string {
	rule := f.orch.Rule()
	closeBtn := s.button.Render("Cancel (esc)")
	if !rule.CanSubmit() {
		closeBtn = s.button.Render("Close (esc)")
	}
	if f.orch.Submitting() {
		closeBtn = s.buttonOff.Render("Cancel (esc)")
	}
	parts := []string{closeBtn}
	if f.orch.Mode() == crud.View {
		parts = append(parts, s.button.Render("Edit (e)"))
	}
	if rule.CanSubmit() {
		label := rule.SubmitLabel + " (enter)"
		btn := s.button
		if rule.Destructive {
			btn = s.buttonDanger
		}
		if f.orch.Submitting() {
			label = spinner + " " + rule.SubmitLabel + "..."
			btn = s.buttonOff
		}
		parts = append(parts, btn.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (f *formView[T]) closeDialog(s styles, width int) string {
	var sb strings.Builder
	sb.WriteString(s.overlayHdr.Render("Discard changes?"))
	sb.WriteRune('\n')
	sb.WriteString("You have unsaved changes. Close the form and lose them?")
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		s.button.Render("Keep editing (n/enter)"),
		s.buttonDanger.Render("Discard (y)"),
	))
	return s.overlayDanger.Width(overlayWidth(width)).Render(sb.String())
}

func (f *formView[T]) deleteDialog(s styles, width int, spinner string) string {
	var sb strings.Builder
	sb.WriteString(s.overlayHdr.Render(fmt.Sprintf("Delete this %s?", strings.ToLower(f.orch.Form().Noun))))
	sb.WriteRune('\n')
	sb.WriteString("This cannot be undone. Choose a reason to continue.")
	sb.WriteString("\n\n")
	if fd, ok := f.reasonField(); ok {
		value := f.orch.Value(fd.Name)
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			s.fieldLabel.Render(fd.Label+" *"),
			s.fieldFocus.Render("‹ "+f.label(fd, value)+" ›"),
		))
		sb.WriteRune('\n')
		if msg := f.orch.FieldError(fd.Name); msg != "" {
			sb.WriteString(s.fieldError.Render(strings.Repeat(" ", 16) + msg))
			sb.WriteRune('\n')
		}
	}
	if n := f.notice; n != nil && n.Kind == crud.NoticeFailure {
		sb.WriteRune('\n')
		sb.WriteString(s.noticeErr.Render(n.Title))
		sb.WriteRune('\n')
		sb.WriteString(s.hint.Render(n.Detail))
		sb.WriteRune('\n')
	}
	sb.WriteRune('\n')

	cancel := s.button.Render("Cancel (esc)")
	confirm := s.buttonDanger.Render("Delete (enter)")
	switch {
	case f.orch.Submitting():
		cancel = s.buttonOff.Render("Cancel (esc)")
		confirm = s.buttonOff.Render(spinner + " Delete...")
	case !f.orch.CanConfirmDelete():
		confirm = s.buttonOff.Render("Delete (enter)")
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cancel, confirm))
	return s.overlayDanger.Width(overlayWidth(width)).Render(sb.String())
}

// loadingView stands in for the form while reference data loads.
func loadingView(s styles, width int, spinner string) string {
	return s.overlay.Width(overlayWidth(width)).Render(spinner + " Loading form data...")
}

func overlayWidth(width int) int {
	w := min(64, width-4)
	if w < 32 {
		w = 32
	}
	return w
}
