package crud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Ruturaj2003/r-L-Tech/internal/validation"
)

var (
	ErrClosed         = errors.New("form is not open")
	ErrReadOnly       = errors.New("field is read-only in this mode")
	ErrUnknownField   = errors.New("unknown field")
	ErrSubmitting     = errors.New("a submit is already in flight")
	ErrNoSubmit       = errors.New("mode has no submit action")
	ErrNoSelection    = errors.New("No record selected")
	ErrReasonRequired = errors.New("delete reason is required")
	ErrWrongPhase     = errors.New("action not available in the current dialog")
)

// Phase is the modal sub-state layered over the mode.
type Phase int

const (
	Editing Phase = iota
	ConfirmingClose
	ConfirmingDelete
)

func (p Phase) String() string {
	switch p {
	case ConfirmingClose:
		return "ConfirmingClose"
	case ConfirmingDelete:
		return "ConfirmingDelete"
	default:
		return "Editing"
	}
}

// Request is what a submit hands to the save or delete collaborator.
type Request[T any] struct {
	Mode         Mode
	Action       Action
	Target       *T
	Values       Values
	Reason       string
	ActingUserID int
}

type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeFailure
)

// Notice is the operation-scoped outcome of a submit.
type Notice struct {
	Kind      NoticeKind
	Operation string
	Title     string
	Detail    string
}

const fallbackDetail = "Please try again"

type Config[T any] struct {
	Form         Form
	ActingUserID int
	// OnSubmit performs the save or delete. It must not touch the
	// orchestrator; it may run on another goroutine.
	OnSubmit func(ctx context.Context, req Request[T]) error
	OnClose  func()
	// SameTarget tells whether two targets are the same record. Defaults to
	// pointer identity.
	SameTarget func(a, b *T) bool
}

// Orchestrator owns one form draft and its dialogs. It is not safe for
// concurrent use; all methods except Execute belong to the UI loop.
type Orchestrator[T any] struct {
	cfg       Config[T]
	validator *validation.Validator

	open       bool
	mode       Mode
	target     *T
	defaults   Values
	draft      Values
	errors     map[string]string
	phase      Phase
	resume     Phase
	submitting bool
	options    map[string][]Option
}

func New[T any](cfg Config[T]) *Orchestrator[T] {
	o := &Orchestrator[T]{
		cfg:     cfg,
		errors:  map[string]string{},
		options: map[string][]Option{},
	}
	o.validator = validation.NewValidator(cfg.Form.messages)
	return o
}

// Open mounts the form in mode. target is ignored for Create.
func (o *Orchestrator[T]) Open(mode Mode, target *T, defaults Values) {
	o.open = true
	o.submitting = false
	o.phase = Editing
	o.mode = mode
	if mode == Create {
		target = nil
	}
	o.target = target
	o.reset(defaults)
}

// SetMode switches mode and resets the draft.
func (o *Orchestrator[T]) SetMode(mode Mode) {
	if mode == o.mode {
		return
	}
	o.mode = mode
	if mode == Create {
		o.target = nil
	}
	o.phase = Editing
	o.reset(o.defaults)
}

// SetDefaults resets the draft when the target record or the defaults
// change, e.g. when another row is selected while the form is mounted.
func (o *Orchestrator[T]) SetDefaults(target *T, defaults Values) {
	same := true
	if o.mode != Create {
		same = o.sameTarget(o.target, target)
		o.target = target
	}
	if same && o.defaults.Equal(defaults) {
		return
	}
	o.reset(defaults)
}

func (o *Orchestrator[T]) sameTarget(a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	if o.cfg.SameTarget != nil {
		return o.cfg.SameTarget(a, b)
	}
	return a == b
}

func (o *Orchestrator[T]) reset(defaults Values) {
	o.defaults = defaults.Clone()
	o.draft = defaults.Clone()
	clear(o.errors)
}

func (o *Orchestrator[T]) SetOptions(field string, opts []Option) {
	o.options[field] = opts
}

func (o *Orchestrator[T]) Options(field string) []Option {
	return o.options[field]
}

func (o *Orchestrator[T]) IsOpen() bool { return o.open }
func (o *Orchestrator[T]) Mode() Mode { return o.mode }
func (o *Orchestrator[T]) Rule() Rule { return RuleFor(o.mode) }
func (o *Orchestrator[T]) Phase() Phase { return o.phase }
func (o *Orchestrator[T]) Target() *T { return o.target }
func (o *Orchestrator[T]) Submitting() bool { return o.submitting }
func (o *Orchestrator[T]) Form() Form { return o.cfg.Form }
func (o *Orchestrator[T]) Value(f string) string { return o.draft[f] }
func (o *Orchestrator[T]) Draft() Values { return o.draft.Clone() }

func (o *Orchestrator[T]) FieldError(field string) string {
	return o.errors[field]
}

func (o *Orchestrator[T]) Errors() map[string]string {
	out := make(map[string]string, len(o.errors))
	for k, v := range o.errors {
		out[k] = v
	}
	return out
}

// Dirty is true when any field differs from the last reset.
func (o *Orchestrator[T]) Dirty() bool {
	return !o.draft.Equal(o.defaults)
}

// Editable reports whether field accepts input right now. The delete reason
// is editable only in Delete mode, every other field only in Create and Edit.
func (o *Orchestrator[T]) Editable(field string) bool {
	if !o.open || o.submitting {
		return false
	}
	if field == o.cfg.Form.ReasonField {
		return o.Rule().RequiresReason
	}
	return o.Rule().Editable
}

// Visible reports whether field is shown in the current mode.
func (o *Orchestrator[T]) Visible(field string) bool {
	if field == o.cfg.Form.ReasonField {
		return o.Rule().RequiresReason
	}
	return true
}

func (o *Orchestrator[T]) SetField(field, value string) error {
	if !o.open {
		return ErrClosed
	}
	if _, ok := o.cfg.Form.field(field); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if o.submitting {
		return ErrSubmitting
	}
	if !o.Editable(field) {
		return fmt.Errorf("%w: %s", ErrReadOnly, field)
	}
	o.draft[field] = value
	delete(o.errors, field)
	return nil
}

// Validate checks the draft against the schema of the current mode and
// records per-field errors.
func (o *Orchestrator[T]) Validate() error {
	clear(o.errors)
	doc := make(map[string]string, len(o.draft))
	for k, v := range o.draft {
		doc[k] = v
	}
	err := o.validator.Validate(doc, o.cfg.Form.Schema(o.mode, o.options))
	if ve := validation.GetValidationErrors(err); ve != nil {
		for field, msg := range ve.ByField() {
			o.errors[field] = msg
		}
	}
	return err
}

// Submit is the primary action. In Create and Edit it validates and returns
// the request to execute. In Delete it only opens the delete confirmation
// and returns ok=false.
func (o *Orchestrator[T]) Submit() (req Request[T], ok bool, err error) {
	if !o.open {
		return req, false, ErrClosed
	}
	if o.submitting {
		return req, false, ErrSubmitting
	}
	rule := o.Rule()
	if !rule.CanSubmit() {
		return req, false, ErrNoSubmit
	}
	if o.mode == Delete {
		if o.target == nil {
			return req, false, ErrNoSelection
		}
		o.phase = ConfirmingDelete
		return req, false, nil
	}
	if o.mode == Edit && o.target == nil {
		return req, false, ErrNoSelection
	}
	if err := o.Validate(); err != nil {
		return req, false, err
	}
	o.submitting = true
	return o.request(), true, nil
}

// CanConfirmDelete gates the confirm button of the delete dialog.
func (o *Orchestrator[T]) CanConfirmDelete() bool {
	return o.phase == ConfirmingDelete && !o.submitting &&
		strings.TrimSpace(o.draft[o.cfg.Form.ReasonField]) != ""
}

// ConfirmDelete validates the reason and returns the delete request.
func (o *Orchestrator[T]) ConfirmDelete() (Request[T], error) {
	if o.phase != ConfirmingDelete {
		return Request[T]{}, ErrWrongPhase
	}
	if o.submitting {
		return Request[T]{}, ErrSubmitting
	}
	if o.target == nil {
		return Request[T]{}, ErrNoSelection
	}
	if err := o.Validate(); err != nil {
		if _, bad := o.errors[o.cfg.Form.ReasonField]; bad {
			return Request[T]{}, fmt.Errorf("%w: %w", ErrReasonRequired, err)
		}
		return Request[T]{}, err
	}
	o.submitting = true
	return o.request(), nil
}

// CancelDelete closes the delete dialog and keeps the draft.
func (o *Orchestrator[T]) CancelDelete() {
	if o.phase == ConfirmingDelete && !o.submitting {
		o.phase = Editing
	}
}

func (o *Orchestrator[T]) request() Request[T] {
	values := o.draft.Clone()
	reason := ""
	if rf := o.cfg.Form.ReasonField; rf != "" {
		reason = strings.TrimSpace(values[rf])
		delete(values, rf)
	}
	req := Request[T]{
		Mode:         o.mode,
		Action:       o.Rule().Action,
		Target:       o.target,
		Values:       values,
		ActingUserID: o.cfg.ActingUserID,
	}
	if o.mode == Delete {
		req.Reason = reason
	}
	return req
}

// Execute runs the submit collaborator. It does not read or write
// orchestrator state and may be called off the UI loop.
func (o *Orchestrator[T]) Execute(ctx context.Context, req Request[T]) error {
	if o.cfg.OnSubmit == nil {
		return nil
	}
	return o.cfg.OnSubmit(ctx, req)
}

// Finish records the outcome of Execute. Success closes the form and
// discards the draft; failure keeps mode and draft for a retry.
func (o *Orchestrator[T]) Finish(err error) Notice {
	rule := o.Rule()
	o.submitting = false
	if err != nil {
		if o.mode == Delete {
			o.phase = ConfirmingDelete
		}
		detail := strings.TrimSpace(err.Error())
		if detail == "" {
			detail = fallbackDetail
		}
		return Notice{
			Kind:      NoticeFailure,
			Operation: rule.Operation,
			Title:     fmt.Sprintf("Failed to %s %s", rule.Operation, strings.ToLower(o.cfg.Form.Noun)),
			Detail:    detail,
		}
	}
	notice := Notice{
		Kind:      NoticeSuccess,
		Operation: rule.Operation,
		Title:     fmt.Sprintf("%s %s successfully", o.cfg.Form.Noun, rule.Past),
	}
	o.close()
	return notice
}

// SubmitAndWait runs a Create/Edit submit or a confirmed delete to
// completion on the calling goroutine.
func (o *Orchestrator[T]) SubmitAndWait(ctx context.Context) (Notice, error) {
	var (
		req Request[T]
		err error
	)
	if o.phase == ConfirmingDelete {
		req, err = o.ConfirmDelete()
	} else {
		var ok bool
		req, ok, err = o.Submit()
		if err == nil && !ok {
			return Notice{}, nil
		}
	}
	if err != nil {
		return Notice{}, err
	}
	return o.Finish(o.Execute(ctx, req)), nil
}

// RequestClose closes immediately when the draft is clean. A dirty draft
// moves to ConfirmingClose. Closing during a submit is refused.
func (o *Orchestrator[T]) RequestClose() (closed bool, err error) {
	if !o.open {
		return true, nil
	}
	if o.submitting {
		return false, ErrSubmitting
	}
	if o.Dirty() {
		if o.phase != ConfirmingClose {
			o.resume = o.phase
		}
		o.phase = ConfirmingClose
		return false, nil
	}
	o.close()
	return true, nil
}

// ConfirmDiscard drops the draft and closes.
func (o *Orchestrator[T]) ConfirmDiscard() error {
	if o.phase != ConfirmingClose {
		return ErrWrongPhase
	}
	o.close()
	return nil
}

// ResumeEditing leaves ConfirmingClose for the dialog state it interrupted,
// with the draft intact.
func (o *Orchestrator[T]) ResumeEditing() {
	if o.phase == ConfirmingClose {
		o.phase = o.resume
		o.resume = Editing
	}
}

func (o *Orchestrator[T]) close() {
	o.open = false
	o.phase = Editing
	o.target = nil
	o.draft = Values{}
	o.defaults = Values{}
	clear(o.errors)
	if o.cfg.OnClose != nil {
		o.cfg.OnClose()
	}
}
