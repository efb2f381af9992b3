package main

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"
)

// renderFault is a panic caught while updating or drawing the page.
type renderFault struct {
	Area    string
	Message string
	Stack   string
	At      time.Time
}

// faultBoundary isolates panics in the page so the program keeps running
// and can offer a way back.
type faultBoundary struct {
	logger *slog.Logger
	events *eventTrail
	fault  *renderFault
}

func (b *faultBoundary) Tripped() bool { return b.fault != nil }

func (b *faultBoundary) Fault() *renderFault { return b.fault }

func (b *faultBoundary) Reset() { b.fault = nil }

func (b *faultBoundary) record(area string, r any) {
	f := &renderFault{
		Area:    area,
		Message: fmt.Sprint(r),
		Stack:   string(debug.Stack()),
		At:      time.Now(),
	}
	b.fault = f
	if b.logger != nil {
		b.logger.Error("render fault", "area", area, "panic", f.Message, "stack", f.Stack)
	}
	b.events.Emit(uiEvent{Event: eventRenderFault, Extra: map[string]string{"area": area, "panic": f.Message}})
}

// Run calls fn and turns a panic into a recorded fault.
func (b *faultBoundary) Run(area string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.record(area, r)
			ok = false
		}
	}()
	fn()
	return true
}

// Render returns fn's output, or "" with a recorded fault if fn panics.
func (b *faultBoundary) Render(area string, fn func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			b.record(area, r)
			out = ""
		}
	}()
	return fn()
}

func (b *faultBoundary) View(s styles, width int) string {
	if b.fault == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(s.overlayHdr.Render("Something went wrong"))
	sb.WriteRune('\n')
	sb.WriteString(s.fieldError.Render(b.fault.Message))
	sb.WriteString("\n\n")
	sb.WriteString(s.hint.Render("t try again • R reload • q quit"))
	w := width - 4
	if w > 72 {
		w = 72
	}
	if w < 24 {
		w = 24
	}
	return s.overlayDanger.Width(w).Render(sb.String())
}
