package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// jobRequest is one backend call run off the UI loop. onStart and onFinish
// run on the UI loop, from Update.
type jobRequest struct {
	title    string
	timeout  time.Duration
	run      func(ctx context.Context) error
	onStart  func()
	onFinish func(error) tea.Cmd
}

type jobMsg interface{ jobMsg() }

type jobStartedMsg struct{ Title string }

type jobFinishedMsg struct {
	Title string
	Err   error
}

type jobChannelClosedMsg struct{}

func (jobStartedMsg) jobMsg()       {}
func (jobFinishedMsg) jobMsg()      {}
func (jobChannelClosedMsg) jobMsg() {}

// jobManager runs queued jobs one at a time.
type jobManager struct {
	ctx     context.Context
	queue   []jobRequest
	current *jobRequest
	ch      chan jobMsg
	running bool
}

func newJobManager(ctx context.Context) *jobManager {
	if ctx == nil {
		ctx = context.Background()
	}
	return &jobManager{ctx: ctx}
}

func (jm *jobManager) Running() bool { return jm.running }

func (jm *jobManager) Title() string {
	if jm.current == nil {
		return ""
	}
	return jm.current.title
}

func (jm *jobManager) Enqueue(req jobRequest) tea.Cmd {
	jm.queue = append(jm.queue, req)
	return jm.nextCmd()
}

func (jm *jobManager) Handle(msg jobMsg) tea.Cmd {
	switch msg := msg.(type) {
	case jobStartedMsg:
		if jm.current != nil && jm.current.onStart != nil {
			jm.current.onStart()
		}
		return waitForJobMsg(jm.ch)
	case jobFinishedMsg:
		var cmd tea.Cmd
		if jm.current != nil && jm.current.onFinish != nil {
			cmd = jm.current.onFinish(msg.Err)
		}
		return tea.Batch(cmd, waitForJobMsg(jm.ch))
	case jobChannelClosedMsg:
		jm.running = false
		jm.current = nil
		jm.ch = nil
		return jm.nextCmd()
	}
	return nil
}

func (jm *jobManager) nextCmd() tea.Cmd {
	if jm.running {
		return nil
	}
	if len(jm.queue) == 0 {
		return nil
	}
	req := jm.queue[0]
	jm.queue = jm.queue[1:]
	jm.current = &req
	jm.running = true

	jm.ch = make(chan jobMsg, 2)
	go runJob(jm.ctx, req, jm.ch)
	return waitForJobMsg(jm.ch)
}

func runJob(ctx context.Context, req jobRequest, ch chan<- jobMsg) {
	defer close(ch)

	ch <- jobStartedMsg{Title: req.title}

	if req.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.timeout)
		defer cancel()
	}
	var err error
	if req.run != nil {
		err = req.run(ctx)
	}
	ch <- jobFinishedMsg{Title: req.title, Err: err}
}

func waitForJobMsg(ch <-chan jobMsg) tea.Cmd {
	return func() tea.Msg {
		if ch == nil {
			return jobChannelClosedMsg{}
		}
		msg, ok := <-ch
		if !ok {
			return jobChannelClosedMsg{}
		}
		return msg
	}
}
