// Command eventsummary condenses the console's ui-events.ndjson trail into a
// per-session JSON report.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	eventSaved   = "record_saved"
	eventDeleted = "record_deleted"
	eventFailed  = "submit_failed"
	eventFault   = "render_fault"
)

type event struct {
	SessionID string            `json:"session_id"`
	UserID    int               `json:"user_id"`
	ScopeID   int               `json:"scope_id"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Mode      string            `json:"mode"`
	RecordID  int               `json:"record_id"`
	Extra     map[string]string `json:"extra"`
	line      int
}

type sessionSummary struct {
	SessionID   string         `json:"session_id"`
	UserID      int            `json:"user_id"`
	ScopeID     int            `json:"scope_id"`
	StartLine   int            `json:"start_line"`
	EndLine     int            `json:"end_line"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Events      map[string]int `json:"events"`
	Modes       map[string]int `json:"modes,omitempty"`
	Saves       int            `json:"saves"`
	Deletes     int            `json:"deletes"`
	Failures    int            `json:"failures"`
	Faults      int            `json:"faults"`
	FailureRate float64        `json:"failure_rate"`
	Anomalies   []string       `json:"anomalies,omitempty"`
}

type report struct {
	RunID        string           `json:"run_id"`
	Source       string           `json:"source"`
	Skipped      int              `json:"skipped_lines"`
	Sessions     []sessionSummary `json:"sessions"`
	FinalSummary sessionSummary   `json:"final_summary"`
}

var (
	inputPath     string
	outputPath    string
	failureStreak int
)

var rootCmd = &cobra.Command{
	Use:           "eventsummary",
	Short:         "Summarize an erp-console event trail",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if failureStreak <= 0 {
			return errors.New("--streak must be positive")
		}
		f, err := os.Open(inputPath)
		if err != nil {
			return err
		}
		defer f.Close()

		events, skipped, err := parseEvents(f)
		if err != nil {
			return fmt.Errorf("parse events: %w", err)
		}
		rep := buildReport(inputPath, events, failureStreak)
		rep.Skipped = skipped

		encoded, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if outputPath == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		}
		if err := os.WriteFile(outputPath, append(encoded, '\n'), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&inputPath, "in", "", "event trail path")
	rootCmd.Flags().StringVar(&outputPath, "out", "", "output JSON path (defaults to stdout)")
	rootCmd.Flags().IntVar(&failureStreak, "streak", 3, "consecutive submit failures reported as an anomaly")
	_ = rootCmd.MarkFlagRequired("in")
}

// parseEvents reads one event per line. Lines that are not valid events are
// counted and skipped.
func parseEvents(r io.Reader) ([]event, int, error) {
	var (
		scanner = bufio.NewScanner(r)
		lineNo  = 0
		skipped = 0
		out     []event
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev event
		if err := json.Unmarshal([]byte(line), &ev); err != nil || ev.Event == "" {
			skipped++
			continue
		}
		ev.line = lineNo
		out = append(out, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return out, skipped, nil
}

func buildReport(path string, events []event, streak int) report {
	rep := report{RunID: deriveRunID(path), Source: path}
	if len(events) == 0 {
		return rep
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })

	bySession := map[string][]event{}
	var order []string
	for _, ev := range events {
		if _, ok := bySession[ev.SessionID]; !ok {
			order = append(order, ev.SessionID)
		}
		bySession[ev.SessionID] = append(bySession[ev.SessionID], ev)
	}
	for _, id := range order {
		rep.Sessions = append(rep.Sessions, summarize(bySession[id], streak))
	}
	rep.FinalSummary = summarize(events, streak)
	rep.FinalSummary.SessionID = ""
	return rep
}

func deriveRunID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func summarize(events []event, streak int) sessionSummary {
	if len(events) == 0 {
		return sessionSummary{}
	}
	first, last := events[0], events[len(events)-1]
	s := sessionSummary{
		SessionID: first.SessionID,
		UserID:    first.UserID,
		ScopeID:   first.ScopeID,
		StartLine: first.line,
		EndLine:   last.line,
		StartTime: first.Timestamp,
		EndTime:   last.Timestamp,
		Events:    map[string]int{},
		Modes:     map[string]int{},
	}
	run, longest := 0, 0
	for _, ev := range events {
		s.Events[ev.Event]++
		if ev.Mode != "" {
			s.Modes[ev.Mode]++
		}
		if ev.line < s.StartLine {
			s.StartLine = ev.line
		}
		if ev.line > s.EndLine {
			s.EndLine = ev.line
		}
		switch ev.Event {
		case eventSaved:
			s.Saves++
			run = 0
		case eventDeleted:
			s.Deletes++
			run = 0
		case eventFailed:
			s.Failures++
			run++
			longest = max(longest, run)
		case eventFault:
			s.Faults++
		}
	}
	if len(s.Modes) == 0 {
		s.Modes = nil
	}
	if attempts := s.Saves + s.Deletes + s.Failures; attempts > 0 {
		s.FailureRate = float64(s.Failures) / float64(attempts)
	}
	s.Anomalies = detectAnomalies(s, longest, streak)
	return s
}

func detectAnomalies(s sessionSummary, longestRun, streak int) []string {
	var out []string
	if s.Faults > 0 {
		out = append(out, fmt.Sprintf("%d render fault(s)", s.Faults))
	}
	if longestRun >= streak {
		out = append(out, fmt.Sprintf("%d consecutive submit failures", longestRun))
	}
	if s.Failures > 0 && s.FailureRate > 0.5 {
		out = append(out, fmt.Sprintf("failure rate %.0f%%", s.FailureRate*100))
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "eventsummary: %v\n", err)
		os.Exit(1)
	}
}
