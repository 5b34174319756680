package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/zombor/inventory-updater/internal/inventory"
)

// Item is a scan that needs a person to look at it
type Item struct {
	Barcode string          `json:"barcode"`
	State   inventory.State `json:"state"`
	Title   string          `json:"title,omitempty"`
	Reason  string          `json:"reason,omitempty"`
}

// Summary aggregates the journal over a period
type Summary struct {
	From     time.Time               `json:"from"`
	To       time.Time               `json:"to"`
	Total    int                     `json:"total"`
	ByState  map[inventory.State]int `json:"by_state"`
	SetAside []Item                  `json:"set_aside"`
	Rescan   []Item                  `json:"rescan"`
}

// Build summarises the scans made between from and to
func Build(scans []*inventory.Outcome, from, to time.Time) Summary {
	summary := Summary{
		From:     from,
		To:       to,
		ByState:  make(map[inventory.State]int),
		SetAside: []Item{},
		Rescan:   []Item{},
	}

	for _, scan := range scans {
		if scan.ScannedAt.Before(from) || !scan.ScannedAt.Before(to) {
			continue
		}
		summary.Total++
		summary.ByState[scan.State]++

		item := Item{Barcode: scan.Barcode, State: scan.State}
		if scan.Record != nil {
			item.Title = scan.Record.Title
		}

		switch {
		case scan.State.SetAside(), scan.InProcess():
			item.Reason = reason(scan)
			summary.SetAside = append(summary.SetAside, item)
		case scan.State == inventory.StateConnectionFailed, scan.State == inventory.StateUpdateFailed:
			item.Reason = reason(scan)
			summary.Rescan = append(summary.Rescan, item)
		}
	}

	return summary
}

func reason(scan *inventory.Outcome) string {
	switch scan.State {
	case inventory.StateBlocked, inventory.StateUpdated:
		if scan.Status.Label != "" {
			return scan.Status.Label
		}
		return scan.Status.Code
	case inventory.StateNotFound:
		return "not found"
	case inventory.StateMalformed:
		return "unreadable record"
	case inventory.StateConnectionFailed:
		return "connection failed"
	case inventory.StateUpdateFailed:
		return "update failed"
	}
	return ""
}

// Name is the file name the summary is stored under
func (s Summary) Name() string {
	return fmt.Sprintf("inventory-report-%s.txt", s.To.Format("20060102-1504"))
}

// Text renders the summary for people
func (s Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Inventory scan report %s to %s\n", s.From.Format("2006-01-02 15:04"), s.To.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Scanned: %d\n", s.Total)
	for _, state := range inventory.TerminalStates {
		if n := s.ByState[state]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", state, n)
		}
	}

	writeItems(&b, "Set aside", s.SetAside)
	writeItems(&b, "Scan again", s.Rescan)
	return b.String()
}

func writeItems(b *strings.Builder, heading string, items []Item) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d):\n", heading, len(items))
	for _, item := range items {
		line := fmt.Sprintf("  %s  %s", item.Barcode, item.Reason)
		if item.Title != "" {
			line += "  " + item.Title
		}
		b.WriteString(line + "\n")
	}
}

// Notifier delivers a finished report somewhere people will read it
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Reporter turns the journal into periodic summaries
type Reporter struct {
	journal  inventory.Journal
	storage  Storage
	notifier Notifier
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewReporter creates a Reporter whose first report covers the last 24 hours.
// notifier may be nil.
func NewReporter(journal inventory.Journal, storage Storage, notifier Notifier) *Reporter {
	return NewReporterWithClock(journal, storage, notifier, time.Now)
}

// NewReporterWithClock creates a Reporter with a custom clock for testing
func NewReporterWithClock(journal inventory.Journal, storage Storage, notifier Notifier, now func() time.Time) *Reporter {
	return &Reporter{
		journal:  journal,
		storage:  storage,
		notifier: notifier,
		now:      now,
		last:     now().Add(-24 * time.Hour),
	}
}

// Run summarises the scans since the previous run, stores the report and
// sends it to the notifier
func (r *Reporter) Run(ctx context.Context) (*Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	to := r.now()
	scans, err := r.journal.ListScans(r.last)
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}

	summary := Build(scans, r.last, to)
	text := summary.Text()

	name, err := r.storage.Save(summary.Name(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}
	r.last = to
	slog.Info("Report written", "name", name, "scans", summary.Total, "set_aside", len(summary.SetAside))

	if r.notifier != nil {
		if err := r.notifier.Notify(ctx, text); err != nil {
			// the report is on disk; a failed post is not worth failing the run
			slog.Warn("Failed to send report", "name", name, "error", err)
		}
	}

	return &summary, nil
}
