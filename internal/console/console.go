package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/zombor/inventory-updater/internal/inventory"
)

// Commands typed instead of a barcode
const (
	CommandClear = ":clear"
	CommandQuit  = ":quit"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiRed    = "\033[31m"
)

var emphasisColors = map[inventory.Emphasis]string{
	inventory.EmphasisSuccess: ansiGreen,
	inventory.EmphasisWarning: ansiYellow,
	inventory.EmphasisNote:    ansiBlue,
	inventory.EmphasisError:   ansiRed,
}

// Scanner runs barcodes through the inventory workflow
type Scanner interface {
	Scan(ctx context.Context, barcode string) *inventory.Outcome
	Idle() *inventory.Outcome
}

// Console reads barcodes from a keyboard wedge scanner and renders outcomes
// as text
type Console struct {
	scanner Scanner
	in      io.Reader
	out     io.Writer
	color   bool
}

// New creates a Console. Colour is used when out is a terminal.
func New(scanner Scanner, in io.Reader, out io.Writer) *Console {
	return &Console{
		scanner: scanner,
		in:      in,
		out:     out,
		color:   isTerminal(out),
	}
}

// WithColor forces colour output on or off
func (c *Console) WithColor(on bool) *Console {
	c.color = on
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Render writes the directive and item details for an outcome
func (c *Console) Render(outcome *inventory.Outcome) error {
	var b strings.Builder
	d := outcome.Directive

	b.WriteString("\n")
	for _, line := range strings.Split(d.Message, "\n") {
		b.WriteString(c.paint(d.Emphasis, line) + "\n")
	}
	if d.Notice != "" {
		b.WriteString(d.Notice + "\n")
	}

	if r := outcome.Record; r != nil {
		writeField(&b, "Title", r.Title)
		writeField(&b, "Author", r.Author)
		writeField(&b, "Call number", r.CallNumber)
		writeField(&b, "Description", r.Description)
		writeField(&b, "Location", r.Location)
		writeField(&b, "Barcode", r.Barcode)
	}

	if d.InputEnabled {
		b.WriteString("> ")
	}

	_, err := io.WriteString(c.out, b.String())
	return err
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %-12s %s\n", name+":", value)
}

func (c *Console) paint(emphasis inventory.Emphasis, text string) string {
	if !c.color {
		return text
	}
	color, ok := emphasisColors[emphasis]
	if !ok {
		return ansiBold + text + ansiReset
	}
	return ansiBold + color + text + ansiReset
}

// Run reads lines until the input ends, the operator quits or ctx is done
func (c *Console) Run(ctx context.Context) error {
	if err := c.Render(c.scanner.Idle()); err != nil {
		return err
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return nil
		case line := <-lines:
			quit, err := c.handle(ctx, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func (c *Console) handle(ctx context.Context, line string) (bool, error) {
	// the line scanner already dropped the CR/LF the wedge sends; the
	// barcode itself goes to the lookup unchanged
	switch strings.TrimSpace(line) {
	case CommandQuit:
		slog.Info("Console closed by operator")
		return true, nil
	case CommandClear:
		return false, c.Render(c.scanner.Idle())
	}

	working := &inventory.Outcome{
		Barcode:   line,
		State:     inventory.StateLookingUp,
		Directive: inventory.DirectiveFor(inventory.StateLookingUp, inventory.Classification{}, false, ""),
	}
	if err := c.Render(working); err != nil {
		return false, err
	}

	return false, c.Render(c.scanner.Scan(ctx, line))
}

var _ inventory.Renderer = (*Console)(nil)
