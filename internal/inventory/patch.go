package inventory

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	inventoryDateField   = "inventory_date"
	inventoryNumberField = "inventory_number"
)

// PatchError reports an item record whose shape does not allow the
// inventory date to be set
type PatchError struct {
	Reason string
	Err    error
}

func (e *PatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("patching inventory date: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("patching inventory date: %s", e.Reason)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}

// ScanDate formats t the way Alma stores inventory dates
func ScanDate(t time.Time) string {
	return t.Format("2006-01-02") + "Z"
}

// fieldSpan locates one element in the source document
type fieldSpan struct {
	start        int64 // first byte of the start tag
	contentStart int64 // first byte after the start tag
	contentEnd   int64 // first byte of the end tag
	end          int64 // first byte after the end tag
}

func (s fieldSpan) selfClosing() bool {
	return s.contentStart == s.end
}

// Patch returns a copy of doc whose item_data/inventory_date holds scanDate.
// An existing field keeps its position and attributes; a missing one is
// inserted right after item_data/inventory_number. All other bytes are
// copied unchanged.
func Patch(doc []byte, scanDate string) ([]byte, error) {
	dates, numberEnd, err := locateFields(doc)
	if err != nil {
		return nil, err
	}

	var value bytes.Buffer
	if err := xml.EscapeText(&value, []byte(scanDate)); err != nil {
		return nil, &PatchError{Reason: "escaping scan date", Err: err}
	}

	out := make([]byte, 0, len(doc)+value.Len()+2*len(inventoryDateField)+5)

	switch len(dates) {
	case 0:
		if numberEnd < 0 {
			return nil, &PatchError{Reason: "item_data/inventory_number not found"}
		}
		out = append(out, doc[:numberEnd]...)
		out = appendDateElement(out, []byte("<"+inventoryDateField+">"), value.Bytes())
		out = append(out, doc[numberEnd:]...)

	case 1:
		span := dates[0]
		if span.selfClosing() {
			// <inventory_date attr="x"/> becomes <inventory_date attr="x">value</inventory_date>
			tag := doc[span.start : span.end-2]
			tag = bytes.TrimRight(tag, " \t\r\n")
			out = append(out, doc[:span.start]...)
			out = appendDateElement(out, append(append([]byte{}, tag...), '>'), value.Bytes())
			out = append(out, doc[span.end:]...)
		} else {
			out = append(out, doc[:span.contentStart]...)
			out = append(out, value.Bytes()...)
			out = append(out, doc[span.contentEnd:]...)
		}

	default:
		return nil, &PatchError{Reason: fmt.Sprintf("found %d inventory_date fields", len(dates))}
	}

	return out, nil
}

func appendDateElement(out, openTag, value []byte) []byte {
	out = append(out, openTag...)
	out = append(out, value...)
	out = append(out, "</"+inventoryDateField+">"...)
	return out
}

// locateFields walks the document and records where the inventory date
// fields sit and where the first inventory number field ends
func locateFields(doc []byte) ([]fieldSpan, int64, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))

	var (
		path      []string
		dates     []fieldSpan
		current   *fieldSpan
		numberEnd int64 = -1
	)

	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, -1, &PatchError{Reason: "decoding item xml", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			path = append(path, t.Name.Local)
			if isItemDataField(path, inventoryDateField) {
				current = &fieldSpan{start: before, contentStart: dec.InputOffset()}
			}
		case xml.EndElement:
			if isItemDataField(path, inventoryDateField) && current != nil {
				current.contentEnd = before
				current.end = dec.InputOffset()
				dates = append(dates, *current)
				current = nil
			}
			if isItemDataField(path, inventoryNumberField) && numberEnd < 0 {
				numberEnd = dec.InputOffset()
			}
			path = path[:len(path)-1]
		}
	}

	return dates, numberEnd, nil
}

// isItemDataField reports whether path points at item/item_data/<name>
func isItemDataField(path []string, name string) bool {
	return len(path) == 3 && path[0] == "item" && path[1] == "item_data" && path[2] == name
}
