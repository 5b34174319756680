package inventory

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/zombor/inventory-updater/internal/alma"
)

const tempLocationSuffix = " (Temporary Location)"

// MalformedRecordError reports an item record that lacks a required field
// or cannot be decoded at all
type MalformedRecordError struct {
	Field string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed item record: %v", e.Err)
	}
	return fmt.Sprintf("malformed item record: missing %s", e.Field)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Record is the parsed view of an Alma item record
type Record struct {
	IDs            alma.ItemIDs `json:"ids"`
	Barcode        string       `json:"barcode"`
	Title          string       `json:"title"`
	Author         string       `json:"author"`
	CallNumber     string       `json:"call_number"`
	Description    string       `json:"description"`
	Location       string       `json:"location"`
	InTempLocation bool         `json:"in_temp_location"`
	ProcessStatus  string       `json:"process_status,omitempty"`

	raw []byte
}

// Raw returns the document the record was parsed from
func (r *Record) Raw() []byte {
	return r.raw
}

type descAttr struct {
	Desc string `xml:"desc,attr"`
}

// itemDocument mirrors the parts of the Alma item XML we read
type itemDocument struct {
	XMLName xml.Name `xml:"item"`
	Bib     struct {
		MMSID  string `xml:"mms_id"`
		Title  string `xml:"title"`
		Author string `xml:"author"`
	} `xml:"bib_data"`
	Holding struct {
		HoldingID      string   `xml:"holding_id"`
		CallNumber     string   `xml:"call_number"`
		InTempLocation string   `xml:"in_temp_location"`
		TempLocation   descAttr `xml:"temp_location"`
	} `xml:"holding_data"`
	Item struct {
		PID         string   `xml:"pid"`
		Barcode     string   `xml:"barcode"`
		Description string   `xml:"description"`
		ProcessType string   `xml:"process_type"`
		Location    descAttr `xml:"location"`
	} `xml:"item_data"`
}

// ParseRecord extracts identifiers and display metadata from an item record.
// Only the identifier triple is required.
func ParseRecord(doc []byte) (*Record, error) {
	var parsed itemDocument
	if err := xml.NewDecoder(bytes.NewReader(doc)).Decode(&parsed); err != nil {
		return nil, &MalformedRecordError{Err: fmt.Errorf("decoding item xml: %w", err)}
	}

	ids := alma.ItemIDs{
		MMSID:     strings.TrimSpace(parsed.Bib.MMSID),
		HoldingID: strings.TrimSpace(parsed.Holding.HoldingID),
		ItemID:    strings.TrimSpace(parsed.Item.PID),
	}
	switch {
	case ids.MMSID == "":
		return nil, &MalformedRecordError{Field: "bib_data/mms_id"}
	case ids.HoldingID == "":
		return nil, &MalformedRecordError{Field: "holding_data/holding_id"}
	case ids.ItemID == "":
		return nil, &MalformedRecordError{Field: "item_data/pid"}
	}

	record := &Record{
		IDs:           ids,
		Barcode:       strings.TrimSpace(parsed.Item.Barcode),
		Title:         strings.TrimSpace(parsed.Bib.Title),
		Author:        strings.TrimSpace(parsed.Bib.Author),
		CallNumber:    strings.TrimSpace(parsed.Holding.CallNumber),
		Description:   strings.TrimSpace(parsed.Item.Description),
		ProcessStatus: strings.TrimSpace(parsed.Item.ProcessType),
		raw:           doc,
	}

	if strings.EqualFold(strings.TrimSpace(parsed.Holding.InTempLocation), "true") {
		record.InTempLocation = true
		record.Location = parsed.Holding.TempLocation.Desc + tempLocationSuffix
	} else {
		record.Location = parsed.Item.Location.Desc
	}

	return record, nil
}
