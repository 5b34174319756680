package inventory

import (
	"fmt"
	"time"
)

// State is a step of the scan workflow
type State string

const (
	StateIdle             State = "idle"
	StateLookingUp        State = "looking_up"
	StateFound            State = "found"
	StateClassifying      State = "classifying"
	StateUpdating         State = "updating"
	StateNotFound         State = "not_found"
	StateConnectionFailed State = "connection_failed"
	StateMalformed        State = "malformed"
	StateBlocked          State = "blocked"
	StateUpdated          State = "updated"
	StateUpdateFailed     State = "update_failed"
)

// TerminalStates lists every state a scan can end in
var TerminalStates = []State{
	StateNotFound,
	StateConnectionFailed,
	StateMalformed,
	StateBlocked,
	StateUpdated,
	StateUpdateFailed,
}

// Terminal reports whether a scan stops in s
func (s State) Terminal() bool {
	for _, t := range TerminalStates {
		if s == t {
			return true
		}
	}
	return false
}

// SetAside reports whether the operator was told to pull the item
func (s State) SetAside() bool {
	return s == StateNotFound || s == StateMalformed || s == StateBlocked
}

// Emphasis is the visual treatment of a directive
type Emphasis string

const (
	EmphasisNeutral Emphasis = "neutral"
	EmphasisSuccess Emphasis = "success"
	EmphasisWarning Emphasis = "warning"
	EmphasisNote    Emphasis = "note"
	EmphasisError   Emphasis = "error"
)

// Operator-facing texts
const (
	MessageWorking          = "Working..."
	MessageScanNext         = "Scan next barcode to continue"
	MessageNotFound         = "Item not found! Please set aside."
	MessageConnection       = "Please resolve connection issue before continuing."
	NoticeConnection        = "Unable to connect to Alma, please check internet connection."
	MessageMalformed        = "Item record could not be read. Please set aside and report this barcode."
	MessageUpdateFailed     = "Item information was not updated. Please try again"
	MessageTempLocationNote = "Note: This item is in a temporary location"
	processStatusFormat     = "Item has process status: %s, Please set aside!"
)

// Directive tells a presentation adapter what to show
type Directive struct {
	Message      string   `json:"message"`
	Notice       string   `json:"notice,omitempty"`
	Emphasis     Emphasis `json:"emphasis"`
	InputEnabled bool     `json:"input_enabled"`
}

// Outcome is the result of one scan
type Outcome struct {
	ID        string         `json:"id"`
	Barcode   string         `json:"barcode"`
	State     State          `json:"state"`
	Record    *Record        `json:"record,omitempty"`
	Status    Classification `json:"status"`
	Updated   bool           `json:"updated"`
	ScanDate  string         `json:"scan_date"`
	ScannedAt time.Time      `json:"scanned_at"`
	Error     string         `json:"error,omitempty"`
	Directive Directive      `json:"directive"`

	err error
}

// Err returns the error that ended the scan, if any
func (o *Outcome) Err() error {
	return o.err
}

func (o *Outcome) fail(state State, err error) {
	o.State = state
	o.err = err
	if err != nil {
		o.Error = err.Error()
	}
}

// InProcess reports whether the item carries a blocking process status
func (o *Outcome) InProcess() bool {
	return o.Status.BlocksUpdate
}

// InTempLocation reports whether the item is shelved in a temporary location
func (o *Outcome) InTempLocation() bool {
	return o.Record != nil && o.Record.InTempLocation
}

// DirectiveFor maps a workflow state to what the operator sees. Every
// state has exactly one directive for a given combination of flags.
func DirectiveFor(state State, status Classification, inTemp bool, defaultMessage string) Directive {
	switch state {
	case StateIdle:
		return Directive{Message: defaultMessage, Emphasis: EmphasisNeutral, InputEnabled: true}

	case StateLookingUp, StateFound, StateClassifying, StateUpdating:
		return Directive{Message: MessageWorking, Emphasis: EmphasisNeutral}

	case StateConnectionFailed:
		return Directive{Message: MessageConnection, Notice: NoticeConnection, Emphasis: EmphasisError, InputEnabled: true}

	case StateNotFound:
		return Directive{Message: MessageNotFound, Emphasis: EmphasisError, InputEnabled: true}

	case StateMalformed:
		return Directive{Message: MessageMalformed, Emphasis: EmphasisError, InputEnabled: true}

	case StateUpdateFailed:
		return Directive{Message: MessageUpdateFailed, Emphasis: EmphasisError, InputEnabled: true}

	case StateBlocked:
		return Directive{Message: withTempNote(processStatusMessage(status), inTemp), Emphasis: EmphasisWarning, InputEnabled: true}

	case StateUpdated:
		switch {
		case status.BlocksUpdate:
			return Directive{Message: withTempNote(processStatusMessage(status), inTemp), Emphasis: EmphasisWarning, InputEnabled: true}
		case inTemp:
			return Directive{Message: withTempNote(MessageScanNext, true), Emphasis: EmphasisNote, InputEnabled: true}
		default:
			return Directive{Message: MessageScanNext, Emphasis: EmphasisSuccess, InputEnabled: true}
		}
	}

	return Directive{Message: defaultMessage, Emphasis: EmphasisNeutral, InputEnabled: true}
}

func processStatusMessage(status Classification) string {
	label := status.Label
	if label == "" {
		label = status.Code
	}
	return fmt.Sprintf(processStatusFormat, label)
}

func withTempNote(message string, inTemp bool) string {
	if !inTemp {
		return message
	}
	return message + "\n" + MessageTempLocationNote
}
