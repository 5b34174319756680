package inventory

// Classification is the result of looking up a process-status code
type Classification struct {
	Code         string `json:"code,omitempty"`
	Label        string `json:"label,omitempty"`
	BlocksUpdate bool   `json:"blocks_update"`
}

// StatusTable maps Alma PROCESSTYPE codes to display labels
type StatusTable map[string]string

// DefaultStatusTable is the PROCESSTYPE code table shipped with Alma
func DefaultStatusTable() StatusTable {
	return StatusTable{
		"ACQ":                       "Acquisitions",
		"CLAIM_RETURNED_LOAN":       "Claimed Returned",
		"HOLDSHELF":                 "On Hold Shelf",
		"ILL":                       "Resource Sharing Request",
		"LOAN":                      "On Loan",
		"LOST_ILL":                  "Lost Resource Sharing Request",
		"LOST_LOAN":                 "Lost",
		"LOST_LOAN_AND_PAID":        "Lost and Paid",
		"MISSING":                   "Missing",
		"REQUESTED":                 "Requested",
		"TECHNICAL":                 "Technical Migration",
		"TRANSIT":                   "In Transit",
		"TRANSIT_TO_REMOTE_STORAGE": "In Transit to Remote Storage",
		"WORK_ORDER_DEPARTMENT":     "In Work Order Status",
	}
}

// Classify reports whether code marks the item as unavailable for reshelving.
// Unknown and empty codes never block.
func (t StatusTable) Classify(code string) Classification {
	label, ok := t[code]
	if code == "" || !ok {
		return Classification{Code: code}
	}
	return Classification{Code: code, Label: label, BlocksUpdate: true}
}
