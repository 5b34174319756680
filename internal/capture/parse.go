package capture

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseBarcodesJSON parses the JSON answer of a vision model
func parseBarcodesJSON(text string) (*Barcodes, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var data Barcodes
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	// Drop blanks and repeats; a label photographed twice is scanned once
	seen := make(map[string]bool, len(data.Barcodes))
	cleaned := make([]string, 0, len(data.Barcodes))
	for _, code := range data.Barcodes {
		code = strings.Join(strings.Fields(code), "")
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		cleaned = append(cleaned, code)
	}
	data.Barcodes = cleaned

	return &data, nil
}
