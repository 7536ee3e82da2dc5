package sheet

import (
	"encoding/json"
	"fmt"
	"sort"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// jsonPayload is the wire shape the upload layer sends for spreadsheet
// exports: sheet name -> 2-D cell grid. Cells may arrive as strings or
// numbers depending on the exporting tool.
type jsonPayload map[string][][]interface{}

// ParseJSONSheets decodes a JSON sheet payload into grids. Dashboard
// exports are frequently malformed (trailing commas, single quotes,
// truncated arrays), so a failed strict decode goes through json-repair
// and, failing that, an Hjson decode before giving up.
func ParseJSONSheets(data []byte) ([]*Sheet, error) {
	var payload jsonPayload

	if err := json.Unmarshal(data, &payload); err != nil {
		repaired, repErr := jsonrepair.RepairJSON(string(data))
		if repErr == nil {
			if err2 := json.Unmarshal([]byte(repaired), &payload); err2 == nil {
				return payloadToSheets(payload), nil
			}
		}
		if hjErr := hjson.Unmarshal(data, &payload); hjErr == nil {
			return payloadToSheets(payload), nil
		}
		return nil, fmt.Errorf("cannot decode sheet payload: %w", err)
	}

	return payloadToSheets(payload), nil
}

func payloadToSheets(payload jsonPayload) []*Sheet {
	// Map iteration order is random; sort names so re-ingestion of the
	// same payload processes sheets identically.
	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)

	var sheets []*Sheet
	for _, name := range names {
		grid := payload[name]
		rows := make([][]string, len(grid))
		for r, row := range grid {
			cells := make([]string, len(row))
			for c, cell := range row {
				cells[c] = cellToString(cell)
			}
			rows[r] = cells
		}
		s := &Sheet{Name: name, Rows: rows}
		if !s.IsEmpty() {
			sheets = append(sheets, s)
		}
	}
	return sheets
}

func cellToString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// Render without exponent noise; trailing zeros are harmless to
		// the numeric parser downstream.
		return trimFloat(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	// Drop trailing zeros and a dangling decimal point.
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
