package sheet

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// IsMarkdownPayload reports whether a text payload parses as markdown and
// carries at least one pipe table. Goldmark is very permissive, so the pipe
// check does the real work; the parse guards against binary garbage.
func IsMarkdownPayload(payload string) bool {
	if !strings.Contains(payload, "|") {
		return false
	}
	parser := goldmark.DefaultParser()
	doc := parser.Parse(text.NewReader([]byte(payload)))
	if doc == nil {
		return false
	}
	return len(detectPipeBlocks(payload)) > 0
}

// ParseMarkdownSheets extracts each pipe-table block in a markdown payload
// as one Sheet, named from the nearest preceding heading or bold line.
func ParseMarkdownSheets(payload string) []*Sheet {
	blocks := detectPipeBlocks(payload)

	var sheets []*Sheet
	for i, block := range blocks {
		s := parsePipeTable(block)
		if s == nil || s.IsEmpty() {
			continue
		}
		if s.Name == "" {
			s.Name = "table_" + strconv.Itoa(i+1)
		}
		sheets = append(sheets, s)
	}
	return sheets
}

// pipeBlock is one contiguous run of pipe-table lines plus its title.
type pipeBlock struct {
	title string
	lines []string
}

func detectPipeBlocks(payload string) []pipeBlock {
	lines := strings.Split(payload, "\n")

	var blocks []pipeBlock
	var current []string
	title := ""
	lastHeading := ""

	flush := func() {
		// Header + separator + one data row is the minimum real table.
		if len(current) >= 3 {
			blocks = append(blocks, pipeBlock{title: title, lines: current})
		}
		current = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.Count(trimmed, "|") >= 2 {
			if current == nil {
				title = lastHeading
			}
			current = append(current, trimmed)
			continue
		}
		flush()
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "**") {
			lastHeading = strings.Trim(trimmed, "#* ")
		}
	}
	flush()
	return blocks
}

func parsePipeTable(block pipeBlock) *Sheet {
	var rows [][]string
	for _, line := range block.lines {
		// Skip the |---|---| separator line.
		if strings.Contains(line, "---") {
			continue
		}
		cells := splitPipeRow(line)
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return &Sheet{Name: block.title, Rows: rows}
}

func splitPipeRow(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
