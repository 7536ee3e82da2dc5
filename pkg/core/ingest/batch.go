package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"abs_intel/pkg/core/logging"
	"abs_intel/pkg/core/sheet"
)

// BatchResult aggregates a folder run. Files are processed sequentially;
// one file's failure is recorded and the rest of the batch continues.
type BatchResult struct {
	Processed int
	Failed    int
	Results   []*Result
	Errors    map[string]string // file -> error
}

// decodableExtensions are the payload shapes the batch runner understands.
// PDF/DOCX decoding belongs to the external file-reader collaborator; by
// the time files land here they are text, markdown, HTML or JSON.
var decodableExtensions = map[string]bool{
	".txt": true, ".text": true, ".md": true, ".markdown": true,
	".html": true, ".htm": true, ".json": true,
}

// ProcessFolder ingests every decodable file in dir in lexical order.
func (p *Pipeline) ProcessFolder(ctx context.Context, dir, source string) (*BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read batch folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if decodableExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	log := logging.GetLogger().WithComponent("batch")
	batch := &BatchResult{Errors: map[string]string{}}

	for _, name := range files {
		res, err := p.ProcessFile(ctx, filepath.Join(dir, name), source)
		if err != nil {
			batch.Failed++
			batch.Errors[name] = err.Error()
			log.WithFields(logging.Fields{"file": name}).WithError(err).Warn("file failed, continuing batch")
			continue
		}
		batch.Processed++
		batch.Results = append(batch.Results, res)
	}

	log.WithFields(logging.Fields{
		"dir":       dir,
		"processed": batch.Processed,
		"failed":    batch.Failed,
	}).Info("batch folder complete")
	return batch, nil
}

// ProcessFile decodes one file into a payload and dispatches it.
func (p *Pipeline) ProcessFile(ctx context.Context, path, source string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	payload := &Payload{Name: filepath.Base(path), Source: source}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		sheets, err := sheet.ParseHTMLSheets(string(data))
		if err != nil {
			return nil, err
		}
		if len(sheets) == 0 {
			return nil, fmt.Errorf("no tables found in %s", path)
		}
		payload.Sheets = sheets
	case ".json":
		sheets, err := sheet.ParseJSONSheets(data)
		if err != nil {
			return nil, err
		}
		payload.Sheets = sheets
	default:
		payload.Text = string(data)
	}

	return p.Dispatch(ctx, payload), nil
}
