// Package export dispatches a validated sale submission to one of the
// two sinks: the record store or the file store.
package export

import (
	"context"
	"fmt"

	"github.com/salesrecords/salesd/internal/codec"
	"github.com/salesrecords/salesd/internal/sale"
)

// Destination selects the sink for a submission.
type Destination string

const (
	DestinationFile  Destination = "file"
	DestinationTable Destination = "table"
)

// ParseDestination validates a destination string from user input.
func ParseDestination(s string) (Destination, error) {
	switch Destination(s) {
	case DestinationFile:
		return DestinationFile, nil
	case DestinationTable:
		return DestinationTable, nil
	}
	return "", fmt.Errorf("unsupported destination: %q", s)
}

// RecordInserter is the record-store side of the orchestrator.
type RecordInserter interface {
	InsertOrSkip(ctx context.Context, rec sale.Record) (bool, error)
}

// FileSaver is the file-store side of the orchestrator.
type FileSaver interface {
	Save(fields map[string]any, format codec.Format, prefix string) (string, error)
}

// Submission is a sale that already passed form validation, plus the
// caller's sink choice.
type Submission struct {
	Record      sale.Record
	Destination Destination
	Format      codec.Format // required when Destination is file
}

// Outcome reports where the submission landed.
type Outcome struct {
	Created   bool   // table: a new row was stored
	Duplicate bool   // table: the record already existed; informational, not an error
	FileName  string // file: the generated name, for user feedback only
}

// Exporter routes validated submissions. It performs no field
// validation itself; that happens before it is invoked.
type Exporter struct {
	records RecordInserter
	files   FileSaver
}

// New creates an Exporter over the two sinks.
func New(records RecordInserter, files FileSaver) *Exporter {
	return &Exporter{records: records, files: files}
}

// Export stores the submission in its chosen sink. The derived total
// (price x quantity, rounded to two decimals) is computed here and
// included in file output; the record store recomputes it on read.
func (e *Exporter) Export(ctx context.Context, sub Submission) (Outcome, error) {
	switch sub.Destination {
	case DestinationTable:
		created, err := e.records.InsertOrSkip(ctx, sub.Record)
		if err != nil {
			return Outcome{}, fmt.Errorf("store sale: %w", err)
		}
		return Outcome{Created: created, Duplicate: !created}, nil

	case DestinationFile:
		if sub.Format == "" {
			return Outcome{}, fmt.Errorf("file destination requires a format")
		}
		name, err := e.files.Save(sub.Record.Fields(), sub.Format, "sale")
		if err != nil {
			return Outcome{}, fmt.Errorf("save sale file: %w", err)
		}
		return Outcome{FileName: name}, nil
	}

	return Outcome{}, fmt.Errorf("unsupported destination: %q", sub.Destination)
}
