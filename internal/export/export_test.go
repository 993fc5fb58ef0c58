package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesrecords/salesd/internal/codec"
	"github.com/salesrecords/salesd/internal/sale"
)

type fakeInserter struct {
	created bool
	got     sale.Record
}

func (f *fakeInserter) InsertOrSkip(_ context.Context, rec sale.Record) (bool, error) {
	f.got = rec
	return f.created, nil
}

type fakeSaver struct {
	gotFields map[string]any
	gotFormat codec.Format
	gotPrefix string
}

func (f *fakeSaver) Save(fields map[string]any, format codec.Format, prefix string) (string, error) {
	f.gotFields = fields
	f.gotFormat = format
	f.gotPrefix = prefix
	return "sale_deadbeef.json", nil
}

func testRecord() sale.Record {
	return sale.Record{
		OrderID:      "A1",
		CustomerName: "Bob",
		Product:      "Pen",
		Quantity:     3,
		Price:        2.5,
		Date:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestExport_Table_Created(t *testing.T) {
	inserter := &fakeInserter{created: true}
	e := New(inserter, &fakeSaver{})

	outcome, err := e.Export(context.Background(), Submission{
		Record:      testRecord(),
		Destination: DestinationTable,
	})
	require.NoError(t, err)

	assert.True(t, outcome.Created)
	assert.False(t, outcome.Duplicate)
	assert.Equal(t, "A1", inserter.got.OrderID)
}

func TestExport_Table_Duplicate(t *testing.T) {
	e := New(&fakeInserter{created: false}, &fakeSaver{})

	outcome, err := e.Export(context.Background(), Submission{
		Record:      testRecord(),
		Destination: DestinationTable,
	})
	require.NoError(t, err)

	assert.False(t, outcome.Created)
	assert.True(t, outcome.Duplicate, "a duplicate is an informational outcome, not an error")
}

func TestExport_File(t *testing.T) {
	saver := &fakeSaver{}
	e := New(&fakeInserter{}, saver)

	outcome, err := e.Export(context.Background(), Submission{
		Record:      testRecord(),
		Destination: DestinationFile,
		Format:      codec.FormatJSON,
	})
	require.NoError(t, err)

	assert.Equal(t, "sale_deadbeef.json", outcome.FileName)
	assert.Equal(t, codec.FormatJSON, saver.gotFormat)
	assert.Equal(t, "sale", saver.gotPrefix)
	assert.Equal(t, 7.5, saver.gotFields["total"], "total is computed before dispatch")
	assert.Equal(t, "2024-01-01", saver.gotFields["date"])
}

func TestExport_File_RequiresFormat(t *testing.T) {
	e := New(&fakeInserter{}, &fakeSaver{})

	_, err := e.Export(context.Background(), Submission{
		Record:      testRecord(),
		Destination: DestinationFile,
	})
	assert.Error(t, err)
}

func TestParseDestination(t *testing.T) {
	d, err := ParseDestination("table")
	require.NoError(t, err)
	assert.Equal(t, DestinationTable, d)

	d, err = ParseDestination("file")
	require.NoError(t, err)
	assert.Equal(t, DestinationFile, d)

	_, err = ParseDestination("cloud")
	assert.Error(t, err)
}
