// Package spreadsheet builds a single-sheet workbook from a row source: a
// styled header row, typed data cells and content-sized columns, reporting
// progress to registered listeners as rows are processed.
//
// Progress checkpoints are emitted in this order:
//
//	0          generation started
//	2          header written
//	..97       data rows, once per tenth of the row count, capped at 97
//	98         data written and columns sized
//	99         serialization started
//	100        file written
//
// A run that fails never emits 100.
package spreadsheet

import (
	"fmt"
	"log/slog"

	"sheetexport/columns"
	"sheetexport/cursor"
)

// DefaultBatchSize is the number of rows fetched per round trip when none is configured.
const DefaultBatchSize = cursor.DefaultBatchSize

// RowSource counts and streams the exported rows.
type RowSource interface {
	Count() (int64, error)
	Each(batchSize int) (cursor.Records, error)
}

// ColumnMapper describes the exported columns.
type ColumnMapper interface {
	Attributes() []columns.Attribute
	Lookup(key string) (columns.Attribute, bool)
}

// Option configures a Generator.
type Option func(*Generator)

// WithBatchSize sets the batch size requested from the row source.
func WithBatchSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.batchSize = n
		}
	}
}

// WithSheetName names the generated sheet.
func WithSheetName(name string) Option {
	return func(g *Generator) { g.sheet = name }
}

// WithProgress registers a progress listener.
func WithProgress(fn ProgressFunc) Option {
	return func(g *Generator) { g.OnProgress(fn) }
}

// Generator turns a row source into a workbook. It is not safe for
// concurrent use; run independent exports with independent generators.
type Generator struct {
	batchSize int
	sheet     string
	listeners []ProgressFunc
	event     *ProgressEvent
}

// NewGenerator returns a generator configured by opts.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OnProgress registers fn. Listeners run in registration order.
func (g *Generator) OnProgress(fn ProgressFunc) {
	if fn != nil {
		g.listeners = append(g.listeners, fn)
	}
}

func (g *Generator) emit(progress float64) error {
	g.event.Progress = progress
	slog.Debug("spreadsheet: progress", "progress", progress)
	for _, fn := range g.listeners {
		if err := fn(g.event); err != nil {
			return err
		}
	}
	return nil
}

// Generate builds the workbook for src using the columns of m. The caller
// owns the returned workbook and must Close it.
func (g *Generator) Generate(src RowSource, m ColumnMapper) (*Workbook, error) {
	g.event = &ProgressEvent{}
	if err := g.emit(ProgressStart); err != nil {
		return nil, err
	}
	wb, err := NewWorkbook(g.sheet)
	if err != nil {
		return nil, err
	}
	if err := g.build(wb, src, m); err != nil {
		wb.Close()
		return nil, err
	}
	return wb, nil
}

func (g *Generator) build(wb *Workbook, src RowSource, m ColumnMapper) error {
	if err := g.buildHeader(wb, m); err != nil {
		return err
	}
	if err := g.emit(ProgressHeader); err != nil {
		return err
	}
	if err := g.buildData(wb, src, m); err != nil {
		return err
	}
	if err := g.autoSize(wb, m); err != nil {
		return err
	}
	return g.emit(ProgressBuilt)
}

func (g *Generator) buildHeader(wb *Workbook, m ColumnMapper) error {
	attrs := m.Attributes()
	for _, a := range attrs {
		if err := wb.SetHeader(a.Column, a.Title); err != nil {
			return err
		}
	}
	return wb.StyleHeader(len(attrs))
}

func (g *Generator) buildData(wb *Workbook, src RowSource, m ColumnMapper) (err error) {
	total, err := src.Count()
	if err != nil {
		return err
	}
	recs, err := src.Each(g.batchSize)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := recs.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	row := 2
	var processed int64
	mark := markStep
	for recs.Next() {
		processed++
		if total > 0 && float64(processed) >= mark*float64(total) {
			mark += markStep
			if err := g.emit(dataProgress(mark)); err != nil {
				return err
			}
		}
		rec := recs.Record()
		for i, key := range rec.Fields {
			attr, ok := m.Lookup(key)
			if !ok {
				continue
			}
			v := rec.Values[i]
			if err := wb.SetCell(attr.Column, row, v, columns.Resolve(attr.Type, v)); err != nil {
				return err
			}
		}
		row++
	}
	if err := recs.Err(); err != nil {
		return err
	}
	slog.Debug("spreadsheet: data written", "rows", processed, "total", total)
	return nil
}

func (g *Generator) autoSize(wb *Workbook, m ColumnMapper) error {
	for _, a := range m.Attributes() {
		if err := wb.AutoSize(a.Column); err != nil {
			return err
		}
	}
	return nil
}

// Finalize writes wb to path, emitting 99 before and 100 after the write.
// It reuses the event of the last Generate call.
func (g *Generator) Finalize(wb *Workbook, path string) error {
	if g.event == nil {
		g.event = &ProgressEvent{}
	}
	if err := g.emit(ProgressSaving); err != nil {
		return err
	}
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("error saving spreadsheet: %w", err)
	}
	return g.emit(ProgressDone)
}
