package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"sheetexport/columns"
	"sheetexport/cursor"
)

// sliceSource serves in-memory rows through a real cursor.
type sliceSource struct {
	fields   []string
	rows     [][]any
	countErr error
	readErr  error
	queries  int
}

func (s *sliceSource) Count() (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return int64(len(s.rows)), nil
}

func (s *sliceSource) Each(batchSize int) (cursor.Records, error) {
	return cursor.New(s, cursor.WithBatchSize(batchSize)).Each(), nil
}

func (s *sliceSource) Query() (cursor.Reader, error) {
	s.queries++
	return &sliceReader{src: s}, nil
}

type sliceReader struct {
	src *sliceSource
	pos int
}

func (r *sliceReader) Read() (cursor.Record, error) {
	if r.pos >= len(r.src.rows) {
		if r.src.readErr != nil {
			return cursor.Record{}, r.src.readErr
		}
		return cursor.Record{}, io.EOF
	}
	rec := cursor.Record{Fields: r.src.fields, Values: r.src.rows[r.pos]}
	r.pos++
	return rec, nil
}

func (r *sliceReader) Close() error { return nil }

func exampleMapper(t *testing.T) *columns.Mapper {
	t.Helper()
	m, err := columns.New(
		columns.Field{Key: "id", Type: "number"},
		columns.Field{Key: "name", Title: "Full name", Type: "string"},
		columns.Field{Key: "active"},
	)
	if err != nil {
		t.Fatalf("failed to build mapper: %v", err)
	}
	return m
}

func exampleSource(n int) *sliceSource {
	s := &sliceSource{fields: []string{"id", "name", "active"}}
	for i := 0; i < n; i++ {
		s.rows = append(s.rows, []any{int64(i), fmt.Sprintf("user-%d", i), i%2 == 0})
	}
	return s
}

// recorder collects emitted progress values.
type recorder struct {
	values []float64
	events []*ProgressEvent
}

func (r *recorder) listen(e *ProgressEvent) error {
	r.values = append(r.values, e.Progress)
	r.events = append(r.events, e)
	return nil
}

func run(t *testing.T, g *Generator, src RowSource, m ColumnMapper) *Workbook {
	t.Helper()
	wb, err := g.Generate(src, m)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	t.Cleanup(func() { wb.Close() })
	if err := g.Finalize(wb, filepath.Join(t.TempDir(), "out.xlsx")); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	return wb
}

func cellValue(t *testing.T, wb *Workbook, cell string) string {
	t.Helper()
	v, err := wb.File().GetCellValue(wb.Sheet(), cell)
	if err != nil {
		t.Fatalf("failed to read %s: %v", cell, err)
	}
	return v
}

func TestGenerate_ExampleExport(t *testing.T) {
	rec := &recorder{}
	g := NewGenerator(WithBatchSize(10), WithProgress(rec.listen))
	wb := run(t, g, exampleSource(25), exampleMapper(t))

	for cell, want := range map[string]string{
		"A1": "id", "B1": "Full name", "C1": "active",
		"A2": "0", "B2": "user-0", "C2": "TRUE",
		"A26": "24", "B26": "user-24", "C26": "TRUE",
		"C25": "FALSE",
		"A27": "",
	} {
		if got := cellValue(t, wb, cell); got != want {
			t.Errorf("%s: expected %q, got %q", cell, want, got)
		}
	}

	vals := rec.values
	if len(vals) < 6 {
		t.Fatalf("expected data-phase events, got %v", vals)
	}
	if vals[0] != 0 || vals[1] != 2 {
		t.Errorf("expected sequence to start with 0, 2; got %v", vals)
	}
	tail := vals[len(vals)-3:]
	if tail[0] != 98 || tail[1] != 99 || tail[2] != 100 {
		t.Errorf("expected sequence to end with 98, 99, 100; got %v", vals)
	}
	data := vals[2 : len(vals)-3]
	if data[0] != 20 {
		t.Errorf("expected first data checkpoint 20, got %v", data[0])
	}
	if data[len(data)-1] != ProgressDataCap {
		t.Errorf("expected last data checkpoint capped at %d, got %v", ProgressDataCap, data[len(data)-1])
	}
	for _, v := range data {
		if v > ProgressDataCap {
			t.Errorf("data checkpoint %v exceeds cap", v)
		}
		if v != math.Round(v*100)/100 {
			t.Errorf("data checkpoint %v not rounded to two decimals", v)
		}
	}
}

func TestGenerate_ProgressIsMonotonic(t *testing.T) {
	for _, n := range []int{1, 2, 3, 9, 10, 11, 33, 100, 257} {
		for _, size := range []int{1, 7, 100} {
			rec := &recorder{}
			g := NewGenerator(WithBatchSize(size), WithProgress(rec.listen))
			run(t, g, exampleSource(n), exampleMapper(t))
			for i := 1; i < len(rec.values); i++ {
				if rec.values[i] < rec.values[i-1] {
					t.Fatalf("R=%d B=%d: progress decreased: %v", n, size, rec.values)
				}
			}
			has2 := false
			for _, v := range rec.values {
				if v < 0 || v > 100 {
					t.Fatalf("R=%d: progress %v out of range", n, v)
				}
				if v == 2 {
					has2 = true
				}
			}
			if !has2 {
				t.Errorf("R=%d: expected checkpoint 2 in %v", n, rec.values)
			}
			vals := rec.values
			if len(vals) < 5 {
				t.Fatalf("R=%d B=%d: too few events: %v", n, size, vals)
			}
			if tail := vals[len(vals)-3:]; tail[0] != 98 || tail[1] != 99 || tail[2] != 100 {
				t.Errorf("R=%d B=%d: expected sequence to end with 98, 99, 100; got %v", n, size, vals)
			}
			for _, v := range vals[:len(vals)-3] {
				if v > ProgressDataCap {
					t.Errorf("R=%d B=%d: checkpoint %v before 98 exceeds %d", n, size, v, ProgressDataCap)
				}
			}
		}
	}
}

func TestGenerate_EmptySource(t *testing.T) {
	rec := &recorder{}
	g := NewGenerator(WithProgress(rec.listen))
	wb := run(t, g, exampleSource(0), exampleMapper(t))
	if fmt.Sprint(rec.values) != "[0 2 98 99 100]" {
		t.Errorf("expected [0 2 98 99 100], got %v", rec.values)
	}
	rows, err := wb.File().GetRows(wb.Sheet())
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected only the header row, got %d rows", len(rows))
	}
}

func TestGenerate_SkipsUnknownAttributes(t *testing.T) {
	src := &sliceSource{
		fields: []string{"extra", "id", "ignored", "active"},
		rows:   [][]any{{"x", 7, "y", false}},
	}
	wb := run(t, NewGenerator(), src, exampleMapper(t))
	if got := cellValue(t, wb, "A2"); got != "7" {
		t.Errorf("expected id 7, got %q", got)
	}
	if got := cellValue(t, wb, "B2"); got != "" {
		t.Errorf("expected blank name, got %q", got)
	}
	if got := cellValue(t, wb, "C2"); got != "FALSE" {
		t.Errorf("expected active FALSE, got %q", got)
	}
	if got := cellValue(t, wb, "D2"); got != "" {
		t.Errorf("expected unknown attribute to be dropped, got %q", got)
	}
}

func TestGenerate_HeaderStyleSpansColumns(t *testing.T) {
	wb := run(t, NewGenerator(), exampleSource(1), exampleMapper(t))
	f := wb.File()
	first, err := f.GetCellStyle(wb.Sheet(), "A1")
	if err != nil {
		t.Fatalf("failed to read style: %v", err)
	}
	if first == 0 {
		t.Fatal("expected header to be styled")
	}
	for _, cell := range []string{"B1", "C1"} {
		if id, _ := f.GetCellStyle(wb.Sheet(), cell); id != first {
			t.Errorf("%s: expected header style %d, got %d", cell, first, id)
		}
	}
	if id, _ := f.GetCellStyle(wb.Sheet(), "D1"); id == first {
		t.Error("expected header style to stop at the last column")
	}
	if id, _ := f.GetCellStyle(wb.Sheet(), "A2"); id == first {
		t.Error("expected data rows to be unstyled")
	}
}

func TestGenerate_AutoSizesColumns(t *testing.T) {
	wb := run(t, NewGenerator(), exampleSource(25), exampleMapper(t))
	width, err := wb.File().GetColWidth(wb.Sheet(), "B")
	if err != nil {
		t.Fatalf("failed to read width: %v", err)
	}
	// widest value in column B is "Full name" (9 runes)
	if want := 9*1.1 + widthPadding; math.Abs(width-want) > 1e-6 {
		t.Errorf("expected width %v, got %v", want, width)
	}
}

func TestGenerate_FreshEventPerCall(t *testing.T) {
	rec := &recorder{}
	g := NewGenerator(WithProgress(rec.listen))
	run(t, g, exampleSource(3), exampleMapper(t))
	first := len(rec.events)
	run(t, g, exampleSource(3), exampleMapper(t))
	if rec.events[0] != rec.events[first-1] {
		t.Error("expected one event instance within a call")
	}
	if rec.events[0] == rec.events[first] {
		t.Error("expected a new event instance for the second call")
	}
}

func TestGenerate_ListenerErrorAborts(t *testing.T) {
	stop := errors.New("stop")
	var seen []float64
	g := NewGenerator(WithProgress(func(e *ProgressEvent) error {
		seen = append(seen, e.Progress)
		if e.Progress == ProgressHeader {
			return stop
		}
		return nil
	}))
	src := exampleSource(10)
	wb, err := g.Generate(src, exampleMapper(t))
	if !errors.Is(err, stop) {
		t.Fatalf("expected listener error, got: %v", err)
	}
	if wb != nil {
		t.Error("expected no workbook on failure")
	}
	if fmt.Sprint(seen) != "[0 2]" {
		t.Errorf("expected generation to stop after 2, got %v", seen)
	}
	if src.queries != 0 {
		t.Errorf("expected no rows to be fetched, got %d queries", src.queries)
	}
}

func TestGenerate_SourceErrorsPropagate(t *testing.T) {
	countErr := errors.New("count failed")
	src := exampleSource(3)
	src.countErr = countErr
	if _, err := NewGenerator().Generate(src, exampleMapper(t)); !errors.Is(err, countErr) {
		t.Errorf("expected count error, got: %v", err)
	}

	readErr := errors.New("read failed")
	src = exampleSource(3)
	src.readErr = readErr
	rec := &recorder{}
	g := NewGenerator(WithProgress(rec.listen))
	if _, err := g.Generate(src, exampleMapper(t)); err != readErr {
		t.Errorf("expected read error unchanged, got: %v", err)
	}
	for _, v := range rec.values {
		if v >= ProgressBuilt {
			t.Errorf("expected no completion checkpoint after failure, got %v", rec.values)
		}
	}
}

func TestFinalize_WriteFailureOmitsTerminalEvent(t *testing.T) {
	rec := &recorder{}
	g := NewGenerator(WithProgress(rec.listen))
	wb, err := g.Generate(exampleSource(2), exampleMapper(t))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	defer wb.Close()
	err = g.Finalize(wb, filepath.Join(t.TempDir(), "missing", "dir", "out.xlsx"))
	if err == nil {
		t.Fatal("expected write error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got: %v", err)
	}
	if last := rec.values[len(rec.values)-1]; last != ProgressSaving {
		t.Errorf("expected last checkpoint 99, got %v", rec.values)
	}
}

func TestFinalize_WritesFile(t *testing.T) {
	g := NewGenerator(WithSheetName("Users"))
	wb, err := g.Generate(exampleSource(5), exampleMapper(t))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	defer wb.Close()
	path := filepath.Join(t.TempDir(), "users.xlsx")
	if err := g.Finalize(wb, path); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Errorf("expected non-empty file at %s: %v", path, err)
	}
	if wb.Sheet() != "Users" {
		t.Errorf("expected sheet Users, got %s", wb.Sheet())
	}
}

func TestDataProgress(t *testing.T) {
	cases := map[float64]float64{0.2: 20, 0.30000000000000004: 30, 0.123456: 12.35, 0.97: 97, 1.1: 97}
	for mark, want := range cases {
		if got := dataProgress(mark); got != want {
			t.Errorf("dataProgress(%v): expected %v, got %v", mark, want, got)
		}
	}
}
