package columns

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew_AssignsIndicesInOrder(t *testing.T) {
	m, err := New(
		Field{Key: "id", Type: "number"},
		Field{Key: "name", Title: "Full name", Type: "string"},
		Field{Key: "active"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	attrs := m.Attributes()
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	want := []Attribute{
		{Key: "id", Title: "id", Type: TypeNumber, Column: 1},
		{Key: "name", Title: "Full name", Type: TypeString, Column: 2},
		{Key: "active", Title: "active", Type: TypeAbsent, Column: 3},
	}
	for i, a := range attrs {
		if a != want[i] {
			t.Errorf("attribute %d: expected %+v, got %+v", i, want[i], a)
		}
	}
	if a, ok := m.Lookup("name"); !ok || a.Column != 2 {
		t.Errorf("expected name at column 2, got %+v %v", a, ok)
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Error("expected missing key to be unknown")
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Field{Key: "a"}, Field{Key: "a"}); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected duplicate key error, got: %v", err)
	}
	if _, err := New(Field{Key: "  "}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected empty key error, got: %v", err)
	}
	if _, err := New(Field{Key: "a", Type: "date"}); err == nil || !strings.Contains(err.Error(), "unknown cell type") {
		t.Errorf("expected unknown cell type error, got: %v", err)
	}
}

func TestInfer(t *testing.T) {
	cases := []struct {
		v    any
		want CellType
	}{
		{nil, TypeNull},
		{"abc", TypeString},
		{"42", TypeString},
		{[]byte("x"), TypeString},
		{true, TypeBool},
		{int64(1), TypeNumber},
		{uint8(1), TypeNumber},
		{3.5, TypeNumber},
		{float32(1), TypeNumber},
		{time.Now(), TypeString},
	}
	for _, tc := range cases {
		if got := Infer(tc.v); got != tc.want {
			t.Errorf("Infer(%#v): expected %v, got %v", tc.v, tc.want, got)
		}
	}
}

func TestResolve_DeclaredWins(t *testing.T) {
	if got := Resolve(TypeString, 12); got != TypeString {
		t.Errorf("expected declared string, got %v", got)
	}
	if got := Resolve(TypeAbsent, 12); got != TypeNumber {
		t.Errorf("expected inferred number, got %v", got)
	}
}

func TestParseCellType(t *testing.T) {
	for in, want := range map[string]CellType{"": TypeAbsent, "String": TypeString, "boolean": TypeBool, "numeric": TypeNumber, "null": TypeNull} {
		got, err := ParseCellType(in)
		if err != nil || got != want {
			t.Errorf("ParseCellType(%q): expected %v, got %v (%v)", in, want, got, err)
		}
	}
}

func TestLoad_LinesAndYAML(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "fields.txt")
	if err := os.WriteFile(txt, []byte("foo\n\n bar \n"), 0644); err != nil {
		t.Fatalf("failed to write fields file: %v", err)
	}
	m, err := Load(txt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(m.Keys(), ",") != "foo,bar" {
		t.Errorf("unexpected keys: %v", m.Keys())
	}

	yml := filepath.Join(dir, "fields.yaml")
	content := "- key: id\n  type: number\n- key: name\n  title: Name\n"
	if err := os.WriteFile(yml, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fields file: %v", err)
	}
	m, err = Load(yml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a, _ := m.Lookup("id"); a.Type != TypeNumber {
		t.Errorf("expected id to be number, got %v", a.Type)
	}
	if a, _ := m.Lookup("name"); a.Title != "Name" || a.Column != 2 {
		t.Errorf("unexpected name attribute: %+v", a)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load("/nonexistent/fields.txt"); err == nil || !strings.Contains(err.Error(), "error reading fields file") {
		t.Errorf("expected read error, got: %v", err)
	}
	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, []byte("\n\n"), 0644); err != nil {
		t.Fatalf("failed to write fields file: %v", err)
	}
	if _, err := Load(empty); !errors.Is(err, ErrNoColumns) {
		t.Errorf("expected ErrNoColumns, got: %v", err)
	}
}

func TestWriteYAML_RoundTripsThroughLoad(t *testing.T) {
	m, err := New(Field{Key: "id", Type: "number"}, Field{Key: "name", Title: "Name"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteYAML(&buf, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "cols.yml")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, buf.String())
	}
	if got, want := loaded.Attributes(), m.Attributes(); got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
