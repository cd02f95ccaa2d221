package fileutils

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteJSONFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out", "note.soap.json")

	if FileExists(path) {
		t.Fatalf("expected %s to be absent", path)
	}
	if err := WriteJSONFileAtomic(path, map[string]int{"a": 1}, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "{\"a\":1}\n" {
		t.Fatalf("content=%q", string(b))
	}

	if err := WriteJSONFileAtomic(path, map[string]int{"a": 2}, true); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	b, _ = os.ReadFile(path)
	if !strings.Contains(string(b), "\n  \"a\": 2") {
		t.Fatalf("expected indented output, got %q", string(b))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestWriteFileAtomicSameDirKeepsBytes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "note.summary.md")
	if err := WriteFileAtomicSameDir(path, []byte("CC: foot pain"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "CC: foot pain" {
		t.Fatalf("content=%q", string(b))
	}
	if !FileExists(path) {
		t.Fatalf("FileExists=false after write")
	}
}

func TestDecodeModelJSON(t *testing.T) {
	t.Parallel()

	type out struct {
		Name string `json:"name"`
	}

	var v out
	if err := DecodeModelJSON("  {\"name\":\"a\"}\n", &v); err != nil || v.Name != "a" {
		t.Fatalf("plain: v=%+v err=%v", v, err)
	}

	v = out{}
	if err := DecodeModelJSON("Here you go:\n{\"name\":\"b\"}\nThanks", &v); err != nil || v.Name != "b" {
		t.Fatalf("wrapped: v=%+v err=%v", v, err)
	}

	v = out{}
	if err := DecodeModelJSON("```json\n{\"name\":\"c\"}\n```", &v); err != nil || v.Name != "c" {
		t.Fatalf("fenced: v=%+v err=%v", v, err)
	}

	if err := DecodeModelJSON(`{"name":"d"`, &v); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("truncated: err=%v, want io.ErrUnexpectedEOF", err)
	}

	if err := DecodeModelJSON("   ", &v); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("empty: err=%v, want io.ErrUnexpectedEOF", err)
	}

	if err := DecodeModelJSON("no json here", &v); err == nil {
		t.Fatalf("expected error for text without an object")
	}

	var typeErr *json.UnmarshalTypeError
	if err := DecodeModelJSON(`{"name":7}`, &v); !errors.As(err, &typeErr) {
		t.Fatalf("type mismatch: err=%v, want *json.UnmarshalTypeError", err)
	}
	if typeErr.Field != "name" {
		t.Fatalf("typeErr.Field=%q, want name", typeErr.Field)
	}
}
