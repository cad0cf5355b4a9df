package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"recrev/pkg/contract"
)

func boolp(v bool) *bool { return &v }

func TestNewValidation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil): 期望报错")
	}
	if _, err := New(&Options{OutputDir: "  "}); err == nil {
		t.Error("New(空 output_dir): 期望报错")
	}
	if _, err := New(&Options{OutputDir: t.TempDir()}); err != nil {
		t.Errorf("New(合法): %v", err)
	}
}

func TestWriteFlatDefault(t *testing.T) {
	root := t.TempDir()
	w, err := New(&Options{OutputDir: root})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(context.Background(), "deep/nested/doc.txt", []byte("reversed\n")); err != nil {
		t.Fatal(err)
	}
	// 扁平：仅保留文件名。
	got, err := os.ReadFile(filepath.Join(root, "doc.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "reversed\n" {
		t.Errorf("内容 = %q", got)
	}
}

func TestWritePreserveHierarchy(t *testing.T) {
	root := t.TempDir()
	w, err := New(&Options{OutputDir: root, Flat: boolp(false)})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(context.Background(), "a/b/doc.txt", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "a", "b", "doc.txt")); err != nil {
		t.Errorf("层级未保留: %v", err)
	}
}

func TestWriteRejectsEscape(t *testing.T) {
	root := t.TempDir()
	w, err := New(&Options{OutputDir: root, Flat: boolp(false)})
	if err != nil {
		t.Fatal(err)
	}
	cases := []contract.ArtifactID{
		"..",
		"../escape.txt",
		"a/../../escape.txt",
		"/abs/path.txt",
		".",
		"",
	}
	for _, id := range cases {
		err := w.Write(context.Background(), id, []byte("x"))
		if !errors.Is(err, contract.ErrPathInvalid) {
			t.Errorf("Write(%q): err = %v, 期望 ErrPathInvalid", id, err)
		}
	}
}

func TestWriteFlatRejectsBareDot(t *testing.T) {
	root := t.TempDir()
	w, err := New(&Options{OutputDir: root})
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []contract.ArtifactID{".", "..", ""} {
		if err := w.Write(context.Background(), id, []byte("x")); !errors.Is(err, contract.ErrPathInvalid) {
			t.Errorf("Write(%q): err = %v, 期望 ErrPathInvalid", id, err)
		}
	}
}

func TestWriteAtomicReplacesExisting(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "doc.txt")
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New(&Options{OutputDir: root})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(context.Background(), "doc.txt", []byte("new")); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(dest)
	if string(got) != "new" {
		t.Errorf("内容 = %q, 期望 %q", got, "new")
	}
	// 无临时文件残留。
	ents, _ := os.ReadDir(root)
	for _, e := range ents {
		if e.Name() != "doc.txt" {
			t.Errorf("残留文件: %s", e.Name())
		}
	}
}

func TestWriteNonAtomic(t *testing.T) {
	root := t.TempDir()
	w, err := New(&Options{OutputDir: root, Atomic: boolp(false)})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(context.Background(), "doc.txt", []byte("payload")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(root, "doc.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("内容 = %q", got)
	}
}

func TestWriteEmptyBuffer(t *testing.T) {
	root := t.TempDir()
	w, err := New(&Options{OutputDir: root})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(context.Background(), "empty.txt", nil); err != nil {
		t.Fatal(err)
	}
	st, err := os.Stat(filepath.Join(root, "empty.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() != 0 {
		t.Errorf("大小 = %d, 期望 0", st.Size())
	}
}

func TestWriteCanceled(t *testing.T) {
	root := t.TempDir()
	w, err := New(&Options{OutputDir: root})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Write(ctx, "doc.txt", []byte("x")); err == nil {
		t.Fatal("取消后期望报错")
	}
}
