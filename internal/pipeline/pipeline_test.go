package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"recrev/pkg/contract"
	"recrev/plugins/locator/bytescan"
	rfs "recrev/plugins/reader/filesystem"
	"recrev/plugins/writer/stdout"
)

func byteLocator(t *testing.T, sep string) contract.Locator {
	t.Helper()
	loc, err := bytescan.NewByte(&bytescan.Options{Separator: sep})
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func TestRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "b.txt"), []byte("tail"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	comp := Components{
		Reader:  rfs.New(nil),
		Locator: byteLocator(t, "\n"),
		Writer:  stdout.NewTo(&out),
	}
	set := Settings{Inputs: []string{root}, Mode: contract.AttachAfter}

	if err := Run(context.Background(), comp, set, nil); err != nil {
		t.Fatal(err)
	}
	// 文件按字典序处理，每个文件独立反转后顺序拼接。
	want := "three\ntwo\none\ntail"
	if got := out.String(); got != want {
		t.Errorf("输出 = %q, 期望 %q", got, want)
	}
}

func TestRunBeforeMode(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "doc.txt")
	if err := os.WriteFile(p, []byte("aaa\nbbb\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	comp := Components{Reader: rfs.New(nil), Locator: byteLocator(t, "\n"), Writer: stdout.NewTo(&out)}
	set := Settings{Inputs: []string{p}, Mode: contract.AttachBefore}

	if err := Run(context.Background(), comp, set, nil); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "\n\nbbbaaa" {
		t.Errorf("输出 = %q, 期望 %q", got, "\n\nbbbaaa")
	}
}

func TestRunSanity(t *testing.T) {
	good := Components{Reader: rfs.New(nil), Locator: byteLocator(t, "\n"), Writer: stdout.NewTo(&bytes.Buffer{})}
	cases := []struct {
		name string
		comp Components
		set  Settings
	}{
		{"nil reader", Components{Locator: good.Locator, Writer: good.Writer}, Settings{Mode: contract.AttachAfter}},
		{"nil locator", Components{Reader: good.Reader, Writer: good.Writer}, Settings{Mode: contract.AttachAfter}},
		{"nil writer", Components{Reader: good.Reader, Locator: good.Locator}, Settings{Mode: contract.AttachAfter}},
		{"bad mode", good, Settings{Mode: contract.Attachment(99)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Run(context.Background(), tc.comp, tc.set, nil); err == nil {
				t.Fatal("期望 sanity 报错")
			}
		})
	}
}

// pipeWriter 在第 failAt 次调用时报管道关闭。
type pipeWriter struct {
	calls  int
	failAt int
}

func (p *pipeWriter) Write(ctx context.Context, id contract.ArtifactID, buf []byte) error {
	p.calls++
	if p.calls >= p.failAt {
		return fmt.Errorf("%w: %s", contract.ErrPipeClosed, id)
	}
	return nil
}

func TestRunPipeClosedIsClean(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w := &pipeWriter{failAt: 2}
	comp := Components{Reader: rfs.New(nil), Locator: byteLocator(t, "\n"), Writer: w}
	set := Settings{Inputs: []string{root}, Mode: contract.AttachAfter}

	if err := Run(context.Background(), comp, set, nil); err != nil {
		t.Fatalf("管道关闭应按干净终止返回 nil, got %v", err)
	}
	if w.calls != 2 {
		t.Errorf("写调用次数 = %d, 期望首次 EPIPE 即停", w.calls)
	}
}

// failWriter 总是返回普通 IO 错误。
type failWriter struct{ err error }

func (f *failWriter) Write(context.Context, contract.ArtifactID, []byte) error { return f.err }

func TestRunWriterErrorPropagates(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cause := errors.New("disk full")
	comp := Components{Reader: rfs.New(nil), Locator: byteLocator(t, "\n"), Writer: &failWriter{err: cause}}
	set := Settings{Inputs: []string{root}, Mode: contract.AttachAfter}

	err := Run(context.Background(), comp, set, nil)
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, 期望包裹 %v", err, cause)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	comp := Components{Reader: rfs.New(nil), Locator: byteLocator(t, "\n"), Writer: stdout.NewTo(&bytes.Buffer{})}
	set := Settings{Inputs: []string{t.TempDir()}, Mode: contract.AttachAfter}
	if err := Run(ctx, comp, set, nil); err == nil {
		t.Fatal("取消后期望报错")
	}
}
