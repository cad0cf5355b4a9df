// Package filesystem 实现基于文件系统与 STDIN 的 Reader。
// 引擎非流式：每个文件的完整内容一次读入内存，作为独占缓冲交给回调，
// 回调方（装配器就地快路径）可破坏性复用该缓冲。
package filesystem

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"recrev/pkg/contract"
)

// Options 为 FileSystem Reader 的可选配置（最小必要）。
type Options struct {
	// ExcludeDirNames: 在扫描目录时跳过这些目录名（基名完全匹配，大小写不敏感）。
	// 例如 [".git","node_modules","vendor"]。仅影响目录递归，不影响单文件 root。
	ExcludeDirNames []string `json:"exclude_dir_names"`
	// MaxFileBytes: 单文件字节上限；>0 时超限文件直接报错（避免意外吞掉超大输入）。
	MaxFileBytes int64 `json:"max_file_bytes"`
}

// FileSystem 实现 contract.Reader。
type FileSystem struct {
	excludeDir map[string]struct{}
	maxBytes   int64
}

// New 创建 Reader。
func New(opts *Options) *FileSystem {
	ex := make(map[string]struct{})
	var mb int64
	if opts != nil {
		for _, name := range opts.ExcludeDirNames {
			if name == "" {
				continue
			}
			ex[strings.ToLower(name)] = struct{}{}
		}
		if opts.MaxFileBytes > 0 {
			mb = opts.MaxFileBytes
		}
	}
	return &FileSystem{excludeDir: ex, maxBytes: mb}
}

var _ contract.Reader = (*FileSystem)(nil)

// Iterate 遍历 roots，按稳定顺序对每个常规文件调用 yield。
// 支持 roots 为空或仅包含 "-" 作为 STDIN；"-" 不得与其他根混用。
func (r *FileSystem) Iterate(ctx context.Context, roots []string, yield func(fileID contract.FileID, doc []byte) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if len(roots) == 0 || (len(roots) == 1 && roots[0] == "-") {
		doc, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		return yield(contract.FileID("stdin"), doc)
	}
	for _, s := range roots {
		if s == "-" {
			return errors.New("stdin '-' cannot be mixed with other roots")
		}
	}

	for _, root := range roots {
		if err := r.iterateOne(ctx, root, yield); err != nil {
			return err
		}
	}
	return nil
}

func (r *FileSystem) iterateOne(ctx context.Context, root string, yield func(contract.FileID, []byte) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	info, err := os.Lstat(root)
	if err != nil {
		return err
	}
	// 仅跟随到常规文件的符号链接；目录符号链接不跟随（忽略）。
	if info.Mode()&os.ModeSymlink != 0 {
		t, err := os.Stat(root)
		if err != nil {
			return err
		}
		if !t.Mode().IsRegular() {
			return nil
		}
		return r.yieldFile(root, yield)
	}

	if info.IsDir() {
		return r.walkDir(ctx, root, yield)
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	return r.yieldFile(root, yield)
}

func (r *FileSystem) walkDir(ctx context.Context, dir string, yield func(contract.FileID, []byte) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	// 稳定顺序：字典序。
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	// 先目录（不跟随目录符号链接）。
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, skip := r.excludeDir[strings.ToLower(e.Name())]; skip {
			continue
		}
		if err := r.walkDir(ctx, filepath.Join(dir, e.Name()), yield); err != nil {
			return err
		}
	}
	// 再文件（允许指向常规文件的符号链接）。
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if e.Type()&os.ModeSymlink != 0 {
			t, err := os.Stat(p)
			if err != nil {
				return err
			}
			if !t.Mode().IsRegular() {
				continue
			}
		} else {
			info, err := e.Info()
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				continue
			}
		}
		if err := r.yieldFile(p, yield); err != nil {
			return err
		}
	}
	return nil
}

// yieldFile 整篇读入并回调。读入的缓冲所有权让渡给回调方。
func (r *FileSystem) yieldFile(p string, yield func(contract.FileID, []byte) error) error {
	if r.maxBytes > 0 {
		st, err := os.Stat(p)
		if err != nil {
			return err
		}
		if st.Size() > r.maxBytes {
			return &os.PathError{Op: "read", Path: p, Err: errors.New("file exceeds max_file_bytes")}
		}
	}
	doc, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	return yield(contract.NormalizeFileID(p), doc)
}
