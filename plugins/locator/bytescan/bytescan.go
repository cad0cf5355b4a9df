// Package bytescan 实现单字节与多字节字面量分隔符的定位器：
// 严格从左到右扫描，非重叠、贪婪（先到先得，下一次搜索自上一匹配末尾开始）。
package bytescan

import (
	"bytes"
	"context"
	"errors"

	"github.com/coregx/ahocorasick"

	"recrev/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// Separator: 分隔符字面量。byte 实现要求恰为 1 字节；literal 要求 ≥1 字节。
	Separator string `json:"separator"`
}

// Byte 实现单字节分隔符定位；每个匹配长度为 1。
type Byte struct {
	sep byte
}

// NewByte 创建单字节定位器。
func NewByte(opts *Options) (*Byte, error) {
	if opts == nil || len(opts.Separator) != 1 {
		return nil, errors.New("bytescan: byte separator must be exactly 1 byte")
	}
	return &Byte{sep: opts.Separator[0]}, nil
}

var (
	_ contract.Locator       = (*Byte)(nil)
	_ contract.ByteSeparator = (*Byte)(nil)
)

// SeparatorByte 暴露单字节能力（装配器据此判定就地快路径资格）。
func (b *Byte) SeparatorByte() byte { return b.sep }

// Locate 返回升序匹配区间；无匹配返回空列表。
func (b *Byte) Locate(ctx context.Context, doc []byte) ([]contract.Span, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	var spans []contract.Span
	for from := 0; from < len(doc); {
		i := bytes.IndexByte(doc[from:], b.sep)
		if i < 0 {
			break
		}
		at := from + i
		spans = append(spans, contract.Span{Start: at, End: at + 1})
		from = at + 1
	}
	return spans, nil
}

// Literal 实现多字节字面量定位；底层使用 Aho-Corasick 自动机做子串搜索。
// 重叠出现不被允许：下一次匹配自上一匹配末尾之后恢复。
type Literal struct {
	pat  []byte
	auto *ahocorasick.Automaton
}

// NewLiteral 创建字面量定位器（编译自动机）。
func NewLiteral(opts *Options) (*Literal, error) {
	if opts == nil || len(opts.Separator) == 0 {
		return nil, errors.New("bytescan: literal separator must be non-empty")
	}
	b := ahocorasick.NewBuilder()
	b.AddPattern([]byte(opts.Separator))
	auto, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Literal{pat: []byte(opts.Separator), auto: auto}, nil
}

var _ contract.Locator = (*Literal)(nil)

// Locate 返回升序、非重叠的匹配区间。
func (l *Literal) Locate(ctx context.Context, doc []byte) ([]contract.Span, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	var spans []contract.Span
	for at := 0; at+len(l.pat) <= len(doc); {
		m := l.auto.Find(doc, at)
		if m == nil {
			break
		}
		spans = append(spans, contract.Span{Start: m.Start, End: m.End})
		at = m.End
	}
	return spans, nil
}
