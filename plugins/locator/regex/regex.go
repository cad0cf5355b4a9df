// Package regex 实现正则分隔符的后向定位器。
//
// 外显语义（必须精确复现）：以未消费前缀（初始为全文档）的末尾为起点，
// 自右向左逐位置探测；在（后向扫描的）第一个恰好锚定匹配成功的位置 p
// 记录该匹配，将未消费前缀收缩为 [0, p)，重复直至剩余前缀内无匹配。
// 这给出“每个未消费前缀内起点最右”的匹配——与朴素正向扫描在候选匹配
// 重叠时的平局裁决不同（如数字类模式对 "12"：后向先命中位置 1 的 '2'）。
// 按相遇序（自右向左）收集后整体反转为文档升序。
//
// 后向收缩前缀扫描以显式状态机表达（rem 单调不增），
// 不依赖任何正则引擎的正向最左优先默认。
package regex

import (
	"context"
	"fmt"

	coregex "github.com/coregx/coregex"

	"recrev/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// Pattern: 字节正则模式（非 Unicode 文本语义）。
	Pattern string `json:"pattern"`
}

// Backward 实现收缩前缀的后向正则定位。
type Backward struct {
	re      *coregex.Regex
	pattern string
}

// New 编译模式并创建定位器。
// 编译失败返回 ErrPatternInvalid，附带编译器消息与原始模式文本；
// 对整次调用致命，无部分输出。
func New(opts *Options) (*Backward, error) {
	if opts == nil || opts.Pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", contract.ErrPatternInvalid)
	}
	// \A 锚定：FindIndex 命中即表示“恰在探测位置起匹配”。
	re, err := coregex.Compile(`\A(?:` + opts.Pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", contract.ErrPatternInvalid, opts.Pattern, err)
	}
	return &Backward{re: re, pattern: opts.Pattern}, nil
}

var _ contract.Locator = (*Backward)(nil)

// Pattern 返回原始模式文本（日志/诊断用）。
func (b *Backward) Pattern() string { return b.pattern }

// Locate 返回升序匹配区间。
// 零长匹配策略：锚定匹配长度为 0 时视为该位置无匹配，继续左移一字节，
// 保证终止且永不产生空分隔符区间。
func (b *Backward) Locate(ctx context.Context, doc []byte) ([]contract.Span, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var spans []contract.Span
	rem := len(doc) // 未消费前缀终点；单调不增
	for rem > 0 {
		found := false
		for p := rem - 1; p >= 0; p-- {
			loc := b.re.FindIndex(doc[p:rem])
			if loc == nil || loc[1] == 0 {
				continue
			}
			spans = append(spans, contract.Span{Start: p, End: p + loc[1]})
			rem = p
			found = true
			break
		}
		if !found {
			break
		}
	}

	// 相遇序为自右向左；反转为文档升序。
	for i, j := 0, len(spans)-1; i < j; i, j = i+1, j-1 {
		spans[i], spans[j] = spans[j], spans[i]
	}
	return spans, nil
}
