package engine

import (
	"context"

	"recrev/pkg/contract"
)

// Reverse 反转文档内记录顺序，记录自身字节保持不动。
// 流程：Locate → Resolve → 策略 A 装配。
// 恒等情形（空文档、无分隔符出现）直接返回原文档，不分配不拷贝。
// 调用后要么完整成功，要么返回单一错误；永不暴露部分输出。
func Reverse(ctx context.Context, doc []byte, loc contract.Locator, mode contract.Attachment, opt Options) ([]byte, error) {
	if len(doc) == 0 {
		return doc, nil
	}
	spans, err := loc.Locate(ctx, doc)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return doc, nil
	}
	return assemble(doc, Resolve(spans, mode, len(doc)), opt)
}

// ReverseOwned 与 Reverse 等价，但缓冲为调用方让渡的独占所有权，
// 满足资格时走策略 B 就地变换（零额外分配），否则回落策略 A。
// 资格：AttachAfter + 定位器声明单字节分隔符 + 缓冲以该字节结尾。
func ReverseOwned(ctx context.Context, buf []byte, loc contract.Locator, mode contract.Attachment, opt Options) ([]byte, error) {
	if mode == contract.AttachAfter && len(buf) > 0 {
		if bs, ok := loc.(contract.ByteSeparator); ok {
			sep := bs.SeparatorByte()
			if buf[len(buf)-1] == sep {
				reverseInPlace(buf, sep)
				return buf, nil
			}
		}
	}
	return Reverse(ctx, buf, loc, mode, opt)
}
