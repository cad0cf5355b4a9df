// Package engine 实现记录反转核心：边界解析与缓冲装配。
// 引擎是纯函数边界：输入文档 + 分隔符定位器 + 归属模式，输出装配完成的缓冲。
package engine

import (
	"recrev/pkg/contract"
)

// Resolve 将升序 Span 列表与归属模式转换为逆序 Record 列表。
// 产出约束：
// - Record 恰好划分 [0, n)，无缝隙、无重叠；
// - 列表顺序为输出顺序（文档末记录在前）；Record 内容永不重排。
// 模式语义：
// - AttachAfter: 第 i 条记录自上一 Span 末尾（或 0）延伸到第 i 个 Span 末尾（含）；
//   最后一个 Span 之后的尾部字节构成一条无分隔符的终记录。
// - AttachBefore: 第 i 条记录自第 i 个 Span 起点延伸到第 i+1 个 Span 起点（不含）；
//   首个 Span 之前的字节构成一条无分隔符的首记录。
// 边界：Span 为空时返回覆盖全文档的单条记录（恒等变换）。
func Resolve(spans []contract.Span, mode contract.Attachment, n int) []contract.Record {
	if n == 0 {
		return nil
	}
	if len(spans) == 0 {
		return []contract.Record{{Off: 0, Len: n}}
	}

	recs := make([]contract.Record, 0, len(spans)+1)
	switch mode {
	case contract.AttachBefore:
		if spans[0].Start > 0 {
			recs = append(recs, contract.Record{Off: 0, Len: spans[0].Start})
		}
		for i := range spans {
			end := n
			if i+1 < len(spans) {
				end = spans[i+1].Start
			}
			recs = append(recs, contract.Record{Off: spans[i].Start, Len: end - spans[i].Start})
		}
	default: // AttachAfter
		prev := 0
		for _, s := range spans {
			recs = append(recs, contract.Record{Off: prev, Len: s.End - prev})
			prev = s.End
		}
		if prev < n {
			recs = append(recs, contract.Record{Off: prev, Len: n - prev})
		}
	}

	// 反转为输出顺序：末记录在前。
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs
}
