package contract

import "context"

// Locator: 在文档中定位全部分隔符出现位置。
// 约束：
// 1) 返回升序、互不重叠的 Span 列表；
// 2) 无匹配时返回空列表（调用方按恒等变换处理整个文档）；
// 3) 只读扫描，不修改文档；
// 4) 无内部并发、幂等。
type Locator interface {
	Locate(ctx context.Context, doc []byte) ([]Span, error)
}

// ByteSeparator: 单字节分隔符能力（可选接口）。
// 装配器据此判定就地三段反转快路径的资格；
// 仅当分隔符恰为一个字节时实现。
type ByteSeparator interface {
	SeparatorByte() byte
}
