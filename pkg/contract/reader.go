package contract

import "context"

// Reader: 输入源抽象（文件/目录/STDIN）。
// 约束：
// 1) 按文件维度回调，顺序稳定；
// 2) FileID 稳定且去平台差异化；
// 3) 每次回调提供该文件的完整字节内容（引擎非流式，装配前整篇驻留内存）；
// 4) yield 获得的缓冲为独占所有权，回调方可破坏性复用；
// 5) 不在内部起并发。
type Reader interface {
	Iterate(ctx context.Context, roots []string, yield func(fileID FileID, doc []byte) error) error
}
