package contract

import "context"

// ArtifactID: 与 FileID 等价的输出工件标识（语义别名）。
type ArtifactID = FileID

// Writer: 将装配完成的输出缓冲写入目标介质（STDOUT/文件系统）。
// 约束：
//  1. 单次调用尽量一次连续写出整个缓冲；部分写出必须续写直至全部落盘；
//  2. 下游管道关闭（EPIPE）返回 ErrPipeClosed，调用方按干净终止处理，不重试；
//  3. ctx 取消/超时需尽快返回；
//  4. 其余错误直接上抛（不做重试/回退）。
type Writer interface {
	Write(ctx context.Context, id ArtifactID, buf []byte) error
}
