package contract

import "errors"

// 引擎/路径相关最小错误分类。
var (
	// ErrPatternInvalid: 正则分隔符编译失败（包装时附带编译器消息与原始模式文本）。
	ErrPatternInvalid = errors.New("pattern invalid")
	// ErrAllocation: 输出缓冲分配失败；整次调用致命，无部分输出。
	ErrAllocation = errors.New("allocation failed")
	// ErrPipeClosed: 下游管道已关闭；按干净终止处理，不作为失败上报。
	ErrPipeClosed = errors.New("pipe closed")
	// ErrPathInvalid: 目标标识映射为无效/越界路径（例如绝对路径或 '..' 逃逸）。
	ErrPathInvalid = errors.New("path invalid")
	// ErrInvariantViolation: 领域不变量违例（通用哨兵）。
	ErrInvariantViolation = errors.New("invariant violation")
)
