package diag

import (
	"context"
	"errors"
	"os"
	"time"

	"recrev/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown   Code = "unknown"
	CodePattern   Code = "pattern"
	CodeAlloc     Code = "alloc"
	CodeInvariant Code = "invariant"
	CodePipe      Code = "pipe"
	CodeCancel    Code = "cancel"
	CodeIO        Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	// 正则编译
	if errors.Is(err, contract.ErrPatternInvalid) {
		return CodePattern
	}
	// 分配
	if errors.Is(err, contract.ErrAllocation) {
		return CodeAlloc
	}
	// 管道关闭（干净终止）
	if errors.Is(err, contract.ErrPipeClosed) {
		return CodePipe
	}
	// 不变量
	if errors.Is(err, contract.ErrInvariantViolation) ||
		errors.Is(err, contract.ErrPathInvalid) {
		return CodeInvariant
	}
	// I/O
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// NowUTC 返回 RFC3339 UTC 时间字符串（用于结构化日志字段 ts）。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
