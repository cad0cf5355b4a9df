// Package stdout 实现默认 Sink Writer：将装配缓冲按输入顺序
// 连续写到标准输出。单次尽量一笔写出；部分写出续写；
// 下游管道关闭按干净终止上报（ErrPipeClosed），不重试。
package stdout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"recrev/pkg/contract"
)

// Options: 预留占位，标准输出 Writer 无需配置。
type Options struct{}

// Stream 实现 contract.Writer。
type Stream struct {
	mu sync.Mutex
	w  io.Writer
}

// New 创建标准输出 Writer。
func New(opts *Options) *Stream {
	_ = opts
	return &Stream{w: os.Stdout}
}

// NewTo 以指定目标创建（测试与嵌入场景）。
func NewTo(w io.Writer) *Stream { return &Stream{w: w} }

var _ contract.Writer = (*Stream)(nil)

// Write 将整个缓冲写出；id 仅用于诊断，内容按调用顺序拼接。
func (s *Stream) Write(ctx context.Context, id contract.ArtifactID, buf []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(buf) > 0 {
		n, err := s.w.Write(buf)
		buf = buf[n:]
		if err != nil {
			if isPipeClosed(err) {
				return fmt.Errorf("%w: %s", contract.ErrPipeClosed, id)
			}
			return err
		}
	}
	return nil
}

// isPipeClosed: 下游已关闭（EPIPE/已关闭文件）视为干净终止信号。
func isPipeClosed(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
