package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recrev/internal/diag"
	"recrev/internal/engine"
	"recrev/pkg/contract"
)

// - 单点编排：Reader → Engine(Locate/Resolve/Assemble) → Writer，逐文件同步执行；
//   唯一并发点是引擎内部的有界 fork-join 散射拷贝。
// - 首错终止：任一阶段出错即取消并返回该错误；永不暴露部分输出。
// - 管道关闭（ErrPipeClosed）是干净终止：停止遍历、按成功收尾。

// Components 聚合运行所需的原子组件。
type Components struct {
	Reader  contract.Reader
	Locator contract.Locator
	Writer  contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	// Inputs: 输入根（文件/目录或 "-" 表示 STDIN）。
	Inputs []string
	// Mode: 分隔符归属模式。
	Mode contract.Attachment
	// Workers: 引擎并行拷贝扇出度；<=0 采用 CPU 数。
	Workers int
}

// Run 执行完整流程。
// 约束：
// - 组件均为同步实现；文件按 Reader 的稳定顺序处理，输出顺序与输入一致；
// - 文件缓冲为独占所有权，引擎可就地破坏性变换；
// - 所有错误对当次运行终止；ErrPipeClosed 例外，按干净终止返回 nil。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) error {
	if err := sanity(comp, set); err != nil {
		return fmt.Errorf("sanity: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	perFile := func(fileID contract.FileID, doc []byte) error {
		if t := diag.GetTerminal(); t != nil {
			t.FileStart(string(fileID), int64(len(doc)))
		}
		fileStart := time.Now()
		ok := false
		defer func() {
			if t := diag.GetTerminal(); t != nil {
				t.FileFinish(ok, time.Since(fileStart))
			}
		}()

		etimer := (*diag.Timer)(nil)
		if logger != nil {
			etimer = logger.StartWith("engine", "reverse", string(fileID))
		}
		out, err := engine.ReverseOwned(ctx, doc, comp.Locator, set.Mode, engine.Options{Workers: set.Workers})
		if err != nil {
			if logger != nil {
				code := diag.Classify(err)
				logger.ErrorWith("engine", string(code), "reverse failed", nil, string(fileID))
				diag.IncOp("engine", "error", "error")
				if code != diag.CodeUnknown {
					diag.IncError("engine", string(code))
				}
			}
			return fmt.Errorf("engine reverse: %w", err)
		}
		if etimer != nil {
			etimer.Finish("reverse", int64(len(out)))
			diag.IncOp("engine", "finish", "success")
		}

		wtimer := (*diag.Timer)(nil)
		if logger != nil {
			wtimer = logger.StartWith("writer", "write", string(fileID))
		}
		if werr := comp.Writer.Write(ctx, contract.ArtifactID(fileID), out); werr != nil {
			if errors.Is(werr, contract.ErrPipeClosed) {
				// 下游关闭：干净终止，不按失败上报。
				if logger != nil {
					logger.StartWith("writer", "pipe closed, stopping", string(fileID)).Finish("stop", 0)
				}
				ok = true
				return werr
			}
			if logger != nil {
				code := diag.Classify(werr)
				logger.ErrorWith("writer", string(code), "write failed", nil, string(fileID))
				diag.IncOp("writer", "error", "error")
				if code != diag.CodeUnknown {
					diag.IncError("writer", string(code))
				}
			}
			return fmt.Errorf("writer write: %w", werr)
		}
		if wtimer != nil {
			wtimer.Finish("write", int64(len(out)))
			diag.IncOp("writer", "finish", "success")
		}
		ok = true
		return nil
	}

	if err := comp.Reader.Iterate(ctx, set.Inputs, perFile); err != nil {
		if errors.Is(err, contract.ErrPipeClosed) {
			return nil
		}
		return err
	}
	return nil
}

func sanity(comp Components, set Settings) error {
	if comp.Reader == nil {
		return errors.New("reader is nil")
	}
	if comp.Locator == nil {
		return errors.New("locator is nil")
	}
	if comp.Writer == nil {
		return errors.New("writer is nil")
	}
	if set.Mode != contract.AttachAfter && set.Mode != contract.AttachBefore {
		return errors.New("invalid attachment mode")
	}
	return nil
}
