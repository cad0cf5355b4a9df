package engine

import (
	"fmt"
	"runtime"
	"sync"

	"recrev/pkg/contract"
)

// 策略 A 的并行路径门槛：两者同时满足才启用并行散射拷贝。
const (
	parallelMinBytes   = 4 << 20 // 4 MiB
	parallelMinRecords = 100
)

// Options: 装配期运行选项。
type Options struct {
	// Workers: 并行拷贝扇出度。<=0 采用 runtime.NumCPU()。
	Workers int
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// allocOutput 分配精确 n 字节的输出缓冲。
// Go 将超限分配暴露为 runtime panic；此处就地回收并转换为 ErrAllocation。
func allocOutput(n int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: output buffer %d bytes: %v", contract.ErrAllocation, n, r)
		}
	}()
	return make([]byte, n), nil
}

// assemble 执行策略 A：新缓冲拷贝。
// 输出缓冲恰为 len(doc) 字节（反转不增删字节）；按逆序记录表
// 将各记录字节段依次拷贝到写游标处。小输入走单趟顺序路径，
// 大输入走无锁并行散射拷贝。
func assemble(doc []byte, recs []contract.Record, opt Options) ([]byte, error) {
	out, err := allocOutput(len(doc))
	if err != nil {
		return nil, err
	}
	if len(doc) >= parallelMinBytes && len(recs) > parallelMinRecords {
		scatterCopy(out, doc, recs, opt.workers())
		return out, nil
	}
	w := 0
	for _, r := range recs {
		w += copy(out[w:], doc[r.Off:r.Off+r.Len])
	}
	return out, nil
}

// scatterCopy 将（已为输出顺序的）记录表切成 N 个连续块，
// 单线程先做块字节长的前缀和，得到每块在输出缓冲中的起始偏移；
// 再从同一次分配上切出互不重叠的可变子切片，一块一个 worker 并发拷贝。
// 块输出区间两两不相交，因此无需任何锁/原子量即正确；
// 唯一共享态是只读的块划分表。fork-join：全部 worker 完成后才返回。
func scatterCopy(out, doc []byte, recs []contract.Record, workers int) {
	if workers > len(recs) {
		workers = len(recs)
	}
	if workers < 2 {
		w := 0
		for _, r := range recs {
			w += copy(out[w:], doc[r.Off:r.Off+r.Len])
		}
		return
	}

	// 块划分：按记录数尽量均分；长度前缀和单线程预计算。
	base := len(recs) / workers
	extra := len(recs) % workers

	var wg sync.WaitGroup
	rest := out
	from := 0
	for i := 0; i < workers; i++ {
		cnt := base
		if i < extra {
			cnt++
		}
		chunk := recs[from : from+cnt]
		from += cnt
		total := 0
		for _, r := range chunk {
			total += r.Len
		}
		sub := rest[:total]
		rest = rest[total:]

		wg.Add(1)
		go func(dst []byte, part []contract.Record) {
			defer wg.Done()
			w := 0
			for _, r := range part {
				w += copy(dst[w:], doc[r.Off:r.Off+r.Len])
			}
		}(sub, chunk)
	}
	wg.Wait()
}
