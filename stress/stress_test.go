package stress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	cfgpkg "recrev/internal/config"
	"recrev/internal/pipeline"
)

// baseConfig 构造可运行的最小配置：fs 读入、字节定位、fs 写出。
func baseConfig(input, outDir string) cfgpkg.Config {
	cfg := cfgpkg.DefaultTemplateConfig()
	cfg.Inputs = []string{input}
	cfg.Components.Reader = "fs"
	cfg.Components.Locator = "byte"
	cfg.Components.Writer = "fs"
	cfg.Logging.Level = "error"
	cfg.Options.Writer = json.RawMessage(fmt.Sprintf(`{"output_dir":%q,"atomic":false,"flat":true}`, outDir))
	return cfg
}

// runPipeline 执行完整流水线。
func runPipeline(cfg cfgpkg.Config) error {
	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		return err
	}
	return pipeline.Run(context.Background(), comp, set, nil)
}

// makeInput 生成超过并行阈值（4 MiB / 100 记录）的行式输入，
// 行长不均匀以打散各分片的字节量。
func makeInput(t *testing.T, path string) []byte {
	t.Helper()
	var buf bytes.Buffer
	for i := 0; buf.Len() < 5<<20; i++ {
		fmt.Fprintf(&buf, "record-%08d-", i)
		buf.Write(bytes.Repeat([]byte{'x'}, i%97))
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("写输入: %v", err)
	}
	return buf.Bytes()
}

// reverseLines 构造期望输出：按行切分（分隔符归属其前记录）后倒序拼接。
func reverseLines(doc []byte) []byte {
	var recs [][]byte
	for len(doc) > 0 {
		i := bytes.IndexByte(doc, '\n')
		if i < 0 {
			recs = append(recs, doc)
			break
		}
		recs = append(recs, doc[:i+1])
		doc = doc[i+1:]
	}
	out := make([]byte, 0)
	for i := len(recs) - 1; i >= 0; i-- {
		out = append(out, recs[i]...)
	}
	return out
}

// TestStress 在不同扇出度下运行流水线并记录延迟统计，同时校验输出逐字节正确。
func TestStress(t *testing.T) {
	if testing.Short() {
		t.Skip("short 模式跳过压力测试")
	}

	dataDir := t.TempDir()
	in := filepath.Join(dataDir, "input.txt")
	doc := makeInput(t, in)
	want := reverseLines(doc)

	levels := []int{1, 4, 8, 16, 32}
	for _, workers := range levels {
		t.Run(fmt.Sprintf("workers_%d", workers), func(t *testing.T) {
			const runs = 5
			successes := 0
			latencies := make([]time.Duration, 0, runs)
			for i := 0; i < runs; i++ {
				outDir := t.TempDir()
				cfg := baseConfig(in, outDir)
				cfg.Workers = workers

				start := time.Now()
				err := runPipeline(cfg)
				dur := time.Since(start)
				if err != nil {
					t.Errorf("run %d: %v", i, err)
					continue
				}
				got, err := os.ReadFile(filepath.Join(outDir, "input.txt"))
				if err != nil {
					t.Errorf("run %d: 读输出: %v", i, err)
					continue
				}
				if !bytes.Equal(got, want) {
					t.Errorf("run %d: 输出与期望不一致（len=%d, want=%d）", i, len(got), len(want))
					continue
				}
				successes++
				latencies = append(latencies, dur)
			}
			if successes == 0 {
				t.Fatalf("全部运行失败")
			}
			sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
			var total time.Duration
			for _, d := range latencies {
				total += d
			}
			avg := total / time.Duration(len(latencies))
			idx := int(math.Ceil(float64(len(latencies))*0.95)) - 1
			if idx < 0 {
				idx = 0
			}
			p95 := latencies[idx]
			t.Logf("扇出%d 成功率%.2f 平均%v 95%%延迟%v", workers, float64(successes)/float64(runs), avg, p95)
		})
	}
}
