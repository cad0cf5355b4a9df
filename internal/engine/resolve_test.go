package engine

import (
	"testing"

	"recrev/pkg/contract"
)

func spansOf(pairs ...int) []contract.Span {
	out := make([]contract.Span, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, contract.Span{Start: pairs[i], End: pairs[i+1]})
	}
	return out
}

// checkPartition 校验记录恰好划分 [0,n)：无缝隙、无重叠、覆盖全域。
func checkPartition(t *testing.T, recs []contract.Record, n int) {
	t.Helper()
	total := 0
	seen := make([]bool, n)
	for _, r := range recs {
		if r.Len <= 0 {
			t.Fatalf("零长记录: %+v", r)
		}
		for i := r.Off; i < r.Off+r.Len; i++ {
			if seen[i] {
				t.Fatalf("字节 %d 被多条记录覆盖", i)
			}
			seen[i] = true
		}
		total += r.Len
	}
	if total != n {
		t.Fatalf("覆盖字节 %d != 文档长度 %d", total, n)
	}
}

func TestResolveAfter(t *testing.T) {
	// "one\ntwo\nthree\n": 分隔符位于 3,7,13
	recs := Resolve(spansOf(3, 4, 7, 8, 13, 14), contract.AttachAfter, 14)
	want := []contract.Record{{Off: 8, Len: 6}, {Off: 4, Len: 4}, {Off: 0, Len: 4}}
	if len(recs) != len(want) {
		t.Fatalf("记录数: %d, want %d", len(recs), len(want))
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Fatalf("recs[%d] = %+v, want %+v", i, recs[i], want[i])
		}
	}
	checkPartition(t, recs, 14)
}

func TestResolveAfterTrailingBytes(t *testing.T) {
	// "aaa\nbbb": 尾部无分隔符字节构成一条独立终记录。
	recs := Resolve(spansOf(3, 4), contract.AttachAfter, 7)
	want := []contract.Record{{Off: 4, Len: 3}, {Off: 0, Len: 4}}
	for i := range want {
		if recs[i] != want[i] {
			t.Fatalf("recs[%d] = %+v, want %+v", i, recs[i], want[i])
		}
	}
	checkPartition(t, recs, 7)
}

func TestResolveBefore(t *testing.T) {
	// "aaa\nbbb\n": Before 模式，首 Span 前的字节构成首记录。
	recs := Resolve(spansOf(3, 4, 7, 8), contract.AttachBefore, 8)
	want := []contract.Record{{Off: 7, Len: 1}, {Off: 3, Len: 4}, {Off: 0, Len: 3}}
	for i := range want {
		if recs[i] != want[i] {
			t.Fatalf("recs[%d] = %+v, want %+v", i, recs[i], want[i])
		}
	}
	checkPartition(t, recs, 8)
}

func TestResolveBeforeLeadingSpan(t *testing.T) {
	// 文档以分隔符开头：无首记录。
	recs := Resolve(spansOf(0, 1, 4, 5), contract.AttachBefore, 8)
	checkPartition(t, recs, 8)
	if len(recs) != 2 {
		t.Fatalf("记录数: %d, want 2", len(recs))
	}
	// 逆序：末记录在前。
	if recs[0] != (contract.Record{Off: 4, Len: 4}) || recs[1] != (contract.Record{Off: 0, Len: 4}) {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestResolveEmptySpans(t *testing.T) {
	recs := Resolve(nil, contract.AttachAfter, 9)
	if len(recs) != 1 || recs[0] != (contract.Record{Off: 0, Len: 9}) {
		t.Fatalf("恒等变换应返回单条全域记录: %+v", recs)
	}
	if got := Resolve(nil, contract.AttachAfter, 0); got != nil {
		t.Fatalf("空文档应返回 nil: %+v", got)
	}
}

// 多字节分隔符跨度的划分完整性。
func TestResolveMultiByteSpans(t *testing.T) {
	// "aXYbXYcXY": XY 位于 1-3, 4-6, 7-9
	recs := Resolve(spansOf(1, 3, 4, 6, 7, 9), contract.AttachAfter, 9)
	want := []contract.Record{{Off: 6, Len: 3}, {Off: 3, Len: 3}, {Off: 0, Len: 3}}
	for i := range want {
		if recs[i] != want[i] {
			t.Fatalf("recs[%d] = %+v, want %+v", i, recs[i], want[i])
		}
	}
	checkPartition(t, recs, 9)
}
