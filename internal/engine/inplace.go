package engine

// 策略 B：就地三段反转。仅在 AttachAfter + 单字节分隔符 +
// 文档以该分隔符字节结尾 + 调用方独占可变缓冲时启用。
// 结果与策略 A 字节级一致；存在意义仅是避免第二次全尺寸分配。

// reverseInPlace 对独占缓冲执行破坏性记录反转：
//  1. 整缓冲逐字节反转（尾部分隔符移动到下标 0）；
//  2. 左旋一位（把下标 0 的分隔符挪回末尾），分隔符恢复原相对位置，
//     但每条记录的内部字节仍处于反转态；
//  3. 重扫分隔符位置，对每个记录段（分隔符之间的内容段，含可能的
//     无分隔符尾段）再就地反转一次，抵消第 1 步的记录内反转。
// O(1) 额外空间，不分配。
func reverseInPlace(buf []byte, sep byte) {
	n := len(buf)
	if n < 2 {
		return
	}

	reverseRange(buf)

	// 左旋一位。
	first := buf[0]
	copy(buf, buf[1:])
	buf[n-1] = first

	start := 0
	for i := 0; i < n; i++ {
		if buf[i] == sep {
			reverseRange(buf[start:i])
			start = i + 1
		}
	}
	if start < n {
		reverseRange(buf[start:])
	}
}

func reverseRange(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
