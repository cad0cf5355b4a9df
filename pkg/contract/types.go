package contract

// FileID: 逻辑文档ID（通常为路径，需规范化，跨平台一致）。
type FileID string

// Span: 单个分隔符出现位置的字节区间 [Start, End)。
// 约束：
// - Start < End（分隔符出现非空）；
// - 同一文档内的 Span 互不重叠；
// - 列表按文档正向升序给出。
type Span struct {
	Start int
	End   int
}

// Record: 文档内的非拥有视图 (Off, Len)。
// 约束：全部 Record 恰好划分 [0, len(doc))，无缝隙、无重叠；
// 每个字节恰好属于一个 Record。Record 内部字节顺序永不改变。
type Record struct {
	Off int
	Len int
}

// Attachment: 分隔符归属模式。
type Attachment int

const (
	// AttachAfter: 分隔符是其所终结记录的后缀（经典“行以 \n 结尾”）。
	AttachAfter Attachment = iota
	// AttachBefore: 分隔符是其所引入记录的前缀。
	AttachBefore
)

func (a Attachment) String() string {
	if a == AttachBefore {
		return "before"
	}
	return "after"
}
