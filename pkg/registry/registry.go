package registry

import (
	"bytes"
	"encoding/json"

	"recrev/pkg/contract"
	lbs "recrev/plugins/locator/bytescan"
	lre "recrev/plugins/locator/regex"
	rfs "recrev/plugins/reader/filesystem"
	wfs "recrev/plugins/writer/filesystem"
	wso "recrev/plugins/writer/stdout"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewLocator 工厂签名：接收原样 JSON Options。
type NewLocator func(raw json.RawMessage) (contract.Locator, error)

// NewReader 工厂签名：接收原样 JSON Options。
type NewReader func(raw json.RawMessage) (contract.Reader, error)

// NewWriter 工厂签名：接收原样 JSON Options。
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// Locator 工厂注册表（显式、零反射）。
var Locator = map[string]NewLocator{
	// byte: 单字节分隔符
	"byte": func(raw json.RawMessage) (contract.Locator, error) {
		var opts lbs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return lbs.NewByte(&opts)
	},
	// literal: 多字节字面量分隔符
	"literal": func(raw json.RawMessage) (contract.Locator, error) {
		var opts lbs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return lbs.NewLiteral(&opts)
	},
	// regex: 后向正则分隔符
	"regex": func(raw json.RawMessage) (contract.Locator, error) {
		var opts lre.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return lre.New(&opts)
	},
}

// Reader 工厂注册表。
var Reader = map[string]NewReader{
	// fs: 文件系统/STDIN Reader
	"fs": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// stdout: 标准输出（默认，tac 语义）
	"stdout": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wso.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wso.New(&opts), nil
	},
	// fs: 每输入文件一个输出工件
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts)
	},
}
