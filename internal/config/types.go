package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON 使用 snake_case；未知字段在解析期失败。
type Config struct {
	// Inputs: 输入根（文件/目录或 "-" 表示 STDIN）。空表示 STDIN。
	Inputs []string `json:"inputs"`
	// Separator: 分隔符字面量（或 Regex 生效时的模式文本）。空采用默认 "\n"。
	Separator string `json:"separator"`
	// Regex: 将 Separator 解释为字节正则模式。nil 表示未设置（不覆盖）。
	Regex *bool `json:"regex,omitempty"`
	// Before: 分隔符归属其后记录（AttachBefore）。nil 表示未设置（不覆盖）。
	Before *bool `json:"before,omitempty"`
	// Workers: 引擎并行拷贝扇出度；0 表示自动（CPU 数）。
	Workers int     `json:"workers"`
	Logging Logging `json:"logging"`

	// 组件名选择（空则按 Separator/Regex 推导或使用默认名）。
	Components Components `json:"components"`

	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Logging: 仅保留日志等级可配置；输出路径与轮转策略为固定默认。
type Logging struct {
	Level string `json:"level"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Reader  string `json:"reader"`
	Locator string `json:"locator"`
	Writer  string `json:"writer"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	Reader  json.RawMessage `json:"reader"`
	Locator json.RawMessage `json:"locator"`
	Writer  json.RawMessage `json:"writer"`
}
