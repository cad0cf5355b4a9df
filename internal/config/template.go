package config

import "encoding/json"

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - 默认输入为 STDIN（"-"），Writer 输出到标准输出；
// - 单字节换行分隔符、After 归属（经典 tac 语义）；
// - 组件名采用仓库内置实现；选项给出安全中性默认值。
func DefaultTemplateConfig() Config {
	d := Defaults()
	f := false
	cfg := Config{
		Inputs:     []string{"-"},
		Separator:  d.Separator,
		Regex:      &f,
		Before:     &f,
		Workers:    d.Workers,
		Logging:    Logging{Level: "info"},
		Components: Components{Reader: d.Components.Reader, Locator: "byte", Writer: d.Components.Writer},
		Options: Options{
			Reader: json.RawMessage(`{"exclude_dir_names":[".git","node_modules","vendor"],"max_file_bytes":0}`),
			Writer: json.RawMessage(`{}`),
		},
	}
	return cfg
}
