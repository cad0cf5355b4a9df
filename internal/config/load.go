package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
)

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	return Config{
		Separator: "\n",
		Workers:   0,
		Components: Components{
			Reader: "fs",
			Writer: "stdout",
			// Locator 缺省不固定名：由 Separator/Regex 推导（见 EffectiveLocator）。
		},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/原样 JSON 为“替换”；不做深度合并。
func Merge(base, over Config) Config {
	out := base
	// 顶层
	if len(over.Inputs) > 0 {
		out.Inputs = cloneStrings(over.Inputs)
	}
	if over.Separator != "" {
		out.Separator = over.Separator
	}
	// Regex/Before 的 false 具有语义，使用指针区分“未设置”与“显式 false”。
	if over.Regex != nil {
		out.Regex = over.Regex
	}
	if over.Before != nil {
		out.Before = over.Before
	}
	if over.Workers != 0 {
		out.Workers = over.Workers
	}
	// Logging（仅 level）
	if strings.TrimSpace(over.Logging.Level) != "" {
		out.Logging.Level = strings.TrimSpace(over.Logging.Level)
	}

	// 组件名（空不覆盖）
	if over.Components.Reader != "" {
		out.Components.Reader = over.Components.Reader
	}
	if over.Components.Locator != "" {
		out.Components.Locator = over.Components.Locator
	}
	if over.Components.Writer != "" {
		out.Components.Writer = over.Components.Writer
	}

	// Options（完整替换对应键）
	if len(over.Options.Reader) > 0 {
		out.Options.Reader = cloneRaw(over.Options.Reader)
	}
	if len(over.Options.Locator) > 0 {
		out.Options.Locator = cloneRaw(over.Options.Locator)
	}
	if len(over.Options.Writer) > 0 {
		out.Options.Writer = cloneRaw(over.Options.Writer)
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 RECREV_；本集合之外的键忽略。
// 支持：INPUTS, SEPARATOR, REGEX, BEFORE, WORKERS, LOGGING_LEVEL,
// COMPONENTS_{READER,LOCATOR,WRITER}, OPTIONS_{READER,LOCATOR,WRITER}_JSON。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "RECREV_") {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len("RECREV_") {
			continue
		}
		key := kv[:eq]
		val := kv[eq+1:]
		switch strings.TrimPrefix(key, "RECREV_") {
		case "INPUTS":
			if val != "" {
				over.Inputs = splitComma(val)
			}
		case "SEPARATOR":
			over.Separator = val
		case "REGEX":
			if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				over.Regex = &b
			}
		case "BEFORE":
			if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				over.Before = &b
			}
		case "WORKERS":
			if v, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				over.Workers = v
			}
		case "LOGGING_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		case "COMPONENTS_READER":
			over.Components.Reader = strings.TrimSpace(val)
		case "COMPONENTS_LOCATOR":
			over.Components.Locator = strings.TrimSpace(val)
		case "COMPONENTS_WRITER":
			over.Components.Writer = strings.TrimSpace(val)
		case "OPTIONS_READER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.Reader = json.RawMessage(val)
			}
		case "OPTIONS_LOCATOR_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.Locator = json.RawMessage(val)
			}
		case "OPTIONS_WRITER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.Writer = json.RawMessage(val)
			}
		}
	}
	return over, nil
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make(json.RawMessage, len(in))
	copy(out, in)
	return out
}
