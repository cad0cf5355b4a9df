package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"recrev/internal/pipeline"
	"recrev/pkg/contract"
	"recrev/pkg/registry"
)

// EffectiveLocator 计算生效的定位器名：
// 显式 Components.Locator 优先；否则由 Regex/Separator 推导
// （regex → "regex"，单字节 → "byte"，其余 → "literal"）。
func EffectiveLocator(cfg Config) string {
	if n := strings.TrimSpace(cfg.Components.Locator); n != "" {
		return n
	}
	if cfg.Regex != nil && *cfg.Regex {
		return "regex"
	}
	if len(cfg.Separator) == 1 {
		return "byte"
	}
	return "literal"
}

// EffectiveMode 计算生效的归属模式。
func EffectiveMode(cfg Config) contract.Attachment {
	if cfg.Before != nil && *cfg.Before {
		return contract.AttachBefore
	}
	return contract.AttachAfter
}

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	// 输入路径不得为空字符串；"-" 不能与其他根混用。空列表表示 STDIN。
	dash := false
	for _, r := range cfg.Inputs {
		if strings.TrimSpace(r) == "" {
			return errors.New("config: input path cannot be empty")
		}
		if strings.TrimSpace(r) == "-" {
			dash = true
		}
	}
	if dash && len(cfg.Inputs) > 1 {
		return errors.New("config: '-' cannot be mixed with other roots")
	}
	if cfg.Workers < 0 {
		return errors.New("config: workers must be >= 0")
	}
	if cfg.Separator == "" {
		return errors.New("config: separator must be non-empty")
	}
	ln := EffectiveLocator(cfg)
	if registry.Locator[ln] == nil {
		return fmt.Errorf("config: locator %q not registered", ln)
	}
	if ln == "byte" && len(cfg.Separator) != 1 && len(cfg.Options.Locator) == 0 {
		return fmt.Errorf("config: locator %q requires a 1-byte separator", ln)
	}
	if name := effName(cfg.Components.Reader, Defaults().Components.Reader); registry.Reader[name] == nil {
		return fmt.Errorf("config: reader %q not registered", name)
	}
	if name := effName(cfg.Components.Writer, Defaults().Components.Writer); registry.Writer[name] == nil {
		return fmt.Errorf("config: writer %q not registered", name)
	}
	return nil
}

// Assemble 构造 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
// Locator 的 Options 缺省时由 Separator/Regex 合成。
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	d := Defaults()
	rn := effName(cfg.Components.Reader, d.Components.Reader)
	wn := effName(cfg.Components.Writer, d.Components.Writer)
	ln := EffectiveLocator(cfg)

	locRaw := cfg.Options.Locator
	if len(locRaw) == 0 {
		locRaw = locatorOptions(ln, cfg.Separator)
	}

	r, err := registry.Reader[rn](cfg.Options.Reader)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	loc, err := registry.Locator[ln](locRaw)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	w, err := registry.Writer[wn](cfg.Options.Writer)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	comp := pipeline.Components{Reader: r, Locator: loc, Writer: w}
	set := pipeline.Settings{
		Inputs:  cfg.Inputs,
		Mode:    EffectiveMode(cfg),
		Workers: cfg.Workers,
	}
	return comp, set, nil
}

// locatorOptions 将分隔符文本合成为对应定位器的 raw JSON Options。
func locatorOptions(name, sep string) json.RawMessage {
	if name == "regex" {
		b, _ := json.Marshal(struct {
			Pattern string `json:"pattern"`
		}{Pattern: sep})
		return b
	}
	b, _ := json.Marshal(struct {
		Separator string `json:"separator"`
	}{Separator: sep})
	return b
}

func effName(name, def string) string {
	if strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	return def
}
