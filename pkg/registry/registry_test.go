package registry

import (
	"encoding/json"
	"testing"
)

func TestLocatorFactories(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"byte", `{"separator":"\n"}`, false},
		{"byte", `{"separator":"ab"}`, true},  // 非单字节
		{"byte", `{"unknown":1}`, true},       // 未知字段
		{"literal", `{"separator":"XY"}`, false},
		{"literal", `{"separator":""}`, true},
		{"regex", `{"pattern":"[0-9]+"}`, false},
		{"regex", `{"pattern":"["}`, true},
		{"regex", ``, true}, // 零值选项 = 空模式
	}
	for _, tc := range cases {
		factory, ok := Locator[tc.name]
		if !ok {
			t.Fatalf("未注册: %s", tc.name)
		}
		_, err := factory(json.RawMessage(tc.raw))
		if (err != nil) != tc.wantErr {
			t.Errorf("Locator[%s](%s): err = %v, wantErr = %v", tc.name, tc.raw, err, tc.wantErr)
		}
	}
}

func TestReaderFactories(t *testing.T) {
	factory := Reader["fs"]
	if factory == nil {
		t.Fatal("未注册: fs")
	}
	if _, err := factory(nil); err != nil {
		t.Errorf("零值选项应可用: %v", err)
	}
	if _, err := factory(json.RawMessage(`{"exclude_dir_names":[".git"],"max_file_bytes":1024}`)); err != nil {
		t.Errorf("合法选项: %v", err)
	}
	if _, err := factory(json.RawMessage(`{"bogus":true}`)); err == nil {
		t.Error("未知字段应被拒绝")
	}
}

func TestWriterFactories(t *testing.T) {
	if _, err := Writer["stdout"](nil); err != nil {
		t.Errorf("stdout 零值选项应可用: %v", err)
	}
	if _, err := Writer["fs"](json.RawMessage(`{"output_dir":"out"}`)); err != nil {
		t.Errorf("fs 合法选项: %v", err)
	}
	if _, err := Writer["fs"](nil); err == nil {
		t.Error("fs 缺 output_dir 应报错")
	}
	if _, err := Writer["stdout"](json.RawMessage(`{"x":1}`)); err == nil {
		t.Error("未知字段应被拒绝")
	}
}

func TestStrictUnmarshalEmpty(t *testing.T) {
	var v struct{ A int }
	if err := strictUnmarshal(nil, &v); err != nil {
		t.Fatalf("空 raw 应保持零值: %v", err)
	}
	if v.A != 0 {
		t.Errorf("A = %d, 期望 0", v.A)
	}
}
