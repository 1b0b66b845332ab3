package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 包装 time.Duration，使其在 JSON 中可读可写
//
// JSON 中既可写 "30s"、"1h30m" 这类 time.ParseDuration 字符串，
// 也可写纳秒整数；序列化统一输出字符串形式。
//
//	type Config struct {
//	    ReportInterval Duration `json:"report_interval"`
//	}
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler
//
// 按首字节区分两种形式: 引号开头走时长字符串解析，否则按纳秒整数。
func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration string %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}

	var ns int64
	if err := json.Unmarshal(data, &ns); err != nil {
		return fmt.Errorf("duration must be a string (e.g. \"30s\") or nanosecond count")
	}
	*d = Duration(ns)
	return nil
}

// MarshalJSON 实现 json.Marshaler，输出时长字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Duration 返回底层的 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String 返回 time.Duration 形式的字符串
func (d Duration) String() string {
	return time.Duration(d).String()
}
