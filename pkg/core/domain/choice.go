package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Choice is a select-dropdown value. The CMS sends {"key","value"} pairs, but
// seeds and older objects may carry the bare key.
type Choice[T ~string] struct {
	Key   T      `json:"key"`
	Value string `json:"value"`
}

func (c *Choice[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var key string
		if err := json.Unmarshal(data, &key); err != nil {
			return err
		}
		*c = Choice[T]{Key: T(key)}
		return nil
	}
	var decoded struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*c = Choice[T]{Key: T(decoded.Key), Value: decoded.Value}
	return nil
}

// Label returns the display value, deriving one from the key when the CMS
// did not send it.
func (c Choice[T]) Label() string {
	if c.Value != "" {
		return c.Value
	}
	return KeyLabel(string(c.Key))
}

// KeyLabel turns a snake_case key into a title-cased label.
func KeyLabel(key string) string {
	if key == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

func isJSONObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

func isJSONString(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '"'
}
