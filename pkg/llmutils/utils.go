package llmutils

import (
	"bytes"
	"encoding/json"
	"strings"
)

// CleanJSON returns the JSON document embedded in a model reply.
// Models tend to wrap tool arguments, like
// "Sure, here you go: ```json {...} ```",
// so everything before the first opening and after the last closing
// brace or bracket is dropped.
func CleanJSON(bs []byte) []byte {
	start := bytes.IndexAny(bs, "{[")
	if start == -1 {
		return bs
	}
	bs = bs[start:]

	end := bytes.LastIndexAny(bs, "}]")
	if end == -1 {
		return bs
	}
	return bs[:end+1]
}

var backtick = []byte("```")

// TrimBackticks removes a ```json or ``` fence around the content
func TrimBackticks(text string) string {
	bs := []byte(text)
	start := bytes.Index(bs, backtick)
	if start == -1 {
		return text
	}
	bs = bs[start+len(backtick):]

	// skip the language tag, if any
	if nl := bytes.IndexByte(bs, '\n'); nl != -1 && bytes.IndexAny(bs[:nl], "{[") == -1 {
		bs = bs[nl+1:]
	}

	if end := bytes.LastIndex(bs, backtick); end != -1 {
		bs = bs[:end]
	}
	return string(bytes.TrimSpace(bs))
}

func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

func ToJSONIndent(val any) string {
	js, _ := json.MarshalIndent(val, "", "\t")
	return string(js)
}

func BackticksJSON(js string) string {
	return "\n```json\n" + strings.TrimSpace(js) + "\n```\n"
}

type Stringer interface {
	String() string
}

// Stringify returns a human readable form of the value
func Stringify(v any) string {
	switch s := v.(type) {
	case Stringer:
		return s.String()
	case string:
		return s
	}
	return BackticksJSON(ToJSONIndent(v))
}
