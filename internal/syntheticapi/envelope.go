package syntheticapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Shape identifies which envelope a response body matched.
type Shape int

const (
	// ShapeOpaque is any body no other rule recognizes.
	ShapeOpaque Shape = iota
	// ShapeMessageWithURL is {"data":{"message":"...","url":"..."}}.
	ShapeMessageWithURL
	// ShapeMessage is {"data":{"message":"..."}} with no string url.
	ShapeMessage
	// ShapeString is a bare string body.
	ShapeString
)

func (s Shape) String() string {
	switch s {
	case ShapeMessageWithURL:
		return "message_with_url"
	case ShapeMessage:
		return "message"
	case ShapeString:
		return "string"
	default:
		return "opaque"
	}
}

// Result is a response body reduced to what the transcript displays.
type Result struct {
	Shape       Shape
	Content     string
	DownloadURL string
}

type shapeRule struct {
	shape Shape
	match func(body []byte) (Result, bool)
}

// shapeRules are tried in order; the first match wins. The last rule always
// matches.
var shapeRules = []shapeRule{
	{shape: ShapeMessageWithURL, match: matchMessageWithURL},
	{shape: ShapeMessage, match: matchMessage},
	{shape: ShapeString, match: matchString},
	{shape: ShapeOpaque, match: matchOpaque},
}

// Normalize maps a raw response body onto the transcript content and optional
// download URL.
func Normalize(body RawBody) Result {
	for _, rule := range shapeRules {
		if res, ok := rule.match(body); ok {
			res.Shape = rule.shape
			return res
		}
	}
	return Result{Shape: ShapeOpaque, Content: string(body)}
}

func dataMessage(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	msg := gjson.GetBytes(body, "data.message")
	if msg.Type != gjson.String {
		return "", false
	}
	return msg.Str, true
}

func matchMessageWithURL(body []byte) (Result, bool) {
	msg, ok := dataMessage(body)
	if !ok {
		return Result{}, false
	}
	url := gjson.GetBytes(body, "data.url")
	if url.Type != gjson.String {
		return Result{}, false
	}
	return Result{Content: msg, DownloadURL: url.Str}, true
}

func matchMessage(body []byte) (Result, bool) {
	msg, ok := dataMessage(body)
	if !ok {
		return Result{}, false
	}
	res := Result{Content: msg}
	if url := gjson.GetBytes(body, "data.url"); url.Exists() && url.Type != gjson.Null {
		res.DownloadURL = url.String()
	}
	return res, true
}

func matchString(body []byte) (Result, bool) {
	if !gjson.ValidBytes(body) {
		// not JSON at all, e.g. a text/plain answer
		return Result{Content: string(body)}, true
	}
	v := gjson.ParseBytes(body)
	if v.Type != gjson.String {
		return Result{}, false
	}
	return Result{Content: v.Str}, true
}

func matchOpaque(body []byte) (Result, bool) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return Result{Content: string(body)}, true
	}
	return Result{Content: strings.TrimSpace(buf.String())}, true
}
