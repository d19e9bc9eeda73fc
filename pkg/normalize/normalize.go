// Package normalize turns a webhook response body into the text shown to the
// user. The webhook's reply shape is not fixed, so several shapes are accepted
// with a fixed precedence and anything unrecognised is shown verbatim.
package normalize

import "github.com/tidwall/gjson"

// Fields are tried in this order on the reply object.
var Fields = []string{"output", "text", "message", "response"}

// extractor yields display text from a decoded body, or false to pass.
type extractor func(doc gjson.Result) (string, bool)

var extractors = []extractor{
	fromFirstElement,
	fromObject,
}

// Reply returns the display text for a response body.
func Reply(body string) string {
	if !gjson.Valid(body) {
		return body
	}

	doc := gjson.Parse(body)
	for _, extract := range extractors {
		if text, ok := extract(doc); ok {
			return text
		}
	}
	return body
}

func fromFirstElement(doc gjson.Result) (string, bool) {
	if !doc.IsArray() {
		return "", false
	}
	items := doc.Array()
	if len(items) == 0 {
		return "", false
	}
	return pickField(items[0])
}

func fromObject(doc gjson.Result) (string, bool) {
	if !doc.IsObject() {
		return "", false
	}
	return pickField(doc)
}

func pickField(item gjson.Result) (string, bool) {
	if !item.IsObject() {
		return "", false
	}
	for _, name := range Fields {
		v := field(item, name)
		if present(v) {
			return display(v), true
		}
	}
	return "", false
}

// field returns the value of the last member called name, matching how
// JSON.parse resolves duplicate keys.
func field(obj gjson.Result, name string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(key, value gjson.Result) bool {
		if key.Str == name {
			found = value
		}
		return true
	})
	return found
}

// present uses JavaScript truthiness: null, false, 0 and "" count as absent.
func present(v gjson.Result) bool {
	if !v.Exists() {
		return false
	}
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	default:
		return true
	}
}

func display(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}
