package gateway

// URLHandle is implemented by backend SDK objects that expose their
// artifact location through an accessor rather than a plain field.
type URLHandle interface {
	URL() string
}

type itemKind int

const (
	kindNone itemKind = iota
	kindString
	kindMap
	kindHandle
)

// OutputItem is one backend output in any of the three shapes backends
// are known to return: a bare URL string, a mapping with a "url" key,
// or an opaque handle with a URL accessor.
type OutputItem struct {
	kind   itemKind
	str    string
	fields map[string]any
	handle URLHandle
}

func StringItem(s string) OutputItem {
	return OutputItem{kind: kindString, str: s}
}

func MapItem(fields map[string]any) OutputItem {
	return OutputItem{kind: kindMap, fields: fields}
}

func HandleItem(h URLHandle) OutputItem {
	return OutputItem{kind: kindHandle, handle: h}
}

// URL resolves the item to a usable URL string. ok is false when the
// item's shape carries none.
func (it OutputItem) URL() (string, bool) {
	switch it.kind {
	case kindString:
		return it.str, it.str != ""
	case kindMap:
		if u, ok := it.fields["url"].(string); ok && u != "" {
			return u, true
		}
	case kindHandle:
		if it.handle != nil {
			if u := it.handle.URL(); u != "" {
				return u, true
			}
		}
	}
	return "", false
}

// Result is a normalized backend response.
type Result struct {
	Output []OutputItem
}

// FirstURL extracts the single usable URL from a result. Backends return
// one best output per call, so only the first item is consulted.
func (r Result) FirstURL() (string, bool) {
	if len(r.Output) == 0 {
		return "", false
	}
	return r.Output[0].URL()
}

// Normalize flattens a decoded backend output value into an item list:
// nil becomes empty, a list maps item by item, and any single value is
// wrapped in a one-element list. It never fails on an unknown shape; an
// unrecognized element simply resolves to no URL.
func Normalize(raw any) []OutputItem {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		items := make([]OutputItem, 0, len(v))
		for _, e := range v {
			items = append(items, itemOf(e))
		}
		return items
	default:
		return []OutputItem{itemOf(raw)}
	}
}

func itemOf(v any) OutputItem {
	switch t := v.(type) {
	case string:
		return StringItem(t)
	case map[string]any:
		return MapItem(t)
	case URLHandle:
		return HandleItem(t)
	default:
		return OutputItem{}
	}
}
