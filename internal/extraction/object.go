package extraction

import (
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"facebook-extractor/internal/utils"
)

// ParseFragments decodes scanned fragments. Fragments that are not valid JSON
// are dropped and counted; naive brace counting can cut a block short when a
// string literal contains a brace.
func ParseFragments(fragments []string) ([]gjson.Result, int) {
	objects := make([]gjson.Result, 0, len(fragments))
	skipped := 0
	for _, fragment := range fragments {
		if !gjson.Valid(fragment) {
			skipped++
			continue
		}
		objects = append(objects, gjson.Parse(fragment))
	}
	return objects, skipped
}

// dig resolves path and reports whether it holds a non-null value.
func dig(obj gjson.Result, path string) (gjson.Result, bool) {
	r := obj.Get(path)
	if !r.Exists() || r.Type == gjson.Null {
		return r, false
	}
	return r, true
}

// firstOf tries each path in order and returns the first non-null value.
func firstOf(obj gjson.Result, paths ...string) (gjson.Result, bool) {
	for _, path := range paths {
		if r, ok := dig(obj, path); ok {
			return r, true
		}
	}
	return gjson.Result{}, false
}

func findObject(objects []gjson.Result, pred func(gjson.Result) bool) (gjson.Result, bool) {
	for _, obj := range objects {
		if pred(obj) {
			return obj, true
		}
	}
	return gjson.Result{}, false
}

// withPath returns the first object in which path resolves.
func withPath(objects []gjson.Result, path string) (gjson.Result, bool) {
	return findObject(objects, func(obj gjson.Result) bool {
		_, ok := dig(obj, path)
		return ok
	})
}

func hasKey(obj gjson.Result, key string) bool {
	return obj.IsObject() && obj.Get(gjsonEscape(key)).Exists()
}

// onlyKey reports whether obj has exactly one key named key.
func onlyKey(obj gjson.Result, key string) bool {
	if !obj.IsObject() {
		return false
	}
	m := obj.Map()
	_, ok := m[key]
	return ok && len(m) == 1
}

func str(obj gjson.Result, paths ...string) string {
	r, ok := firstOf(obj, paths...)
	if !ok {
		return ""
	}
	return r.String()
}

func optInt(obj gjson.Result, paths ...string) *int {
	r, ok := firstOf(obj, paths...)
	if !ok {
		return nil
	}
	switch r.Type {
	case gjson.Number:
		n := int(r.Int())
		return &n
	case gjson.String:
		n, err := ParseInteractionCount(r.String())
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}

func optBool(obj gjson.Result, paths ...string) *bool {
	r, ok := firstOf(obj, paths...)
	if !ok || (r.Type != gjson.True && r.Type != gjson.False) {
		return nil
	}
	b := r.Bool()
	return &b
}

// timeOf normalizes epoch seconds or an ISO-8601 string to UTC.
func timeOf(obj gjson.Result, paths ...string) (time.Time, bool) {
	r, ok := firstOf(obj, paths...)
	if !ok {
		return time.Time{}, false
	}
	switch r.Type {
	case gjson.Number:
		if r.Int() <= 0 {
			return time.Time{}, false
		}
		return utils.FromEpoch(r.Int()), true
	case gjson.String:
		t, err := utils.ParseTimestamp(r.String())
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

func cleanURL(u string) string {
	return strings.ReplaceAll(u, `\`, "")
}

// TopLevelKeys lists the distinct top-level keys across objects, sorted, for
// diagnostics on unrecognized pages.
func TopLevelKeys(objects []gjson.Result, limit int) []string {
	seen := map[string]struct{}{}
	for _, obj := range objects {
		obj.ForEach(func(key, _ gjson.Result) bool {
			seen[key.String()] = struct{}{}
			return true
		})
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func gjsonEscape(key string) string {
	var b strings.Builder
	for _, c := range key {
		switch c {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func firstTime(nodes ...gjson.Result) (time.Time, bool) {
	for _, node := range nodes {
		if t, ok := timeOf(node, "publish_time", "creation_time"); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
