package ytscrape

import (
	"sort"
)

// The external document's shape is neither versioned nor documented,
// so nothing here assumes structure: the walkers visit every node of
// a decoded JSON value and the shape knowledge lives in small tables
// of key names and patterns elsewhere in this package.

// walk visits v and then every node under it. Arrays are visited in
// index order and objects in sorted key order, so two walks over the
// same value always visit nodes in the same order.
func walk(v interface{}, visit func(node interface{})) {
	visit(v)

	switch v := v.(type) {
	case map[string]interface{}:
		for _, k := range sortedKeys(v) {
			walk(v[k], visit)
		}
	case []interface{}:
		for _, e := range v {
			walk(e, visit)
		}
	}
}

// walkKeyed is walk with the object key (or "" for array elements and
// the root) passed alongside each node.
func walkKeyed(v interface{}, visit func(key string, node interface{})) {
	visit("", v)
	walkKeyedInner(v, visit)
}

func walkKeyedInner(v interface{}, visit func(key string, node interface{})) {
	switch v := v.(type) {
	case map[string]interface{}:
		for _, k := range sortedKeys(v) {
			visit(k, v[k])
			walkKeyedInner(v[k], visit)
		}
	case []interface{}:
		for _, e := range v {
			visit("", e)
			walkKeyedInner(e, visit)
		}
	}
}

func sortedKeys(m map[string]interface{}) []string {
	a := make([]string, 0, len(m))
	for k := range m {
		a = append(a, k)
	}
	sort.Strings(a)
	return a
}

// collectStrings gathers every string leaf under v, in walk order.
func collectStrings(v interface{}) []string {
	var a []string

	walk(v, func(node interface{}) {
		if s, ok := node.(string); ok {
			a = append(a, s)
		}
	})

	return a
}

// collectScalars gathers every string and number leaf under v,
// numbers rendered the way encoding/json decoded them.
func collectScalars(v interface{}) []interface{} {
	var a []interface{}

	walk(v, func(node interface{}) {
		switch node.(type) {
		case string, float64:
			a = append(a, node)
		}
	})

	return a
}

// subtreesByKey returns the value of every object entry whose key
// satisfies match, anywhere under v, in walk order.
func subtreesByKey(v interface{}, match func(key string) bool) []interface{} {
	var a []interface{}

	walkKeyed(v, func(key string, node interface{}) {
		if key != "" && match(key) {
			a = append(a, node)
		}
	})

	return a
}
