package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/kitaphana/kitaphana-backend/internal/types"
)

const (
	generationKey = "content_cache_generation"
	pingKey       = "es_ping_ok"
)

// SearchKey builds the signature for a cached search response: the request
// path plus its sorted query parameters, prefixed with the global cache
// generation so a single counter bump invalidates every cached search at once.
func SearchKey(generation int64, path string, params url.Values) string {
	return fmt.Sprintf("search:v%d:%s", generation, normalizePath(path, params))
}

// DetailKey caches a single record's detail response per user (bookmark
// annotation differs per viewer).
func DetailKey(generation int64, contentType types.ContentType, id int64, userKey string) string {
	if userKey == "" {
		userKey = "anon"
	}
	return fmt.Sprintf("%s:detail:v%d:%d:user:%s", contentType, generation, id, userKey)
}

// ListKey caches a filtered list response.
func ListKey(generation int64, contentType types.ContentType, path string, params url.Values) string {
	return fmt.Sprintf("%s:list:v%d:%s", contentType, generation, normalizePath(path, params))
}

// BookmarksKey caches a user's bookmark listing (short TTL, not
// generation-scoped; bookmark toggles delete it directly).
func BookmarksKey(userKey string) string {
	return "user_bookmarks:" + userKey
}

func normalizePath(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(path)
	b.WriteByte('?')
	for i, k := range keys {
		vals := append([]string(nil), params[k]...)
		sort.Strings(vals)
		for j, v := range vals {
			if i > 0 || j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}
