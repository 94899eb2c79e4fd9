package cache

import (
	"net/url"
	"testing"

	"github.com/kitaphana/kitaphana-backend/internal/types"
)

func TestSearchKeyIsParamOrderInsensitive(t *testing.T) {
	a := url.Values{}
	a.Set("q", "watan")
	a.Set("page", "2")
	a.Set("language", "tm")

	b := url.Values{}
	b.Set("language", "tm")
	b.Set("page", "2")
	b.Set("q", "watan")

	ka := SearchKey(3, "/api/v1/search", a)
	kb := SearchKey(3, "/api/v1/search", b)
	if ka != kb {
		t.Fatalf("keys differ for same params: %q vs %q", ka, kb)
	}
	if ka != "search:v3:/api/v1/search?language=tm&page=2&q=watan" {
		t.Fatalf("unexpected key %q", ka)
	}
}

func TestSearchKeyGenerationInvalidates(t *testing.T) {
	params := url.Values{"q": {"watan"}}
	if SearchKey(1, "/api/v1/search", params) == SearchKey(2, "/api/v1/search", params) {
		t.Fatalf("bumped generation must change the key")
	}
}

func TestSearchKeyNoParams(t *testing.T) {
	if got := SearchKey(0, "/api/v1/search", nil); got != "search:v0:/api/v1/search" {
		t.Fatalf("got %q", got)
	}
}

func TestDetailKeyAnonFallback(t *testing.T) {
	got := DetailKey(2, types.ContentTypeBook, 9, "")
	if got != "book:detail:v2:9:user:anon" {
		t.Fatalf("got %q", got)
	}
}

func TestBookmarksKey(t *testing.T) {
	if got := BookmarksKey("u-1"); got != "user_bookmarks:u-1" {
		t.Fatalf("got %q", got)
	}
}
