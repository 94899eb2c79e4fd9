package search

import (
	"reflect"
	"testing"

	"github.com/kitaphana/kitaphana-backend/internal/types"
)

func TestBuildSearchBodyWithQueryText(t *testing.T) {
	body := BuildSearchBody(Request{Query: "gurbannazar", Page: 3, PageSize: 10})

	if body["from"] != 20 || body["size"] != 10 {
		t.Fatalf("pagination: from=%v size=%v", body["from"], body["size"])
	}

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})[0].(map[string]interface{})
	mm, ok := must["multi_match"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected multi_match, got %v", must)
	}
	wantFields := []string{
		"title^10",
		"content^3",
		"author^5",
		"author_workplace^2",
		"source_name^2",
		"newspaper_or_journal^2",
	}
	if !reflect.DeepEqual(mm["fields"], wantFields) {
		t.Fatalf("fields = %v, want %v", mm["fields"], wantFields)
	}
	if mm["fuzziness"] != "AUTO" || mm["type"] != "best_fields" {
		t.Fatalf("fuzziness=%v type=%v", mm["fuzziness"], mm["type"])
	}

	sort := body["sort"].([]interface{})
	if len(sort) != 1 {
		t.Fatalf("text queries sort by score only, got %v", sort)
	}

	highlight := body["highlight"].(map[string]interface{})
	if !reflect.DeepEqual(highlight["pre_tags"], []string{"<mark>"}) {
		t.Fatalf("pre_tags = %v", highlight["pre_tags"])
	}
}

func TestBuildSearchBodyBrowseFallback(t *testing.T) {
	body := BuildSearchBody(Request{Query: "", Page: 1, PageSize: 10})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})[0].(map[string]interface{})
	if _, ok := must["match_all"]; !ok {
		t.Fatalf("expected match_all, got %v", must)
	}

	sort := body["sort"].([]interface{})
	if len(sort) != 3 {
		t.Fatalf("browse sort should be rating, score, views; got %v", sort)
	}
	first := sort[0].(map[string]interface{})
	if _, ok := first["average_rating"]; !ok {
		t.Fatalf("browse sort should lead with average_rating, got %v", first)
	}
	last := sort[2].(map[string]interface{})
	if _, ok := last["views"]; !ok {
		t.Fatalf("browse sort should end with views, got %v", last)
	}
}

func TestBuildSearchBodyFilters(t *testing.T) {
	req := Request{
		Query:              "x",
		Page:               1,
		PageSize:           10,
		ContentType:        types.ContentTypeArticle,
		Language:           "ru",
		ArticleType:        "foreign",
		Author:             "A. Author",
		PublicationDateGte: "2020-01-01",
		PublicationDateLte: "2021-12-31",
		CategoryID:         7,
	}
	body := BuildSearchBody(req)

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	if len(filters) != 7 {
		t.Fatalf("filter count = %d, want 7: %v", len(filters), filters)
	}

	index := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	if index["_index"] != "articles" {
		t.Fatalf("_index filter = %v", index)
	}

	author := filters[3].(map[string]interface{})["term"].(map[string]interface{})
	if author["author.keyword"] != "A. Author" {
		t.Fatalf("author filter = %v", author)
	}

	nested := filters[6].(map[string]interface{})["nested"].(map[string]interface{})
	if nested["path"] != "categories" {
		t.Fatalf("category filter = %v", nested)
	}
}

func TestRequestIndices(t *testing.T) {
	all := Request{}.Indices()
	want := []string{"articles", "books", "dissertations"}
	if !reflect.DeepEqual(all, want) {
		t.Fatalf("Indices() = %v, want %v", all, want)
	}

	one := Request{ContentType: types.ContentTypeBook}.Indices()
	if !reflect.DeepEqual(one, []string{"books"}) {
		t.Fatalf("Indices() = %v, want [books]", one)
	}
}

func TestRequestFromClampsPage(t *testing.T) {
	if got := (Request{Page: 0, PageSize: 10}).From(); got != 0 {
		t.Fatalf("From() = %d, want 0", got)
	}
	if got := (Request{Page: 5, PageSize: 10}).From(); got != 40 {
		t.Fatalf("From() = %d, want 40", got)
	}
}
