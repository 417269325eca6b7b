package domain

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"testing"
)

const validBody = `{
	"date": "2014-05-02 00:00:00",
	"price": 313000.0,
	"bedrooms": 3.0,
	"bathrooms": 1.5,
	"sqft_living": 1340,
	"sqft_lot": 7912,
	"floors": 1.5,
	"waterfront": 0,
	"view": 0,
	"condition": 3,
	"sqft_above": 1340,
	"sqft_basement": 0,
	"yr_built": 1955,
	"yr_renovated": 2005,
	"street": "18810 Densmore Ave N",
	"city": "Shoreline",
	"statezip": "WA 98133",
	"country": "USA"
}`

func TestDecodeHouseValid(t *testing.T) {
	h, err := DecodeHouse([]byte(validBody))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.City != "Shoreline" || h.Price != 313000 || h.SqftLiving != 1340 || h.Bathrooms != 1.5 {
		t.Fatalf("unexpected house: %+v", h)
	}
	if h.ID != 0 {
		t.Fatalf("expected zero id when omitted, got %d", h.ID)
	}
}

func TestDecodeHouseCoercesNumericStrings(t *testing.T) {
	body := strings.Replace(validBody, `"sqft_living": 1340`, `"sqft_living": "1340.0"`, 1)
	body = strings.Replace(body, `"price": 313000.0`, `"price": "313000.5"`, 1)
	h, err := DecodeHouse([]byte(body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.SqftLiving != 1340 || h.Price != 313000.5 {
		t.Fatalf("coercion failed: %+v", h)
	}
}

func TestDecodeHouseFieldErrors(t *testing.T) {
	body := strings.Replace(validBody, `"city": "Shoreline",`, ``, 1)
	body = strings.Replace(body, `"view": 0`, `"view": 1.5`, 1)
	body = strings.Replace(body, `"street": "18810 Densmore Ave N"`, `"street": 42`, 1)
	body = strings.Replace(body, `"price": 313000.0`, `"price": null`, 1)

	_, err := DecodeHouse([]byte(body))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := map[string]string{
		"body.price":  "type_error.none.not_allowed",
		"body.view":   "type_error.integer",
		"body.street": "type_error.str",
		"body.city":   "value_error.missing",
	}
	if len(verr.Errors) != len(want) {
		t.Fatalf("expected %d errors, got %+v", len(want), verr.Errors)
	}
	for _, fe := range verr.Errors {
		loc := strings.Join(fe.Loc, ".")
		if want[loc] != fe.Type {
			t.Fatalf("unexpected error at %s: %s", loc, fe.Type)
		}
	}
}

func TestDecodeHouseRejectsBadID(t *testing.T) {
	body := strings.Replace(validBody, "{", `{"id": "abc",`, 1)
	_, err := DecodeHouse([]byte(body))
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Errors) != 1 || verr.Errors[0].Loc[1] != "id" {
		t.Fatalf("expected id error, got %v", err)
	}
	body = strings.Replace(validBody, "{", `{"id": null,`, 1)
	if _, err := DecodeHouse([]byte(body)); err != nil {
		t.Fatalf("null id should be accepted: %v", err)
	}
}

func TestDecodeHouseMalformedBody(t *testing.T) {
	for _, body := range []string{"", "{", "[1,2]", "null"} {
		_, err := DecodeHouse([]byte(body))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("body %q: expected validation error, got %v", body, err)
		}
		if verr.Errors[0].Loc[0] != "body" || len(verr.Errors[0].Loc) != 1 {
			t.Fatalf("body %q: unexpected loc %v", body, verr.Errors[0].Loc)
		}
	}
}

func TestParseListParamsDefaults(t *testing.T) {
	p, err := ParseListParams(url.Values{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Page != 1 || p.Size != 10 || p.PriceMin != nil || p.PriceMax != nil || p.City != "" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestParseListParamsConstraints(t *testing.T) {
	cases := []struct {
		query string
		loc   string
		typ   string
	}{
		{"page=0", "query.page", "value_error.number.not_gt"},
		{"page=-3", "query.page", "value_error.number.not_gt"},
		{"page=x", "query.page", "type_error.integer"},
		{"size=101", "query.size", "value_error.number.not_le"},
		{"size=ten", "query.size", "type_error.integer"},
		{"price_min=cheap", "query.price_min", "type_error.float"},
		{"price_max=", "query.price_max", "type_error.float"},
	}
	for _, tc := range cases {
		values, _ := url.ParseQuery(tc.query)
		_, err := ParseListParams(values)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected validation error", tc.query)
		}
		fe := verr.Errors[0]
		if strings.Join(fe.Loc, ".") != tc.loc || fe.Type != tc.typ {
			t.Fatalf("%s: unexpected error %+v", tc.query, fe)
		}
	}
}

func TestParseListParamsAcceptsBoundary(t *testing.T) {
	values, _ := url.ParseQuery("page=2&size=100&city=Seattle&statezip=WA+98103&price_min=1.5&price_max=2e6")
	p, err := ParseListParams(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Page != 2 || p.Size != 100 || p.City != "Seattle" || p.StateZip != "WA 98103" {
		t.Fatalf("unexpected params: %+v", p)
	}
	if *p.PriceMin != 1.5 || *p.PriceMax != 2e6 {
		t.Fatalf("unexpected bounds: %v %v", *p.PriceMin, *p.PriceMax)
	}
}

func TestListParamsMatchesConjunction(t *testing.T) {
	minPrice := 300000.0
	p := ListParams{Page: 1, Size: 10, City: "seattle", PriceMin: &minPrice}
	cases := []struct {
		h    House
		want bool
	}{
		{House{City: "Seattle", Price: 300000}, true},
		{House{City: "SEATTLE", Price: 450000}, true},
		{House{City: "Seattle", Price: 299999}, false},
		{House{City: "Redmond", Price: 900000}, false},
	}
	for _, tc := range cases {
		if got := p.Matches(tc.h); got != tc.want {
			t.Fatalf("Matches(%+v) = %v", tc.h, got)
		}
	}
	maxPrice := 100.0
	p = ListParams{StateZip: "wa 98133", PriceMax: &maxPrice}
	if !p.Matches(House{StateZip: "WA 98133", Price: 100}) {
		t.Fatalf("expected inclusive max match")
	}
}

func TestListParamsPaginate(t *testing.T) {
	houses := make([]House, 25)
	for i := range houses {
		houses[i].ID = i
	}
	cases := []struct {
		page, size int
		first, n   int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 5},
		{4, 10, 0, 0},
		{1, 0, 0, 0},
		{1, -5, 0, 20},
		{2, -5, 0, 0},
		{2, 100, 0, 0},
	}
	for _, tc := range cases {
		got := ListParams{Page: tc.page, Size: tc.size}.Paginate(houses)
		if len(got) != tc.n {
			t.Fatalf("page=%d size=%d: expected %d records, got %d", tc.page, tc.size, tc.n, len(got))
		}
		if tc.n > 0 && got[0].ID != tc.first {
			t.Fatalf("page=%d size=%d: expected first id %d, got %d", tc.page, tc.size, tc.first, got[0].ID)
		}
	}
}

func TestParsePathID(t *testing.T) {
	if id, err := ParsePathID("17"); err != nil || id != 17 {
		t.Fatalf("expected 17, got %d %v", id, err)
	}
	_, err := ParsePathID("abc")
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Errors) != 1 || strings.Join(verr.Errors[0].Loc, ".") != "path.id" || verr.Errors[0].Type != "type_error.integer" {
		t.Fatalf("unexpected path id error %v", err)
	}
}

func TestMergeValidation(t *testing.T) {
	_, pathErr := ParsePathID("x")
	_, bodyErr := DecodeHouse([]byte(`{}`))
	err := MergeValidation(pathErr, nil, bodyErr)
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Errors) != 1+len(Fields) {
		t.Fatalf("unexpected merged error %v", err)
	}
	if verr.Errors[0].Loc[0] != "path" || verr.Errors[1].Loc[0] != "body" {
		t.Fatalf("unexpected order %+v", verr.Errors[:2])
	}
	if MergeValidation(nil, nil) != nil {
		t.Fatalf("expected nil for no errors")
	}
	plain := fmt.Errorf("boom")
	if MergeValidation(pathErr, plain) != plain {
		t.Fatalf("expected non-validation error passthrough")
	}
}

func TestWindowHugePagesStayEmpty(t *testing.T) {
	houses := make([]House, 5)
	cases := []ListParams{
		{Page: 1<<58 + 1, Size: 64},
		{Page: math.MaxInt, Size: 100},
		{Page: math.MaxInt, Size: 3},
		{Page: math.MaxInt, Size: -1},
	}
	for _, p := range cases {
		start, end := p.Window(len(houses))
		if start != end {
			t.Fatalf("page=%d size=%d: expected empty window, got [%d,%d)", p.Page, p.Size, start, end)
		}
		if got := p.Paginate(houses); len(got) != 0 {
			t.Fatalf("page=%d size=%d: expected no records, got %d", p.Page, p.Size, len(got))
		}
	}
}

func TestWindowNegativeSizeTrimsFromEnd(t *testing.T) {
	cases := []struct {
		size, start, end int
	}{
		{-1, 0, 4},
		{-4, 0, 1},
		{-5, 0, 0},
		{-9, 0, 0},
	}
	for _, tc := range cases {
		start, end := ListParams{Page: 1, Size: tc.size}.Window(5)
		if start != tc.start || end != tc.end {
			t.Fatalf("size=%d: expected [%d,%d), got [%d,%d)", tc.size, tc.start, tc.end, start, end)
		}
	}
}
