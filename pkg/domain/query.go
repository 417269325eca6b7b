package domain

import (
	"errors"
	"math/big"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPage is the page served when none is requested.
	DefaultPage = 1
	// DefaultPageSize is the page size served when none is requested.
	DefaultPageSize = 10
	// MaxPageSize bounds the size query parameter.
	MaxPageSize = 100
)

// ListParams selects and paginates houses. Empty City and StateZip disable
// their filters; nil price bounds are unbounded.
type ListParams struct {
	Page     int
	Size     int
	City     string
	StateZip string
	PriceMin *float64
	PriceMax *float64
}

// DefaultListParams returns the first page with no filters.
func DefaultListParams() ListParams {
	return ListParams{Page: DefaultPage, Size: DefaultPageSize}
}

// ParseListParams validates list query parameters. page must be > 0 and
// size must be <= 100; violations are reported together.
func ParseListParams(values url.Values) (ListParams, error) {
	params := DefaultListParams()
	var verr ValidationError

	if raw, ok := lookup(values, "page"); ok {
		page, err := strconv.Atoi(strings.TrimSpace(raw))
		switch {
		case err != nil:
			verr.add(FieldError{Loc: []string{"query", "page"}, Msg: msgInvalidInt, Type: errTypeInteger})
		case page <= 0:
			verr.add(FieldError{Loc: []string{"query", "page"}, Msg: "ensure this value is greater than 0", Type: errTypeNotGT})
		default:
			params.Page = page
		}
	}
	if raw, ok := lookup(values, "size"); ok {
		size, err := strconv.Atoi(strings.TrimSpace(raw))
		switch {
		case err != nil:
			verr.add(FieldError{Loc: []string{"query", "size"}, Msg: msgInvalidInt, Type: errTypeInteger})
		case size > MaxPageSize:
			verr.add(FieldError{Loc: []string{"query", "size"}, Msg: "ensure this value is less than or equal to 100", Type: errTypeNotLE})
		default:
			params.Size = size
		}
	}
	params.City = values.Get("city")
	params.StateZip = values.Get("statezip")
	params.PriceMin = parseBound(values, "price_min", &verr)
	params.PriceMax = parseBound(values, "price_max", &verr)

	if err := verr.orNil(); err != nil {
		return ListParams{}, err
	}
	return params, nil
}

func lookup(values url.Values, key string) (string, bool) {
	if _, ok := values[key]; !ok {
		return "", false
	}
	return values.Get(key), true
}

func parseBound(values url.Values, key string, verr *ValidationError) *float64 {
	raw, ok := lookup(values, key)
	if !ok {
		return nil
	}
	v, err := ParseFloat(raw)
	if err != nil {
		verr.add(FieldError{Loc: []string{"query", key}, Msg: msgInvalidFloat, Type: errTypeFloat})
		return nil
	}
	return &v
}

// Matches reports whether h satisfies every configured filter.
func (p ListParams) Matches(h House) bool {
	if p.City != "" && !strings.EqualFold(h.City, p.City) {
		return false
	}
	if p.StateZip != "" && !strings.EqualFold(h.StateZip, p.StateZip) {
		return false
	}
	if p.PriceMin != nil && !(h.Price >= *p.PriceMin) {
		return false
	}
	if p.PriceMax != nil && !(h.Price <= *p.PriceMax) {
		return false
	}
	return true
}

// Window returns the [start, end) bounds of the requested page within n
// filtered records. The page spans (page-1)*size to page*size; a negative
// bound counts back from n and bounds are clamped to [0, n], so a negative
// size trims records from the end. Bounds are computed exactly and never wrap.
func (p ListParams) Window(n int) (int, int) {
	size := big.NewInt(int64(p.Size))
	start := new(big.Int).Sub(big.NewInt(int64(p.Page)), big.NewInt(1))
	start.Mul(start, size)
	end := new(big.Int).Add(start, size)
	lo, hi := clampBound(start, n), clampBound(end, n)
	if hi < lo {
		return lo, lo
	}
	return lo, hi
}

func clampBound(x *big.Int, n int) int {
	length := big.NewInt(int64(n))
	if x.Sign() < 0 {
		x = new(big.Int).Add(x, length)
		if x.Sign() < 0 {
			return 0
		}
		return int(x.Int64())
	}
	if x.Cmp(length) > 0 {
		return n
	}
	return int(x.Int64())
}

// Paginate slices the requested page out of filtered records.
func (p ListParams) Paginate(houses []House) []House {
	start, end := p.Window(len(houses))
	out := make([]House, end-start)
	copy(out, houses[start:end])
	return out
}

// ParsePathID validates the {id} segment of an item route.
func ParsePathID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Errors: []FieldError{{Loc: []string{"path", "id"}, Msg: msgInvalidInt, Type: errTypeInteger}}}
	}
	return id, nil
}

// MergeValidation combines validation errors from several request parts in
// argument order. Non-validation errors are returned as they are.
func MergeValidation(errs ...error) error {
	var merged ValidationError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		merged.Errors = append(merged.Errors, verr.Errors...)
	}
	return merged.orNil()
}
