package paginate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

// Strategy names reported on API continuations
const (
	StrategyNextField  = "next_field"
	StrategyTotalPages = "total_pages"
	StrategyOffset     = "offset"
	StrategyPageParam  = "page_param"
)

var defaultNextFields = []string{"next", "next_url", "nextUrl", "next_page", "nextPage"}

// ResolveAPI computes the continuation for an API chain. Idioms are
// checked in a fixed order; the first one whose preconditions hold on
// the response decides the outcome, found or exhausted. recordCount is
// the size of the batch the response just produced.
func ResolveAPI(body []byte, currentURL string, recordCount int, hints types.Hints, st State) Resolution {
	restrict := hints.Pagination
	if restrict == "none" {
		return Resolution{}
	}
	auto := restrict == "" || restrict == "auto"

	base, err := url.Parse(currentURL)
	if err != nil {
		return Resolution{Failures: []string{fmt.Sprintf("current url: %v", err)}}
	}

	env := envelopeOf(body)
	var failures []string

	if auto || restrict == "next_link" {
		if res, applied := nextFieldIdiom(env, base, currentURL, hints, st, &failures); applied {
			res.Failures = append(failures, res.Failures...)
			return res
		}
	}

	if auto || restrict == "total_pages" {
		if res, applied := totalPagesIdiom(env, base, currentURL, hints, st); applied {
			res.Failures = append(failures, res.Failures...)
			return res
		}
	}

	if auto || restrict == "offset" {
		if res, applied := offsetIdiom(env, base, currentURL, recordCount, hints, st); applied {
			res.Failures = append(failures, res.Failures...)
			return res
		}
	}

	if restrict == "page_param" || (auto && hints.PageParam != "") {
		if res, applied := pageParamIdiom(base, currentURL, recordCount, hints, st); applied {
			res.Failures = append(failures, res.Failures...)
			return res
		}
	}

	return Resolution{Failures: failures}
}

// nextFieldIdiom follows an explicit next-page URL on the response
func nextFieldIdiom(env map[string]interface{}, base *url.URL, currentURL string, hints types.Hints, st State, failures *[]string) (Resolution, bool) {
	if env == nil {
		return Resolution{}, false
	}

	value := ""
	if hints.NextField != "" {
		value, _ = stringField(env, hints.NextField)
		if value == "" {
			if pg := subObject(env, "pagination"); pg != nil {
				value, _ = stringField(pg, hints.NextField)
			}
		}
	} else {
		value, _ = stringField(env, defaultNextFields...)
		if value == "" {
			for _, holder := range []string{"pagination", "links"} {
				if sub := subObject(env, holder); sub != nil {
					if value, _ = stringField(sub, "next"); value != "" {
						break
					}
				}
			}
		}
	}
	if value == "" {
		return Resolution{}, false
	}

	ref, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		*failures = append(*failures, fmt.Sprintf("%s: %q: %v", StrategyNextField, value, err))
		return Resolution{}, false
	}
	next := base.ResolveReference(ref).String()

	if next == currentURL || st.SeenURL(next) {
		return Resolution{}, true
	}
	return Resolution{
		Next: &Continuation{
			URL:      next,
			Strategy: StrategyNextField,
			State:    st.WithURL(currentURL).NextPage(),
		},
	}, true
}

// totalPagesIdiom pages by a declared pagination.totalPages counter
func totalPagesIdiom(env map[string]interface{}, base *url.URL, currentURL string, hints types.Hints, st State) (Resolution, bool) {
	pg := subObject(env, "pagination")
	if pg == nil {
		pg = subObject(env, "meta")
	}
	if pg == nil {
		return Resolution{}, false
	}

	totalPages, ok := numberField(pg, "totalPages", "total_pages", "pages")
	if !ok {
		return Resolution{}, false
	}

	currentPage := st.CurrentPage()
	if declared, ok := numberField(pg, "currentPage", "current_page", "page"); ok {
		currentPage = int(declared)
	}

	if currentPage >= int(totalPages) {
		return Resolution{}, true
	}

	nextPage := currentPage + 1
	if st.SeenOffset(int64(nextPage)) {
		return Resolution{}, true
	}
	next := withQueryParam(base, pageParamName(hints), strconv.Itoa(nextPage))
	if next == currentURL || st.SeenURL(next) {
		return Resolution{}, true
	}

	return Resolution{
		Next: &Continuation{
			URL:      next,
			Strategy: StrategyTotalPages,
			State:    st.WithURL(currentURL).WithPage(nextPage),
		},
	}, true
}

// offsetIdiom pages by first-result offset against a declared total
func offsetIdiom(env map[string]interface{}, base *url.URL, currentURL string, recordCount int, hints types.Hints, st State) (Resolution, bool) {
	if env == nil {
		return Resolution{}, false
	}

	holder := env
	if pg := subObject(env, "pagination"); pg != nil {
		holder = pg
	}
	total, ok := numberField(holder, "totalResults", "total_results", "totalCount", "total_count", "total")
	if !ok {
		return Resolution{}, false
	}

	pageSize := int64(hints.PageSize)
	if pageSize <= 0 {
		pageSize = int64(recordCount)
	}
	if pageSize <= 0 {
		return Resolution{}, false
	}

	if st.Offset+pageSize >= int64(total) {
		return Resolution{}, true
	}

	nextOffset := st.Offset + pageSize
	if st.SeenOffset(nextOffset) {
		return Resolution{}, true
	}
	next := withQueryParam(base, offsetParamName(hints), strconv.FormatInt(nextOffset, 10))
	if next == currentURL || st.SeenURL(next) {
		return Resolution{}, true
	}

	return Resolution{
		Next: &Continuation{
			URL:      next,
			Strategy: StrategyOffset,
			State:    st.WithURL(currentURL).WithOffset(nextOffset).NextPage(),
		},
	}, true
}

// pageParamIdiom pages blindly by query parameter until a page comes
// back empty
func pageParamIdiom(base *url.URL, currentURL string, recordCount int, hints types.Hints, st State) (Resolution, bool) {
	if recordCount == 0 {
		return Resolution{}, true
	}

	nextPage := st.CurrentPage() + 1
	if st.SeenOffset(int64(nextPage)) {
		return Resolution{}, true
	}
	next := withQueryParam(base, pageParamName(hints), strconv.Itoa(nextPage))
	if next == currentURL || st.SeenURL(next) {
		return Resolution{}, true
	}

	return Resolution{
		Next: &Continuation{
			URL:      next,
			Strategy: StrategyPageParam,
			State:    st.WithURL(currentURL).WithPage(nextPage),
		},
	}, true
}

func pageParamName(hints types.Hints) string {
	if hints.PageParam != "" {
		return hints.PageParam
	}
	return "page"
}

func offsetParamName(hints types.Hints) string {
	if hints.OffsetParam != "" {
		return hints.OffsetParam
	}
	return "offset"
}

func withQueryParam(base *url.URL, key, value string) string {
	u := *base
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// envelopeOf parses the response body as an object; arrays and
// malformed bodies yield nil, which disables the envelope idioms
func envelopeOf(body []byte) map[string]interface{} {
	var env map[string]interface{}
	if err := sonic.Unmarshal(body, &env); err != nil {
		return nil
	}
	return env
}

func stringField(env map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := env[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func numberField(env map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := env[key].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		}
	}
	return 0, false
}

func subObject(env map[string]interface{}, key string) map[string]interface{} {
	sub, _ := env[key].(map[string]interface{})
	return sub
}
