package paginate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/polychlorinated/structured-data-web-scraper/internal/dom"
	"github.com/polychlorinated/structured-data-web-scraper/internal/extract"
	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

// htmlStrategy probes one next-link idiom. It returns the raw href, or
// "" when the idiom does not apply; an error is swallowed by the
// resolver and the next strategy is tried.
type htmlStrategy struct {
	name string
	fn   func(doc *dom.Document) (string, error)
}

var htmlStrategies = []htmlStrategy{
	{"rel_next", relNext},
	{"aria_next", ariaNext},
	{"pagination_container", paginationContainer},
	{"link_text", linkText},
	{"numeric_page", numericPage},
}

// ResolveHTML checks a page for a way to the next one. Strategies run
// in a fixed order; the first resolvable href wins. A next URL that
// was already visited in this chain exhausts it regardless of the
// link's presence.
func ResolveHTML(doc *dom.Document, currentURL string, hints types.Hints, st State) Resolution {
	if hints.Pagination == "none" {
		return Resolution{}
	}

	base, err := url.Parse(currentURL)
	if err != nil {
		return Resolution{Failures: []string{fmt.Sprintf("current url: %v", err)}}
	}

	var failures []string
	for _, strategy := range htmlStrategies {
		href, err := strategy.fn(doc)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", strategy.name, err))
			continue
		}
		if href == "" {
			continue
		}

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: href %q: %v", strategy.name, href, err))
			continue
		}
		next := base.ResolveReference(ref).String()

		if next == currentURL || st.SeenURL(next) {
			return Resolution{Failures: failures}
		}

		return Resolution{
			Next: &Continuation{
				URL:      next,
				Strategy: strategy.name,
				State:    st.WithURL(currentURL).NextPage(),
			},
			Failures: failures,
		}
	}

	return Resolution{Failures: failures}
}

func relNext(doc *dom.Document) (string, error) {
	return firstHref(doc.Find(`a[rel~="next"], link[rel~="next"]`)), nil
}

func ariaNext(doc *dom.Document) (string, error) {
	return firstHref(doc.Find(`a[aria-label="Next"], a[aria-label="Next page"], a[aria-label="next"]`)), nil
}

func paginationContainer(doc *dom.Document) (string, error) {
	selectors := []string{
		".pagination a.next",
		".pagination .next a",
		".pager a.next",
		".pager .next a",
		".paging a.next",
		".page-nav a.next",
	}
	return firstHref(doc.Find(strings.Join(selectors, ", "))), nil
}

func linkText(doc *dom.Document) (string, error) {
	href := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		text := strings.ToLower(extract.Clean(link.Text()))
		if strings.Contains(text, "next") {
			href = usableHref(link)
			return href == ""
		}
		return true
	})
	return href, nil
}

// numericPage finds the active page indicator inside a pagination
// container and follows the link labeled one higher
func numericPage(doc *dom.Document) (string, error) {
	href := ""
	var parseErr error

	doc.Find(".pagination, .pager, .paging").EachWithBreak(func(_ int, container *goquery.Selection) bool {
		active := container.Find(".active, .current, .selected").First()
		if active.Length() == 0 {
			return true
		}

		current, err := strconv.Atoi(extract.Clean(active.Text()))
		if err != nil {
			parseErr = fmt.Errorf("active page %q is not numeric", extract.Clean(active.Text()))
			return true
		}

		want := strconv.Itoa(current + 1)
		container.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
			if extract.Clean(link.Text()) == want {
				href = usableHref(link)
				return href == ""
			}
			return true
		})
		return href == ""
	})

	if href != "" {
		return href, nil
	}
	return "", parseErr
}

// firstHref returns the first usable href in a selection
func firstHref(links *goquery.Selection) string {
	href := ""
	links.EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href = usableHref(link)
		return href == ""
	})
	return href
}

// usableHref filters out fragment-only and script hrefs
func usableHref(link *goquery.Selection) string {
	href := strings.TrimSpace(link.AttrOr("href", ""))
	if href == "" || href == "#" || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	return href
}
