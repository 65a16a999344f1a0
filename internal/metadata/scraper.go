package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

const maxPageBytes = 2 << 20

// Scraper extracts site metadata by fetching the page and reading its head.
type Scraper struct {
	http *http.Client
}

func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scraper{http: &http.Client{Timeout: timeout}}
}

func (s *Scraper) Extract(ctx context.Context, pageURL string) (*domain.SiteMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; CouponHubBot/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrExtractionFailed, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrExtractionFailed, err)
	}

	base := resp.Request.URL
	page := collectHead(doc)
	meta := &domain.SiteMetadata{
		Name:        firstNonEmpty(page.siteName, page.ogTitle, page.title),
		Description: firstNonEmpty(page.ogDescription, page.description),
	}
	for _, candidate := range []string{page.ogImage, page.appleTouchIcon, page.icon} {
		if resolved := resolveRef(base, candidate); resolved != "" {
			meta.LogoURL = resolved
			break
		}
	}
	return meta, nil
}

type pageHead struct {
	title          string
	siteName       string
	ogTitle        string
	ogDescription  string
	ogImage        string
	description    string
	appleTouchIcon string
	icon           string
}

// collectHead walks the whole document; the first occurrence of each tag wins.
func collectHead(doc *html.Node) pageHead {
	var head pageHead
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if head.title == "" {
					head.title = strings.TrimSpace(textContent(n))
				}
			case "meta":
				key := strings.ToLower(firstNonEmpty(attr(n, "property"), attr(n, "name")))
				content := strings.TrimSpace(attr(n, "content"))
				switch key {
				case "og:image", "og:image:url", "og:image:secure_url":
					setOnce(&head.ogImage, content)
				case "og:site_name":
					setOnce(&head.siteName, content)
				case "og:title":
					setOnce(&head.ogTitle, content)
				case "og:description":
					setOnce(&head.ogDescription, content)
				case "description":
					setOnce(&head.description, content)
				}
			case "link":
				href := strings.TrimSpace(attr(n, "href"))
				for _, rel := range strings.Fields(strings.ToLower(attr(n, "rel"))) {
					switch rel {
					case "apple-touch-icon", "apple-touch-icon-precomposed":
						setOnce(&head.appleTouchIcon, href)
					case "icon":
						setOnce(&head.icon, href)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return head
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func setOnce(dst *string, val string) {
	if *dst == "" && val != "" {
		*dst = val
	}
}

func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
