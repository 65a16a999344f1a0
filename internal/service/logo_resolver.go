package service

import (
	"context"
	"log"
	"net/url"
	"path"
	"strings"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

const (
	DefaultFaviconServiceURL = "https://www.google.com/s2/favicons?sz=128&domain="
	DefaultLogoURL           = "https://placehold.co/200x200/png?text=Logo"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".svg":  {},
	".gif":  {},
	".webp": {},
}

type MetadataExtractor interface {
	Extract(ctx context.Context, pageURL string) (*domain.SiteMetadata, error)
}

type LogoResolverConfig struct {
	FaviconServiceURL string
	DefaultLogoURL    string
}

// LogoResolver turns candidate URLs into a logo image URL. It never fails:
// extraction errors are logged and the cascade moves on.
type LogoResolver struct {
	extractor   MetadataExtractor
	faviconBase string
	defaultLogo string
}

func NewLogoResolver(extractor MetadataExtractor, cfg LogoResolverConfig) *LogoResolver {
	favicon := strings.TrimSpace(cfg.FaviconServiceURL)
	if favicon == "" {
		favicon = DefaultFaviconServiceURL
	}
	fallback := strings.TrimSpace(cfg.DefaultLogoURL)
	if fallback == "" {
		fallback = DefaultLogoURL
	}
	return &LogoResolver{
		extractor:   extractor,
		faviconBase: favicon,
		defaultLogo: fallback,
	}
}

// Resolve runs each step of the cascade over every candidate before moving to
// the next step: a direct image URL anywhere in the list beats page metadata,
// and page metadata from any candidate beats the favicon of the first one.
func (r *LogoResolver) Resolve(ctx context.Context, candidates ...string) string {
	pages := make([]*url.URL, 0, len(candidates))
	for _, candidate := range candidates {
		u, ok := candidateURL(candidate)
		if !ok {
			continue
		}
		if hasImageExtension(u.Path) {
			return u.String()
		}
		pages = append(pages, u)
	}
	for _, u := range pages {
		if logo := r.extract(ctx, u.String()); logo != "" {
			return logo
		}
	}
	if len(pages) > 0 {
		return r.faviconBase + url.QueryEscape(pages[0].Hostname())
	}
	return r.defaultLogo
}

func (r *LogoResolver) extract(ctx context.Context, pageURL string) string {
	if r.extractor == nil {
		return ""
	}
	meta, err := r.extractor.Extract(ctx, pageURL)
	if err != nil {
		log.Printf("logo: metadata extraction for %s failed: %v", pageURL, err)
		return ""
	}
	if meta == nil {
		return ""
	}
	return strings.TrimSpace(meta.LogoURL)
}

func candidateURL(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

func hasImageExtension(p string) bool {
	_, ok := imageExtensions[strings.ToLower(path.Ext(p))]
	return ok
}
