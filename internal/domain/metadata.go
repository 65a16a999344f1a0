package domain

// SiteMetadata is what the metadata extractor learns about a merchant page.
type SiteMetadata struct {
	LogoURL     string `json:"logoUrl,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}
