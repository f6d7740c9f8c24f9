// Package seo derives page metadata, schema.org graphs, sitemaps and
// robots rules from canonical content.
package seo

import "strings"

// Site is the publisher identity every derived artifact refers to.
type Site struct {
	Name          string
	Description   string
	BaseURL       string
	Locale        string // Open Graph locale, e.g. zh_TW
	Language      string // BCP 47, e.g. zh-Hant-TW
	SocialImage   string
	Logo          string
	TwitterHandle string
	Email         string
	Phone         string
	SameAs        []string
	// DefaultCategory labels posts without a category.
	DefaultCategory string
}

// DefaultSite returns the production site identity.
func DefaultSite() Site {
	return Site{
		Name:            "Aidea:Med 醫療行銷顧問",
		Description:     "專業醫療行銷顧問，提供牙醫診所行銷、醫療廣告法規諮詢、醫療SEO優化等服務",
		BaseURL:         "https://www.aideamed.com",
		Locale:          "zh_TW",
		Language:        "zh-Hant-TW",
		SocialImage:     "/og-image.jpg",
		Logo:            "/images/logo.png",
		TwitterHandle:   "@aideamed",
		Email:           "contact@aideamed.com",
		Phone:           "(02) 2748-8919",
		SameAs:          []string{"https://www.facebook.com/aideamed", "https://www.instagram.com/aideamed"},
		DefaultCategory: "醫療行銷",
	}
}

// Base returns the base URL without a trailing slash.
func (s Site) Base() string {
	return strings.TrimRight(s.BaseURL, "/")
}

// Absolute resolves a site-relative reference against the base URL.
func (s Site) Absolute(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return s.Base() + ref
}

// PostURL is the canonical URL of a blog post.
func (s Site) PostURL(slug string) string {
	return s.Base() + "/blog/" + slug
}

// CaseURL is the canonical URL of a case study.
func (s Site) CaseURL(id string) string {
	return s.Base() + "/case/" + id
}
