package seo

import (
	"strconv"
	"strings"
)

// RobotsGroup is one user-agent block of robots.txt.
type RobotsGroup struct {
	UserAgents []string
	Allow      []string
	Disallow   []string
	CrawlDelay float64
}

var commonDisallow = []string{
	"/api/", "/_next/", "/admin/", "/preview/", "/draft/",
	"/temp/", "/test/", "/.well-known/", "/sw.js",
}

// DefaultRobotsGroups returns the production crawler policy.
func DefaultRobotsGroups() []RobotsGroup {
	general := append(append([]string(nil), commonDisallow...),
		"/login/", "/register/", "/account/", "/dashboard/", "/maintenance/")
	ai := append(append([]string(nil), commonDisallow...), "/contact/", "/team/", "/privacy/")
	return []RobotsGroup{
		{
			UserAgents: []string{"*"},
			Allow:      []string{"/", "/blog/", "/service/", "/case/", "/team/", "/contact/", "/images/"},
			Disallow:   general,
			CrawlDelay: 1,
		},
		{
			UserAgents: []string{"Googlebot", "Bingbot"},
			Allow:      []string{"/"},
			Disallow:   commonDisallow,
		},
		{
			UserAgents: []string{"GPTBot", "ClaudeBot", "CCBot"},
			Allow:      []string{"/", "/blog/", "/service/"},
			Disallow:   ai,
			CrawlDelay: 2,
		},
	}
}

// BuildRobots renders robots.txt for the given groups.
func BuildRobots(site Site, groups []RobotsGroup) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, ua := range g.UserAgents {
			b.WriteString("User-agent: " + ua + "\n")
		}
		for _, p := range g.Allow {
			b.WriteString("Allow: " + p + "\n")
		}
		for _, p := range g.Disallow {
			b.WriteString("Disallow: " + p + "\n")
		}
		if g.CrawlDelay > 0 {
			b.WriteString("Crawl-delay: " + strconv.FormatFloat(g.CrawlDelay, 'f', -1, 64) + "\n")
		}
	}
	b.WriteString("\nSitemap: " + site.Base() + "/sitemap.xml\n")
	b.WriteString("Host: " + site.Base() + "\n")
	return b.String()
}
