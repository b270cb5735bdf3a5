// Package catalog turns the browser page list and the mail client inbox into
// the traffic sources the packet synthesizer samples from.
package catalog

import (
	"net/netip"
	"strings"

	"netmonsim/internal/domainip"
	"netmonsim/internal/models"
)

// Groups lists the source groups in sampling order.
var Groups = []models.Group{models.GroupWebsite, models.GroupEmail, models.GroupSystem}

// Catalog holds the three source groups. It is built once and never mutated.
type Catalog struct {
	groups  map[models.Group][]models.TrafficSource
	indexes map[models.Group]map[string]int
}

// Build derives the website and email groups from the external catalogs.
// A nil or empty system list is replaced by DefaultSystemSources.
func Build(pages []models.Page, emails []models.Email, system []models.TrafficSource) *Catalog {
	return New(websiteSources(pages), emailSources(emails), system)
}

// New assembles a catalog from prepared sources. Addresses are assigned where
// missing and sources without patterns are dropped.
func New(website, email, system []models.TrafficSource) *Catalog {
	if len(system) == 0 {
		system = DefaultSystemSources()
	}

	c := &Catalog{
		groups:  make(map[models.Group][]models.TrafficSource, len(Groups)),
		indexes: make(map[models.Group]map[string]int, len(Groups)),
	}
	c.add(models.GroupWebsite, website)
	c.add(models.GroupEmail, email)
	c.add(models.GroupSystem, system)

	if len(c.groups[models.GroupSystem]) == 0 {
		c.add(models.GroupSystem, DefaultSystemSources())
	}
	return c
}

func (c *Catalog) add(group models.Group, sources []models.TrafficSource) {
	out := make([]models.TrafficSource, 0, len(sources))
	index := make(map[string]int, len(sources))

	for _, src := range sources {
		if len(src.Patterns) == 0 || src.TotalWeight() <= 0 {
			continue
		}
		src.Identity = strings.ToLower(strings.TrimSpace(src.Identity))
		src.Group = group
		if src.Address == "" {
			src.Address = AddressFor(src.Identity)
		}
		src.Patterns = append([]models.Pattern(nil), src.Patterns...)

		if _, dup := index[src.Identity]; !dup {
			index[src.Identity] = len(out)
		}
		out = append(out, src)
	}

	c.groups[group] = out
	c.indexes[group] = index
}

// AddressFor returns the literal address when identity is an IP and the
// assigned pseudo address otherwise.
func AddressFor(identity string) string {
	if addr, err := netip.ParseAddr(identity); err == nil {
		return addr.String()
	}
	return domainip.Assign(identity)
}

// Sources returns the sources of group. The slice must not be modified.
func (c *Catalog) Sources(group models.Group) []models.TrafficSource {
	return c.groups[group]
}

// NonEmptyGroups returns the groups that have at least one source.
func (c *Catalog) NonEmptyGroups() []models.Group {
	var out []models.Group
	for _, g := range Groups {
		if len(c.groups[g]) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// Website finds the website source for a navigated URL.
func (c *Catalog) Website(rawURL string) (models.TrafficSource, bool) {
	return c.find(models.GroupWebsite, HostFromURL(rawURL))
}

// Email finds the mail server source for a sender address.
func (c *Catalog) Email(sender string) (models.TrafficSource, bool) {
	return c.find(models.GroupEmail, MailHost(sender))
}

// Lookup finds a source by identity in any group.
func (c *Catalog) Lookup(identity string) (models.TrafficSource, bool) {
	identity = strings.ToLower(strings.TrimSpace(identity))
	for _, g := range Groups {
		if src, ok := c.find(g, identity); ok {
			return src, true
		}
	}
	return models.TrafficSource{}, false
}

func (c *Catalog) find(group models.Group, identity string) (models.TrafficSource, bool) {
	i, ok := c.indexes[group][identity]
	if !ok {
		return models.TrafficSource{}, false
	}
	return c.groups[group][i], true
}

// Len returns the total number of sources.
func (c *Catalog) Len() int {
	n := 0
	for _, g := range Groups {
		n += len(c.groups[g])
	}
	return n
}

func websiteSources(pages []models.Page) []models.TrafficSource {
	sources := make([]models.TrafficSource, 0, len(pages))
	for _, page := range pages {
		host := HostFromURL(page.URL)
		if host == "" {
			continue
		}
		dangerous := page.SecurityLevel == models.ClassDangerous
		sources = append(sources, models.TrafficSource{
			Identity:       host,
			Suspicious:     dangerous,
			Classification: page.SecurityLevel,
			Patterns:       websitePatterns(page, dangerous),
		})
	}
	return sources
}

// emailSources collapses senders onto one source per mail host. A host is
// suspicious when any of its messages is.
func emailSources(emails []models.Email) []models.TrafficSource {
	var order []string
	suspicious := make(map[string]bool)

	for _, e := range emails {
		host := MailHost(e.Sender)
		if _, seen := suspicious[host]; !seen {
			order = append(order, host)
		}
		suspicious[host] = suspicious[host] || e.Suspicious
	}

	sources := make([]models.TrafficSource, 0, len(order))
	for _, host := range order {
		sources = append(sources, models.TrafficSource{
			Identity:   host,
			Suspicious: suspicious[host],
			Patterns:   emailPatterns(suspicious[host]),
		})
	}
	return sources
}
