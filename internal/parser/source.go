package parser

import (
	"net/url"
	"strings"
)

// Kind identifies which extractor handles a page.
type Kind int

const (
	KindGeneric Kind = iota
	KindRIA
	KindTASS
	KindInterfax
	KindDoctorPiter
)

type sourceInfo struct {
	domain string
	label  string
	base   string
}

var sources = map[Kind]sourceInfo{
	KindRIA:         {domain: "ria.ru", label: "RIA.ru", base: "https://ria.ru"},
	KindTASS:        {domain: "tass.ru", label: "TASS", base: "https://tass.ru"},
	KindInterfax:    {domain: "interfax.ru", label: "Интерфакс", base: "https://www.interfax.ru"},
	KindDoctorPiter: {domain: "doctorpiter.ru", label: "Доктор Питер", base: "https://doctorpiter.ru"},
}

// knownKinds fixes the host lookup order.
var knownKinds = []Kind{KindRIA, KindTASS, KindInterfax, KindDoctorPiter}

func (k Kind) String() string {
	switch k {
	case KindRIA:
		return "ria"
	case KindTASS:
		return "tass"
	case KindInterfax:
		return "interfax"
	case KindDoctorPiter:
		return "doctorpiter"
	default:
		return "generic"
	}
}

// Domain returns the registrable domain of a known source, or "".
func (k Kind) Domain() string { return sources[k].domain }

// BaseURL returns the scheme+host relative links of the source resolve against.
func (k Kind) BaseURL() string { return sources[k].base }

// Label returns the human-readable source label, or "" for generic pages.
func (k Kind) Label() string { return sources[k].label }

// KindForHost maps a hostname to the source serving it.
func KindForHost(host string) Kind {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, k := range knownKinds {
		d := sources[k].domain
		if host == d || strings.HasSuffix(host, "."+d) {
			return k
		}
	}
	return KindGeneric
}

// KindForURL maps an absolute URL to the source serving it.
func KindForURL(rawURL string) Kind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return KindGeneric
	}
	return KindForHost(u.Hostname())
}

// SourceName returns the label of a known source or the URL's host.
func SourceName(rawURL string) string {
	if k := KindForURL(rawURL); k != KindGeneric {
		return k.Label()
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "Unknown"
	}
	return u.Host
}

// onDomain reports whether an absolute link stays on the given domain.
func onDomain(link, domain string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == domain || strings.HasSuffix(host, "."+domain)
}
