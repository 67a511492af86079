package ipcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"

	errs "github.com/ipwatch/internal/errors"
)

const (
	openDNSResolver = "208.67.222.222:53"
	openDNSName     = "myip.opendns.com."
)

// DNSFetcher resolves a special name that the resolver answers with the
// querying address, e.g. myip.opendns.com against OpenDNS.
type DNSFetcher struct {
	Resolver string
	Name     string
	Client   *dns.Client
}

// NewOpenDNSFetcher returns a DNSFetcher against OpenDNS.
func NewOpenDNSFetcher(timeout time.Duration) *DNSFetcher {
	return &DNSFetcher{
		Resolver: openDNSResolver,
		Name:     openDNSName,
		Client:   &dns.Client{Net: "udp", Timeout: timeout},
	}
}

func (f *DNSFetcher) FetchPublicIP(ctx context.Context) (string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(f.Name), dns.TypeA)
	m.RecursionDesired = false

	resp, _, err := f.Client.ExchangeContext(ctx, m, f.Resolver)
	if err != nil {
		return "", errs.Network("dns lookup", f.Resolver, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", errs.Network("dns lookup", f.Resolver, fmt.Errorf("rcode %s", dns.RcodeToString[resp.Rcode]))
	}

	for _, rr := range resp.Answer {
		switch rec := rr.(type) {
		case *dns.A:
			return rec.A.String(), nil
		case *dns.AAAA:
			return rec.AAAA.String(), nil
		}
	}
	return "", errs.Network("dns lookup", f.Resolver, fmt.Errorf("no address record for %s", f.Name))
}
