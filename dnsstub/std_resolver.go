package dnsstub

import (
	"context"
	"net"

	"github.com/gnunet-go/gns/resolver"
	"github.com/gnunet-go/gns/util"
)

// StdResolver resolves hostnames through the system resolver. Addresses are
// delivered one by one, terminated by a nil sentinel; errors surface as an
// empty delivery, matching the fallback path's failure convention.
type StdResolver struct {
	resolver *net.Resolver
}

// NewStdResolver creates a resolver backed by the system configuration
func NewStdResolver() *StdResolver {
	return &StdResolver{resolver: net.DefaultResolver}
}

// LookupIP implements resolver.StdResolver
func (s *StdResolver) LookupIP(hostname string, family resolver.Family,
	callback func(ip net.IP),
) resolver.SubOp {
	ctx, cancel := context.WithCancel(context.Background())
	op := util.NewAsyncOp(cancel)

	network := "ip"

	switch family {
	case resolver.FamilyIPv4:
		network = "ip4"
	case resolver.FamilyIPv6:
		network = "ip6"
	}

	go func() {
		ips, _ := s.resolver.LookupIP(ctx, network, hostname)

		op.Deliver(func() {
			for _, ip := range ips {
				callback(ip)
			}

			callback(nil)
		})
	}()

	return op
}
