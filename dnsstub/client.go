// Package dnsstub implements the DNS-side collaborators of the resolver:
// a stub client for one-shot queries against a concrete server and a
// wrapper around the system resolver for the top-level fallback path.
package dnsstub

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/gnunet-go/gns/resolver"
	"github.com/gnunet-go/gns/util"
)

const dnsPort = "53"

// Client sends single DNS queries over UDP, retrying truncated responses
// over TCP
type Client struct {
	udpClient, tcpClient *dns.Client
	port                 string
}

// NewClient creates a stub client with the given per-exchange timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{
		udpClient: &dns.Client{Net: "udp", Timeout: timeout},
		tcpClient: &dns.Client{Net: "tcp", Timeout: timeout},
		port:      dnsPort,
	}
}

// WithPort overrides the server port, for tests
func (c *Client) WithPort(port string) *Client {
	c.port = port

	return c
}

// Exchange implements resolver.DNSStub
func (c *Client) Exchange(server net.IP, rawQuery []byte,
	callback func(rawResponse []byte, err error),
) resolver.SubOp {
	ctx, cancel := context.WithCancel(context.Background())
	op := util.NewAsyncOp(cancel)

	go func() {
		raw, err := c.exchange(ctx, server, rawQuery)
		op.Deliver(func() { callback(raw, err) })
	}()

	return op
}

func (c *Client) exchange(ctx context.Context, server net.IP, rawQuery []byte) ([]byte, error) {
	msg := new(dns.Msg)
	if err := msg.Unpack(rawQuery); err != nil {
		return nil, fmt.Errorf("can't unpack query: %w", err)
	}

	addr := net.JoinHostPort(server.String(), c.port)

	response, _, err := c.udpClient.ExchangeContext(ctx, msg, addr)
	if err == nil && response.Truncated {
		response, _, err = c.tcpClient.ExchangeContext(ctx, msg, addr)
	}

	if err != nil {
		return nil, fmt.Errorf("exchange with %s failed: %w", addr, err)
	}

	raw, err := response.Pack()
	if err != nil {
		return nil, fmt.Errorf("can't pack response: %w", err)
	}

	return raw, nil
}
