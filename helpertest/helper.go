// Package helpertest contains gomega matchers shared by the test suites.
package helpertest

import (
	"net"

	"github.com/onsi/gomega"
	"github.com/onsi/gomega/types"

	"github.com/gnunet-go/gns/rr"
)

// ToTypes maps a record set onto its record types
func ToTypes(records []*rr.Record) []rr.Type {
	out := make([]rr.Type, len(records))
	for i, rec := range records {
		out[i] = rec.Type
	}

	return out
}

// ToAddresses extracts the addresses of all A/AAAA records as strings
func ToAddresses(records []*rr.Record) []string {
	var out []string

	for _, rec := range records {
		if !rec.Type.IsAddress() {
			continue
		}

		if ip, err := rr.IP(rec); err == nil {
			out = append(out, ip.String())
		}
	}

	return out
}

// HaveAddress checks that the record set holds an A/AAAA record with ip
func HaveAddress(ip string) types.GomegaMatcher {
	canonical := net.ParseIP(ip).String()

	return gomega.WithTransform(ToAddresses, gomega.ContainElement(canonical))
}

// HaveRecordOfType checks that the record set holds a record of type t
func HaveRecordOfType(t rr.Type) types.GomegaMatcher {
	return gomega.WithTransform(ToTypes, gomega.ContainElement(t))
}
