// Package rr defines the GNS resource record model: record types, payload
// accessors for the GNS-specific types (PKEY, GNS2DNS, VPN, LEHO), conversion
// from and to DNS resource records and a binary record-set codec.
package rr

import (
	"fmt"
	"time"

	"github.com/miekg/dns"
)

// Type is a GNS record type. Values below 2^16 are plain DNS record types;
// the GNS-specific types live above that range.
type Type uint32

const (
	TypeAny   Type = 0
	TypeA     Type = Type(dns.TypeA)
	TypeNS    Type = Type(dns.TypeNS)
	TypeCNAME Type = Type(dns.TypeCNAME)
	TypeSOA   Type = Type(dns.TypeSOA)
	TypePTR   Type = Type(dns.TypePTR)
	TypeMX    Type = Type(dns.TypeMX)
	TypeTXT   Type = Type(dns.TypeTXT)
	TypeAAAA  Type = Type(dns.TypeAAAA)
	TypeSRV   Type = Type(dns.TypeSRV)

	TypePKEY    Type = 65536
	TypeNICK    Type = 65537
	TypeLEHO    Type = 65538
	TypeVPN     Type = 65539
	TypeGNS2DNS Type = 65540
)

// String implements `fmt.Stringer`
func (t Type) String() string {
	switch t {
	case TypeAny:
		return "ANY"
	case TypePKEY:
		return "PKEY"
	case TypeNICK:
		return "NICK"
	case TypeLEHO:
		return "LEHO"
	case TypeVPN:
		return "VPN"
	case TypeGNS2DNS:
		return "GNS2DNS"
	}

	if t < 1<<16 {
		if s, ok := dns.TypeToString[uint16(t)]; ok {
			return s
		}
	}

	return fmt.Sprintf("TYPE%d", uint32(t))
}

// IsAddress reports whether the type carries an IP address
func (t Type) IsAddress() bool {
	return t == TypeA || t == TypeAAAA
}

// Record is one GNS resource record
type Record struct {
	// Type of the record
	Type Type

	// Data is the externally defined binary payload of the record
	Data []byte

	// Expiry is the absolute expiration time.
	// The zero value means unknown / non-authoritative.
	Expiry time.Time
}

// Expired reports whether the record's expiration time has passed
func (r *Record) Expired(now time.Time) bool {
	return !r.Expiry.IsZero() && r.Expiry.Before(now)
}

// Matches reports whether the record satisfies a query for the desired type
func (r *Record) Matches(desired Type) bool {
	return desired == TypeAny || r.Type == desired
}

// FirstOfType returns the first record of the wanted type, or nil
func FirstOfType(records []*Record, t Type) *Record {
	for _, rec := range records {
		if rec.Type == t {
			return rec
		}
	}

	return nil
}
