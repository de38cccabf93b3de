package rr

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// maxNameWire is the DNS limit for one encoded domain name
const maxNameWire = 256

// packName encodes a domain name into its uncompressed wire form
func packName(name string) ([]byte, error) {
	buf := make([]byte, maxNameWire)

	n, err := dns.PackDomainName(dns.Fqdn(name), buf, 0, nil, false)
	if err != nil {
		return nil, fmt.Errorf("can't encode name '%s': %w", name, err)
	}

	return buf[:n], nil
}

// unpackName decodes one domain name and returns it without the trailing dot
func unpackName(data []byte, off int) (string, int, error) {
	name, off, err := dns.UnpackDomainName(data, off)
	if err != nil {
		return "", 0, fmt.Errorf("can't decode embedded name: %w", err)
	}

	return strings.TrimSuffix(name, "."), off, nil
}

// FromRR converts a DNS resource record into a GNS record. The record's TTL
// is turned into an absolute expiration relative to now.
//
// Only the record types the resolver hands back from delegated DNS are
// supported; everything else is rejected as unsupported.
func FromRR(rrec dns.RR, now time.Time) (*Record, error) {
	expiry := now.Add(time.Duration(rrec.Header().Ttl) * time.Second)

	switch v := rrec.(type) {
	case *dns.A:
		return NewA(v.A, expiry)
	case *dns.AAAA:
		return NewAAAA(v.AAAA, expiry)
	case *dns.CNAME:
		return nameRecord(TypeCNAME, v.Target, expiry)
	case *dns.PTR:
		return nameRecord(TypePTR, v.Ptr, expiry)
	case *dns.NS:
		return nameRecord(TypeNS, v.Ns, expiry)
	case *dns.MX:
		name, err := packName(v.Mx)
		if err != nil {
			return nil, err
		}

		data := make([]byte, 2, 2+len(name))
		binary.BigEndian.PutUint16(data, v.Preference)
		data = append(data, name...)

		return &Record{Type: TypeMX, Data: data, Expiry: expiry}, nil
	case *dns.SRV:
		name, err := packName(v.Target)
		if err != nil {
			return nil, err
		}

		data := make([]byte, 6, 6+len(name))
		binary.BigEndian.PutUint16(data[0:], v.Priority)
		binary.BigEndian.PutUint16(data[2:], v.Weight)
		binary.BigEndian.PutUint16(data[4:], v.Port)
		data = append(data, name...)

		return &Record{Type: TypeSRV, Data: data, Expiry: expiry}, nil
	case *dns.SOA:
		mname, err := packName(v.Ns)
		if err != nil {
			return nil, err
		}

		rname, err := packName(v.Mbox)
		if err != nil {
			return nil, err
		}

		data := make([]byte, 0, len(mname)+len(rname)+20)
		data = append(data, mname...)
		data = append(data, rname...)

		var counters [20]byte
		binary.BigEndian.PutUint32(counters[0:], v.Serial)
		binary.BigEndian.PutUint32(counters[4:], v.Refresh)
		binary.BigEndian.PutUint32(counters[8:], v.Retry)
		binary.BigEndian.PutUint32(counters[12:], v.Expire)
		binary.BigEndian.PutUint32(counters[16:], v.Minttl)
		data = append(data, counters[:]...)

		return &Record{Type: TypeSOA, Data: data, Expiry: expiry}, nil
	}

	return nil, fmt.Errorf("unsupported DNS record type %s",
		dns.TypeToString[rrec.Header().Rrtype])
}

func nameRecord(t Type, target string, expiry time.Time) (*Record, error) {
	data, err := packName(target)
	if err != nil {
		return nil, err
	}

	return &Record{Type: t, Data: data, Expiry: expiry}, nil
}

// ToRR converts a GNS record back into a DNS resource record owned by owner.
// The absolute expiration is turned into a remaining TTL relative to now.
func ToRR(r *Record, owner string, now time.Time) (dns.RR, error) {
	hdr := dns.RR_Header{
		Name:   dns.Fqdn(owner),
		Rrtype: uint16(r.Type),
		Class:  dns.ClassINET,
		Ttl:    remainingTTL(r.Expiry, now),
	}

	switch r.Type {
	case TypeA:
		ip, err := IP(r)
		if err != nil {
			return nil, err
		}

		return &dns.A{Hdr: hdr, A: ip}, nil
	case TypeAAAA:
		ip, err := IP(r)
		if err != nil {
			return nil, err
		}

		return &dns.AAAA{Hdr: hdr, AAAA: ip}, nil
	case TypeCNAME:
		name, _, err := unpackName(r.Data, 0)
		if err != nil {
			return nil, err
		}

		return &dns.CNAME{Hdr: hdr, Target: dns.Fqdn(name)}, nil
	case TypePTR:
		name, _, err := unpackName(r.Data, 0)
		if err != nil {
			return nil, err
		}

		return &dns.PTR{Hdr: hdr, Ptr: dns.Fqdn(name)}, nil
	case TypeNS:
		name, _, err := unpackName(r.Data, 0)
		if err != nil {
			return nil, err
		}

		return &dns.NS{Hdr: hdr, Ns: dns.Fqdn(name)}, nil
	case TypeMX:
		if len(r.Data) < 3 {
			return nil, fmt.Errorf("wrong MX payload length: %d", len(r.Data))
		}

		name, _, err := unpackName(r.Data, 2)
		if err != nil {
			return nil, err
		}

		return &dns.MX{
			Hdr:        hdr,
			Preference: binary.BigEndian.Uint16(r.Data),
			Mx:         dns.Fqdn(name),
		}, nil
	case TypeSRV:
		if len(r.Data) < 7 {
			return nil, fmt.Errorf("wrong SRV payload length: %d", len(r.Data))
		}

		name, _, err := unpackName(r.Data, 6)
		if err != nil {
			return nil, err
		}

		return &dns.SRV{
			Hdr:      hdr,
			Priority: binary.BigEndian.Uint16(r.Data[0:]),
			Weight:   binary.BigEndian.Uint16(r.Data[2:]),
			Port:     binary.BigEndian.Uint16(r.Data[4:]),
			Target:   dns.Fqdn(name),
		}, nil
	case TypeSOA:
		mname, off, err := unpackName(r.Data, 0)
		if err != nil {
			return nil, err
		}

		rname, off, err := unpackName(r.Data, off)
		if err != nil {
			return nil, err
		}

		if len(r.Data) < off+20 {
			return nil, fmt.Errorf("wrong SOA payload length: %d", len(r.Data))
		}

		return &dns.SOA{
			Hdr:     hdr,
			Ns:      dns.Fqdn(mname),
			Mbox:    dns.Fqdn(rname),
			Serial:  binary.BigEndian.Uint32(r.Data[off:]),
			Refresh: binary.BigEndian.Uint32(r.Data[off+4:]),
			Retry:   binary.BigEndian.Uint32(r.Data[off+8:]),
			Expire:  binary.BigEndian.Uint32(r.Data[off+12:]),
			Minttl:  binary.BigEndian.Uint32(r.Data[off+16:]),
		}, nil
	}

	return nil, fmt.Errorf("record type %s has no DNS form", r.Type)
}

func remainingTTL(expiry, now time.Time) uint32 {
	if expiry.IsZero() || expiry.Before(now) {
		return 0
	}

	return uint32(expiry.Sub(now).Seconds())
}
