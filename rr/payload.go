package rr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/gnunet-go/gns/zone"
)

// PeerSize is the length of a peer identity inside a VPN record
const PeerSize = 32

// NewA creates an IPv4 address record
func NewA(ip net.IP, expiry time.Time) (*Record, error) {
	v4 := ip.To4()
	if v4 == nil {
		return nil, fmt.Errorf("'%s' is not an IPv4 address", ip)
	}

	return &Record{Type: TypeA, Data: []byte(v4), Expiry: expiry}, nil
}

// NewAAAA creates an IPv6 address record
func NewAAAA(ip net.IP, expiry time.Time) (*Record, error) {
	if ip.To4() != nil || ip.To16() == nil {
		return nil, fmt.Errorf("'%s' is not an IPv6 address", ip)
	}

	return &Record{Type: TypeAAAA, Data: []byte(ip.To16()), Expiry: expiry}, nil
}

// IP extracts the address of an A or AAAA record
func IP(r *Record) (net.IP, error) {
	switch r.Type {
	case TypeA:
		if len(r.Data) != net.IPv4len {
			return nil, fmt.Errorf("wrong A payload length: %d", len(r.Data))
		}
	case TypeAAAA:
		if len(r.Data) != net.IPv6len {
			return nil, fmt.Errorf("wrong AAAA payload length: %d", len(r.Data))
		}
	default:
		return nil, fmt.Errorf("record type %s carries no address", r.Type)
	}

	return net.IP(r.Data), nil
}

// NewPKEY creates a zone delegation record
func NewPKEY(target *zone.PublicKey, expiry time.Time) *Record {
	return &Record{Type: TypePKEY, Data: target.Bytes(), Expiry: expiry}
}

// PKEYZone extracts the delegated-to zone of a PKEY record
func PKEYZone(r *Record) (*zone.PublicKey, error) {
	if r.Type != TypePKEY {
		return nil, fmt.Errorf("record type %s is not PKEY", r.Type)
	}

	return zone.NewPublicKey(r.Data)
}

// NewGNS2DNS creates a DNS delegation record. The payload is the delegated
// DNS name and the authoritative server name, each zero-terminated.
func NewGNS2DNS(name, server string, expiry time.Time) *Record {
	data := make([]byte, 0, len(name)+len(server)+2)
	data = append(data, name...)
	data = append(data, 0)
	data = append(data, server...)
	data = append(data, 0)

	return &Record{Type: TypeGNS2DNS, Data: data, Expiry: expiry}
}

// GNS2DNSNames extracts delegated name and server name of a GNS2DNS record
func GNS2DNSNames(r *Record) (name, server string, err error) {
	if r.Type != TypeGNS2DNS {
		return "", "", fmt.Errorf("record type %s is not GNS2DNS", r.Type)
	}

	parts := bytes.Split(r.Data, []byte{0})
	if len(parts) != 3 || len(parts[2]) != 0 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return "", "", fmt.Errorf("malformed GNS2DNS payload (%d bytes)", len(r.Data))
	}

	return string(parts[0]), string(parts[1]), nil
}

// NewVPN creates a VPN placeholder record pointing at a tunneled service.
// Payload: 32 byte peer identity, 2 byte protocol, service name.
func NewVPN(peer [PeerSize]byte, proto uint16, service string, expiry time.Time) *Record {
	data := make([]byte, PeerSize+2, PeerSize+2+len(service))
	copy(data, peer[:])
	binary.BigEndian.PutUint16(data[PeerSize:], proto)
	data = append(data, service...)

	return &Record{Type: TypeVPN, Data: data, Expiry: expiry}
}

// VPNDetails extracts peer, protocol and service name of a VPN record
func VPNDetails(r *Record) (peer [PeerSize]byte, proto uint16, service string, err error) {
	if r.Type != TypeVPN {
		return peer, 0, "", fmt.Errorf("record type %s is not VPN", r.Type)
	}

	if len(r.Data) <= PeerSize+2 {
		return peer, 0, "", fmt.Errorf("malformed VPN payload (%d bytes)", len(r.Data))
	}

	copy(peer[:], r.Data[:PeerSize])
	proto = binary.BigEndian.Uint16(r.Data[PeerSize : PeerSize+2])
	service = string(r.Data[PeerSize+2:])

	return peer, proto, service, nil
}

// NewLEHO creates a legacy-hostname record
func NewLEHO(hostname string, expiry time.Time) *Record {
	return &Record{Type: TypeLEHO, Data: []byte(hostname), Expiry: expiry}
}
