package rr

import (
	"fmt"
)

// RewriteNames applies translate to every domain name embedded in the
// record's payload and re-encodes the payload. Record types without embedded
// names are returned unchanged.
//
// The post-processor uses this to turn relative ".+" names into their
// absolute zkey form once the owning zone is known.
func RewriteNames(r *Record, translate func(string) string) (*Record, error) {
	switch r.Type {
	case TypeCNAME, TypePTR, TypeNS:
		name, _, err := unpackName(r.Data, 0)
		if err != nil {
			return nil, err
		}

		data, err := packName(translate(name))
		if err != nil {
			return nil, err
		}

		return &Record{Type: r.Type, Data: data, Expiry: r.Expiry}, nil
	case TypeMX:
		if len(r.Data) < 3 {
			return nil, errTruncated(r)
		}

		name, _, err := unpackName(r.Data, 2)
		if err != nil {
			return nil, err
		}

		packed, err := packName(translate(name))
		if err != nil {
			return nil, err
		}

		data := make([]byte, 2, 2+len(packed))
		copy(data, r.Data[:2])
		data = append(data, packed...)

		return &Record{Type: TypeMX, Data: data, Expiry: r.Expiry}, nil
	case TypeSRV:
		if len(r.Data) < 7 {
			return nil, errTruncated(r)
		}

		name, _, err := unpackName(r.Data, 6)
		if err != nil {
			return nil, err
		}

		packed, err := packName(translate(name))
		if err != nil {
			return nil, err
		}

		data := make([]byte, 6, 6+len(packed))
		copy(data, r.Data[:6])
		data = append(data, packed...)

		return &Record{Type: TypeSRV, Data: data, Expiry: r.Expiry}, nil
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
			return nil, errTruncated(r)
		}

		packedM, err := packName(translate(mname))
		if err != nil {
			return nil, err
		}

		packedR, err := packName(translate(rname))
		if err != nil {
			return nil, err
		}

		data := make([]byte, 0, len(packedM)+len(packedR)+20)
		data = append(data, packedM...)
		data = append(data, packedR...)
		data = append(data, r.Data[off:off+20]...)

		return &Record{Type: TypeSOA, Data: data, Expiry: r.Expiry}, nil
	}

	return r, nil
}

// CNAMETarget extracts the target of a CNAME record without the trailing dot
func CNAMETarget(r *Record) (string, error) {
	if r.Type != TypeCNAME {
		return "", fmt.Errorf("record type %s is not CNAME", r.Type)
	}

	name, _, err := unpackName(r.Data, 0)

	return name, err
}

func errTruncated(r *Record) error {
	return fmt.Errorf("truncated %s payload (%d bytes)", r.Type, len(r.Data))
}
