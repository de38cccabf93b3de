package resolver

import (
	"strings"

	"github.com/gnunet-go/gns/log"
	"github.com/gnunet-go/gns/zone"
)

const (
	// gnsTLD anchors a name in the configured starting zone
	gnsTLD = ".gnu"

	// zkeyTLD marks a name that carries its zone key in a label
	zkeyTLD = ".zkey"
)

// classifyLocked decides which of the three resolution modes the name takes:
// plain DNS fallback, zkey (key encoded in the name) or the starting zone.
// Classification failures complete the handle; the callback still fires
// asynchronously, never from inside Lookup.
func (h *Handle) classifyLocked(name string) {
	name = strings.ToLower(strings.TrimSuffix(name, "."))

	switch {
	case name == "zkey" || strings.HasSuffix(name, zkeyTLD):
		h.classifyZkeyLocked(strings.TrimSuffix(strings.TrimSuffix(name, "zkey"), "."))
	case name == "gnu" || strings.HasSuffix(name, gnsTLD):
		h.classifyGNSLocked(strings.TrimSuffix(strings.TrimSuffix(name, "gnu"), "."))
	default:
		// no GNS suffix at all: one standard hostname resolution,
		// namestore and DHT are never consulted
		h.name = name
		h.startFallbackLocked()
	}
}

// classifyGNSLocked seeds the chain for a ".gnu" name
func (h *Handle) classifyGNSLocked(remainder string) {
	if h.startZone == nil {
		h.failLocked("no starting zone configured for '%s%s'", remainder, gnsTLD)

		return
	}

	h.name = remainder
	h.pos = len(remainder)
	h.pushGNSHop(h.startZone)
	h.stepLocked()
}

// classifyZkeyLocked seeds the chain for a ".zkey" name, whose right-most
// remaining label encodes the zone key itself
func (h *Handle) classifyZkeyLocked(remainder string) {
	idx := strings.LastIndexByte(remainder, '.')
	keyLabel := remainder[idx+1:]

	if keyLabel == "" {
		h.failLocked("name lacks a zone key label before '%s'", zkeyTLD)

		return
	}

	zoneKey, err := zone.ParseZkey(keyLabel)
	if err != nil {
		h.failLocked("can't decode zone key label: %v", err)

		return
	}

	if idx < 0 {
		h.name = ""
	} else {
		h.name = remainder[:idx]
	}

	h.pos = len(h.name)
	h.pushGNSHop(zoneKey)
	h.stepLocked()
}

// restartLocked starts the resolution over with a new name, keeping the
// recursion guard. Used when a CNAME points at an absolute name.
func (h *Handle) restartLocked(name string) {
	h.chain = nil
	h.dnsResults = nil
	h.pos = 0

	h.log.Debugf("restarting resolution at '%s'", log.EscapeInput(name))

	h.classifyLocked(name)
}
