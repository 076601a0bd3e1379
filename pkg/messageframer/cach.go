package messageframer

import "math/bits"

// CACH is the decoded Common Announcement Channel prefix carried by
// base-station-sourced bursts: the first 12 dibits (24 bits, 3 bytes)
// of Burst.Bits.
//
// The real ETSI CACH packs a Hamming(7,4)-protected short-LC fragment
// alongside the timeslot/LCSS flags; this decodes only what the
// framer needs (timeslot and a parity check), using a 4-bit parity
// nibble folded from the short-LC payload bytes rather than the full
// Hamming code, since downstream short-LC reassembly is out of scope.
type CACH struct {
	Timeslot int
	Valid    bool
}

// ParseCACH decodes the CACH prefix from the first 3 bytes of a
// packed burst.
func ParseCACH(prefix [3]byte) CACH {
	ts := 0
	if prefix[0]&0x80 != 0 {
		ts = 1
	}
	storedParity := prefix[0] & 0x0F
	computedParity := byte(bits.OnesCount8(prefix[1])^bits.OnesCount8(prefix[2])) & 0x0F
	return CACH{Timeslot: ts, Valid: storedParity == computedParity}
}
