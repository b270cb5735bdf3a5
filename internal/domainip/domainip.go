// Package domainip maps domain names to stable pseudo IPv4 addresses.
package domainip

import "net/netip"

// Hash returns the 31-multiplier rolling hash of s with 32-bit wraparound.
func Hash(s string) uint32 {
	var h int32
	for _, c := range s {
		h = h*31 + int32(c)
	}
	return uint32(h)
}

// Assign returns the pseudo address for domain. The same domain always maps to
// the same address; the first octet stays within [1,223] and the last within [1,254].
func Assign(domain string) string {
	return AssignAddr(domain).String()
}

// AssignAddr is Assign returning a netip.Addr.
func AssignAddr(domain string) netip.Addr {
	h := Hash(domain)

	o1 := byte(h>>24)%223 + 1
	o2 := byte(h >> 16)
	o3 := byte(h >> 8)
	o4 := byte(h)%254 + 1

	return netip.AddrFrom4([4]byte{o1, o2, o3, o4})
}
