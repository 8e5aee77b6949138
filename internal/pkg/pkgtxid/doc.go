// Package pkgtxid generates and validates transaction correlation IDs.
//
// IDs have the shape <prefix>_<epochMillis>_<random> where the random segment
// is 96 bits from crypto/rand, URL-safe base64 encoded without padding. The
// timestamp segment makes IDs roughly sortable, which helps when eyeballing
// logs; uniqueness comes from the random segment.
package pkgtxid
