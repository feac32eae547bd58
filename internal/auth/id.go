package auth

import (
	"github.com/google/uuid"
)

// Crockford's base32, the TypeID alphabet.
const idAlphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// NewID mints a player id: a UUIDv7 rendered as 26 characters of base32.
// Ids sort by creation time, which keeps ledger rows and logs readable.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("auth: minting uuid: " + err.Error())
	}
	return encodeID(id)
}

// encodeID packs 128 bits into 26 base32 characters, most significant
// first. The leading character only ever uses 3 bits.
func encodeID(id [16]byte) string {
	var out [26]byte
	var acc uint64
	bits := 0
	pos := 25
	for i := 15; i >= 0; i-- {
		acc |= uint64(id[i]) << bits
		bits += 8
		for bits >= 5 && pos >= 0 {
			out[pos] = idAlphabet[acc&0x1f]
			acc >>= 5
			bits -= 5
			pos--
		}
	}
	for pos >= 0 {
		out[pos] = idAlphabet[acc&0x1f]
		acc >>= 5
		pos--
	}
	return string(out[:])
}
