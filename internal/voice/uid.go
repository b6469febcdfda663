package voice

import (
	"hash/fnv"
	"math"
	"strconv"
)

// DeriveUID picks the numeric channel uid for an account.
// A uid issued by the server wins. Otherwise numeric account ids are used
// as is and any other id hashes to a positive 31-bit value.
func DeriveUID(serverUID *int64, accountID string) uint32 {
	if serverUID != nil && *serverUID > 0 && *serverUID <= math.MaxUint32 {
		return uint32(*serverUID)
	}
	if n, err := strconv.ParseUint(accountID, 10, 32); err == nil {
		return uint32(n)
	}
	h := fnv.New32a()
	h.Write([]byte(accountID))
	return h.Sum32() & 0x7fffffff
}
