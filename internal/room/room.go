// Package room computes canonical identifiers for two-party chat rooms.
//
// A room is never created as such; its identifier is derived from the
// unordered pair of participant ids and both sides of the wire compute
// it independently.
package room

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedID is returned when a room identifier does not decompose
// into exactly two participant ids.
var ErrMalformedID = errors.New("malformed room id")

// CanonicalID maps an unordered pair of user ids to the canonical room
// identifier "min_max".
func CanonicalID(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}

// Participants decomposes a canonical room identifier into its two
// participant ids. The identifier must be two "_"-separated decimal ids
// in canonical (ascending) order.
func Participants(roomID string) (int64, int64, error) {
	parts := strings.Split(roomID, "_")
	if len(parts) != 2 {
		return 0, 0, ErrMalformedID
	}

	a, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || a <= 0 {
		return 0, 0, ErrMalformedID
	}
	b, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || b <= 0 {
		return 0, 0, ErrMalformedID
	}

	if a > b {
		return 0, 0, ErrMalformedID
	}

	return a, b, nil
}

// IsParticipant reports whether userID is one of the two ids encoded in
// roomID. A malformed identifier matches no one.
func IsParticipant(roomID string, userID int64) bool {
	a, b, err := Participants(roomID)
	if err != nil {
		return false
	}
	return userID == a || userID == b
}
