package ws

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// newPlayerID returns a ULID with its random part moved in front of the
// timestamp. Display ids are the leading characters, so they must differ
// between players connected in the same minute.
func newPlayerID() string {
	s := ulid.MustNew(ulid.Now(), rand.Reader).String()
	return s[10:] + s[:10]
}
