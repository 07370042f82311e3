package store

import (
	"fmt"
	"time"

	"github.com/teris-io/shortid"
)

// maxNumberAttempts bounds how often an order or invoice insert is retried
// with a fresh number after hitting the unique index.
const maxNumberAttempts = 3

var numberSource = shortid.MustNew(1, shortid.DefaultABC, uint64(time.Now().UnixNano()))

// NumberFunc produces a human-readable document number such as
// "ORD-20261015-dK3x9_p".
type NumberFunc func(prefix string, now time.Time) string

// NewDocumentNumber is the default NumberFunc: a UTC date stamp plus a short
// random suffix. Uniqueness is enforced by the table's unique index.
func NewDocumentNumber(prefix string, now time.Time) string {
	suffix, err := numberSource.Generate()
	if err != nil {
		suffix = fmt.Sprintf("%x", now.UnixNano())
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), suffix)
}
