package store

import (
	"crypto/sha512"
	"database/sql"
	"encoding/hex"
	"hash"
	"strconv"

	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver the store opens. It is the stock
// sqlite3 driver plus the SHA512 aggregate.
const DriverName = "switchblade_sqlite3"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterAggregator("sha512", newDigest, true)
		},
	})
}

// digest backs SHA512(x). Every non-NULL value in the group is hashed in
// the order SQLite steps through it.
type digest struct {
	h hash.Hash
}

func newDigest() *digest {
	return &digest{h: sha512.New()}
}

func (d *digest) Step(v any) {
	switch x := v.(type) {
	case nil:
	case string:
		d.h.Write([]byte(x))
	case []byte:
		d.h.Write(x)
	case int64:
		d.h.Write([]byte(strconv.FormatInt(x, 10)))
	case float64:
		d.h.Write([]byte(strconv.FormatFloat(x, 'g', -1, 64)))
	}
}

func (d *digest) Done() string {
	return hex.EncodeToString(d.h.Sum(nil))
}
