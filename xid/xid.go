// Package xid maps PostgreSQL's 32-bit transaction identifier type (xid, the
// type of the xmin system column) onto an unsigned Go value that pgx can bind
// as a query parameter and scan out of a result row.
package xid

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgio"
	"github.com/jackc/pgtype"
)

const (
	// OID is the server's type oid for xid. It is not int4 (23).
	OID = pgtype.XIDOID

	TypeName = "xid"

	// encodedLen is the size of a binary xid on the wire.
	encodedLen = 4
)

var (
	ErrTruncatedInput = errors.New("xid_truncated_input")
	ErrInvalidFormat  = errors.New("xid_invalid_format")
	ErrNull           = errors.New("xid_null")
)

// TransactionID is an opaque row-version token read from xmin. Only equality
// is meaningful; the server's counter wraps, so values are not ordered.
type TransactionID uint32

// Encode appends the 4-byte big-endian form of v to buf.
func Encode(buf []byte, v TransactionID) []byte {
	return pgio.AppendUint32(buf, uint32(v))
}

// DecodeBinary reads a binary-format xid.
func DecodeBinary(src []byte) (TransactionID, error) {
	if len(src) < encodedLen {
		return 0, fmt.Errorf("%w: got %d bytes, need %d", ErrTruncatedInput, len(src), encodedLen)
	}
	if len(src) > encodedLen {
		return 0, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidFormat, len(src), encodedLen)
	}
	n := uint32(src[0])<<24 | uint32(src[1])<<16 | uint32(src[2])<<8 | uint32(src[3])
	return TransactionID(n), nil
}

// DecodeText reads a text-format xid: an unsigned decimal no larger than
// 4294967295. Signs, whitespace and empty input are rejected.
func DecodeText(src []byte) (TransactionID, error) {
	n, err := strconv.ParseUint(string(src), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, src)
	}
	return TransactionID(n), nil
}

// Decode dispatches on the pgx result format code.
func Decode(format int16, src []byte) (TransactionID, error) {
	switch format {
	case pgtype.BinaryFormatCode:
		return DecodeBinary(src)
	case pgtype.TextFormatCode:
		return DecodeText(src)
	default:
		return 0, fmt.Errorf("%w: unknown format code %d", ErrInvalidFormat, format)
	}
}

// DataType is the registration record for a pgtype.ConnInfo. Registering it
// replaces the built-in xid handler so columns of this type come back as
// TransactionID.
func DataType() pgtype.DataType {
	var v TransactionID
	return pgtype.DataType{Value: &v, Name: TypeName, OID: OID}
}

// Register installs the codec on ci.
func Register(ci *pgtype.ConnInfo) {
	ci.RegisterDataType(DataType())
}

func (v TransactionID) String() string {
	return strconv.FormatUint(uint64(v), 10)
}
