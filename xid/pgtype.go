package xid

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"

	"github.com/jackc/pgtype"
)

// ---------------------------- pgtype.Value ----------------------------

func (v *TransactionID) Set(src interface{}) error {
	switch s := src.(type) {
	case nil:
		return ErrNull
	case TransactionID:
		*v = s
	case *TransactionID:
		if s == nil {
			return ErrNull
		}
		*v = *s
	case uint32:
		*v = TransactionID(s)
	case *uint32:
		if s == nil {
			return ErrNull
		}
		*v = TransactionID(*s)
	case uint64:
		if s > math.MaxUint32 {
			return fmt.Errorf("%w: %d overflows xid", ErrInvalidFormat, s)
		}
		*v = TransactionID(s)
	case int64:
		if s < 0 || s > math.MaxUint32 {
			return fmt.Errorf("%w: %d out of xid range", ErrInvalidFormat, s)
		}
		*v = TransactionID(s)
	case int:
		return v.Set(int64(s))
	case string:
		n, err := DecodeText([]byte(s))
		if err != nil {
			return err
		}
		*v = n
	default:
		return fmt.Errorf("cannot convert %T to %s", src, TypeName)
	}
	return nil
}

func (v TransactionID) Get() interface{} {
	return uint32(v)
}

func (v TransactionID) AssignTo(dst interface{}) error {
	switch d := dst.(type) {
	case *TransactionID:
		*d = v
	case *uint32:
		*d = uint32(v)
	case *uint64:
		*d = uint64(v)
	case *int64:
		*d = int64(v)
	case *string:
		*d = v.String()
	default:
		return fmt.Errorf("cannot assign %s to %T", TypeName, dst)
	}
	return nil
}

// ----------------------------- wire codec -----------------------------

func (v TransactionID) EncodeBinary(_ *pgtype.ConnInfo, buf []byte) ([]byte, error) {
	return Encode(buf, v), nil
}

func (v TransactionID) EncodeText(_ *pgtype.ConnInfo, buf []byte) ([]byte, error) {
	return strconv.AppendUint(buf, uint64(v), 10), nil
}

func (v *TransactionID) DecodeBinary(_ *pgtype.ConnInfo, src []byte) error {
	if src == nil {
		return ErrNull
	}
	n, err := DecodeBinary(src)
	if err != nil {
		return err
	}
	*v = n
	return nil
}

func (v *TransactionID) DecodeText(_ *pgtype.ConnInfo, src []byte) error {
	if src == nil {
		return ErrNull
	}
	n, err := DecodeText(src)
	if err != nil {
		return err
	}
	*v = n
	return nil
}

// ---------------------------- database/sql ----------------------------

// Scan implements sql.Scanner.
func (v *TransactionID) Scan(src interface{}) error {
	switch s := src.(type) {
	case nil:
		return ErrNull
	case []byte:
		return v.DecodeText(nil, s)
	case string:
		return v.DecodeText(nil, []byte(s))
	case int64:
		return v.Set(s)
	}
	return fmt.Errorf("cannot scan %T into %s", src, TypeName)
}

// Value implements driver.Valuer.
func (v TransactionID) Value() (driver.Value, error) {
	return int64(v), nil
}
