package xid

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_BigEndian(t *testing.T) {
	got := Encode(nil, 1)
	if diff := cmp.Diff([]byte{0x00, 0x00, 0x00, 0x01}, got); diff != "" {
		t.Fatalf("Encode(1) mismatch (-want +got):\n%s", diff)
	}

	got = Encode(nil, 0x01020304)
	if diff := cmp.Diff([]byte{0x01, 0x02, 0x03, 0x04}, got); diff != "" {
		t.Fatalf("Encode(0x01020304) mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_AppendsExactlyFourBytes(t *testing.T) {
	prefix := []byte{0xAA, 0xBB}
	got := Encode(prefix, math.MaxUint32)
	require.Len(t, got, 6)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xFF, 0xFF, 0xFF, 0xFF}, got)
}

func TestBinaryRoundTrip(t *testing.T) {
	values := []TransactionID{0, 1, 2, 731, 1 << 31, math.MaxInt32, math.MaxInt32 + 1, math.MaxUint32 - 1, math.MaxUint32}
	for _, v := range values {
		got, err := DecodeBinary(Encode(nil, v))
		require.NoError(t, err, "value %d", v)
		require.Equal(t, v, got)
	}

	// sweep the high and low bytes independently
	for i := uint32(0); i < 256; i++ {
		for _, v := range []TransactionID{TransactionID(i), TransactionID(i << 24), TransactionID(i<<24 | i)} {
			got, err := DecodeBinary(Encode(nil, v))
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	}
}

func TestDecodeBinary_Truncated(t *testing.T) {
	for n := 0; n < 4; n++ {
		_, err := DecodeBinary(make([]byte, n))
		require.ErrorIs(t, err, ErrTruncatedInput, "length %d", n)
	}
}

func TestDecodeBinary_Oversized(t *testing.T) {
	_, err := DecodeBinary([]byte{0, 0, 0, 0, 1})
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestDecodeText(t *testing.T) {
	cases := []struct {
		in      string
		want    TransactionID
		wantErr error
	}{
		{in: "0", want: 0},
		{in: "42", want: 42},
		{in: "2147483648", want: 1 << 31},
		{in: "4294967295", want: math.MaxUint32},
		{in: "-1", wantErr: ErrInvalidFormat},
		{in: "4294967296", wantErr: ErrInvalidFormat},
		{in: "", wantErr: ErrInvalidFormat},
		{in: "+1", wantErr: ErrInvalidFormat},
		{in: " 1", wantErr: ErrInvalidFormat},
		{in: "12a", wantErr: ErrInvalidFormat},
		{in: "0x10", wantErr: ErrInvalidFormat},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := DecodeText([]byte(tc.in))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_DispatchesOnFormat(t *testing.T) {
	got, err := Decode(pgtype.BinaryFormatCode, []byte{0, 0, 1, 0})
	require.NoError(t, err)
	require.Equal(t, TransactionID(256), got)

	got, err = Decode(pgtype.TextFormatCode, []byte("256"))
	require.NoError(t, err)
	require.Equal(t, TransactionID(256), got)

	_, err = Decode(pgtype.BinaryFormatCode, []byte("25"))
	require.ErrorIs(t, err, ErrTruncatedInput)

	_, err = Decode(7, []byte{0, 0, 0, 1})
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestDataType_Identity(t *testing.T) {
	dt := DataType()
	require.Equal(t, uint32(28), dt.OID)
	require.NotEqual(t, uint32(pgtype.Int4OID), dt.OID)
	require.Equal(t, "xid", dt.Name)
	require.IsType(t, new(TransactionID), dt.Value)
}

func TestRegister_ReplacesBuiltinXID(t *testing.T) {
	ci := pgtype.NewConnInfo()
	Register(ci)

	dt, ok := ci.DataTypeForOID(OID)
	require.True(t, ok)
	require.IsType(t, new(TransactionID), dt.Value)

	byName, ok := ci.DataTypeForName(TypeName)
	require.True(t, ok)
	require.Equal(t, uint32(OID), byName.OID)
}

func TestConnInfoScan_BothFormats(t *testing.T) {
	ci := pgtype.NewConnInfo()
	Register(ci)

	var got TransactionID
	require.NoError(t, ci.Scan(OID, pgtype.BinaryFormatCode, []byte{0xFF, 0xFF, 0xFF, 0xFF}, &got))
	require.Equal(t, TransactionID(math.MaxUint32), got)

	require.NoError(t, ci.Scan(OID, pgtype.TextFormatCode, []byte("731"), &got))
	require.Equal(t, TransactionID(731), got)

	err := ci.Scan(OID, pgtype.BinaryFormatCode, []byte{0x01}, &got)
	require.ErrorIs(t, err, ErrTruncatedInput)
}

func TestEncodeText(t *testing.T) {
	buf, err := TransactionID(math.MaxUint32).EncodeText(nil, nil)
	require.NoError(t, err)
	require.Equal(t, "4294967295", string(buf))
	require.Equal(t, "4294967295", TransactionID(math.MaxUint32).String())
}

func TestDecodeNull(t *testing.T) {
	var v TransactionID
	require.ErrorIs(t, v.DecodeBinary(nil, nil), ErrNull)
	require.ErrorIs(t, v.DecodeText(nil, nil), ErrNull)
	require.ErrorIs(t, v.Scan(nil), ErrNull)
	require.ErrorIs(t, v.Set(nil), ErrNull)
}

func TestSet(t *testing.T) {
	var v TransactionID

	require.NoError(t, v.Set(uint32(9)))
	require.Equal(t, TransactionID(9), v)

	require.NoError(t, v.Set(int64(math.MaxUint32)))
	require.Equal(t, TransactionID(math.MaxUint32), v)

	require.NoError(t, v.Set("17"))
	require.Equal(t, TransactionID(17), v)

	require.ErrorIs(t, v.Set(int64(-1)), ErrInvalidFormat)
	require.ErrorIs(t, v.Set(uint64(math.MaxUint32+1)), ErrInvalidFormat)
	require.Error(t, v.Set(3.5))
}

func TestAssignTo(t *testing.T) {
	v := TransactionID(math.MaxUint32)

	var u32 uint32
	require.NoError(t, v.AssignTo(&u32))
	require.Equal(t, uint32(math.MaxUint32), u32)

	var i64 int64
	require.NoError(t, v.AssignTo(&i64))
	require.Equal(t, int64(math.MaxUint32), i64)

	var s string
	require.NoError(t, v.AssignTo(&s))
	require.Equal(t, "4294967295", s)

	var i32 int32
	require.Error(t, v.AssignTo(&i32))
}

func TestSQLScannerAndValuer(t *testing.T) {
	var v TransactionID
	require.NoError(t, v.Scan([]byte("123")))
	require.Equal(t, TransactionID(123), v)

	require.NoError(t, v.Scan(int64(4000000000)))
	require.Equal(t, TransactionID(4000000000), v)

	dv, err := TransactionID(4000000000).Value()
	require.NoError(t, err)
	require.Equal(t, int64(4000000000), dv)
}
