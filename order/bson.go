package order

import (
	"bytes"
	"cmp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/alexhholmes/avltriee"
)

// BSON type ranks, lowest first. Numeric types share a rank, as do strings
// and symbols.
const (
	rankMinKey = iota
	rankNull
	rankNumber
	rankString
	rankObject
	rankArray
	rankBinary
	rankObjectID
	rankBoolean
	rankDate
	rankTimestamp
	rankRegex
	rankMaxKey
	rankOther
)

func rank(t bsontype.Type) int {
	switch t {
	case bson.TypeMinKey:
		return rankMinKey
	case 0, bson.TypeNull, bson.TypeUndefined:
		return rankNull
	case bson.TypeInt32, bson.TypeInt64, bson.TypeDouble, bson.TypeDecimal128:
		return rankNumber
	case bson.TypeString, bson.TypeSymbol:
		return rankString
	case bson.TypeEmbeddedDocument:
		return rankObject
	case bson.TypeArray:
		return rankArray
	case bson.TypeBinary:
		return rankBinary
	case bson.TypeObjectID:
		return rankObjectID
	case bson.TypeBoolean:
		return rankBoolean
	case bson.TypeDateTime:
		return rankDate
	case bson.TypeTimestamp:
		return rankTimestamp
	case bson.TypeRegex:
		return rankRegex
	case bson.TypeMaxKey:
		return rankMaxKey
	default:
		return rankOther
	}
}

// BSON orders raw BSON values the way MongoDB sorts mixed types: by type
// rank first (MinKey, null, numbers, strings, objects, arrays, binary,
// ObjectID, booleans, dates, timestamps, regexes, MaxKey), then by value. A
// missing value (the zero RawValue) sorts like null.
func BSON(a, b bson.RawValue) int {
	ra, rb := rank(a.Type), rank(b.Type)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case rankNumber:
		return compareNumber(a, b)
	case rankString:
		return strings.Compare(text(a), text(b))
	case rankObject:
		return compareDocument(a.Document(), b.Document())
	case rankArray:
		return compareArray(a.Array(), b.Array())
	case rankBinary:
		sa, da := a.Binary()
		sb, db := b.Binary()
		if c := cmp.Compare(len(da), len(db)); c != 0 {
			return c
		}
		if c := cmp.Compare(sa, sb); c != 0 {
			return c
		}
		return bytes.Compare(da, db)
	case rankObjectID:
		oa, ob := a.ObjectID(), b.ObjectID()
		return bytes.Compare(oa[:], ob[:])
	case rankBoolean:
		return compareBool(a.Boolean(), b.Boolean())
	case rankDate:
		return cmp.Compare(a.DateTime(), b.DateTime())
	case rankTimestamp:
		ta, ia := a.Timestamp()
		tb, ib := b.Timestamp()
		if c := cmp.Compare(ta, tb); c != 0 {
			return c
		}
		return cmp.Compare(ia, ib)
	case rankRegex:
		pa, oa := a.Regex()
		pb, ob := b.Regex()
		if c := strings.Compare(pa, pb); c != 0 {
			return c
		}
		return strings.Compare(oa, ob)
	case rankOther:
		if c := cmp.Compare(a.Type, b.Type); c != 0 {
			return c
		}
		return bytes.Compare(a.Value, b.Value)
	default:
		return 0
	}
}

// compareNumber compares integers exactly and everything else as float64.
// NaN sorts below every other number.
func compareNumber(a, b bson.RawValue) int {
	ia, aInt := integer(a)
	ib, bInt := integer(b)
	if aInt && bInt {
		return cmp.Compare(ia, ib)
	}
	return cmp.Compare(float(a), float(b))
}

func integer(v bson.RawValue) (int64, bool) {
	switch v.Type {
	case bson.TypeInt32:
		return int64(v.Int32()), true
	case bson.TypeInt64:
		return v.Int64(), true
	}
	return 0, false
}

func float(v bson.RawValue) float64 {
	switch v.Type {
	case bson.TypeInt32:
		return float64(v.Int32())
	case bson.TypeInt64:
		return float64(v.Int64())
	case bson.TypeDouble:
		return v.Double()
	case bson.TypeDecimal128:
		f, _ := strconv.ParseFloat(v.Decimal128().String(), 64)
		return f
	}
	return 0
}

func text(v bson.RawValue) string {
	if v.Type == bson.TypeSymbol {
		return v.Symbol()
	}
	return v.StringValue()
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	default:
		return 1
	}
}

// compareDocument compares field count, then each field's name and value in
// order.
func compareDocument(a, b bson.Raw) int {
	ea, _ := a.Elements()
	eb, _ := b.Elements()
	if c := cmp.Compare(len(ea), len(eb)); c != 0 {
		return c
	}
	for i := range ea {
		if c := strings.Compare(ea[i].Key(), eb[i].Key()); c != 0 {
			return c
		}
		if c := BSON(ea[i].Value(), eb[i].Value()); c != 0 {
			return c
		}
	}
	return 0
}

// compareArray compares element by element; a prefix sorts first.
func compareArray(a, b bson.Raw) int {
	va, _ := a.Values()
	vb, _ := b.Values()
	for i := range min(len(va), len(vb)) {
		if c := BSON(va[i], vb[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(va), len(vb))
}

// BSONField orders BSON documents by the value at a dotted field path such
// as "profile.age". A missing field sorts like null.
func BSONField(path string) func(a, b bson.Raw) int {
	keys := strings.Split(path, ".")
	return func(a, b bson.Raw) int {
		return BSON(a.Lookup(keys...), b.Lookup(keys...))
	}
}

// BSONQuery searches documents ordered by BSONField(path) for key.
func BSONQuery(path string, key bson.RawValue) avltriee.Query[bson.Raw] {
	keys := strings.Split(path, ".")
	return avltriee.By(key, func(stored bson.Raw, key bson.RawValue) int {
		return BSON(stored.Lookup(keys...), key)
	})
}

// BSONValue encodes a Go value as a single BSON value, for use as a
// BSONQuery key.
func BSONValue(v any) (bson.RawValue, error) {
	t, data, err := bson.MarshalValue(v)
	if err != nil {
		return bson.RawValue{}, err
	}
	return bson.RawValue{Type: t, Value: data}, nil
}
