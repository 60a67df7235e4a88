package helper

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =======================
// RAW VALUE TO NULL (POSTGRES)
// =======================

// RawStringToNull menerima string biasa; string kosong jadi NULL
func RawStringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func NullStringValue(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

// =======================
// UUID (Postgres Native)
// =======================

func StringToUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func UUIDsToStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// =======================
// DECIMAL (Postgres Numeric)
// =======================

// NumericToDecimal parses a NUMERIC column scanned as text.
func NumericToDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func DecimalToNumeric(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ToMinorUnits converts a major-unit amount to the smallest currency unit,
// rounding half away from zero.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
