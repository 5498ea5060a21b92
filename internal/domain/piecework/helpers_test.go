package piecework_test

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

func i64(v int64) *int64 { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func day(s string) time.Time {
	t, err := entity.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func baseItem(cat string, qty int64, price string) entity.PieceWorkItem {
	return entity.PieceWorkItem{CategoryID: cat, Quantity: i64(qty), UnitPrice: dec(price)}
}
