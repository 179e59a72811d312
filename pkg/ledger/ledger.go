// Package ledger computes line subtotals and document totals.
//
// All arithmetic is done in decimal and rounded to two places, half away
// from zero, before it is stored.
package ledger

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shockerli/cvt"
	"github.com/shopspring/decimal"
)

// Places is the precision of every stored money and quantity value.
const Places = 2

// Input is one raw line as received from a client. Quantity and UnitPrice
// may be numbers, numeric strings, json.Number or nil.
type Input struct {
	Quantity  any
	UnitPrice any
}

// Line is a computed ledger row.
type Line struct {
	SerialNumber int
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	SubTotal     decimal.Decimal
}

// Ledger is the ordered result of Compute.
type Ledger struct {
	Lines         []Line
	SumOfSubTotal decimal.Decimal
}

// Round rounds d to Places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Coerce turns a loosely typed value into a decimal. Anything that is not a
// finite number becomes zero.
func Coerce(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero
		}
		return *x
	case json.Number:
		return parse(x.String())
	case string:
		return parse(x)
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case bool:
		return decimal.Zero
	}

	s, err := cvt.StringE(v)
	if err != nil {
		return decimal.Zero
	}
	return parse(s)
}

func parse(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// SubTotal is round(quantity × unitPrice).
func SubTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round(quantity.Mul(unitPrice))
}

// Compute numbers the lines from 1 and prices each of them.
func Compute(inputs []Input) Ledger {
	out := Ledger{
		Lines:         make([]Line, 0, len(inputs)),
		SumOfSubTotal: decimal.Zero,
	}
	sum := decimal.Zero
	for i, in := range inputs {
		qty := Coerce(in.Quantity)
		price := Coerce(in.UnitPrice)
		line := Line{
			SerialNumber: i + 1,
			Quantity:     qty,
			UnitPrice:    price,
			SubTotal:     SubTotal(qty, price),
		}
		sum = sum.Add(line.SubTotal)
		out.Lines = append(out.Lines, line)
	}
	out.SumOfSubTotal = Round(sum)
	return out
}

// Sum rounds the total of already rounded values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return Round(total)
}
