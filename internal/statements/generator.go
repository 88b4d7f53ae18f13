package statements

import (
	"encoding/csv"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// Dialect names a synthetic statement column layout.
type Dialect string

const (
	// DialectStandard emits Date,Description,Amount with ISO dates.
	DialectStandard Dialect = "standard"
	// DialectBank emits Posting Date,Memo,Debit Amt,Credit Amt with
	// US-style dates and parenthesised debits.
	DialectBank Dialect = "bank"
	// DialectEuro emits Transaction Date,Details,Value with day-first
	// dates and thousands separators.
	DialectEuro Dialect = "euro"
)

const (
	biWeeklyDays = 14
	salaryFloor  = 2200.00
	salaryRange  = 2400.00
)

type merchant struct {
	name string
	min  float64
	max  float64
}

// merchantPool mirrors the spending categories a consumer current
// account sees. Amounts are per-category ranges in whole currency.
var merchantPool = []merchant{
	{"STARBUCKS", 4, 18},
	{"MCDONALDS", 6, 25},
	{"CHIPOTLE MEXICAN GRILL", 9, 35},
	{"WHOLE FOODS MARKET", 20, 220},
	{"TRADER JOES", 15, 140},
	{"COSTCO WHOLESALE", 40, 420},
	{"AMAZON.COM", 8, 380},
	{"TARGET", 12, 250},
	{"UBER", 8, 65},
	{"SHELL OIL", 25, 90},
	{"NETFLIX.COM", 7, 23},
	{"SPOTIFY", 6, 18},
	{"AT&T WIRELESS", 45, 160},
	{"COMCAST XFINITY", 55, 190},
	{"PG&E UTILITIES", 60, 260},
	{"CVS PHARMACY", 6, 120},
	{"DELTA AIR LINES", 120, 750},
	{"MARRIOTT HOTELS", 110, 600},
	{"ATM WITHDRAWAL", 20, 200},
}

// Generator produces synthetic bank statements. Deterministic for a
// given seed.
type Generator struct {
	faker *gofakeit.Faker
	rng   *rand.Rand
}

// NewGenerator creates a generator seeded for reproducible output.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(int64(seed))),
	}
}

// Transactions generates count transactions spread uniformly across
// [start, end), with bi-weekly salary deposits layered on top.
func (g *Generator) Transactions(start, end time.Time, count int) []domain.Transaction {
	if count <= 0 || !end.After(start) {
		return nil
	}

	txs := make([]domain.Transaction, 0, count+int(end.Sub(start).Hours()/(biWeeklyDays*24))+1)

	span := end.Sub(start)
	for i := 0; i < count; i++ {
		m := merchantPool[g.rng.Intn(len(merchantPool))]
		amount := decimal.NewFromFloat(m.min + g.rng.Float64()*(m.max-m.min)).Round(2)
		txs = append(txs, domain.Transaction{
			Date:        start.Add(time.Duration(g.rng.Int63n(int64(span)))).Truncate(24 * time.Hour),
			Description: m.name + " " + g.faker.City(),
			Amount:      -amount.InexactFloat64(),
		})
	}

	salary := decimal.NewFromFloat(salaryFloor + g.rng.Float64()*salaryRange).Round(2)
	employer := g.faker.Company()
	for payday := start.AddDate(0, 0, biWeeklyDays); payday.Before(end); payday = payday.AddDate(0, 0, biWeeklyDays) {
		txs = append(txs, domain.Transaction{
			Date:        payday,
			Description: "DIRECT DEPOSIT " + employer,
			Amount:      salary.InexactFloat64(),
		})
	}

	for i := range txs {
		txs[i].Derive()
	}
	return txs
}

// WriteCSV renders transactions in the given dialect.
func (g *Generator) WriteCSV(w io.Writer, dialect Dialect, txs []domain.Transaction) error {
	cw := csv.NewWriter(w)

	switch dialect {
	case DialectBank:
		if err := cw.Write([]string{"Posting Date", "Memo", "Debit Amt", "Credit Amt"}); err != nil {
			return err
		}
		for _, tx := range txs {
			debit, credit := "", ""
			if tx.Amount < 0 {
				debit = formatCell(-tx.Amount)
			} else {
				credit = formatCell(tx.Amount)
			}
			if err := cw.Write([]string{tx.Date.Format("01/02/2006"), tx.Description, debit, credit}); err != nil {
				return err
			}
		}

	case DialectEuro:
		if err := cw.Write([]string{"Transaction Date", "Details", "Value"}); err != nil {
			return err
		}
		for _, tx := range txs {
			if err := cw.Write([]string{tx.Date.Format("02/01/2006"), tx.Description, formatCell(tx.Amount)}); err != nil {
				return err
			}
		}

	default:
		if err := cw.Write([]string{"Date", "Description", "Amount"}); err != nil {
			return err
		}
		for _, tx := range txs {
			if err := cw.Write([]string{tx.Date.Format("2006-01-02"), tx.Description, formatCell(tx.Amount)}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
