package quote_test

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-vlyx/internal/common"
	"github.com/noah-isme/backend-vlyx/internal/quote"
)

// staticRows is an in-memory pgx.Rows over pre-typed values.
type staticRows struct {
	columns []string
	data    [][]any
	pos     int
	closed  bool
}

func (r *staticRows) Close()                        { r.closed = true }
func (r *staticRows) Err() error                    { return nil }
func (r *staticRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *staticRows) RawValues() [][]byte           { return nil }
func (r *staticRows) Conn() *pgx.Conn               { return nil }

func (r *staticRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		out[i] = pgconn.FieldDescription{Name: c}
	}
	return out
}

func (r *staticRows) Next() bool {
	if r.closed || r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *staticRows) Values() ([]any, error) { return r.data[r.pos-1], nil }

func (r *staticRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d targets for %d columns", len(dest), len(row))
	}
	for i, v := range row {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

type fakeQuerier struct {
	rows *staticRows
	sql  string
	args []any
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql = sql
	q.args = args
	return q.rows, nil
}

var leadColumns = []string{
	"id", "name", "mobile", "currency", "tier", "main_domain", "redirects", "seo",
	"coupon_code", "discount_percent", "pre_discount", "final_total", "bill_details", "created_at",
}

func leadRow(id string, coupon *string) []any {
	return []any{
		id, "Brajesh", "+91 82710 81338", "INR", "single-page", ".web.app", []string{".netlify.app"}, false,
		coupon, 0, "3560", "3560", "Bill Details:\n", fixedNow,
	}
}

func TestLeadStoreList(t *testing.T) {
	code := "SAVE20"
	q := &fakeQuerier{rows: &staticRows{
		columns: leadColumns,
		data:    [][]any{leadRow("a", &code), leadRow("b", nil)},
	}}
	store := quote.LeadStore{DB: q}

	leads, err := store.List(context.Background(), common.Pagination{Page: 3, PerPage: 10})
	require.NoError(t, err)
	require.Equal(t, []any{10, 20}, q.args)
	require.Contains(t, q.sql, "ORDER BY created_at DESC")
	require.True(t, q.rows.closed)

	require.Len(t, leads, 2)
	require.Equal(t, "a", leads[0].ID)
	require.Equal(t, []string{".netlify.app"}, leads[0].Redirects)
	require.Equal(t, "SAVE20", *leads[0].CouponCode)
	require.Nil(t, leads[1].CouponCode)
	require.Equal(t, "3560", leads[1].FinalTotal)
	require.True(t, leads[1].CreatedAt.Equal(fixedNow.In(time.UTC)))
}
