package quote_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-vlyx/internal/quote"
	"github.com/noah-isme/backend-vlyx/internal/resilience"
)

func sampleSubmission(t *testing.T) quote.Submission {
	t.Helper()
	svc := newService(t, &recordingDispatcher{})
	req := validSubmit()
	q, err := svc.Preview(context.Background(), req.Request)
	require.NoError(t, err)
	contact := quote.Contact{Name: "Aadish Jain", Mobile: "+91 82710 81338"}
	return quote.Submission{Quote: q, Contact: contact, BillDetails: quote.BillDetails(q)}
}

func TestFormSinkPostsFields(t *testing.T) {
	sub := sampleSubmission(t)
	var gotContact, gotDetails, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotType = r.Header.Get("Content-Type")
		gotContact = r.PostForm.Get("entry.contact")
		gotDetails = r.PostForm.Get("entry.details")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := quote.FormSink{
		Client:       resilience.HTTPClient{Client: srv.Client(), Retry: resilience.RetryPolicy{MaxAttempts: 1}},
		URL:          srv.URL,
		ContactField: "entry.contact",
		DetailsField: "entry.details",
	}
	require.Equal(t, "form", sink.Name())
	require.NoError(t, sink.Deliver(context.Background(), sub))
	require.Equal(t, "application/x-www-form-urlencoded", gotType)
	require.Equal(t, "Aadish Jain (+91 82710 81338)", gotContact)
	require.Equal(t, sub.BillDetails, gotDetails)
}

func TestFormSinkFailsOnErrorStatus(t *testing.T) {
	sub := sampleSubmission(t)
	for _, status := range []int{http.StatusBadRequest, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))
		sink := quote.FormSink{
			Client:       resilience.HTTPClient{Client: srv.Client(), Retry: resilience.RetryPolicy{MaxAttempts: 1}},
			URL:          srv.URL,
			ContactField: "c",
			DetailsField: "d",
		}
		err := sink.Deliver(context.Background(), sub)
		srv.Close()

		var statusErr *resilience.StatusError
		require.True(t, errors.As(err, &statusErr), "status %d: got %v", status, err)
		require.Equal(t, status, statusErr.StatusCode)
	}
}

func TestFormSinkRequiresURL(t *testing.T) {
	err := quote.FormSink{}.Deliver(context.Background(), sampleSubmission(t))
	require.Error(t, err)
}

type fakeExecer struct {
	sql  string
	args []any
	err  error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = sql
	f.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func TestPostgresSinkInsertsLead(t *testing.T) {
	sub := sampleSubmission(t)
	db := &fakeExecer{}
	sink := quote.PostgresSink{DB: db}

	require.Equal(t, "postgres", sink.Name())
	require.NoError(t, sink.Deliver(context.Background(), sub))
	require.Contains(t, db.sql, "INSERT INTO quote_leads")
	require.Contains(t, db.sql, "ON CONFLICT (id) DO NOTHING")
	require.Len(t, db.args, 14)
	require.Equal(t, sub.Quote.ID.String(), db.args[0])
	require.Equal(t, "Aadish Jain", db.args[1])
	require.Equal(t, "INR", db.args[3])
	require.Equal(t, "multi-page", db.args[4])
	require.Equal(t, []string{}, db.args[6])
	require.Equal(t, true, db.args[7])
	code, ok := db.args[8].(*string)
	require.True(t, ok)
	require.Equal(t, "SAVE20", *code)
	require.Equal(t, 20, db.args[9])
	require.Equal(t, "5200", db.args[10])
	require.Equal(t, "4160", db.args[11])
}

func TestPostgresSinkWrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	err := quote.PostgresSink{DB: &fakeExecer{err: boom}}.Deliver(context.Background(), sampleSubmission(t))
	require.ErrorIs(t, err, boom)
}

func TestLogSinkWritesEntry(t *testing.T) {
	sub := sampleSubmission(t)
	var buf bytes.Buffer
	sink := quote.LogSink{Logger: zerolog.New(&buf)}

	require.NoError(t, sink.Deliver(context.Background(), sub))
	require.Contains(t, buf.String(), `"message":"quote submitted"`)
	require.Contains(t, buf.String(), sub.Quote.ID.String())
}
