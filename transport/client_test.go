package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kingsrook/qqq-client/model"
	"github.com/kingsrook/qqq-client/rest"
)

func newMockBackend(t *testing.T) *Client {
	t.Helper()
	fixture, err := rest.LoadFixture("../rest/testdata/fixture.json")
	require.NoError(t, err)
	s, err := rest.NewServer(0, fixture)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("localhost:8000", time.Second)
	require.Error(t, err)
	_, err = NewClient("http://localhost:8000/", time.Second)
	require.NoError(t, err)
}

type roundTripperFunc func(r *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestNewClientWithHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jobStatus":{"message":"` + r.Header.Get("X-Session") + `"}}`))
	}))
	t.Cleanup(srv.Close)

	var paths []string
	hc := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		paths = append(paths, r.URL.Path)
		r = r.Clone(r.Context())
		r.Header.Set("X-Session", "abc")
		return http.DefaultTransport.RoundTrip(r)
	})}
	c, err := NewClientWithHTTP(srv.URL, hc)
	require.NoError(t, err)

	payload, err := c.GetStatus(context.Background(), "greet", "P1", "J1")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"message": "abc"}, payload["jobStatus"])
	require.Equal(t, []string{"/processes/greet/P1/status/J1"}, paths)

	_, err = NewClientWithHTTP("localhost:8000", hc)
	require.Error(t, err)
}

func TestProcessEndpoints(t *testing.T) {
	ctx := context.Background()
	c := newMockBackend(t)

	payload, err := c.PostInit(ctx, "greet", nil)
	require.NoError(t, err)
	require.Equal(t, "setup", payload["nextStep"])
	processUUID := payload["processUUID"].(string)
	require.NotEmpty(t, processUUID)

	payload, err = c.PostStep(ctx, "greet", processUUID, "setup", map[string]any{"greeting": "hi"})
	require.NoError(t, err)
	require.Equal(t, "job-1", payload["jobUUID"])

	payload, err = c.GetStatus(ctx, "greet", processUUID, "job-1")
	require.NoError(t, err)
	require.Contains(t, payload, "jobStatus")

	payload, err = c.PostInit(ctx, "broken", nil)
	require.NoError(t, err)
	require.Equal(t, "Missing required input: tableName", payload["error"])

	records, err := c.GetProcessRecords(ctx, "greet", processUUID, 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Darin", records[0].Values["firstName"])
}

func TestProcessTransportErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("non json error body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer srv.Close()
		c, err := NewClient(srv.URL, time.Second)
		require.NoError(t, err)

		_, err = c.PostInit(ctx, "greet", nil)
		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		require.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
		require.Contains(t, transportErr.Message, "bad gateway")
	})

	t.Run("non json success body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`["not", "an", "object"]`))
		}))
		defer srv.Close()
		c, err := NewClient(srv.URL, time.Second)
		require.NoError(t, err)

		_, err = c.GetStatus(ctx, "greet", "p", "j")
		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		require.Equal(t, http.StatusOK, transportErr.StatusCode)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		target := srv.URL
		srv.Close()
		c, err := NewClient(target, time.Second)
		require.NoError(t, err)

		_, err = c.PostStep(ctx, "greet", "p", "s", nil)
		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		require.Zero(t, transportErr.StatusCode)
		require.Error(t, errors.Unwrap(transportErr))
	})

	t.Run("cancelled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()
		c, err := NewClient(srv.URL, time.Second)
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = c.PostInit(cctx, "greet", nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestFormEncoding(t *testing.T) {
	var got url.Values
	var query url.Values
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		query = r.URL.Query()
		path = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"values":{}}`))
	}))
	defer srv.Close()
	c, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.PostStep(ctx, "greet", "p 1", "set/up", map[string]any{
		"name":   "Darin",
		"count":  float64(3),
		"ratio":  0.5,
		"flag":   true,
		"ids":    []any{1, 2, 3},
		"filter": map[string]any{"a": "b"},
		"skip":   nil,
	})
	require.NoError(t, err)
	require.Equal(t, "/processes/greet/p%201/step/set%2Fup", path)
	require.Equal(t, "Darin", got.Get("name"))
	require.Equal(t, "3", got.Get("count"))
	require.Equal(t, "0.5", got.Get("ratio"))
	require.Equal(t, "true", got.Get("flag"))
	require.Equal(t, []string{"1", "2", "3"}, got["ids"])
	require.JSONEq(t, `{"a":"b"}`, got.Get("filter"))
	require.NotContains(t, got, "skip")

	_, err = c.PostInit(ctx, "greet", map[string]any{"recordsParam": "recordIds", "recordIds": []string{"1", "2"}})
	require.NoError(t, err)
	require.Equal(t, "recordIds", query.Get("recordsParam"))
	require.Equal(t, []string{"1", "2"}, query["recordIds"])
}

func TestMetadataEndpoints(t *testing.T) {
	ctx := context.Background()
	c := newMockBackend(t)

	instance, err := c.LoadInstance(ctx)
	require.NoError(t, err)
	require.Contains(t, instance.Tables, "person")
	path, ok := instance.GetTablePath("person")
	require.True(t, ok)
	require.Equal(t, "/peopleApp/person", path)

	table, err := c.LoadTable(ctx, "person")
	require.NoError(t, err)
	require.Equal(t, "id", table.PrimaryKeyField)
	require.Equal(t, model.FIELD_TYPE_STRING, table.Fields["firstName"].Type)

	_, err = c.LoadTable(ctx, "nope")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, http.StatusNotFound, transportErr.StatusCode)
	require.Equal(t, "Table nope was not found.", transportErr.Message)

	process, err := c.LoadProcess(ctx, "greet")
	require.NoError(t, err)
	require.True(t, process.HasStep("result"))

	auth, err := c.LoadAuthentication(ctx)
	require.NoError(t, err)
	require.Equal(t, "FULLY_ANONYMOUS", auth.Type)
}

func TestDataEndpoints(t *testing.T) {
	ctx := context.Background()
	c := newMockBackend(t)

	count, err := c.Count(ctx, "person", nil)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	records, err := c.Query(ctx, "person", &model.QueryFilter{
		Criteria: []*model.FilterCriteria{{FieldName: "firstName", Operator: model.IN, Values: []any{"Darin", "Tim"}}},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "person", records[0].TableName)

	limit := 1
	records, err = c.Query(ctx, "person", &model.QueryFilter{Limit: &limit})
	require.NoError(t, err)
	require.Len(t, records, 1)

	record, err := c.Get(ctx, "person", "2")
	require.NoError(t, err)
	require.Equal(t, "Maes", record.DisplayValue("lastName"))

	created, err := c.Create(ctx, "person", map[string]any{"firstName": "Garret", "lastName": "Richardson"})
	require.NoError(t, err)
	require.Equal(t, "4", created.DisplayValue("id"))

	updated, err := c.Update(ctx, "person", "4", map[string]any{"firstName": "Garrett"})
	require.NoError(t, err)
	require.Equal(t, "Garrett", updated.Values["firstName"])
	require.Equal(t, "Richardson", updated.Values["lastName"])

	deleted, err := c.Delete(ctx, "person", "4")
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	_, err = c.Get(ctx, "person", "4")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, http.StatusNotFound, transportErr.StatusCode)
}
