package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gleam-inbox/internal/message"
	"gleam-inbox/internal/session"
)

type fakeFetcher struct {
	msgs []message.Message
	err  error
}

func (f *fakeFetcher) AllMessages(context.Context, string) ([]message.Message, error) {
	return f.msgs, f.err
}

type fakeStore struct {
	msgs  []message.Message
	err   error
	limit int
}

func (f *fakeStore) ListRecent(_ context.Context, limit int) ([]message.Message, error) {
	f.limit = limit
	return f.msgs, f.err
}

func listAs(t *testing.T, h *Handler, viewer string) (*httptest.ResponseRecorder, []message.Message) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	req = req.WithContext(session.NewContext(req.Context(), session.Session{
		Username:    viewer,
		AccessToken: "tok",
	}))

	rec := httptest.NewRecorder()
	h.List(rec, req)

	var got []message.Message
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	}
	return rec, got
}

func TestListMergesBothSources(t *testing.T) {
	fetcher := &fakeFetcher{msgs: []message.Message{
		msg("@bob", "hi", "2024-01-01, 09:00 AM"),
	}}
	store := &fakeStore{msgs: []message.Message{
		msg("@bob", "hi", "2024-01-01, 09:00 AM"),
		msg("@alice", "nice work!", "2024-01-02, 10:30 AM"),
	}}
	h := NewHandler(fetcher, store, 100)

	rec, got := listAs(t, h, "carol")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, store.limit)
	assert.Equal(t, []message.Message{
		msg("@alice", "nice work!", "2024-01-02, 10:30 AM"),
		msg("@bob", "hi", "2024-01-01, 09:00 AM"),
	}, got)
}

func TestListDegradesWhenHistoricalFetchFails(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("graph api down")}
	store := &fakeStore{msgs: []message.Message{
		msg("@alice", "nice work!", "2024-01-02, 10:30 AM"),
	}}
	h := NewHandler(fetcher, store, 100)

	rec, got := listAs(t, h, "carol")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, store.msgs, got)
}

func TestListDegradesWhenStoreFails(t *testing.T) {
	fetcher := &fakeFetcher{msgs: []message.Message{
		msg("@bob", "hi", "2024-01-01, 09:00 AM"),
	}}
	store := &fakeStore{err: errors.New("db down")}
	h := NewHandler(fetcher, store, 100)

	rec, got := listAs(t, h, "carol")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fetcher.msgs, got)
}

func TestListRequiresSession(t *testing.T) {
	h := NewHandler(&fakeFetcher{}, &fakeStore{}, 100)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/messages", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
