package workers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ff-tournament-system/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	rows [][]services.KillSync
	err  error
}

func (f *fakeSyncer) SyncPlayerKills(_ context.Context, rows []services.KillSync) (*services.SyncResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rows = append(f.rows, rows)
	updated := make([]string, 0, len(rows))
	for _, r := range rows {
		updated = append(updated, r.FFID)
	}
	return &services.SyncResult{Updated: updated, Unknown: []string{}}, nil
}

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.URL.Query().Get("since"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetChangedKills(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `{"players":[{"ffId":"12345678","map1":3,"map2":"2"}]}`)
	client := NewKillFeedClient(srv.URL, "secret")

	rows, err := client.GetChangedKills(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "12345678", rows[0].FFID)
	assert.Equal(t, 3.0, rows[0].Map1)
	assert.Equal(t, "2", rows[0].Map2)
	assert.Nil(t, rows[0].Map3)
}

func TestGetChangedKillsBadStatus(t *testing.T) {
	srv := feedServer(t, http.StatusBadGateway, "upstream down")
	_, err := NewKillFeedClient(srv.URL, "secret").GetChangedKills(context.Background(), time.Now())
	assert.ErrorContains(t, err, "502")
}

func TestPollOnceAdvancesCursorOnlyOnSuccess(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `{"players":[{"ffId":"12345678","map1":1}]}`)
	client := NewKillFeedClient(srv.URL, "secret")
	since := time.Now().Add(-time.Hour)

	syncer := &fakeSyncer{}
	next, err := pollOnce(context.Background(), client, syncer, since)
	require.NoError(t, err)
	assert.True(t, next.After(since))
	require.Len(t, syncer.rows, 1)

	failing := &fakeSyncer{err: errors.New("db down")}
	next, err = pollOnce(context.Background(), client, failing, since)
	require.Error(t, err)
	assert.Equal(t, since, next)
}

func TestPollKillFeedStopsOnCancel(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `{"players":[]}`)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		PollKillFeed(ctx, NewKillFeedClient(srv.URL, "secret"), &fakeSyncer{}, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
