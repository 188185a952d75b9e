package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	qs, err := parseMessage([]byte(`{"type":"trade","data":[{"s":"AAPL","p":187.2,"v":10,"t":1714557600000}]}`))
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "AAPL", qs[0].Code)
	assert.Equal(t, 187.2, qs[0].Price)
	assert.Equal(t, int64(1714557600), qs[0].Timestamp.Unix())

	qs, err = parseMessage([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	assert.Empty(t, qs)

	_, err = parseMessage([]byte(`{`))
	assert.Error(t, err)
}

func newServer(t *testing.T, subs chan<- string) *httptest.Server {
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var msg map[string]string
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		subs <- msg["symbol"]
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"trade","data":[{"s":"AAPL","p":190.5,"t":1714557600000}]}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ConnectSubscribeRead(t *testing.T) {
	subs := make(chan string, 1)
	srv := newServer(t, subs)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	c := New("secret", wsURL, []string{"AAPL"}, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	assert.Equal(t, "AAPL", <-subs)

	quotes, _ := c.Read(ctx)
	select {
	case q := <-quotes:
		assert.Equal(t, "AAPL", q.Code)
		assert.Equal(t, 190.5, q.Price)
	case <-time.After(2 * time.Second):
		t.Fatal("no quote")
	}

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestClient_ReadWithoutConnect(t *testing.T) {
	c := New("k", "ws://unused", nil, 0, nil)
	_, errs := c.Read(context.Background())
	assert.ErrorIs(t, <-errs, ErrNotConnected)
}
