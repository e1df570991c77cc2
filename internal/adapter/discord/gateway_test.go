package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/xcvr48/pixifull/internal/adapter"
)

// gatewayServer speaks just enough of the gateway protocol for one
// session: hello, identify, then a scripted set of dispatch frames.
func gatewayServer(t *testing.T, dispatches []gatewayPayload, identified chan<- identifyData) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hello, _ := json.Marshal(helloData{HeartbeatInterval: 45000}) //nolint:errcheck // static payload
		if err := conn.WriteJSON(gatewayPayload{Op: opHello, D: hello}); err != nil {
			return
		}

		var identify gatewayPayload
		if err := conn.ReadJSON(&identify); err != nil {
			return
		}

		var data identifyData
		_ = json.Unmarshal(identify.D, &data) //nolint:errcheck // asserted by the test
		identified <- data

		for _, d := range dispatches {
			if err := conn.WriteJSON(d); err != nil {
				return
			}
		}

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	t.Cleanup(srv.Close)

	return srv
}

func dispatchFrame(t *testing.T, seq int64, msg messageCreateData) gatewayPayload {
	t.Helper()

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	return gatewayPayload{Op: opDispatch, T: eventMessageCreate, S: &seq, D: data}
}

func TestGatewayDeliversMessages(t *testing.T) {
	botMsg := messageCreateData{ID: "m0", ChannelID: "c1", GuildID: "g1", Content: "from a bot"}
	botMsg.Author.ID = "b1"
	botMsg.Author.Bot = true

	userMsg := messageCreateData{ID: "m1", ChannelID: "c1", GuildID: "g1", Content: "https://pixiv.net/artworks/1"}
	userMsg.Author.ID = "u1"

	identified := make(chan identifyData, 1)
	srv := gatewayServer(t, []gatewayPayload{
		dispatchFrame(t, 1, botMsg),
		dispatchFrame(t, 2, userMsg),
	}, identified)

	gatewayURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	logger := zerolog.Nop()
	a := NewWithEndpoints("tok", "", gatewayURL, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan adapter.Message, 2)

	go func() {
		_ = a.Run(ctx, func(_ context.Context, msg adapter.Message) { //nolint:errcheck // ends with ctx cancel
			received <- msg
		})
	}()

	select {
	case data := <-identified:
		require.Equal(t, "tok", data.Token)
		require.Equal(t, gatewayIntents, data.Intents)
	case <-time.After(5 * time.Second):
		t.Fatal("no identify frame received")
	}

	select {
	case msg := <-received:
		// The bot-authored frame was skipped.
		require.Equal(t, "m1", msg.MessageID)
		require.Equal(t, "c1", msg.ChannelID)
		require.Equal(t, "g1", msg.GuildID)
		require.Equal(t, "u1", msg.UserID)
		require.Equal(t, "https://pixiv.net/artworks/1", msg.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("no message delivered")
	}

	select {
	case extra := <-received:
		t.Fatalf("unexpected extra message: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}
