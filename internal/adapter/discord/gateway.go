package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xcvr48/pixifull/internal/adapter"
)

// Gateway opcodes (the subset this client speaks).
const (
	opDispatch     = 0
	opHeartbeat    = 1
	opIdentify     = 2
	opReconnect    = 7
	opInvalidSess  = 9
	opHello        = 10
	opHeartbeatACK = 11
)

// Gateway intents: guilds, guild messages, and message content.
const gatewayIntents = (1 << 0) | (1 << 9) | (1 << 15)

const (
	eventMessageCreate = "MESSAGE_CREATE"
	reconnectDelay     = 5 * time.Second
)

type gatewayPayload struct {
	Op int             `json:"op"`
	T  string          `json:"t,omitempty"`
	S  *int64          `json:"s,omitempty"`
	D  json.RawMessage `json:"d,omitempty"`
}

type helloData struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

type identifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties identifyProperties `json:"properties"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

type messageCreateData struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Content   string `json:"content"`
	Author    struct {
		ID  string `json:"id"`
		Bot bool   `json:"bot"`
	} `json:"author"`
}

// Run implements adapter.Adapter. It holds a gateway session open and
// reconnects with a fixed delay until ctx is canceled.
func (a *Adapter) Run(ctx context.Context, handle adapter.Handler) error {
	for {
		err := a.runSession(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		a.logger.Warn().Err(err).Dur("retry_in", reconnectDelay).Msg("gateway session ended, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// session is one live gateway connection. Writes are serialized: the
// websocket allows a single concurrent writer and both the read loop
// and the heartbeat loop send frames.
type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	seq     int64
	seqMu   sync.Mutex
}

func (s *session) writeJSON(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.conn.WriteJSON(v)
}

func (s *session) lastSeq() *int64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	if s.seq == 0 {
		return nil
	}

	seq := s.seq

	return &seq
}

func (s *session) storeSeq(seq int64) {
	s.seqMu.Lock()
	s.seq = seq
	s.seqMu.Unlock()
}

func (s *session) heartbeat() error {
	raw, err := json.Marshal(s.lastSeq())
	if err != nil {
		return err
	}

	return s.writeJSON(gatewayPayload{Op: opHeartbeat, D: raw})
}

func (a *Adapter) runSession(ctx context.Context, handle adapter.Handler) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, a.gatewayURL, nil)
	if err != nil {
		return fmt.Errorf("dial gateway: %w", err)
	}

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close() //nolint:errcheck // handshake response body is empty
	}

	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close() //nolint:errcheck // unblocks the read loop on shutdown
	})
	defer stop()

	sess := &session{conn: conn}

	interval, err := a.awaitHello(sess)
	if err != nil {
		return err
	}

	if err := a.identify(sess); err != nil {
		return err
	}

	heartbeatDone := make(chan struct{})
	defer close(heartbeatDone)

	go a.heartbeatLoop(sess, interval, heartbeatDone)

	a.logger.Info().Msg("gateway session established")

	return a.readLoop(ctx, sess, handle)
}

func (a *Adapter) awaitHello(sess *session) (time.Duration, error) {
	var payload gatewayPayload
	if err := sess.conn.ReadJSON(&payload); err != nil {
		return 0, fmt.Errorf("read hello: %w", err)
	}

	if payload.Op != opHello {
		return 0, fmt.Errorf("expected hello opcode, got %d", payload.Op)
	}

	var hello helloData
	if err := json.Unmarshal(payload.D, &hello); err != nil {
		return 0, fmt.Errorf("decode hello: %w", err)
	}

	return time.Duration(hello.HeartbeatInterval) * time.Millisecond, nil
}

func (a *Adapter) identify(sess *session) error {
	data, err := json.Marshal(identifyData{
		Token:   a.token,
		Intents: gatewayIntents,
		Properties: identifyProperties{
			OS:      "linux",
			Browser: "pixifull",
			Device:  "pixifull",
		},
	})
	if err != nil {
		return fmt.Errorf("encode identify: %w", err)
	}

	if err := sess.writeJSON(gatewayPayload{Op: opIdentify, D: data}); err != nil {
		return fmt.Errorf("send identify: %w", err)
	}

	return nil
}

func (a *Adapter) heartbeatLoop(sess *session, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := sess.heartbeat(); err != nil {
				a.logger.Debug().Err(err).Msg("heartbeat send failed")

				return
			}
		}
	}
}

func (a *Adapter) readLoop(ctx context.Context, sess *session, handle adapter.Handler) error {
	for {
		var payload gatewayPayload
		if err := sess.conn.ReadJSON(&payload); err != nil {
			return fmt.Errorf("read gateway frame: %w", err)
		}

		if payload.S != nil {
			sess.storeSeq(*payload.S)
		}

		switch payload.Op {
		case opDispatch:
			a.dispatch(ctx, payload, handle)
		case opHeartbeat:
			if err := sess.heartbeat(); err != nil {
				return fmt.Errorf("requested heartbeat: %w", err)
			}
		case opReconnect, opInvalidSess:
			return fmt.Errorf("gateway requested reconnect (op %d)", payload.Op)
		case opHeartbeatACK:
		}
	}
}

func (a *Adapter) dispatch(ctx context.Context, payload gatewayPayload, handle adapter.Handler) {
	if payload.T != eventMessageCreate {
		return
	}

	var msg messageCreateData
	if err := json.Unmarshal(payload.D, &msg); err != nil {
		a.logger.Debug().Err(err).Msg("undecodable message event")

		return
	}

	if msg.Author.Bot {
		return
	}

	handle(ctx, adapter.Message{
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		UserID:    msg.Author.ID,
		Content:   msg.Content,
	})
}
