package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/physics2d/internal/core/events/bus"
	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/resolver"
	"github.com/zeusync/physics2d/internal/core/systems/physics/shape"
)

func testWorld(t *testing.T, events bus.EventBus) *resolver.World {
	t.Helper()
	w, err := resolver.NewWorld(resolver.DefaultConfig(), log.NewNop(), events)
	require.NoError(t, err)

	floor, err := shape.NewRectangle(geom.V(0, 0), 20, 1)
	require.NoError(t, err)
	crate, err := shape.NewRectangle(geom.V(0, 0), 1, 1)
	require.NoError(t, err)

	a, err := resolver.NewBody(floor, resolver.BodyOptions{Name: "floor", Static: true})
	require.NoError(t, err)
	// Overlaps the floor from the first tick.
	b, err := resolver.NewBody(crate, resolver.BodyOptions{Name: "crate", Mass: 1, Position: geom.V(0, 0.9)})
	require.NoError(t, err)
	require.NoError(t, w.Add(a))
	require.NoError(t, w.Add(b))
	return w
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketStream(t *testing.T) {
	events := bus.New()
	srv := NewServer(DefaultServerConfig(), testWorld(t, events), events, log.NewNop())
	defer srv.Close()

	s := httptest.NewServer(srv.Handler())
	defer s.Close()

	conn := dial(t, s.URL)
	defer conn.Close()

	welcome := read(t, conn)
	require.Equal(t, MessageWelcome, welcome.Type)
	require.NotEmpty(t, welcome.Client)
	require.NotNil(t, welcome.Snapshot)
	require.Len(t, welcome.Snapshot.Bodies, 2)
	require.Zero(t, welcome.Tick)

	frame := srv.Tick()
	require.Len(t, frame.Began, 2)

	var begins []Collision
	for i := 0; i < 2; i++ {
		msg := read(t, conn)
		require.Equal(t, MessageCollisionBegin, msg.Type)
		require.Equal(t, uint64(1), msg.Tick)
		begins = append(begins, *msg.Collision)
	}
	require.Equal(t, "floor", begins[0].Name)
	require.Equal(t, "crate", begins[1].Name)
	require.Equal(t, []uint64{begins[0].Body}, begins[1].Others)

	snap := read(t, conn)
	require.Equal(t, MessageSnapshot, snap.Type)
	require.Equal(t, uint64(1), snap.Snapshot.Tick)
	require.True(t, snap.Snapshot.Bodies[1].Colliding)

	t.Run("HTTP Snapshot", func(t *testing.T) {
		resp, err := http.Get(s.URL + "/snapshot")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got resolver.Snapshot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Equal(t, uint64(1), got.Tick)
		require.Equal(t, "crate", got.Bodies[1].Name)
	})
}

func TestMaxClients(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.MaxClients = 1
	srv := NewServer(cfg, testWorld(t, nil), nil, log.NewNop())
	defer srv.Close()

	s := httptest.NewServer(srv.Handler())
	defer s.Close()

	conn := dial(t, s.URL)
	defer conn.Close()
	require.Equal(t, MessageWelcome, read(t, conn).Type)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStartStop(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.SnapshotEvery = 2
	srv := NewServer(cfg, testWorld(t, nil), nil, log.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, srv.Start(ctx))
	require.ErrorIs(t, srv.Start(ctx), ErrServerAlreadyRunning)

	conn := dial(t, "http://"+srv.Addr())
	defer conn.Close()
	require.Equal(t, MessageWelcome, read(t, conn).Type)

	msg := read(t, conn)
	require.Equal(t, MessageSnapshot, msg.Type)
	require.Zero(t, msg.Tick%2)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, srv.Stop(stopCtx))
	require.ErrorIs(t, srv.Stop(stopCtx), ErrServerNotRunning)

	require.NoError(t, srv.Close())
	require.ErrorIs(t, srv.Start(ctx), ErrServerClosed)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultServerConfig().Validate())

	cfg := DefaultServerConfig()
	cfg.SnapshotEvery = 0
	require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultServerConfig()
	cfg.ListenAddr = ""
	require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
