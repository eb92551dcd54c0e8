package ws

import (
	"context"
	"encoding/json"
	"testing"

	gamemodel "TDProject/module/game/model"
	playermodel "TDProject/module/player/model"
	"TDProject/tools/errs"
	"TDProject/tools/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	byToken map[string]int64
	fail    map[string]error
}

func (f *fakeTokens) Verify(token string) (int64, error) {
	if err, ok := f.fail[token]; ok {
		return 0, err
	}
	if pid, ok := f.byToken[token]; ok {
		return pid, nil
	}
	return 0, security.ErrTokenInvalid
}

type fakePlayers struct {
	players map[int64]*playermodel.Player
	err     error
}

func (f *fakePlayers) FindByID(_ context.Context, id int64) (*playermodel.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.players[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return p, nil
}

type fakeStates struct {
	snaps   map[int64]*gamemodel.Snapshot
	created []int64
	err     error
}

func (f *fakeStates) LoadOrCreate(_ context.Context, playerID int64) (*gamemodel.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	if snap, ok := f.snaps[playerID]; ok {
		return snap, nil
	}
	snap := gamemodel.NewDefault(playerID)
	f.snaps[playerID] = snap
	f.created = append(f.created, playerID)
	return snap, nil
}

type gwFixture struct {
	g       *Gateway
	tokens  *fakeTokens
	players *fakePlayers
	states  *fakeStates
}

func newTestGateway() *gwFixture {
	tokens := &fakeTokens{
		byToken: map[string]int64{"tok-7": 7, "tok-8": 8},
		fail:    map[string]error{},
	}
	players := &fakePlayers{players: map[int64]*playermodel.Player{
		7: {ID: 7, Username: "alice"},
		8: {ID: 8, Username: "bob"},
	}}
	states := &fakeStates{snaps: map[int64]*gamemodel.Snapshot{}}

	g := NewGateway(GatewayDeps{
		Registry: NewRegistry(),
		Rooms:    NewRoomManager(),
		Tokens:   tokens,
		Players:  players,
		States:   states,
	})
	return &gwFixture{g: g, tokens: tokens, players: players, states: states}
}

func (fx *gwFixture) connect(t *testing.T, connID, token string) *Conn {
	t.Helper()
	c := newConn(connID, nil)
	require.NoError(t, fx.g.authenticate(context.Background(), c, token))
	return c
}

type decodedFrame struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func decodeFrames(t *testing.T, c *Conn) []decodedFrame {
	t.Helper()
	var out []decodedFrame
	for _, raw := range drain(c) {
		var f decodedFrame
		require.NoError(t, json.Unmarshal(raw, &f))
		out = append(out, f)
	}
	return out
}

func TestConnectRefusedWithoutToken(t *testing.T) {
	fx := newTestGateway()
	c := newConn("c1", nil)

	err := fx.g.authenticate(context.Background(), c, "")
	assert.Error(t, err)
	assert.Equal(t, 0, fx.g.Registry().Size())
	assert.Equal(t, 0, fx.g.Rooms().Count(DefaultRoom))
	assert.Empty(t, drain(c))
}

func TestConnectRefusedOnTokenFailures(t *testing.T) {
	fx := newTestGateway()
	fx.tokens.fail["expired"] = security.ErrTokenExpired
	fx.tokens.fail["nosub"] = security.ErrTokenNoPlayer

	for _, token := range []string{"expired", "nosub", "garbage"} {
		c := newConn("c-"+token, nil)
		err := fx.g.authenticate(context.Background(), c, token)
		assert.Error(t, err, token)
		assert.Equal(t, 0, fx.g.Registry().Size())
		assert.Empty(t, drain(c))
	}
}

func TestConnectRefusedForUnknownPlayer(t *testing.T) {
	fx := newTestGateway()
	fx.tokens.byToken["tok-99"] = 99 // valid token, no credential record

	c := newConn("c1", nil)
	err := fx.g.authenticate(context.Background(), c, "tok-99")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrPlayerNotFound)
	assert.Equal(t, 0, fx.g.Registry().Size())
	assert.Equal(t, 0, fx.g.Rooms().Count(DefaultRoom))
}

func TestConnectRefusedOnStoreFailure(t *testing.T) {
	fx := newTestGateway()
	fx.states.err = errs.ErrStore

	c := newConn("c1", nil)
	err := fx.g.authenticate(context.Background(), c, "tok-7")
	require.Error(t, err)
	// a failed load must not leave a half-authenticated connection
	assert.Equal(t, 0, fx.g.Registry().Size())
	assert.Equal(t, 0, fx.g.Rooms().Count(DefaultRoom))
	assert.Empty(t, drain(c))
}

func TestConnectPushesDefaultStateToSenderOnly(t *testing.T) {
	fx := newTestGateway()

	a := fx.connect(t, "cA", "tok-7")

	pid, ok := fx.g.Registry().Get("cA")
	require.True(t, ok)
	assert.Equal(t, int64(7), pid)
	assert.Equal(t, []string{"cA"}, fx.g.Rooms().Members(DefaultRoom))
	assert.Equal(t, []int64{7}, fx.states.created, "default snapshot persisted on first connect")

	frames := decodeFrames(t, a)
	require.Len(t, frames, 1)
	assert.Equal(t, EventStateLoaded, frames[0].Type)
	assert.Equal(t, float64(1), frames[0].Data["wave_number"])
	assert.Equal(t, float64(100), frames[0].Data["resources"])
	assert.Equal(t, float64(20), frames[0].Data["player_lives"])
	assert.Equal(t, float64(7), frames[0].Data["player_id"])
	assert.Nil(t, frames[0].Data["towers_data"])

	// a second client must not receive the first client's state push
	b := fx.connect(t, "cB", "tok-8")
	framesB := decodeFrames(t, b)
	require.Len(t, framesB, 1)
	assert.Equal(t, float64(8), framesB[0].Data["player_id"])
	assert.Empty(t, drain(a))
}

func TestDisconnectIdempotent(t *testing.T) {
	fx := newTestGateway()
	a := fx.connect(t, "cA", "tok-7")

	fx.g.Disconnect(a)
	assert.Equal(t, 0, fx.g.Registry().Size())
	assert.Equal(t, 0, fx.g.Rooms().Count(DefaultRoom))

	// repeated disconnect signals are a no-op
	fx.g.Disconnect(a)
	assert.Equal(t, 0, fx.g.Registry().Size())
	assert.Equal(t, 0, fx.g.Rooms().Count(DefaultRoom))
}

func TestWaveRelayIncludesSender(t *testing.T) {
	fx := newTestGateway()
	a := fx.connect(t, "cA", "tok-7")
	b := fx.connect(t, "cB", "tok-8")
	drain(a)
	drain(b)

	fx.g.Dispatch(a, []byte(`{"type":"start_wave_request","data":{"wave_number":2}}`))

	for _, c := range []*Conn{a, b} {
		frames := decodeFrames(t, c)
		require.Len(t, frames, 1, "conn %s", c.ID)
		assert.Equal(t, EventWaveStarted, frames[0].Type)
		assert.Equal(t, float64(2), frames[0].Data["wave_number"])
	}
}

func TestTowerRelayExcludesSender(t *testing.T) {
	fx := newTestGateway()
	a := fx.connect(t, "cA", "tok-7")
	b := fx.connect(t, "cB", "tok-8")
	drain(a)
	drain(b)

	fx.g.Dispatch(b, []byte(`{"type":"build_tower_request","data":{"x":10,"y":20,"type":"cannon"}}`))

	framesA := decodeFrames(t, a)
	require.Len(t, framesA, 1)
	assert.Equal(t, EventTowerPlaced, framesA[0].Type)
	assert.Equal(t, float64(10), framesA[0].Data["x"])
	assert.Equal(t, float64(20), framesA[0].Data["y"])
	assert.Equal(t, "cannon", framesA[0].Data["type"])

	assert.Empty(t, drain(b), "sender already renders its own placement")
}

func TestRelayFromUnauthenticatedConnDropped(t *testing.T) {
	fx := newTestGateway()
	a := fx.connect(t, "cA", "tok-7")
	drain(a)

	ghost := newConn("ghost", nil) // never authenticated
	fx.g.Dispatch(ghost, []byte(`{"type":"start_wave_request","data":{"wave_number":2}}`))
	fx.g.Dispatch(ghost, []byte(`{"type":"build_tower_request","data":{"x":1}}`))

	assert.Empty(t, drain(a))
	assert.Empty(t, drain(ghost))
	assert.Equal(t, 1, fx.g.Registry().Size())
	assert.Equal(t, 1, fx.g.Rooms().Count(DefaultRoom))
}

func TestMalformedPayloadsDropped(t *testing.T) {
	fx := newTestGateway()
	a := fx.connect(t, "cA", "tok-7")
	drain(a)

	fx.g.Dispatch(a, []byte(`{{{not json`))
	fx.g.Dispatch(a, []byte(`{"data":{"wave_number":2}}`))                        // missing type
	fx.g.Dispatch(a, []byte(`{"type":"start_wave_request","data":{}}`))           // missing wave_number
	fx.g.Dispatch(a, []byte(`{"type":"start_wave_request","data":{"wave_number":0}}`))
	fx.g.Dispatch(a, []byte(`{"type":"build_tower_request"}`))                    // empty payload
	fx.g.Dispatch(a, []byte(`{"type":"unknown_event","data":{"x":1}}`))

	assert.Empty(t, drain(a))
}

func TestPingAnsweredToSenderOnly(t *testing.T) {
	fx := newTestGateway()
	a := fx.connect(t, "cA", "tok-7")
	b := fx.connect(t, "cB", "tok-8")
	drain(a)
	drain(b)

	fx.g.Dispatch(a, []byte(`{"type":"ping"}`))

	frames := decodeFrames(t, a)
	require.Len(t, frames, 1)
	assert.Equal(t, EventPong, frames[0].Type)
	assert.Empty(t, drain(b))
}

// The full two-client scenario: connect, state push, wave relay to all,
// tower relay to everyone but the builder.
func TestTwoClientSession(t *testing.T) {
	fx := newTestGateway()

	a := fx.connect(t, "cA", "tok-7")
	framesA := decodeFrames(t, a)
	require.Len(t, framesA, 1)
	assert.Equal(t, EventStateLoaded, framesA[0].Type)
	assert.Equal(t, float64(1), framesA[0].Data["wave_number"])
	assert.Equal(t, float64(100), framesA[0].Data["resources"])
	assert.Equal(t, float64(20), framesA[0].Data["player_lives"])
	assert.Nil(t, framesA[0].Data["towers_data"])
	assert.Equal(t, float64(7), framesA[0].Data["player_id"])

	b := fx.connect(t, "cB", "tok-8")
	drain(b)

	fx.g.Dispatch(a, []byte(`{"type":"start_wave_request","data":{"wave_number":2}}`))
	for _, c := range []*Conn{a, b} {
		frames := decodeFrames(t, c)
		require.Len(t, frames, 1, "conn %s", c.ID)
		assert.Equal(t, EventWaveStarted, frames[0].Type)
		assert.Equal(t, float64(2), frames[0].Data["wave_number"])
	}

	fx.g.Dispatch(b, []byte(`{"type":"build_tower_request","data":{"x":10,"y":20,"type":"cannon"}}`))
	framesA = decodeFrames(t, a)
	require.Len(t, framesA, 1)
	assert.Equal(t, EventTowerPlaced, framesA[0].Type)
	assert.Empty(t, drain(b))

	fx.g.Disconnect(b)
	assert.Equal(t, []string{"cA"}, fx.g.Rooms().Members(DefaultRoom))

	// broadcasts after B left reach only A
	fx.g.Dispatch(a, []byte(`{"type":"start_wave_request","data":{"wave_number":3}}`))
	require.Len(t, decodeFrames(t, a), 1)
	assert.Empty(t, drain(b))
}

func TestRegistryOverwriteOnDuplicateConnID(t *testing.T) {
	fx := newTestGateway()
	a := fx.connect(t, "cA", "tok-7")
	drain(a)

	// same connection id authenticating again: last writer wins
	dup := newConn("cA", nil)
	require.NoError(t, fx.g.authenticate(context.Background(), dup, "tok-8"))

	pid, ok := fx.g.Registry().Get("cA")
	require.True(t, ok)
	assert.Equal(t, int64(8), pid)
	assert.Equal(t, 1, fx.g.Registry().Size())
}
