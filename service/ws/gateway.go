package ws

import (
	"context"
	goerrors "errors"
	"net"
	"net/http"
	"time"

	"TDProject/logger"
	gamemodel "TDProject/module/game/model"
	playermodel "TDProject/module/player/model"
	"TDProject/tools/errs"
	"TDProject/tools/ids"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const authTimeout = 5 * time.Second

// TokenVerifier resolves a token string to a player id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// PlayerFinder resolves a player id claim to a credential record.
type PlayerFinder interface {
	FindByID(ctx context.Context, id int64) (*playermodel.Player, error)
}

// SnapshotLoader fetches (or lazily creates) a player's game state.
type SnapshotLoader interface {
	LoadOrCreate(ctx context.Context, playerID int64) (*gamemodel.Snapshot, error)
}

// PresenceRecorder mirrors connect/disconnect for diagnostics.
// Best-effort; may be nil.
type PresenceRecorder interface {
	Online(ctx context.Context, playerID int64, connID string)
	Offline(ctx context.Context, playerID int64, connID string)
}

// Gateway is the connection lifecycle state machine:
//
//	Connecting → Authenticating → Authenticated → Disconnected
//
// Any authentication failure short-circuits to Disconnected with a
// silent close. All blocking I/O (token verify, player lookup, snapshot
// load) happens before the registry/room commit, so a failed lookup can
// never leave a half-authenticated connection and no lock is ever held
// across I/O.
//
// The gateway only relays live events; it never persists gameplay
// deltas. Unsaved progress is lost on disconnect unless the client
// called /api/save — durability deliberately stays with the REST layer.
type Gateway struct {
	registry *Registry
	rooms    *RoomManager
	tokens   TokenVerifier
	players  PlayerFinder
	states   SnapshotLoader
	presence PresenceRecorder
	disp     *Dispatcher
	room     string
}

type GatewayDeps struct {
	Registry *Registry
	Rooms    *RoomManager
	Tokens   TokenVerifier
	Players  PlayerFinder
	States   SnapshotLoader
	Presence PresenceRecorder // optional
	Room     string           // defaults to DefaultRoom
}

func NewGateway(deps GatewayDeps) *Gateway {
	g := &Gateway{
		registry: deps.Registry,
		rooms:    deps.Rooms,
		tokens:   deps.Tokens,
		players:  deps.Players,
		states:   deps.States,
		presence: deps.Presence,
		disp:     NewDispatcher(),
		room:     deps.Room,
	}
	if g.room == "" {
		g.room = DefaultRoom
	}
	g.disp.Register(waveHandler{})
	g.disp.Register(towerHandler{})
	g.disp.Register(pingHandler{})
	return g
}

func (g *Gateway) Registry() *Registry { return g.registry }
func (g *Gateway) Rooms() *RoomManager { return g.rooms }
func (g *Gateway) Disp() *Dispatcher   { return g.disp }
func (g *Gateway) Room() string        { return g.room }

// HandleWS serves GET /ws?token=... inside gin, the teacher's pattern:
// upgrade, authenticate, then one read loop on this goroutine plus one
// write pump goroutine until the peer goes away.
func (g *Gateway) HandleWS(c *gin.Context) {
	wsc, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	conn := newConn(ids.GenerateString(), wsc)
	ctx, cancel := context.WithTimeout(c.Request.Context(), authTimeout)
	err = g.authenticate(ctx, conn, c.Query("token"))
	cancel()
	if err != nil {
		// Silent rejection: close without emitting anything.
		logger.Infof("[ws] connection rejected conn=%s: %v", conn.ID, err)
		_ = wsc.Close()
		return
	}

	go conn.writePump()
	g.readLoop(conn)
	g.Disconnect(conn)
}

// authenticate runs the Connect transition. I/O first, commit last.
func (g *Gateway) authenticate(ctx context.Context, c *Conn, token string) error {
	if token == "" {
		return errs.New(1100, "no token provided")
	}

	playerID, err := g.tokens.Verify(token)
	if err != nil {
		return err // expired / malformed / missing claim, distinguished for the log
	}

	p, err := g.players.FindByID(ctx, playerID)
	if err != nil {
		if goerrors.Is(err, errs.ErrNotFound) {
			return errs.ErrPlayerNotFound.WithDetail(c.ID)
		}
		return err
	}

	snap, err := g.states.LoadOrCreate(ctx, playerID)
	if err != nil {
		return err
	}

	frame, err := MarshalFrame(EventStateLoaded, snap)
	if err != nil {
		return errs.WrapMsg(err, "marshal state")
	}

	// Commit: fast, in-memory, cannot fail.
	if replaced := g.registry.Put(c.ID, playerID); replaced {
		logger.Warnf("[ws] registry overwrite conn=%s player=%d", c.ID, playerID)
	}
	c.PlayerID = playerID
	g.rooms.Join(g.room, c)
	if g.presence != nil {
		g.presence.Online(ctx, playerID, c.ID)
	}

	// One-time push to the connecting client only, never broadcast.
	c.enqueue(frame)
	logger.Infof("[ws] client connected: %s (player=%d conn=%s)", p.Username, playerID, c.ID)
	return nil
}

// Disconnect runs the Disconnect transition: registry and room cleanup,
// idempotent, no persistence side effect.
func (g *Gateway) Disconnect(c *Conn) {
	if playerID, ok := g.registry.Get(c.ID); ok {
		g.registry.Remove(c.ID)
		g.rooms.Leave(g.room, c.ID)
		if g.presence != nil {
			g.presence.Offline(context.Background(), playerID, c.ID)
		}
		logger.Infof("[ws] client disconnected player=%d conn=%s", playerID, c.ID)
	} else {
		logger.Infof("[ws] anonymous client disconnected conn=%s", c.ID)
	}
	c.close()
}

func (g *Gateway) readLoop(c *Conn) {
	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s", c.ID)
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s: %v", c.ID, err)
			} else {
				logger.Infof("[ws] read err conn=%s: %v", c.ID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		g.Dispatch(c, data)
	}
}

// Dispatch parses one raw frame and routes it. Malformed input is
// logged and dropped; nothing a client sends can take the process down.
func (g *Gateway) Dispatch(c *Conn, raw []byte) {
	f, err := ParseFrame(raw)
	if err != nil {
		logger.Warnf("[ws] parse frame err conn=%s: %v sample=%q", c.ID, err, logSample(raw))
		return
	}

	h := g.disp.GetHandler(f.Type)
	if h == nil {
		logger.Debugf("[ws] unhandled event type=%s conn=%s", f.Type, c.ID)
		return
	}
	if err := h.Handle(&Context{G: g}, f, c); err != nil {
		logger.Warnf("[ws] handler err type=%s conn=%s: %v", f.Type, c.ID, err)
	}
}
