package ws

import (
	"TDProject/logger"
)

// towerHandler relays build_tower_request as tower_placed to everyone
// except the sender, who already rendered the placement optimistically.
// Placement legality and resource cost are not checked server-side;
// the payload passes through opaque.
type towerHandler struct{}

func (towerHandler) Type() string { return EventBuildTowerReq }

func (towerHandler) Handle(ctx *Context, f *Frame, c *Conn) error {
	g := ctx.G
	playerID, ok := g.registry.Get(c.ID)
	if !ok {
		logger.Debugf("[tower] drop from unauthenticated conn=%s", c.ID)
		return nil
	}

	if len(f.Data) == 0 {
		logger.Warnf("[tower] empty payload player=%d conn=%s", playerID, c.ID)
		return nil
	}

	out, err := MarshalFrame(EventTowerPlaced, f.Data)
	if err != nil {
		return err
	}
	n := g.rooms.Broadcast(g.room, out, c.ID)
	logger.Infof("[tower] player %d placed tower, notified %d members", playerID, n)
	return nil
}
