package ws

import (
	"TDProject/logger"
)

// waveHandler relays start_wave_request as wave_started to the whole
// room, sender included — the sender needs the confirmation to trigger
// its own wave animation.
type waveHandler struct{}

func (waveHandler) Type() string { return EventStartWaveRequest }

func (waveHandler) Handle(ctx *Context, f *Frame, c *Conn) error {
	g := ctx.G
	playerID, ok := g.registry.Get(c.ID)
	if !ok {
		// Unauthenticated sender: silent drop, no error to the peer.
		logger.Debugf("[wave] drop from unauthenticated conn=%s", c.ID)
		return nil
	}

	p, err := ExtractWavePayload(f)
	if err != nil {
		logger.Warnf("[wave] malformed payload player=%d conn=%s: %v", playerID, c.ID, err)
		return nil
	}

	out, err := MarshalFrame(EventWaveStarted, f.Data)
	if err != nil {
		return err
	}
	n := g.rooms.Broadcast(g.room, out, "")
	logger.Infof("[wave] player %d starts wave %d, notified %d members", playerID, p.WaveNumber, n)
	return nil
}
