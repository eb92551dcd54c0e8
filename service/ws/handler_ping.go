package ws

// pingHandler answers ping with pong to the sender only. Touches no
// shared state.
type pingHandler struct{}

func (pingHandler) Type() string { return EventPing }

func (pingHandler) Handle(_ *Context, _ *Frame, c *Conn) error {
	out, err := MarshalFrame(EventPong, nil)
	if err != nil {
		return err
	}
	c.enqueue(out)
	return nil
}
