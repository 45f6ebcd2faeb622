package controller

import (
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"hackbot/audit"
)

// HandleAuditWS streams audit events to the client as JSON until either
// side goes away. The client may send {"action":"close"} to end the stream.
func HandleAuditWS(feed *audit.Feed) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		events, cancel := feed.Subscribe()
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				var input struct {
					Action string `json:"action"`
				}
				if err := c.ReadJSON(&input); err != nil || input.Action == "close" {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				if err := c.WriteJSON(e); err != nil {
					logrus.WithError(err).Debug("audit stream client went away")
					return
				}
			}
		}
	}
}
