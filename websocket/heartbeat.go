// file: websocket/heartbeat.go
package websocket

import (
	"time"

	"codeclash/logger"
)

// startHeartbeat sends a ping every 10 seconds to keep the connection alive.
// Repeated failures close the connection; the read loop then runs the normal
// disconnect path. Exits as soon as the connection is closed elsewhere.
func startHeartbeat(c *Connection) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	failedPings := 0
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		if err := c.ping(); err != nil {
			failedPings++
			logger.Warn.Printf("[heartbeat] ping failed for user %s (%d/5): %v", c.userID, failedPings, err)
			if failedPings >= 5 {
				logger.Error.Printf("[heartbeat] closing connection for user %s after repeated ping failures", c.userID)
				c.close()
				return
			}
		} else {
			failedPings = 0
		}
	}
}
