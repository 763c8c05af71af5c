package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
)

const (
	streamBuffer       = 64
	streamWriteTimeout = 5 * time.Second
)

// StreamHandler upgrades to a WebSocket, replays the current ring and then
// pushes every request event as a JSON message until the client leaves.
// Cross-origin clients must match one of allowedOrigins, given the way CORS
// origins are configured ("https://app.example", "*").
func StreamHandler(ring *Ring, allowedOrigins []string) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			OriginPatterns: allowedOrigins,
		})
		if err != nil {
			slog.Warn("Error accepting monitoring stream", "error", err)
			return nil
		}
		defer conn.CloseNow()

		events, release := ring.Subscribe(streamBuffer)
		defer release()

		// Only control frames are expected from the client.
		ctx := conn.CloseRead(c.Request().Context())

		for _, req := range ring.Recent() {
			if err := write(ctx, conn, req); err != nil {
				return nil
			}
		}

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			case req := <-events:
				if err := write(ctx, conn, req); err != nil {
					slog.Debug("Monitoring stream closed", "error", err)
					return nil
				}
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, req Request) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, req)
}
