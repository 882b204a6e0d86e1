package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ff-tournament-system/services"

	"github.com/gofiber/fiber/v2"
)

const liveKeepAlive = 15 * time.Second

// SetupLiveRoutes streams hub events as Server-Sent Events.
func SetupLiveRoutes(app *fiber.App, hub *services.Hub) {
	app.Get("/live", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no") // nginx

		events, unsubscribe := hub.Subscribe()
		done := c.Context().Done()
		log.Printf("[LIVE] subscriber connected (%d total)", hub.SubscriberCount())

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer unsubscribe()
			ticker := time.NewTicker(liveKeepAlive)
			defer ticker.Stop()

			w.WriteString(":\n\n")
			if err := w.Flush(); err != nil {
				return
			}

			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return
					}
					payload, err := json.Marshal(ev)
					if err != nil {
						log.Printf("[LIVE] failed to encode %s: %v", ev.Type, err)
						continue
					}
					fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
					if err := w.Flush(); err != nil {
						// Client disconnected
						return
					}

				case <-ticker.C:
					w.WriteString(":\n\n")
					if err := w.Flush(); err != nil {
						return
					}

				case <-done:
					return
				}
			}
		})

		return nil
	})
}
