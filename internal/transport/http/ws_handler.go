package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"live-trivia-service/internal/app"
)

// FeedHandler streams session events (rounds opening and closing, score
// changes, resets) to spectator screens over a websocket.
type FeedHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewFeedHandler(service *app.QuizService, log zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "feed").Logger(),
	}
}

// ServeWS upgrades the request and relays session events until the client
// disconnects. The feed is read-only; inbound frames are drained solely to
// detect the close.
func (h *FeedHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := h.service.Subscribe()
	defer cancel()

	// Seed the client with the current question so late joiners render
	// something immediately.
	if err := conn.WriteJSON(app.Event{Type: "current", Payload: h.service.Current()}); err != nil {
		return
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.log.Debug().Err(err).Msg("ws write error")
				return
			}
		case <-readerDone:
			return
		}
	}
}
