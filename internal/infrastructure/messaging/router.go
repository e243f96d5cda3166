package messaging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// NewRouter creates a Watermill Router for the enrichment dispatch handler.
// Enrichment is best-effort and errors are logged, never retried (§4.4) — a
// failed lookup leaves ExtraSongInfo absent until the next explicit
// trigger, so the router carries only a panic recoverer, not retry/poison
// middleware.
func NewRouter(wmLogger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(middleware.Recoverer)

	return router, nil
}
