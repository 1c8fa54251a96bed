package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anonto42/nano-gallery/internal/interactions"
	"github.com/anonto42/nano-gallery/internal/middleware"
	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/anonto42/nano-gallery/internal/repositories"
	"github.com/anonto42/nano-gallery/internal/store"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// LiveHandler streams live query results over websockets
type LiveHandler struct {
	feedRepository    repositories.FeedRepository
	commentRepository repositories.CommentRepository
	interactions      *interactions.Service
	upgrader          websocket.Upgrader
	logger            *slog.Logger
}

// NewLiveHandler creates a new LiveHandler
func NewLiveHandler(
	feedRepo repositories.FeedRepository,
	commentRepo repositories.CommentRepository,
	svc *interactions.Service,
	allowedOrigins []string,
	logger *slog.Logger,
) *LiveHandler {
	return &LiveHandler{
		feedRepository:    feedRepo,
		commentRepository: commentRepo,
		interactions:      svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(r.Header.Get("Origin"), allowedOrigins)
			},
		},
		logger: logger,
	}
}

// RegisterLiveRoutes registers websocket routes
func (h *LiveHandler) RegisterLiveRoutes(g *echo.Group) {
	g.GET("/live/feed", h.StreamFeed)
	g.GET("/live/images/:image_id", h.StreamImage)
}

// StreamFeed pushes the recent feed on every change
func (h *LiveHandler) StreamFeed(c echo.Context) error {
	return h.serve(c, func(ctx context.Context, client *liveClient) ([]store.Unsubscribe, error) {
		unsubscribe, err := h.feedRepository.SubscribeFeed(ctx, func(events []models.FeedEvent, err error) {
			if err != nil {
				client.push(errorMessage("", err))
				return
			}
			client.push(LiveMessage{Type: MessageFeed, Data: events})
		})
		if err != nil {
			return nil, err
		}
		return []store.Unsubscribe{unsubscribe}, nil
	})
}

// StreamImage pushes an image's reaction summary and comments on every change
func (h *LiveHandler) StreamImage(c echo.Context) error {
	imageID := c.Param("image_id")
	if imageID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, interactions.ErrEmptyImageID.Error())
	}

	return h.serve(c, func(ctx context.Context, client *liveClient) ([]store.Unsubscribe, error) {
		stopReactions, err := h.interactions.WatchReactions(ctx, imageID, func(summary models.ReactionSummary, err error) {
			if err != nil {
				client.push(errorMessage(imageID, err))
				return
			}
			client.push(LiveMessage{Type: MessageReactions, ImageID: imageID, Data: summary})
		})
		if err != nil {
			return nil, err
		}

		stopComments, err := h.commentRepository.SubscribeComments(ctx, imageID, func(comments []models.Comment, err error) {
			if err != nil {
				client.push(errorMessage(imageID, err))
				return
			}
			client.push(LiveMessage{Type: MessageComments, ImageID: imageID, Data: comments})
		})
		if err != nil {
			stopReactions()
			return nil, err
		}
		return []store.Unsubscribe{stopReactions, stopComments}, nil
	})
}

// serve upgrades the connection, runs subscribe and keeps the subscriptions
// alive until the peer disconnects.
func (h *LiveHandler) serve(c echo.Context, subscribe func(context.Context, *liveClient) ([]store.Unsubscribe, error)) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "path", c.Path(), "error", err)
		return nil
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	client := newLiveClient(conn, h.logger)
	unsubscribes, err := subscribe(ctx, client)
	if err != nil {
		h.logger.Error("live subscription failed", "path", c.Path(), "error", err)
		msg := errorMessage(c.Param("image_id"), err)
		msg.Timestamp = time.Now()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteJSON(msg)
		conn.Close()
		return nil
	}
	defer func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}()

	go client.readPump()
	client.writePump()
	return nil
}

func errorMessage(imageID string, err error) LiveMessage {
	return LiveMessage{Type: MessageError, ImageID: imageID, Error: err.Error(), Retryable: true}
}
