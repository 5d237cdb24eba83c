package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the live feed is public and read-only
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ps *postService) routes() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health", ps.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/posts/{id}/live", ps.handleLive).Methods(http.MethodGet)
	return router
}

func (ps *postService) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if ps.serviceOFF.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "down", "service": "post_service"})
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "post_service"})
}

// handleLive streams the counts of one post as JSON text frames until the
// client goes away.
func (ps *postService) handleLive(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if ps.serviceOFF.Load() {
		http.Error(w, "service is shutting down", http.StatusServiceUnavailable)
		return
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ps.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sub, err := ps.feed.Subscribe(ctx, id)
	if err != nil {
		ps.logger.Warn("Failed to subscribe to post changes", zap.String("post_id", id), zap.Error(err))
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "live updates unavailable"),
			time.Now().Add(writeWait))
		return
	}
	defer sub.Close()

	// reader: only needed to process pongs and notice the client closing
	go func() {
		defer cancel()
		ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ps.ctx.Done():
			ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			return
		case counts, ok := <-sub.Changes():
			if !ok {
				return
			}
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(counts); err != nil {
				ps.logger.Debug("websocket write failed", zap.String("post_id", id), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (ps *postService) newHTTPServer() *http.Server {
	server := &http.Server{
		Addr:              net.JoinHostPort(ps.config.ServerHost, ps.config.ServerHttpPort),
		Handler:           ps.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ps.httpServer = server
	return server
}

func (ps *postService) StartHealthServer() error {
	ps.logger.Info("PostServer HTTP starting", zap.String("addr", ps.httpServer.Addr))
	err := ps.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
