// Package web serves hosted games over HTTP: JSON snapshots, commands, an
// HTML board fragment and a websocket stream of snapshots.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"blockdrop/session"
	"blockdrop/tetris"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const writeWait = 5 * time.Second

type Handler struct {
	store    *session.Store
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(store *session.Store, l *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		logger:   l,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 5 * time.Second,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
	}
}

// NewRouter returns a router with the game routes and the usual middleware.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/games", h.createGame)
	r.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", h.getGame)
		r.Delete("/", h.deleteGame)
		r.Post("/commands/{command}", h.command)
		r.Get("/board", h.board)
		r.Get("/ws", h.stream)
	})
}

func (h *Handler) createGame(w http.ResponseWriter, _ *http.Request) {
	sess, err := h.store.Create()
	if err != nil {
		h.logger.Error("unable to create game", slog.String("error", err.Error()))
		http.Error(w, "unable to create game", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, toGameView(sess.ID, sess.Snapshot()))
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, toGameView(sess.ID, sess.Snapshot()))
}

func (h *Handler) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// command queues the command for the game loop, the result shows up on the
// next snapshot.
func (h *Handler) command(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	c, err := tetris.ParseCommand(chi.URLParam(r, "command"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Command(c)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) board(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	render(w, r, boardView(sess.ID, sess.Snapshot()))
}

// stream pushes a snapshot on every change until the client goes away or the
// game stops. ?format=msgpack switches from JSON text frames to msgpack
// binary frames.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	binary := r.URL.Query().Get("format") == "msgpack"
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("unable to upgrade connection", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	updates := sess.Subscribe()
	defer sess.Unsubscribe(updates)

	// the read loop handles control frames and tells us when the client leaves.
	goneCh := make(chan struct{})
	go func() {
		defer close(goneCh)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeFrame(conn, toGameView(sess.ID, sess.Snapshot()), binary); err != nil {
		return
	}
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game stopped"),
					time.Now().Add(writeWait))
				return
			}
			if err := h.writeFrame(conn, toGameView(sess.ID, u), binary); err != nil {
				return
			}
		case <-goneCh:
			return
		}
	}
}

func (h *Handler) writeFrame(conn *websocket.Conn, v gameView, binary bool) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	var err error
	if binary {
		var data []byte
		data, err = msgpack.Marshal(&v)
		if err == nil {
			err = conn.WriteMessage(websocket.BinaryMessage, data)
		}
	} else {
		err = conn.WriteJSON(v)
	}
	if err != nil {
		h.logger.Debug("unable to write frame", slog.String("error", err.Error()))
	}
	return err
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.store.Get(chi.URLParam(r, "id"))
	if errors.Is(err, session.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("unable to encode response", slog.String("error", err.Error()))
	}
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}
