package main

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"arena-server/arena"
	"arena-server/journal"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

const (
	defaultEventLimit = 50
	maxEventLimit     = 1000
)

// App ties the running pieces together for the HTTP handlers.
type App struct {
	Rules   arena.Rules
	Hub     *Hub
	Sim     *Sim
	Auth    *Auth
	Journal *journal.Journal
	Session string
	Cache   *IndexCache
	// Map and Engine are what the running map was loaded with. Reload
	// falls back to them.
	Map    string
	Engine string

	reloadMu sync.Mutex
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorMsg{Msg: msg})
}

// SetupRoutes configures HTTP routes
func SetupRoutes(app *App) *http.ServeMux {
	mux := http.NewServeMux()

	// Spectator feed
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !app.Hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			Log.WithError(err).WithField("remote", ip).Warn("upgrade error")
			return
		}

		app.Hub.TrackConnect(ip)

		client := NewClient(app.Hub, conn, ip)
		app.Hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		wm := app.Sim.Welcome()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"map":        wm.Map,
			"engine":     wm.Engine,
			"build":      wm.BuildID,
			"frame":      app.Sim.Frame().Frame,
			"players":    app.Sim.PlayerCount(),
			"spectators": app.Hub.ClientCount(),
		})
	})

	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		limit := defaultEventLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "bad limit")
				return
			}
			limit = min(n, maxEventLimit)
		}
		events, err := app.Journal.Recent(app.Session, limit)
		if err != nil {
			Log.WithError(err).Error("journal query failed")
			writeError(w, http.StatusInternalServerError, "journal unavailable")
			return
		}
		if events == nil {
			events = []journal.Event{}
		}
		writeJSON(w, http.StatusOK, events)
	})

	mux.HandleFunc("GET /scores", func(w http.ResponseWriter, r *http.Request) {
		totals, err := app.Journal.ScoreTotals(app.Session)
		if err != nil {
			Log.WithError(err).Error("journal query failed")
			writeError(w, http.StatusInternalServerError, "journal unavailable")
			return
		}
		writeJSON(w, http.StatusOK, totals)
	})

	mux.HandleFunc("POST /admin/login", func(w http.ResponseWriter, r *http.Request) {
		var msg LoginMsg
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&msg); err != nil {
			writeError(w, http.StatusBadRequest, "bad request")
			return
		}
		token, err := app.Auth.Login(msg.Password, extractIP(r))
		switch {
		case errors.Is(err, ErrAdminDisabled):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, err.Error())
		case err != nil:
			Log.WithField("remote", extractIP(r)).Warn("failed admin login")
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			writeJSON(w, http.StatusOK, TokenMsg{Token: token})
		}
	})

	mux.HandleFunc("POST /admin/reload", func(w http.ResponseWriter, r *http.Request) {
		if _, err := app.Auth.ValidateToken(bearerToken(r.Header.Get("Authorization"))); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		var msg ReloadMsg
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&msg); err != nil {
			writeError(w, http.StatusBadRequest, "bad request")
			return
		}
		wm, err := app.Reload(msg)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, wm)
	})

	return mux
}

// Reload builds the requested map off the sim lock and swaps it in. A
// failed build leaves the running map alone.
func (app *App) Reload(msg ReloadMsg) (WelcomeMsg, error) {
	app.reloadMu.Lock()
	defer app.reloadMu.Unlock()

	engine := msg.Engine
	if engine == "" {
		engine = app.Engine
	}
	switch engine {
	case EngineAuto, EngineGrid, EnginePolygon:
	default:
		return WelcomeMsg{}, ErrBadEngine
	}

	path := msg.Map
	if path == "" {
		path = app.Map
	}

	log := Log.WithFields(logrus.Fields{"map": path, "engine": engine})
	build, err := LoadMap(path, engine, app.Rules, app.Cache)
	if err != nil {
		log.WithError(err).Warn("reload refused")
		return WelcomeMsg{}, err
	}
	if err := app.Sim.Reload(build); err != nil {
		log.WithError(err).Warn("reload refused")
		return WelcomeMsg{}, err
	}
	app.Map, app.Engine = path, engine
	log.WithField("build", build.BuildID).Info("map reloaded")
	wm := app.Sim.Welcome()
	app.Hub.Broadcast(Envelope{T: MsgReloaded, Data: wm})
	return wm, nil
}
