package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/san-kum/stepviz/internal/config"
	"github.com/san-kum/stepviz/internal/engine"
	"github.com/san-kum/stepviz/internal/scenario"
	"github.com/san-kum/stepviz/internal/scene"
	"github.com/san-kum/stepviz/internal/step"
)

// SessionRequest is the first message of a session. Either Scenario names a
// stored scenario, or Kind and the inline data and steps describe one.
type SessionRequest struct {
	Scenario string          `json:"scenario,omitempty"`
	Kind     scene.Kind      `json:"kind,omitempty"`
	Array    []scene.ID      `json:"array,omitempty"`
	Graph    *scene.Graph    `json:"graph,omitempty"`
	Steps    json.RawMessage `json:"steps,omitempty"`
	Speed    *int            `json:"speed,omitempty"`
}

// Control is any later client message. A message that sets none of the
// fields cancels the session.
type Control struct {
	Speed  *int  `json:"speed,omitempty"`
	Pause  *bool `json:"pause,omitempty"`
	Cancel bool  `json:"cancel,omitempty"`
}

type Server struct {
	speed    config.SpeedConfig
	layout   scene.Layout
	store    *scenario.Store
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewServer(cfg *config.Config, store *scenario.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		speed:  cfg.Speed,
		layout: cfg.Layout,
		store:  store,
		log:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler serves the session endpoint on /ws and, when staticDir is set, the
// files of a browser front end on /.
func (s *Server) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.Session)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func (s *Server) resolve(req *SessionRequest) (*scenario.Scenario, error) {
	if req.Scenario != "" {
		if s.store == nil {
			return nil, scenario.ErrNotFound
		}
		return s.store.LoadScenario(req.Scenario)
	}
	sc := &scenario.Scenario{Name: "session", Kind: req.Kind, Array: req.Array, Graph: req.Graph}
	if len(req.Steps) > 0 {
		steps, err := step.DecodeBytes(req.Steps)
		if err != nil {
			return nil, err
		}
		sc.Steps = steps
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Server) Session(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", "err", err)
		return
	}
	ws := NewSocket(c)
	defer ws.Close("session over")

	_, msg, err := ws.ReadMessage()
	if err != nil {
		s.log.Warn("ws session read failed", "err", err)
		return
	}
	var req SessionRequest
	if err := json.Unmarshal(step.QuoteNonFinite(msg), &req); err != nil {
		s.log.Warn("ws session unmarshal failed", "err", err)
		_ = ws.WriteJSON(Op{Op: OpMessage, Text: "Error: " + err.Error()})
		return
	}

	target := NewTarget(ws, s.log)
	sc, err := s.resolve(&req)
	if err != nil {
		s.log.Warn("ws session rejected", "err", err)
		target.SetMessage("Error: " + err.Error())
		target.End(string(step.OutcomeFailed), 0)
		return
	}

	value := s.speed.Value
	if req.Speed != nil {
		value = *req.Speed
	}
	speed, err := step.NewSpeed(s.speed.Min, s.speed.Max, value)
	if err != nil {
		target.SetMessage("Error: " + err.Error())
		return
	}
	clock := step.NewClock(speed)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.readControls(ctx, cancel, ws, clock)

	log := s.log.With("session", r.RemoteAddr, "kind", string(sc.Kind), "steps", len(sc.Steps))
	log.Info("session started")

	eng := engine.New(target, target, clock, s.layout, log)
	eng.SetCompletionMessage(step.CompleteMessage)
	eng.RenderInitial(sc.Kind, sc.Data())
	res, err := eng.RunSteps(ctx, sc.Steps)
	switch {
	case errors.Is(err, context.Canceled):
		log.Info("session cancelled", "visited", res.Visited)
		target.End("cancelled", res.Visited)
	case err != nil:
		log.Warn("session failed", "err", err)
	default:
		target.End(string(res.Outcome), res.Visited)
	}
	if err := target.Err(); err != nil {
		log.Debug("session stream closed early", "err", err)
	}
}

// readControls applies client messages to the clock until the connection
// drops or the client asks to stop.
func (s *Server) readControls(ctx context.Context, cancel context.CancelFunc, ws Socket, clock *step.Clock) {
	defer cancel()
	for ctx.Err() == nil {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var ctl Control
		if err := json.Unmarshal(msg, &ctl); err != nil || ctl.Cancel || (ctl.Speed == nil && ctl.Pause == nil) {
			return
		}
		if ctl.Speed != nil {
			v := clock.Speed().Set(*ctl.Speed)
			s.log.Debug("speed changed", "value", v)
		}
		if ctl.Pause != nil {
			clock.SetPaused(*ctl.Pause)
		}
	}
}
