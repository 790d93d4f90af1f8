package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sboosali/notegraph/pkg/errors"
	"github.com/sboosali/notegraph/pkg/explorer"
	"github.com/sboosali/notegraph/pkg/graph"
	"github.com/sboosali/notegraph/pkg/render"
	"github.com/sboosali/notegraph/pkg/render/nodelink"
	"github.com/sboosali/notegraph/pkg/session"
	"github.com/sboosali/notegraph/pkg/storage"
	"github.com/sboosali/notegraph/pkg/textloc"
)

// stateResponse is what most session endpoints answer with. Caret counts
// UTF-16 code units, like the browser's note buffer.
type stateResponse struct {
	ID     string        `json:"id"`
	Notes  string        `json:"notes"`
	Show   string        `json:"show"`
	Output string        `json:"output,omitempty"`
	Caret  textloc.Range `json:"caret"`
	Frame  render.Frame  `json:"frame"`
	Stats  *drawStats    `json:"stats,omitempty"`
}

type drawStats struct {
	Nodes    int      `json:"nodes"`
	Links    int      `json:"links"`
	Carried  int      `json:"carried"`
	Pruned   []string `json:"pruned,omitempty"`
	Duration string   `json:"duration"`
}

func snapshot(id string, st session.State, frame render.Frame) stateResponse {
	text := st.Notes.Text()
	return stateResponse{
		ID:     id,
		Notes:  text,
		Show:   st.Show.Text(),
		Output: st.Output.Text(),
		Caret:  st.Notes.Caret().UTF16(text),
		Frame:  frame,
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	setCookie(w, sess)
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (s *Server) handleCookieSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		if sess, err := s.sessions.Get(c.Value); err == nil {
			writeJSON(w, http.StatusOK, map[string]string{"id": sess.ID})
			return
		}
	}
	sess := s.sessions.Create()
	setCookie(w, sess)
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func setCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.respond(w, r, sess, func(st session.State) (render.Frame, error) {
		return st.Explorer.Driver().Tick(), nil
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.sessions.Delete(sess.ID)
	if s.store != nil {
		if err := s.store.Delete(r.Context(), storage.SessionKey(sess.ID)); err != nil {
			s.logger.Warn("delete session notes", "session", sess.ID, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type notesRequest struct {
	Notes *string `json:"notes"`
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Notes == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "notes is required"))
		return
	}
	sess := sessionFrom(r)
	s.respond(w, r, sess, func(st session.State) (render.Frame, error) {
		if err := s.setNotes(r.Context(), sess, st, *req.Notes); err != nil {
			return render.Frame{}, err
		}
		return st.Explorer.Driver().Tick(), nil
	})
}

func (s *Server) setNotes(ctx context.Context, sess *session.Session, st session.State, notes string) error {
	if err := errors.ValidateNotes(notes); err != nil {
		return err
	}
	st.Notes.SetText(notes)
	st.Controller.NotesChanged()
	if s.store == nil {
		return nil
	}
	return s.store.Set(ctx, storage.SessionKey(sess.ID), notes)
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	sess := sessionFrom(r)

	var stats explorer.Stats
	resp, err := s.state(r, sess, func(st session.State) (render.Frame, error) {
		if req.Notes != nil {
			if err := s.setNotes(r.Context(), sess, st, *req.Notes); err != nil {
				return render.Frame{}, err
			}
		}
		var err error
		stats, err = st.Explorer.Draw(r.Context(), st.Notes.Text())
		if err != nil {
			return render.Frame{}, err
		}
		return st.Explorer.Driver().Tick(), nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	resp.Stats = &drawStats{
		Nodes:    stats.Nodes,
		Links:    stats.Links,
		Carried:  stats.Carried,
		Pruned:   stats.Pruned,
		Duration: stats.Duration.String(),
	}
	writeJSON(w, http.StatusOK, resp)
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess := sessionFrom(r)
	var text string
	err := sess.Do(r.Context(), func(st session.State) error {
		st.Query.SetText(req.Query)
		var err error
		text, err = st.Explorer.RunQuery(r.Context(), req.Query)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"results": text})
}

type tickRequest struct {
	Positions []render.PositionUpdate `json:"positions"`
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var req tickRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess := sessionFrom(r)
	s.respond(w, r, sess, func(st session.State) (render.Frame, error) {
		st.Explorer.Driver().Apply(req.Positions)
		return st.Explorer.Driver().Tick(), nil
	})
}

type focusRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess := sessionFrom(r)
	s.respond(w, r, sess, func(st session.State) (render.Frame, error) {
		return st.Controller.MovePointer(req.X, req.Y), nil
	})
}

// targetRequest names a node or a link by ID. Both empty means "nothing".
type targetRequest struct {
	Node string `json:"node,omitempty"`
	Link string `json:"link,omitempty"`
}

func lookup(g *graph.Graph, req targetRequest) (*graph.Node, *graph.Link, error) {
	switch {
	case req.Node != "" && req.Link != "":
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "name either a node or a link")
	case req.Node != "":
		n, ok := g.Node(req.Node)
		if !ok {
			return nil, nil, errors.New(errors.ErrCodeNotFound, "node %q not found", req.Node)
		}
		return n, nil, nil
	case req.Link != "":
		l, ok := g.Link(req.Link)
		if !ok {
			return nil, nil, errors.New(errors.ErrCodeNotFound, "link %q not found", req.Link)
		}
		return nil, l, nil
	}
	return nil, nil, nil
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess := sessionFrom(r)
	s.respond(w, r, sess, func(st session.State) (render.Frame, error) {
		n, l, err := lookup(st.Explorer.Graph(), req)
		if err != nil {
			return render.Frame{}, err
		}
		switch {
		case n != nil:
			st.Controller.EnterNode(n)
		case l != nil:
			st.Controller.EnterLink(l)
		default:
			st.Controller.Leave()
		}
		return st.Explorer.Driver().Tick(), nil
	})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess := sessionFrom(r)
	s.respond(w, r, sess, func(st session.State) (render.Frame, error) {
		n, l, err := lookup(st.Explorer.Graph(), req)
		if err != nil {
			return render.Frame{}, err
		}
		switch {
		case n != nil:
			st.Controller.ClickNode(n)
		case l != nil:
			st.Controller.ClickLink(l)
		default:
			return render.Frame{}, errors.New(errors.ErrCodeInvalidInput, "click needs a node or a link")
		}
		return st.Explorer.Driver().Tick(), nil
	})
}

type pinRequest struct {
	Name   string `json:"name"`
	Pinned bool   `json:"pinned"`
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess := sessionFrom(r)
	s.respond(w, r, sess, func(st session.State) (render.Frame, error) {
		n, ok := st.Explorer.Graph().Node(req.Name)
		if !ok {
			return render.Frame{}, errors.New(errors.ErrCodeNotFound, "node %q not found", req.Name)
		}
		if req.Pinned {
			st.Controller.ClickNode(n)
		} else {
			st.Controller.Unpin(n)
		}
		return st.Explorer.Driver().Tick(), nil
	})
}

type locateResponse struct {
	Line  int           `json:"line"`
	Range textloc.Range `json:"range"` // UTF-16 code units
	Text  string        `json:"text"`
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	line, err := strconv.Atoi(r.URL.Query().Get("line"))
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "line must be an integer"))
		return
	}
	sess := sessionFrom(r)
	var resp locateResponse
	err = sess.Do(r.Context(), func(st session.State) error {
		text := st.Notes.Text()
		rng, err := textloc.Locate(text, line)
		if err != nil {
			return err
		}
		resp = locateResponse{Line: line, Range: rng.UTF16(text), Text: rng.Slice(text)}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var dot string
	err := sess.Do(r.Context(), func(st session.State) error {
		dot = nodelink.ToDOT(st.Explorer.Driver().Tick(), nodelink.Options{Relations: true})
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	svg, err := nodelink.RenderSVG(r.Context(), dot)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

// state runs fn under the session lock and snapshots the result.
func (s *Server) state(r *http.Request, sess *session.Session, fn func(st session.State) (render.Frame, error)) (stateResponse, error) {
	var resp stateResponse
	err := sess.Do(r.Context(), func(st session.State) error {
		frame, err := fn(st)
		if err != nil {
			return err
		}
		resp = snapshot(sess.ID, st, frame)
		return nil
	})
	return resp, err
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *session.Session, fn func(st session.State) (render.Frame, error)) {
	resp, err := s.state(r, sess, fn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
