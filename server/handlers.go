package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/milk9111/listeningjourney/engine"
	"github.com/milk9111/listeningjourney/journey"
	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/timeline"
)

var errNoStore = errors.New("server: no journey store configured")
var errNoCatalog = errors.New("server: no preset catalog loaded")

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.world.Snapshot())
}

func (s *Server) document(c *gin.Context) (*journey.Document, error) {
	return engine.Query(c.Request.Context(), s.world, "document", func(w *engine.World) (*journey.Document, error) {
		return w.Session().Document(), nil
	})
}

// edit runs cmd and answers with the resulting document.
func (s *Server) edit(c *gin.Context, cmd engine.Command) (any, error) {
	if err := s.world.Exec(c.Request.Context(), cmd); err != nil {
		return nil, err
	}
	return s.document(c)
}

func (s *Server) getJourney(c *gin.Context) (any, error) {
	return s.document(c)
}

func (s *Server) saveJourney(c *gin.Context) (any, error) {
	if s.store == nil {
		return nil, &httpError{status: http.StatusNotImplemented, err: errNoStore}
	}
	doc, err := s.document(c)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(c.Request.Context(), doc); err != nil {
		return nil, &httpError{status: http.StatusInternalServerError, err: err}
	}
	return gin.H{"id": doc.ID}, nil
}

func (s *Server) listJourneys(c *gin.Context) (any, error) {
	if s.store == nil {
		return nil, &httpError{status: http.StatusNotImplemented, err: errNoStore}
	}
	return s.store.List(c.Request.Context())
}

type audioInput struct {
	Src    string   `json:"src" binding:"required"`
	Volume *float64 `json:"volume"`
}

func (s *Server) loadAudio(c *gin.Context, in *audioInput) (any, error) {
	vol := 1.0
	if in.Volume != nil {
		vol = *in.Volume
	}
	return s.edit(c, engine.LoadAudio(in.Src, vol))
}

type modeInput struct {
	Mode string `json:"mode" binding:"required"`
}

func (s *Server) setMode(c *gin.Context, in *modeInput) (any, error) {
	m, ok := overlay.ParseMode(in.Mode)
	if !ok {
		return nil, badRequest(fmt.Errorf("unknown mode %q", in.Mode))
	}
	if err := s.world.Exec(c.Request.Context(), engine.SetMode(m)); err != nil {
		return nil, err
	}
	return gin.H{"mode": m.String()}, nil
}

type seekInput struct {
	Time *float64 `json:"time" binding:"required"`
}

func (s *Server) playback(c *gin.Context) {
	var cmd engine.Command
	switch action := c.Param("action"); action {
	case "play":
		cmd = engine.Play()
	case "pause":
		cmd = engine.Pause()
	case "toggle":
		cmd = engine.TogglePlay()
	case "rewind":
		cmd = engine.Rewind()
	case "seek":
		var in seekInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respond(c, nil, badRequest(err))
			return
		}
		cmd = engine.Seek(*in.Time)
	default:
		respond(c, nil, &httpError{status: http.StatusNotFound, err: fmt.Errorf("unknown playback action %q", action)})
		return
	}
	if err := s.world.Exec(c.Request.Context(), cmd); err != nil {
		respond(c, nil, err)
		return
	}
	respond(c, s.world.Snapshot(), nil)
}

type sectionInput struct {
	Scene string `json:"scene"`
}

func (s *Server) addSection(c *gin.Context, in *sectionInput) (any, error) {
	return s.edit(c, engine.AddSection(in.Scene))
}

func indexParam(c *gin.Context) (int, error) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, badRequest(fmt.Errorf("bad index %q", c.Param("index")))
	}
	return i, nil
}

func (s *Server) removeSection(c *gin.Context) (any, error) {
	i, err := indexParam(c)
	if err != nil {
		return nil, err
	}
	return s.edit(c, engine.RemoveSection(i))
}

type attributeInput struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

func (s *Server) updateSection(c *gin.Context, in *attributeInput) (any, error) {
	i, err := indexParam(c)
	if err != nil {
		return nil, err
	}
	return s.edit(c, engine.UpdateSection(i, timeline.Field(in.Field), in.Value))
}

type timeInput struct {
	Time *float64 `json:"time" binding:"required"`
}

func (s *Server) resizeBoundary(c *gin.Context, in *timeInput) (any, error) {
	i, err := indexParam(c)
	if err != nil {
		return nil, err
	}
	return s.edit(c, engine.ResizeBoundary(i, *in.Time))
}

func (s *Server) extendLastEdge(c *gin.Context, in *timeInput) (any, error) {
	return s.edit(c, engine.ExtendLastEdge(*in.Time))
}

type itemInput struct {
	Kind      overlay.Kind     `json:"type" binding:"required"`
	Content   string           `json:"content"`
	Timestamp *float64         `json:"timestamp" binding:"required"`
	Duration  float64          `json:"duration"`
	Position  overlay.Position `json:"position"`
	Scale     float64          `json:"scale"`
}

func (s *Server) placeItem(c *gin.Context, in *itemInput) (any, error) {
	return s.edit(c, engine.PlaceItem(overlay.PlaceRequest{
		Kind:      in.Kind,
		Content:   in.Content,
		Timestamp: *in.Timestamp,
		Duration:  in.Duration,
		Position:  in.Position,
		Scale:     in.Scale,
	}))
}

type itemPatch struct {
	Content   *string           `json:"content"`
	Duration  *float64          `json:"duration"`
	Timestamp *float64          `json:"timestamp"`
	Position  *overlay.Position `json:"position"`
}

func (s *Server) updateItem(c *gin.Context, in *itemPatch) (any, error) {
	id := c.Param("id")
	return s.edit(c, engine.Command{Name: "update_item", Edit: true, Apply: func(w *engine.World) error {
		session := w.Session()
		it, ok := session.Item(id)
		if !ok {
			return fmt.Errorf("%w: %q", overlay.ErrItemNotFound, id)
		}
		if in.Timestamp != nil || in.Position != nil {
			ts, pos := it.Timestamp, it.Position
			if in.Timestamp != nil {
				ts = *in.Timestamp
			}
			if in.Position != nil {
				pos = *in.Position
			}
			if _, err := session.MoveItem(id, ts, pos); err != nil {
				return err
			}
		}
		if in.Duration != nil {
			if _, err := session.ResizeItem(id, *in.Duration); err != nil {
				return err
			}
		}
		if in.Content != nil {
			if _, err := session.SetItemContent(id, *in.Content); err != nil {
				return err
			}
		}
		return nil
	}})
}

func (s *Server) removeItem(c *gin.Context) (any, error) {
	return s.edit(c, engine.RemoveItem(c.Param("id")))
}

type presetList struct {
	Scenes   []string `json:"scenes"`
	Journeys []string `json:"journeys"`
}

func (s *Server) listPresets(c *gin.Context) (any, error) {
	if s.catalog == nil {
		return nil, &httpError{status: http.StatusNotImplemented, err: errNoCatalog}
	}
	out := presetList{Scenes: s.catalog.SceneIDs()}
	for _, j := range s.catalog.Journeys() {
		out.Journeys = append(out.Journeys, j.ID)
	}
	return out, nil
}

func (s *Server) applyPreset(c *gin.Context) (any, error) {
	if s.catalog == nil {
		return nil, &httpError{status: http.StatusNotImplemented, err: errNoCatalog}
	}
	id := c.Param("id")
	return s.edit(c, engine.Command{Name: "apply_preset", Edit: true, Apply: func(w *engine.World) error {
		sections, err := s.catalog.Sections(id, w.Session().TotalDuration())
		if err != nil {
			return err
		}
		return w.Session().ApplyPreset(sections)
	}})
}

func (s *Server) revertPreset(c *gin.Context) (any, error) {
	return s.edit(c, engine.RevertPreset())
}

func (s *Server) reset(c *gin.Context) (any, error) {
	return s.edit(c, engine.Reset())
}
