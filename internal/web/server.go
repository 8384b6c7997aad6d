// Package web serves rendered rain recordings and the recording catalog
// over HTTP with gin.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/san-kum/binrain/internal/config"
	"github.com/san-kum/binrain/internal/rain"
	"github.com/san-kum/binrain/internal/record"
	"github.com/san-kum/binrain/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	cfg    *config.Config
	store  *storage.Store
	logger *log.Logger
	engine *gin.Engine
}

// NewServer wires the routes. store may be nil, in which case the catalog
// endpoints answer 503 and ?save is ignored.
func NewServer(cfg *config.Config, store *storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cfg: cfg, store: store, logger: logger}

	r := gin.New()
	r.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.index)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/rain.gif", s.render(record.FormatGIF))
	r.GET("/rain.png", s.render(record.FormatPNG))
	r.GET("/rain.svg", s.render(record.FormatSVG))

	api := r.Group("/api")
	api.GET("/presets", s.presets)
	recs := api.Group("/recordings", s.requireStore)
	recs.GET("", s.listRecordings)
	recs.GET("/:id", s.getRecording)
	recs.GET("/:id/artifact", s.getArtifact)
	recs.DELETE("/:id", s.deleteRecording)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Printf("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) index(c *gin.Context) {
	dark := s.cfg.Dark()
	if theme := c.Query("theme"); theme != "" {
		if d, err := rain.ParseTheme(theme); err == nil {
			dark = d
		}
	}
	t := rain.ThemeFor(dark)
	text := "#f1f5f9"
	if !dark {
		text = "#0f172a"
	}

	var recordings []storage.RecordingMeta
	if s.store != nil {
		if list, err := s.store.List(); err == nil {
			recordings = list
		} else {
			s.logger.Printf("list recordings: %v", err)
		}
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"name":        s.cfg.Hero.Name,
		"phrases":     s.cfg.Hero.Phrases,
		"typeDelay":   s.cfg.Hero.TypeDelay.Milliseconds(),
		"deleteDelay": s.cfg.Hero.DeleteDelay.Milliseconds(),
		"hold":        s.cfg.Hero.Hold.Milliseconds(),
		"theme":       t.Name,
		"background":  t.Background().Hex(),
		"accent":      t.Glyph.Hex(),
		"text":        text,
		"width":       s.cfg.Render.Width,
		"height":      s.cfg.Render.Height,
		"ticks":       s.cfg.Render.Ticks,
		"recordings":  recordings,
	})
}

type renderQuery struct {
	Width  int    `form:"width" binding:"omitempty,min=1"`
	Height int    `form:"height" binding:"omitempty,min=1"`
	Ticks  int    `form:"ticks" binding:"omitempty,min=1"`
	Theme  string `form:"theme" binding:"omitempty,oneof=dark light"`
	Preset string `form:"preset"`
	Seed   int64  `form:"seed"`
	Name   string `form:"name" binding:"omitempty,alphanum,max=32"`
	Save   bool   `form:"save"`
}

func (s *Server) render(format record.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q renderQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cfg := s.cfg
		if q.Preset != "" {
			preset := config.GetPreset(q.Preset)
			if preset == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown preset %q", q.Preset)})
				return
			}
			merged := *s.cfg
			merged.Rain = preset.Rain
			cfg = &merged
		}

		width, height, ticks := cfg.Render.Width, cfg.Render.Height, cfg.Render.Ticks
		if q.Width > 0 {
			width = q.Width
		}
		if q.Height > 0 {
			height = q.Height
		}
		if q.Ticks > 0 {
			ticks = q.Ticks
		}
		dark := cfg.Dark()
		if q.Theme != "" {
			dark = q.Theme == "dark"
		}
		rc := cfg.ToRain()
		if q.Seed != 0 {
			rc.Seed = q.Seed
		}
		if err := checkLimits(cfg.Server, rc, format, width, height, ticks); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rec, err := record.New(rc, record.Options{
			Width:   width,
			Height:  height,
			Dark:    dark,
			Format:  format,
			Capture: format == record.FormatGIF,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := rec.Run(ticks); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rec.Stop()

		var buf bytes.Buffer
		if err := rec.Encode(&buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if q.Save && s.store != nil {
			meta := storage.NewMeta(q.Name, rc, width, height, string(format), dark)
			meta.Metrics = rec.Metrics()
			id, err := s.store.Save(meta, rec.Series().Ticks, buf.Bytes())
			if err != nil {
				s.logger.Printf("save recording: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save recording"})
				return
			}
			c.Header("X-Recording-ID", id)
		}

		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}

// checkLimits bounds the work of one render. Each dimension is checked on
// its own before any product so oversized queries cannot overflow.
func checkLimits(lim config.ServerConfig, rc rain.Config, format record.Format, width, height, ticks int) error {
	if ticks > lim.MaxTicks {
		return fmt.Errorf("ticks must be at most %d", lim.MaxTicks)
	}
	if width > lim.MaxSide || height > lim.MaxSide {
		return fmt.Errorf("width and height must be at most %d", lim.MaxSide)
	}
	if width > lim.MaxPixels/height {
		return fmt.Errorf("surface must be at most %d pixels", lim.MaxPixels)
	}
	switch format {
	case record.FormatSVG:
		if rc.Columns(width) > lim.MaxGlyphs/ticks {
			return fmt.Errorf("svg must hold at most %d glyphs (columns x ticks)", lim.MaxGlyphs)
		}
	case record.FormatGIF:
		if width*height > lim.MaxFramePixels/ticks {
			return fmt.Errorf("gif must hold at most %d frame pixels (width x height x ticks)", lim.MaxFramePixels)
		}
	}
	return nil
}

func (s *Server) presets(c *gin.Context) {
	out := make([]gin.H, 0, len(config.Presets))
	for _, name := range config.ListPresets() {
		out = append(out, gin.H{"name": name, "description": config.Presets[name].Description})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) requireStore(c *gin.Context) {
	if s.store == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "recording storage is disabled"})
		return
	}
	c.Next()
}

func (s *Server) listRecordings(c *gin.Context) {
	runs, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) getRecording(c *gin.Context) {
	id := c.Param("id")
	meta, err := s.store.Load(id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	ticks, err := s.store.LoadTicks(id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recording": meta, "ticks": ticks})
}

func (s *Server) getArtifact(c *gin.Context) {
	path, err := s.store.ArtifactPath(c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.File(path)
}

func (s *Server) deleteRecording(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) storeError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.logger.Printf("storage: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
