// Package web serves the portfolio over HTTP. Every visitor's view state
// lives in a session; handlers mutate it on the session loop and answer
// HTMX requests with the re-rendered app fragment.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/content"
	"github.com/Zachkp/folio/internal/imageloader"
	"github.com/Zachkp/folio/internal/inbox"
	"github.com/Zachkp/folio/internal/session"
)

// CookieName holds the visitor's session id.
const CookieName = "folio_session"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Options wires a Server.
type Options struct {
	Site     *content.Site
	Sessions *session.Store
	Images   *imageloader.Loader
	// Hasher digests client addresses for the inbox; nil stores no origin.
	Hasher     *inbox.Hasher
	SessionTTL time.Duration
	Now        func() time.Time
}

// Server is the HTTP front end.
type Server struct {
	site     *content.Site
	sessions *session.Store
	images   *imageloader.Loader
	hasher   *inbox.Hasher
	ttl      time.Duration
	now      func() time.Time

	engine *gin.Engine
}

// New builds the engine and its routes. The gin mode is taken from the
// environment; callers set it with gin.SetMode beforehand.
func New(opts Options) (*Server, error) {
	s := &Server{
		site:     opts.Site,
		sessions: opts.Sessions,
		images:   opts.Images,
		hasher:   opts.Hasher,
		ttl:      opts.SessionTTL,
		now:      opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.ttl <= 0 {
		s.ttl = 30 * time.Minute
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"ms": func(d time.Duration) int64 { return d.Milliseconds() },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(static))
	s.engine = r
	s.setupRoutes(r)
	return s, nil
}

// Handler returns the http.Handler to serve.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) setupRoutes(r *gin.Engine) {
	r.GET("/healthz", s.healthz)
	r.GET("/img", s.image)
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy", gin.H{
			"Cookie": CookieName,
			"TTL":    s.ttl.String(),
		})
	})

	app := r.Group("/")
	app.Use(s.sessionMiddleware())

	app.GET("/", s.index)

	app.POST("/nav/:page", s.navigate)
	app.POST("/menu/toggle", s.toggleMenu)

	app.POST("/projects/filter", s.setFilter)
	app.POST("/projects/:id/select", s.selectProject)
	app.POST("/projects/selection/clear", s.clearSelection)

	app.POST("/contact/field", s.setField)
	app.POST("/contact", s.submitContact)
	app.GET("/contact/status", s.contactStatus)
}

// sessionMiddleware attaches the visitor's session, starting one and setting
// the cookie when the request carries no live session id.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(CookieName)
		sess, created := s.sessions.GetOrCreate(id)
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieName, sess.ID, int(s.ttl.Seconds()), "/", "", c.Request.TLS != nil, true)
			if id != "" {
				log.Printf("web: session %s expired, started %s", short(id), short(sess.ID))
			}
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

const sessionKey = "session"

func sessionFrom(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// origin identifies the sender to the inbox without storing their address.
// Do Not Track is honoured.
func (s *Server) origin(c *gin.Context) string {
	if s.hasher == nil || c.GetHeader("DNT") == "1" {
		return ""
	}
	return s.hasher.Hash(c.ClientIP())
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
