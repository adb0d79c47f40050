package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/imageloader"
	"github.com/Zachkp/folio/internal/session"
	"github.com/Zachkp/folio/internal/view"
	"github.com/Zachkp/folio/internal/viewstate"
)

// page is everything the app template draws for one response.
type page struct {
	Shell    view.Shell
	Home     *view.Home
	Projects *view.Projects
	Contact  *view.Contact
	Version  uint64
}

// snapshot builds the view of st. It runs on the session loop.
func (s *Server) snapshot(st *session.State, errs map[string]string) page {
	p := page{
		Shell:   view.NewShell(s.site, st.Nav, s.now()),
		Version: st.Version,
	}
	switch p.Shell.Page {
	case viewstate.PageHome:
		h := view.NewHome(s.site)
		p.Home = &h
	case viewstate.PageProject:
		pr := view.NewProjects(s.site, st.Projects)
		p.Projects = &pr
	case viewstate.PageContact:
		ct := view.NewContact(s.site, st.Contact, errs)
		p.Contact = &ct
	}
	return p
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// update applies fn on the visitor's loop and answers with the new app
// fragment, or a redirect home for plain form posts.
func (s *Server) update(c *gin.Context, fn func(*session.State) error) {
	sess := sessionFrom(c)
	var p page
	err := sess.Do(func(st *session.State) error {
		if err := fn(st); err != nil {
			return err
		}
		p = s.snapshot(st, nil)
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	if !isHTMX(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, "app", p)
}

// fail maps domain errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, viewstate.ErrUnknownPage), errors.Is(err, catalog.ErrUnknownProject):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrUnknownCategory), errors.Is(err, contact.ErrUnknownField), errors.Is(err, contact.ErrIncomplete):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, contact.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, session.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("web: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.String(status, err.Error())
}

func (s *Server) index(c *gin.Context) {
	var p page
	err := sessionFrom(c).Do(func(st *session.State) error {
		p = s.snapshot(st, nil)
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	if isHTMX(c) {
		c.HTML(http.StatusOK, "app", p)
		return
	}
	c.HTML(http.StatusOK, "index", p)
}

func (s *Server) navigate(c *gin.Context) {
	target, err := viewstate.ParsePage(c.Param("page"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.update(c, func(st *session.State) error {
		st.Nav.NavigateTo(target)
		return nil
	})
}

func (s *Server) toggleMenu(c *gin.Context) {
	s.update(c, func(st *session.State) error {
		st.Nav.ToggleMenu()
		return nil
	})
}

func (s *Server) setFilter(c *gin.Context) {
	category := c.PostForm("category")
	s.update(c, func(st *session.State) error {
		if err := st.Projects.SetFilter(category); err != nil {
			return err
		}
		st.Touch()
		return nil
	})
}

func (s *Server) selectProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		s.fail(c, catalog.ErrUnknownProject)
		return
	}
	s.update(c, func(st *session.State) error {
		if err := st.Projects.Select(id); err != nil {
			return err
		}
		st.Touch()
		return nil
	})
}

func (s *Server) clearSelection(c *gin.Context) {
	s.update(c, func(st *session.State) error {
		st.Projects.ClearSelection()
		st.Touch()
		return nil
	})
}

// setField echoes one input as the visitor types.
func (s *Server) setField(c *gin.Context) {
	name := c.PostForm("field")
	value := c.PostForm(name)
	err := sessionFrom(c).Do(func(st *session.State) error {
		return st.Contact.SetField(name, value)
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) submitContact(c *gin.Context) {
	var fields contact.Fields
	bindErr := c.ShouldBind(&fields)
	errs := fieldErrors(bindErr)
	if bindErr != nil && errs == nil {
		s.fail(c, bindErr)
		return
	}
	origin := s.origin(c)

	var p page
	status := http.StatusOK
	err := sessionFrom(c).Do(func(st *session.State) error {
		if err := st.Contact.SetFields(fields); err != nil {
			return err
		}
		if errs == nil {
			err := st.Contact.Submit(c.Request.Context(), origin)
			switch {
			case errors.Is(err, contact.ErrIncomplete):
				errs = make(map[string]string)
				for _, name := range st.Contact.Fields().Missing() {
					errs[name] = "This field is required"
				}
			case err != nil:
				return err
			}
		}
		if errs != nil {
			status = http.StatusUnprocessableEntity
		}
		p = s.snapshot(st, errs)
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	switch {
	case isHTMX(c):
		// htmx only swaps 2xx responses
		c.HTML(http.StatusOK, "app", p)
	case status != http.StatusOK:
		c.HTML(status, "index", p)
	default:
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// contactStatus answers the status poll. Once the status differs from the
// one the client saw, the whole app is swapped in instead.
func (s *Server) contactStatus(c *gin.Context) {
	seen := c.Query("seen")
	var p page
	err := sessionFrom(c).Do(func(st *session.State) error {
		p = s.snapshot(st, nil)
		if p.Contact == nil {
			ct := view.NewContact(s.site, st.Contact, nil)
			p.Contact = &ct
		}
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	if p.Contact.Status != seen && p.Shell.Page == viewstate.PageContact {
		c.Header("HX-Retarget", "#app")
		c.Header("HX-Reswap", "outerHTML")
		c.HTML(http.StatusOK, "app", p)
		return
	}
	c.HTML(http.StatusOK, "contact-status", p.Contact)
}

// fieldErrors turns binding failures into per-field messages, or nil when
// err is not a validation failure.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[name] = "This field is required"
		case "email":
			out[name] = "Please enter a valid email address"
		default:
			out[name] = "Invalid value"
		}
	}
	return out
}

func (s *Server) image(c *gin.Context) {
	w, _ := strconv.Atoi(c.DefaultQuery("w", "1200"))
	h, _ := strconv.Atoi(c.DefaultQuery("h", "800"))
	alt := c.Query("alt")
	src := c.Query("src")

	var img imageloader.Image
	if src == "" {
		img = s.images.Placeholder(alt, w, h)
	} else {
		img = s.images.Load(c.Request.Context(), src, alt, w, h)
	}
	if img.Placeholder {
		c.Header("Cache-Control", "public, max-age=300")
	} else {
		c.Header("Cache-Control", "public, max-age=86400")
	}
	c.Data(http.StatusOK, img.ContentType, img.Data)
}
