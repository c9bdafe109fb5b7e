// Package pages renders the HTML pages of the scrapbook.
// The guard has already decided who may see them, so nothing here looks at cookies.
package pages

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/champa/scrapbook/pkg/www"
	"github.com/champa/scrapbook/server/media"
	"github.com/cyclopcam/logs"
	"github.com/julienschmidt/httprouter"
)

//go:embed templates
var templateFS embed.FS

// Number of photos on the blog page
const blogPostCount = 36

// Number of mood tags shown per item
const (
	timelineTagCount = 3
	blogTagCount     = 4
)

type PageServer struct {
	log       logs.Log
	library   *media.Library
	templates map[string]*template.Template
}

func NewPageServer(log logs.Log, library *media.Library) (*PageServer, error) {
	s := &PageServer{
		log:       log,
		library:   library,
		templates: map[string]*template.Template{},
	}
	funcs := template.FuncMap{
		"mediaURL":  MediaURL,
		"longDate":  longDate,
		"shortDate": shortDate,
	}
	for _, name := range []string{"lock", "home", "timeline", "blog"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		s.templates[name] = t
	}
	return s, nil
}

// MediaURL maps the public src of an item to the guarded endpoint that serves it
func MediaURL(src string) string {
	if strings.HasPrefix(src, "/media/") {
		return "/api/media/" + strings.TrimPrefix(src, "/media/")
	}
	return src
}

func parseDate(date string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", date)
	return t, err == nil
}

// eg "February 14, 2024"
func longDate(date string) string {
	if t, ok := parseDate(date); ok {
		return t.Format("January 2, 2006")
	}
	return date
}

// eg "Feb 14, 2024"
func shortDate(date string) string {
	if t, ok := parseDate(date); ok {
		return t.Format("Jan 2, 2006")
	}
	return date
}

type pageData struct {
	Title   string
	Page    string
	Private bool
	Copy    Copy
	Body    any
}

// render executes the whole page before sending anything, so that a template error becomes a clean 500
func (s *PageServer) render(w http.ResponseWriter, name, title string, private bool, body any) {
	buf := bytes.Buffer{}
	data := pageData{
		Title:   title,
		Page:    name,
		Private: private,
		Copy:    SiteCopy,
		Body:    body,
	}
	www.Check(s.templates[name].ExecuteTemplate(&buf, "layout", data))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	www.CacheNever(w)
	w.Write(buf.Bytes())
}

type lockBody struct {
	Locked bool
}

// HttpLock serves the lock screen at /
func (s *PageServer) HttpLock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body := lockBody{
		Locked: r.URL.Query().Get("locked") == "1",
	}
	s.render(w, "lock", SiteCopy.HeroTitle, false, body)
}

type featured struct {
	Item    media.Item
	Caption media.Caption
}

type homeBody struct {
	Stats    media.Stats
	Featured *featured
}

func (s *PageServer) HttpHome(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	items, err := s.library.Items(r.Context())
	www.Check(err)
	body := homeBody{
		Stats: media.ComputeStats(items),
	}
	if len(items) != 0 {
		item := items[len(items)/2]
		body.Featured = &featured{
			Item:    item,
			Caption: s.library.Captions().CaptionFor(item.Filename),
		}
	}
	s.render(w, "home", "Home", true, body)
}

type captionedItem struct {
	Item    media.Item
	Caption media.Caption
	Tags    []string
	Title   string
}

type timelineGroup struct {
	Date  string
	Items []captionedItem
}

func (s *PageServer) HttpTimeline(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	groups, err := s.library.Timeline(r.Context())
	www.Check(err)
	captions := s.library.Captions()
	body := []timelineGroup{}
	for _, g := range groups {
		out := timelineGroup{Date: g.Date}
		for _, item := range g.Items {
			c := captions.CaptionFor(item.Filename)
			out.Items = append(out.Items, captionedItem{
				Item:    item,
				Caption: c,
				Tags:    firstN(c.MoodTags, timelineTagCount),
			})
		}
		body = append(body, out)
	}
	s.render(w, "timeline", "Timeline", true, body)
}

func (s *PageServer) HttpBlog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	photos, err := s.library.Photos(r.Context(), blogPostCount)
	www.Check(err)
	captions := s.library.Captions()
	body := []captionedItem{}
	for i, item := range photos {
		c := captions.CaptionFor(item.Filename)
		body = append(body, captionedItem{
			Item:    item,
			Caption: c,
			Tags:    firstN(c.MoodTags, blogTagCount),
			Title:   blogTitle(i),
		})
	}
	s.render(w, "blog", "Blog", true, body)
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
