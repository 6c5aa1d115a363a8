package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/studentplanner/planner/internal/response"
)

// Methods maps an HTTP method to its handler.
type Methods map[string]echo.HandlerFunc

// Pattern is a dynamic API route: api/<Resource>/<numeric id> when Sub is
// empty, api/<Resource>/<numeric id>/<Sub> otherwise.
type Pattern struct {
	Resource string
	Sub      string
	Methods  Methods
}

// Dispatcher resolves a request path against the page table, the static
// API table and the ordered dynamic patterns.  It holds no business logic.
type Dispatcher struct {
	pages   map[string]echo.HandlerFunc
	static  map[string]Methods
	dynamic []Pattern
}

// NewDispatcher builds a dispatcher over the given tables.  Keys have no
// leading or trailing slash; the root page is "".
func NewDispatcher(pages map[string]echo.HandlerFunc, static map[string]Methods, dynamic []Pattern) *Dispatcher {
	return &Dispatcher{pages: pages, static: static, dynamic: dynamic}
}

// Handle is mounted as echo's catch-all route.
func (d *Dispatcher) Handle(c echo.Context) error {
	path := strings.Trim(c.Request().URL.Path, "/")
	if response.IsAPI(path) {
		return d.api(c, path)
	}
	h, ok := d.pages[path]
	if !ok {
		return response.ErrRouteNotFound()
	}
	return h(c)
}

func (d *Dispatcher) api(c echo.Context, path string) error {
	if ms, ok := d.static[path]; ok {
		return serve(c, ms)
	}
	segs := strings.Split(path, "/")
	if len(segs) != 3 && len(segs) != 4 {
		return response.ErrRouteNotFound()
	}
	id, ok := numericID(segs[2])
	if !ok {
		return response.ErrRouteNotFound()
	}
	sub := ""
	if len(segs) == 4 {
		sub = segs[3]
	}
	for _, p := range d.dynamic {
		if p.Resource != segs[1] || p.Sub != sub {
			continue
		}
		c.SetParamNames("id")
		c.SetParamValues(id)
		return serve(c, p.Methods)
	}
	return response.ErrRouteNotFound()
}

// numericID accepts a non-empty run of ASCII digits that fits in uint64.
func numericID(seg string) (string, bool) {
	if seg == "" {
		return "", false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	if _, err := strconv.ParseUint(seg, 10, 64); err != nil {
		return "", false
	}
	return seg, true
}

func serve(c echo.Context, ms Methods) error {
	method := c.Request().Method
	h, ok := ms[method]
	if !ok && method == http.MethodHead {
		h, ok = ms[http.MethodGet]
	}
	if !ok {
		return response.ErrMethodNotAllowed()
	}
	return h(c)
}
