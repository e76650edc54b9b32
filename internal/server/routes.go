package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/mj1618/dump-hierarchy/internal/action"
	"github.com/mj1618/dump-hierarchy/internal/input"
	"github.com/mj1618/dump-hierarchy/internal/platform"
	"github.com/mj1618/dump-hierarchy/internal/selector"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// handlerFunc serves one route. A returned error is mapped to a status by
// errorResponse.
type handlerFunc func(ctx context.Context, req *Request) (Response, error)

// Route paths.
const (
	PathStatus        = "/status"
	PathDump          = "/dump"
	PathScreenshot    = "/screenshot"
	PathIsUIChange    = "/is_ui_change"
	PathFindElement   = "/find_element"
	PathFindElements  = "/find_elements"
	PathGetRoot       = "/get_root"
	PathClick         = "/click"
	PathTouchDown     = "/touch_down"
	PathTouchUp       = "/touch_up"
	PathTouchMove     = "/touch_move"
	PathInput         = "/input"
	PathExecuteScript = "/execute_json_script"
)

var (
	getOnly   = []string{http.MethodGet}
	getOrPost = []string{http.MethodGet, http.MethodPost}
	postOnly  = []string{http.MethodPost}
)

// routeMethods lists the methods each route accepts. Paths not listed
// accept any method.
var routeMethods = map[string][]string{
	PathStatus:        getOnly,
	PathDump:          getOnly,
	PathScreenshot:    getOnly,
	PathIsUIChange:    getOnly,
	PathFindElement:   getOnly,
	PathFindElements:  getOnly,
	PathGetRoot:       getOnly,
	PathClick:         getOnly,
	PathTouchDown:     getOnly,
	PathTouchUp:       getOnly,
	PathTouchMove:     getOnly,
	PathInput:         getOrPost,
	PathExecuteScript: postOnly,
}

func methodAllowed(path, method string) bool {
	methods, ok := routeMethods[path]
	if !ok {
		return true
	}
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

func (s *Server) routeTable() map[string]handlerFunc {
	return map[string]handlerFunc{
		PathStatus:        s.handleStatus,
		PathDump:          s.handleDump,
		PathScreenshot:    s.handleScreenshot,
		PathIsUIChange:    s.handleIsUIChange,
		PathFindElement:   s.handleFindElement,
		PathFindElements:  s.handleFindElements,
		PathGetRoot:       s.handleGetRoot,
		PathClick:         s.handleClick,
		PathTouchDown:     s.handleTouchDown,
		PathTouchUp:       s.handleTouchUp,
		PathTouchMove:     s.handleTouchMove,
		PathInput:         s.handleInput,
		PathExecuteScript: s.handleExecuteScript,
	}
}

// queryParams flattens a query string to action params, keeping the first
// value of each key.
func queryParams(q url.Values) action.Params {
	p := make(action.Params, len(q))
	for k, v := range q {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

// errorResponse maps a handler error to a status code.
func errorResponse(err error) Response {
	var pe *action.ParamError
	switch {
	case errors.As(err, &pe),
		errors.Is(err, selector.ErrUnknownType),
		errors.Is(err, selector.ErrInvalidValue),
		errors.Is(err, action.ErrInvalidScript),
		errors.Is(err, input.ErrNoActiveGesture):
		return text(http.StatusBadRequest, err.Error())
	case errors.Is(err, selector.ErrNotFound):
		return text(http.StatusNotFound, err.Error())
	case errors.Is(err, platform.ErrUnsupported):
		return text(http.StatusNotImplemented, err.Error())
	default:
		return text(http.StatusInternalServerError, "Internal Server Error")
	}
}

func (s *Server) handleStatus(_ context.Context, _ *Request) (Response, error) {
	return text(http.StatusOK, s.ctrl.Status()), nil
}

func (s *Server) handleDump(_ context.Context, req *Request) (Response, error) {
	compressed, err := queryParams(req.Query()).BoolOr("compressed", false)
	if err != nil {
		return Response{}, err
	}
	xml, err := s.ctrl.Dump(compressed)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, ContentType: ContentXML, Body: xml}, nil
}

func (s *Server) handleScreenshot(_ context.Context, req *Request) (Response, error) {
	params := queryParams(req.Query())
	opts := s.ctrl.ScreenshotDefaults()
	quality, err := params.IntOr("quality", opts.Quality)
	if err != nil {
		return Response{}, err
	}
	opts.Quality = quality
	if params.Has("scale") {
		raw, _ := params.RequireString("scale")
		scale, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Response{}, &action.ParamError{Param: "scale", Reason: fmt.Sprintf("expected a number, got %q", raw)}
		}
		opts.Scale = scale
	}
	img, err := s.ctrl.Screenshot(opts)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, ContentType: ContentJPEG, Body: img}, nil
}

func (s *Server) handleIsUIChange(_ context.Context, _ *Request) (Response, error) {
	changed, err := s.ctrl.IsUIChange()
	if err != nil {
		return Response{}, err
	}
	return text(http.StatusOK, strconv.FormatBool(changed)), nil
}

// findArgs reads type, value and timeout (milliseconds).
func (s *Server) findArgs(req *Request) (typ, value string, timeout time.Duration, err error) {
	params := queryParams(req.Query())
	if typ, err = params.RequireString("type"); err != nil {
		return
	}
	if value, err = params.RequireString("value"); err != nil {
		return
	}
	ms, err := params.IntOr("timeout", int(s.ctrl.FindTimeout()/time.Millisecond))
	if err != nil {
		return
	}
	if ms < 0 {
		err = &action.ParamError{Param: "timeout", Reason: "must not be negative"}
		return
	}
	timeout = time.Duration(ms) * time.Millisecond
	return
}

func (s *Server) handleFindElement(ctx context.Context, req *Request) (Response, error) {
	typ, value, timeout, err := s.findArgs(req)
	if err != nil {
		return Response{}, err
	}
	info, err := s.ctrl.FindElement(ctx, typ, value, timeout)
	if err != nil {
		return Response{}, err
	}
	return jsonResponse(http.StatusOK, info), nil
}

func (s *Server) handleFindElements(ctx context.Context, req *Request) (Response, error) {
	typ, value, timeout, err := s.findArgs(req)
	if err != nil {
		return Response{}, err
	}
	infos, err := s.ctrl.FindElements(ctx, typ, value, timeout)
	if err != nil {
		return Response{}, err
	}
	return jsonResponse(http.StatusOK, infos), nil
}

func (s *Server) handleGetRoot(_ context.Context, _ *Request) (Response, error) {
	roots, err := s.ctrl.GetRoot()
	if err != nil {
		return Response{}, err
	}
	return text(http.StatusOK, roots), nil
}

func coords(params action.Params) (x, y int, err error) {
	if x, err = params.RequireInt("x"); err != nil {
		return
	}
	y, err = params.RequireInt("y")
	return
}

func (s *Server) handleClick(_ context.Context, req *Request) (Response, error) {
	x, y, err := coords(queryParams(req.Query()))
	if err != nil {
		return Response{}, err
	}
	res := s.ctrl.Click(x, y)
	if !res.Success {
		return text(http.StatusInternalServerError, res.Message), nil
	}
	return text(http.StatusOK, res.Message), nil
}

func touchResponse(verb string, x, y int, ok bool) Response {
	if !ok {
		return text(http.StatusInternalServerError, fmt.Sprintf("Failed to inject touch %s at (%d, %d)", verb, x, y))
	}
	return text(http.StatusOK, fmt.Sprintf("Touch %s at (%d, %d)", verb, x, y))
}

func (s *Server) handleTouchDown(_ context.Context, req *Request) (Response, error) {
	params := queryParams(req.Query())
	x, y, err := coords(params)
	if err != nil {
		return Response{}, err
	}
	session, _ := params.StringOr("session", input.DefaultSession)
	return touchResponse("down", x, y, s.ctrl.TouchDown(session, x, y)), nil
}

func (s *Server) handleTouchMove(_ context.Context, req *Request) (Response, error) {
	params := queryParams(req.Query())
	x, y, err := coords(params)
	if err != nil {
		return Response{}, err
	}
	session, _ := params.StringOr("session", input.DefaultSession)
	ok, err := s.ctrl.TouchMove(session, x, y)
	if err != nil {
		return Response{}, err
	}
	return touchResponse("move", x, y, ok), nil
}

func (s *Server) handleTouchUp(_ context.Context, req *Request) (Response, error) {
	params := queryParams(req.Query())
	x, y, err := coords(params)
	if err != nil {
		return Response{}, err
	}
	session, _ := params.StringOr("session", input.DefaultSession)
	ok, err := s.ctrl.TouchUp(session, x, y)
	if err != nil {
		return Response{}, err
	}
	return touchResponse("up", x, y, ok), nil
}

// handleInput takes its parameters from a JSON object body when one is
// sent, otherwise from the query string.
func (s *Server) handleInput(ctx context.Context, req *Request) (Response, error) {
	params := queryParams(req.Query())
	if len(req.Body) > 0 {
		var body map[string]interface{}
		if err := json.Unmarshal(req.Body, &body); err != nil {
			return Response{}, &action.ParamError{Param: "body", Reason: "expected a JSON object: " + err.Error()}
		}
		params = action.Params(body)
	}
	res, err := s.ctrl.Input(ctx, params)
	if err != nil {
		return Response{}, err
	}
	return jsonResponse(http.StatusOK, res), nil
}

func (s *Server) handleExecuteScript(ctx context.Context, req *Request) (Response, error) {
	res, err := s.ctrl.ExecuteScript(ctx, req.Body)
	if err != nil {
		return Response{}, err
	}
	return jsonResponse(http.StatusOK, res), nil
}
