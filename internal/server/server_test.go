package server

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/mj1618/dump-hierarchy/internal/action"
	"github.com/mj1618/dump-hierarchy/internal/config"
	"github.com/mj1618/dump-hierarchy/internal/input"
	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/platform"
	"github.com/mj1618/dump-hierarchy/internal/platform/sim"
	"github.com/mj1618/dump-hierarchy/internal/selector"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.MaxWorkers = 4
	cfg.Server.DumpCacheTTL = 0
	cfg.Selector.PollInterval = 5 * time.Millisecond
	cfg.Watch.EventTimeout = 20 * time.Millisecond
	return cfg
}

func newTestController(t *testing.T) (*Controller, *sim.Device) {
	t.Helper()
	f, err := sim.LoadFixture("")
	require.NoError(t, err)
	dev := sim.New(f)
	ctrl, err := NewController(dev.Provider(), testConfig(), input.NewFakeClock(time.Second), zap.NewNop())
	require.NoError(t, err)
	return ctrl, dev
}

// startServer serves a fresh simulated device on a loopback port and stops
// it when the test ends.
func startServer(t *testing.T) (string, *sim.Device) {
	t.Helper()
	ctrl, dev := newTestController(t)
	srv := New(ctrl, testConfig().Server, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return ln.Addr().String(), dev
}

func roundTrip(t *testing.T, addr, method, target string, body []byte) (int, string) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = fmt.Fprintf(conn, "%s %s HTTP/1.1\r\nHost: test\r\nContent-Length: %d\r\n\r\n", method, target, len(body))
	require.NoError(t, err)
	_, err = conn.Write(body)
	require.NoError(t, err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func get(t *testing.T, addr, target string) (int, string) {
	return roundTrip(t, addr, "GET", target, nil)
}

func TestServer_Status(t *testing.T) {
	addr, _ := startServer(t)
	status, body := get(t, addr, "/status")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)
}

func TestServer_UnknownRoute(t *testing.T) {
	addr, _ := startServer(t)
	status, body := get(t, addr, "/nope")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not Found", body)
}

func TestServer_Click(t *testing.T) {
	addr, dev := startServer(t)
	status, body := get(t, addr, "/click?x=100&y=200")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "100")
	assert.Contains(t, body, "200")
	assert.Len(t, dev.Injected(), 2)
}

func TestServer_ClickInjectionFailure(t *testing.T) {
	addr, dev := startServer(t)
	dev.SetRejectInput(true)
	status, body := get(t, addr, "/click?x=100&y=200")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, "Failed")
}

func TestServer_ClickMissingParam(t *testing.T) {
	addr, _ := startServer(t)
	status, body := get(t, addr, "/click?x=100")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "y")
}

func TestServer_FindElement(t *testing.T) {
	addr, _ := startServer(t)

	status, body := get(t, addr, "/find_element?type=text&value=Sign+in&timeout=0")
	require.Equal(t, http.StatusOK, status, body)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &info))
	assert.Equal(t, "android.widget.Button", info["class_name"])
	assert.Equal(t, "com.example.app:id/sign_in", info["id"])
	assert.Equal(t, "[80,1200][1000,1340]", info["bounds"])
	assert.Equal(t, true, info["clickable"])
}

func TestServer_FindElementUnknownType(t *testing.T) {
	addr, _ := startServer(t)
	status, body := get(t, addr, "/find_element?type=bogus&value=x")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, strings.ToLower(body), "unknown selector type")
}

func TestServer_FindElementNotFound(t *testing.T) {
	addr, _ := startServer(t)
	status, _ := get(t, addr, "/find_element?type=text&value=Nowhere&timeout=20")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_FindElements(t *testing.T) {
	addr, _ := startServer(t)
	status, body := get(t, addr, "/find_elements?type=className&value=android.widget.EditText&timeout=0")
	require.Equal(t, http.StatusOK, status, body)
	var infos []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "com.example.app:id/username", infos[0]["id"])
	assert.Equal(t, "com.example.app:id/password", infos[1]["id"])
}

func TestServer_Dump(t *testing.T) {
	addr, _ := startServer(t)

	status, body := get(t, addr, "/dump")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<hierarchy rotation="0">`)
	assert.Contains(t, body, `text="Sign in"`)
	assert.Contains(t, body, `class="android.widget.LinearLayout"`)

	status, compressed := get(t, addr, "/dump?compressed=true")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, compressed, `text="Sign in"`)
	assert.Less(t, len(compressed), len(body))

	status, _ = get(t, addr, "/dump?compressed=maybe")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_Screenshot(t *testing.T) {
	addr, _ := startServer(t)

	status, body := get(t, addr, "/screenshot?quality=50&scale=0.25")
	require.Equal(t, http.StatusOK, status)
	img, err := jpeg.Decode(bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	assert.Equal(t, 270, img.Bounds().Dx())

	status, _ = get(t, addr, "/screenshot?quality=0")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_GetRoot(t *testing.T) {
	addr, _ := startServer(t)
	status, body := get(t, addr, "/get_root")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Node[class=android.widget.FrameLayout")
}

func TestServer_IsUIChange(t *testing.T) {
	addr, _ := startServer(t)

	_, body := get(t, addr, "/is_ui_change")
	assert.Equal(t, "false", body)

	// Tap the "Remember me" checkbox.
	status, _ := get(t, addr, "/click?x=540&y=1050")
	require.Equal(t, http.StatusOK, status)

	assert.Eventually(t, func() bool {
		_, body := get(t, addr, "/is_ui_change")
		return body == "true"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		_, body := get(t, addr, "/is_ui_change")
		return body == "false"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_TouchSequence(t *testing.T) {
	addr, dev := startServer(t)

	status, body := get(t, addr, "/touch_move?x=10&y=10")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "no active gesture")

	status, body = get(t, addr, "/touch_down?x=100&y=500&session=a")
	require.Equal(t, http.StatusOK, status, body)
	status, _ = get(t, addr, "/touch_move?x=100&y=400&session=a")
	require.Equal(t, http.StatusOK, status)
	status, body = get(t, addr, "/touch_up?x=100&y=300&session=a")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Touch up at (100, 300)", body)

	status, _ = get(t, addr, "/touch_up?x=100&y=300&session=a")
	assert.Equal(t, http.StatusBadRequest, status)

	events := dev.Injected()
	require.Len(t, events, 3)
	assert.Equal(t, events[0].EventTime, events[2].DownTime)
}

func TestServer_InputQuery(t *testing.T) {
	addr, _ := startServer(t)
	q := url.Values{
		"type":  {"id"},
		"value": {"com.example.app:id/username"},
		"text":  {"alice"},
	}
	status, body := get(t, addr, "/input?"+q.Encode())
	require.Equal(t, http.StatusOK, status, body)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "Text input successful", res["message"])
	assert.Equal(t, "alice", res["actual_text"])
}

func TestServer_InputBodyMismatch(t *testing.T) {
	addr, _ := startServer(t)
	body := []byte(`{"type":"id","value":"com.example.app:id/password","text":"abcdefghijklmnopqrst","timeout":0}`)
	status, resp := roundTrip(t, addr, "POST", "/input", body)
	require.Equal(t, http.StatusOK, status, resp)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp), &res))
	assert.Equal(t, false, res["success"])
	assert.Contains(t, res["message"], "Text mismatch")
	assert.Equal(t, "abcdefghijklmnop", res["actual_text"])
}

func TestServer_ExecuteScript(t *testing.T) {
	addr, _ := startServer(t)

	status, body := roundTrip(t, addr, "POST", "/execute_json_script", []byte(`[]`))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "empty")

	status, body = roundTrip(t, addr, "POST", "/execute_json_script",
		[]byte(`[{"type":"click","params":{"x":100,"y":200}}]`))
	require.Equal(t, http.StatusOK, status, body)
	var res struct {
		Success      bool                     `json:"success"`
		TotalActions int                      `json:"totalActions"`
		Results      []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.TotalActions)
	require.Len(t, res.Results, 1)
	assert.Equal(t, float64(0), res.Results[0]["actionIndex"])
	assert.Equal(t, "click", res.Results[0]["actionType"])
}

func TestServer_ExecuteScriptNoShortCircuit(t *testing.T) {
	addr, dev := startServer(t)
	script := `[
		{"type":"click","params":{"x":100,"y":200}},
		{"type":"find_and_click","params":{"type":"text","value":"Missing","timeout":0}},
		{"type":"find_and_click","params":{"type":"text","value":"Sign in","timeout":0}}
	]`
	status, body := roundTrip(t, addr, "POST", "/execute_json_script", []byte(script))
	require.Equal(t, http.StatusOK, status, body)

	var res struct {
		Success bool                     `json:"success"`
		Results []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.False(t, res.Success)
	require.Len(t, res.Results, 3)
	assert.Equal(t, true, res.Results[0]["success"])
	assert.Equal(t, false, res.Results[1]["success"])
	assert.Equal(t, true, res.Results[2]["success"])
	assert.Equal(t, "home", dev.Screen())
}

func TestServer_MalformedRequestClosesWithoutResponse(t *testing.T) {
	addr, _ := startServer(t)
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("garbage\r\n\r\n"))
	require.NoError(t, err)
	b, _ := io.ReadAll(conn)
	assert.Empty(t, b)
}

func TestServer_ConcurrentRequests(t *testing.T) {
	addr, _ := startServer(t)
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				errs <- err
				return
			}
			defer conn.Close()
			fmt.Fprintf(conn, "GET /status HTTP/1.1\r\n\r\n")
			resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
			if err != nil {
				errs <- err
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errs <- fmt.Errorf("status %d", resp.StatusCode)
				return
			}
			errs <- nil
		}()
	}
	for i := 0; i < 20; i++ {
		assert.NoError(t, <-errs)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	addr, dev := startServer(t)

	status, body := get(t, addr, "/execute_json_script")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method Not Allowed", body)

	status, _ = roundTrip(t, addr, "POST", "/status", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	status, _ = roundTrip(t, addr, "POST", "/click?x=540&y=1050", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Empty(t, dev.Injected())
}

func TestDispatch_RecoversPanic(t *testing.T) {
	ctrl, _ := newTestController(t)
	srv := New(ctrl, testConfig().Server, zap.NewNop())
	srv.routes["/boom"] = func(context.Context, *Request) (Response, error) {
		panic("boom")
	}
	resp := srv.dispatch(context.Background(), &Request{Method: "GET", Path: "/boom"}, zap.NewNop())
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, "Internal Server Error", string(resp.Body))
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("screenshot: %w", platform.ErrUnsupported), http.StatusNotImplemented},
		{fmt.Errorf("wrapped: %w", selector.ErrNotFound), http.StatusNotFound},
		{input.ErrNoActiveGesture, http.StatusBadRequest},
		{&action.ParamError{Param: "x", Reason: "is required"}, http.StatusBadRequest},
		{action.ErrInvalidScript, http.StatusBadRequest},
		{selector.ErrInvalidValue, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorResponse(tt.err).Status, tt.err.Error())
	}
}

type nopInjector struct{}

func (nopInjector) InjectPointer(model.PointerEvent) bool { return true }

func TestController_OptionalCapabilities(t *testing.T) {
	_, err := NewController(&platform.Provider{}, nil, nil, nil)
	require.Error(t, err)

	ctrl, err := NewController(&platform.Provider{Tree: &countingTree{}, Injector: nopInjector{}}, testConfig(), input.NewFakeClock(0), nil)
	require.NoError(t, err)

	_, err = ctrl.GetRoot()
	assert.ErrorIs(t, err, platform.ErrUnsupported)
	_, err = ctrl.IsUIChange()
	assert.ErrorIs(t, err, platform.ErrUnsupported)
	_, err = ctrl.Screenshot(ctrl.ScreenshotDefaults())
	assert.ErrorIs(t, err, platform.ErrUnsupported)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, ctrl.Watch(ctx))
}
