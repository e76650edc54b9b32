package cmd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/dump-hierarchy/internal/action"
	"github.com/mj1618/dump-hierarchy/internal/input"
	"github.com/mj1618/dump-hierarchy/internal/output"
	"github.com/mj1618/dump-hierarchy/internal/platform"
	"github.com/mj1618/dump-hierarchy/internal/server"
	"github.com/mj1618/dump-hierarchy/internal/version"
)

// mcpServer exposes the controller's operations as MCP tools.
type mcpServer struct {
	ctrl *server.Controller
	mcp  *mcpserver.MCPServer
}

// newMCPServer creates an MCP server with one tool per control route.
func newMCPServer(ctrl *server.Controller) *mcpServer {
	s := &mcpServer{
		ctrl: ctrl,
		mcp:  mcpserver.NewMCPServer("dump-hierarchy", version.Version, mcpserver.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s
}

// serve runs the MCP server on transport until ctx is done.
func (s *mcpServer) serve(ctx context.Context, transport string, port int) error {
	switch transport {
	case "mcp-stdio":
		return mcpserver.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
	case "mcp-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		errc := make(chan error, 1)
		go func() { errc <- httpServer.Start(fmt.Sprintf("127.0.0.1:%d", port)) }()
		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	default:
		return fmt.Errorf("unsupported transport: %s (use mcp-stdio or mcp-http)", transport)
	}
}

// resultToText serializes a tool result to YAML.
func resultToText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func (s *mcpServer) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("status",
			mcp.WithDescription("Check that the device control plane is alive"),
		),
		s.handleStatus,
	)

	s.mcp.AddTool(
		mcp.NewTool("dump",
			mcp.WithDescription("Dump the UI hierarchy of every window. Returns uiautomator-style XML, or a compact line per element with format=agent."),
			mcp.WithBoolean("compressed", mcp.Description("Drop structurally empty layout nodes")),
			mcp.WithString("format", mcp.Description("Output format: xml (default) or agent"), mcp.Enum("xml", "agent")),
		),
		s.handleDump,
	)

	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the screen as a JPEG image"),
			mcp.WithNumber("quality", mcp.Description("JPEG quality 1-100")),
			mcp.WithNumber("scale", mcp.Description("Scale factor 0.1-1.0")),
		),
		s.handleScreenshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("is_ui_change",
			mcp.WithDescription("Report whether screen content changed since the previous call. Returns true once per change."),
		),
		s.handleIsUIChange,
	)

	selectorOpts := []mcp.ToolOption{
		mcp.WithString("type", mcp.Description("Selector type: text, textContains, textStartsWith, id, className, description, descriptionContains, package, checkable, checked, clickable, enabled, focusable, focused, scrollable, selected"), mcp.Required()),
		mcp.WithString("value", mcp.Description("Selector value"), mcp.Required()),
		mcp.WithNumber("timeout", mcp.Description("Max milliseconds to wait for a match")),
	}
	s.mcp.AddTool(
		mcp.NewTool("find_element", append([]mcp.ToolOption{
			mcp.WithDescription("Find the first element matching a selector"),
		}, selectorOpts...)...),
		s.handleFindElement,
	)
	s.mcp.AddTool(
		mcp.NewTool("find_elements", append([]mcp.ToolOption{
			mcp.WithDescription("Find every element matching a selector"),
		}, selectorOpts...)...),
		s.handleFindElements,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_root",
			mcp.WithDescription("Describe every top-level window root"),
		),
		s.handleGetRoot,
	)

	s.mcp.AddTool(
		mcp.NewTool("click",
			mcp.WithDescription("Tap at screen coordinates"),
			mcp.WithNumber("x", mcp.Description("X coordinate"), mcp.Required()),
			mcp.WithNumber("y", mcp.Description("Y coordinate"), mcp.Required()),
		),
		s.handleClick,
	)

	for _, verb := range []string{"down", "move", "up"} {
		s.mcp.AddTool(
			mcp.NewTool("touch_"+verb,
				mcp.WithDescription(fmt.Sprintf("Inject a touch %s event for a gesture session", verb)),
				mcp.WithNumber("x", mcp.Description("X coordinate"), mcp.Required()),
				mcp.WithNumber("y", mcp.Description("Y coordinate"), mcp.Required()),
				mcp.WithString("session", mcp.Description("Gesture session name (default: \"default\")")),
			),
			s.touchHandler(verb),
		)
	}

	s.mcp.AddTool(
		mcp.NewTool("input",
			mcp.WithDescription("Find an element and replace its text, then read it back"),
			mcp.WithString("type", mcp.Description("Selector type"), mcp.Required()),
			mcp.WithString("value", mcp.Description("Selector value"), mcp.Required()),
			mcp.WithString("text", mcp.Description("Text to set"), mcp.Required()),
			mcp.WithBoolean("clear", mcp.Description("Clear the field first (default: true)")),
			mcp.WithNumber("timeout", mcp.Description("Max milliseconds to wait for the element")),
		),
		s.handleInput,
	)

	s.mcp.AddTool(
		mcp.NewTool("execute_script",
			mcp.WithDescription("Run a list of actions in order. Supports: click, find_and_click, find_and_input, swipe_sequence, sleep, multi_pointer. A failing action does not stop the rest."),
			mcp.WithArray("actions", mcp.Description("Array of {type, params} objects"), mcp.Required()),
		),
		s.handleExecuteScript,
	)
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

func (s *mcpServer) handleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.ctrl.Status()), nil
}

func (s *mcpServer) handleDump(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	compressed := request.GetBool("compressed", false)
	if request.GetString("format", "xml") == "agent" {
		roots, err := s.ctrl.Nodes(compressed)
		if err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText(output.FormatAgentString(roots)), nil
	}
	xml, err := s.ctrl.Dump(compressed)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(xml)), nil
}

func (s *mcpServer) handleScreenshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	def := s.ctrl.ScreenshotDefaults()
	opts := platform.ScreenshotOptions{
		Quality: request.GetInt("quality", def.Quality),
		Scale:   request.GetFloat("scale", def.Scale),
	}
	img, err := s.ctrl.Screenshot(opts)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultImage(fmt.Sprintf("screenshot (%d bytes)", len(img)), base64.StdEncoding.EncodeToString(img), "image/jpeg"), nil
}

func (s *mcpServer) handleIsUIChange(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	changed, err := s.ctrl.IsUIChange()
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%t", changed)), nil
}

func (s *mcpServer) findArgs(request mcp.CallToolRequest) (typ, value string, timeout time.Duration, err error) {
	if typ, err = request.RequireString("type"); err != nil {
		return
	}
	if value, err = request.RequireString("value"); err != nil {
		return
	}
	ms := request.GetInt("timeout", int(s.ctrl.FindTimeout()/time.Millisecond))
	timeout = time.Duration(max(ms, 0)) * time.Millisecond
	return
}

func (s *mcpServer) handleFindElement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, value, timeout, err := s.findArgs(request)
	if err != nil {
		return toolError(err), nil
	}
	info, err := s.ctrl.FindElement(ctx, typ, value, timeout)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(resultToText(info)), nil
}

func (s *mcpServer) handleFindElements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, value, timeout, err := s.findArgs(request)
	if err != nil {
		return toolError(err), nil
	}
	infos, err := s.ctrl.FindElements(ctx, typ, value, timeout)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(resultToText(infos)), nil
}

func (s *mcpServer) handleGetRoot(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roots, err := s.ctrl.GetRoot()
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(roots), nil
}

func (s *mcpServer) handleClick(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x, err := request.RequireInt("x")
	if err != nil {
		return toolError(err), nil
	}
	y, err := request.RequireInt("y")
	if err != nil {
		return toolError(err), nil
	}
	res := s.ctrl.Click(x, y)
	if !res.Success {
		return mcp.NewToolResultError(resultToText(res)), nil
	}
	return mcp.NewToolResultText(resultToText(res)), nil
}

func (s *mcpServer) touchHandler(verb string) mcpserver.ToolHandlerFunc {
	return func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		x, err := request.RequireInt("x")
		if err != nil {
			return toolError(err), nil
		}
		y, err := request.RequireInt("y")
		if err != nil {
			return toolError(err), nil
		}
		session := request.GetString("session", input.DefaultSession)

		var ok bool
		switch verb {
		case "down":
			ok = s.ctrl.TouchDown(session, x, y)
		case "move":
			ok, err = s.ctrl.TouchMove(session, x, y)
		case "up":
			ok, err = s.ctrl.TouchUp(session, x, y)
		}
		if err != nil {
			return toolError(err), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to inject touch %s at (%d, %d)", verb, x, y)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Touch %s at (%d, %d)", verb, x, y)), nil
	}
}

func (s *mcpServer) handleInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.ctrl.Input(ctx, action.Params(request.GetArguments()))
	if err != nil {
		return toolError(err), nil
	}
	if !res.Success {
		return mcp.NewToolResultError(resultToText(res)), nil
	}
	return mcp.NewToolResultText(resultToText(res)), nil
}

func (s *mcpServer) handleExecuteScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	actions, ok := request.GetArguments()["actions"]
	if !ok {
		return mcp.NewToolResultError("actions is required"), nil
	}
	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(actions)
	if err != nil {
		return toolError(err), nil
	}
	res, err := s.ctrl.ExecuteScript(ctx, body)
	if err != nil {
		return toolError(err), nil
	}
	if !res.Success {
		return mcp.NewToolResultError(resultToText(res)), nil
	}
	return mcp.NewToolResultText(resultToText(res)), nil
}
