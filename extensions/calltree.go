package extensions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/m1gwings/treedrawer/tree"
	weft "github.com/weft-fn/weft-go"
)

// CallTreeExtension logs a drawing of the recent invocation tree when a
// host invocation fails or panics.
//
// Usage:
//
//	// Human-readable formatted output (with line breaks)
//	handler := extensions.NewHumanHandler(os.Stdout, slog.LevelError)
//	ext := extensions.NewCallTreeExtension(handler)
//
//	// Structured JSON logging (compact, machine-readable)
//	handler := slog.NewJSONHandler(os.Stdout, nil)
//	ext := extensions.NewCallTreeExtension(handler)
//
//	// Silent (for testing)
//	ext := extensions.NewCallTreeExtension(extensions.NewSilentHandler())
//
// The extension logs at ERROR level for both invocation errors and panics.
type CallTreeExtension struct {
	weft.BaseExtension
	logger *slog.Logger
}

// NewCallTreeExtension creates a new call tree extension
func NewCallTreeExtension(logHandler slog.Handler) *CallTreeExtension {
	return &CallTreeExtension{
		BaseExtension: weft.NewBaseExtension("call-tree"),
		logger:        slog.New(logHandler),
	}
}

// OnError logs the invocation tree when a host invocation fails
func (e *CallTreeExtension) OnError(err error, op *weft.Operation, r *weft.Registry) {
	if op.Kind != weft.OpInvoke {
		return
	}

	e.logger.Error("Host Invocation Error",
		"method", op.Method,
		"error", err.Error(),
		"operation", string(op.Kind),
		"call_tree", e.renderLatestRoot(r.Tree()),
	)
}

// OnPanic logs the invocation tree when a method body panics
func (e *CallTreeExtension) OnPanic(inv *weft.Invocation, recovered any, stack []byte) {
	e.logger.Error("Host Invocation Panic",
		"method", inv.Method(),
		"invocation", inv.ID(),
		"recovered", fmt.Sprintf("%v", recovered),
		"stack", string(stack),
	)
}

// renderLatestRoot draws the most recent completed root invocation and its
// nested calls
func (e *CallTreeExtension) renderLatestRoot(it *weft.InvocationTree) string {
	roots := it.GetRoots()
	if len(roots) == 0 {
		return "(no completed invocations)"
	}

	root := roots[len(roots)-1]
	drawn := tree.NewTree(tree.NodeString(nodeLabel(root)))
	e.addChildren(it, drawn, root)
	return fmt.Sprintf("\n%v", drawn)
}

func (e *CallTreeExtension) addChildren(it *weft.InvocationTree, drawn *tree.Tree, node *weft.InvocationNode) {
	children := it.GetChildren(node.ID)
	for i, child := range children {
		drawn.AddChild(tree.NodeString(nodeLabel(child)))
		sub, err := drawn.Child(i)
		if err != nil {
			continue
		}
		e.addChildren(it, sub, child)
	}
}

func nodeLabel(node *weft.InvocationNode) string {
	status, ok := weft.Status().GetFromNode(node)
	if !ok {
		return node.Method
	}
	return fmt.Sprintf("%s [%s]", node.Method, status)
}

// SilentHandler is a slog.Handler that discards all records (for testing)
type SilentHandler struct{}

// NewSilentHandler creates a handler that logs nothing
func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return false
}

func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil
}

func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *SilentHandler) WithGroup(name string) slog.Handler {
	return h
}

// HumanHandler is a slog.Handler that formats logs for human readability
// with proper line breaks and visual formatting (especially for call trees)
type HumanHandler struct {
	writer io.Writer
	level  slog.Level
}

// NewHumanHandler creates a new human-readable log handler
func NewHumanHandler(writer io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{
		writer: writer,
		level:  level,
	}
}

func (h *HumanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *HumanHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Message == "Host Invocation Error" {
		return h.handleInvocationError(record)
	}

	if _, err := fmt.Fprintf(h.writer, "[%s] %s\n", record.Level, record.Message); err != nil {
		return err
	}
	var writeErr error
	record.Attrs(func(a slog.Attr) bool {
		if _, err := fmt.Fprintf(h.writer, "  %s: %v\n", a.Key, a.Value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	return writeErr
}

func (h *HumanHandler) handleInvocationError(record slog.Record) error {
	var method, errorMsg, callTree string

	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "method":
			method = a.Value.String()
		case "error":
			errorMsg = a.Value.String()
		case "call_tree":
			callTree = a.Value.String()
		}
		return true
	})

	rule := strings.Repeat("=", 70)
	_, err := fmt.Fprintf(h.writer, "\n%s\n[CallTree] Host Invocation Error\n%s\n\nFailed Method: %s\nError: %s\n\nCall Tree:%s\n%s\n\n",
		rule, rule, method, errorMsg, callTree, rule)
	return err
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *HumanHandler) WithGroup(name string) slog.Handler {
	return h
}
