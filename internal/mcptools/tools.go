// Package mcptools exposes phase computation as MCP tools so an agent can
// ask which epics are unblocked and check a dependency edit before making it.
//
// Each tool follows the same shape:
// - a struct holding the planner, injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Domain failures are returned as tool errors, not Go errors, so the agent
// can read them.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/services/planner"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewServer creates the MCP server with every epicboard tool registered
func NewServer(p *planner.Planner) *server.MCPServer {
	s := server.NewMCPServer(
		"epicboard",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	phasesTool := NewPhasesTool(p)
	s.AddTool(phasesTool.Definition(), phasesTool.Handle)

	cycleTool := NewCycleCheckTool(p)
	s.AddTool(cycleTool.Definition(), cycleTool.Handle)

	previewTool := NewPreviewTool(p)
	s.AddTool(previewTool.Definition(), previewTool.Handle)

	setDepsTool := NewSetDependenciesTool(p)
	s.AddTool(setDepsTool.Definition(), setDepsTool.Handle)

	return s
}

const instructions = `epicboard groups epics into phases. An epic's phase is one more than the
highest phase among the epics it depends on; epics with no known
dependencies are in phase 1. Epics in the same phase can run in parallel.

Call epic_cycle_check or epic_phase_preview before epic_set_dependencies:
edits that would close a dependency cycle are always refused.`

// ─── PhasesTool ──────────────────────────────────────────────────────────────

// PhasesTool handles the epic_phases MCP tool.
type PhasesTool struct {
	planner *planner.Planner
}

// NewPhasesTool creates a PhasesTool.
func NewPhasesTool(p *planner.Planner) *PhasesTool {
	return &PhasesTool{planner: p}
}

// Definition returns the MCP tool definition for epic_phases.
func (t *PhasesTool) Definition() mcp.Tool {
	return mcp.NewTool("epic_phases",
		mcp.WithDescription(
			"List epics grouped into execution phases with each phase's status "+
				"(ready, in_progress, blocked, completed). Epics on a dependency cycle are listed separately.",
		),
		mcp.WithBoolean("json",
			mcp.Description("Return the raw JSON view instead of a text summary (default: false)"),
		),
	)
}

// Handle processes the epic_phases tool call.
func (t *PhasesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := t.planner.View(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load epics: %v", err)), nil
	}

	if boolArg(req, "json", false) {
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal phases: %w", err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	return mcp.NewToolResultText(summarize(view)), nil
}

func summarize(view planner.View) string {
	if len(view.Epics) == 0 {
		return "No epics."
	}

	var b strings.Builder
	for _, g := range view.Groups {
		fmt.Fprintf(&b, "## Phase %d (%s, %d/%d done)\n", g.Number, g.Status, g.CompletedCount, g.TotalCount)
		for _, e := range g.Epics {
			fmt.Fprintf(&b, "- %s [%s] %s\n", e.ID, e.Status, e.DisplayTitle())
		}
		b.WriteString("\n")
	}
	if view.HasCycles() {
		fmt.Fprintf(&b, "## Unresolved (dependency cycle: %s)\n", strings.Join(view.CycleMembers, ", "))
		for _, e := range view.Unresolved {
			fmt.Fprintf(&b, "- %s [%s] %s\n", e.ID, e.Status, e.DisplayTitle())
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ─── CycleCheckTool ──────────────────────────────────────────────────────────

// CycleCheckTool handles the epic_cycle_check MCP tool.
type CycleCheckTool struct {
	planner *planner.Planner
}

// NewCycleCheckTool creates a CycleCheckTool.
func NewCycleCheckTool(p *planner.Planner) *CycleCheckTool {
	return &CycleCheckTool{planner: p}
}

// Definition returns the MCP tool definition for epic_cycle_check.
func (t *CycleCheckTool) Definition() mcp.Tool {
	return mcp.NewTool("epic_cycle_check",
		mcp.WithDescription("Check whether giving an epic a new dependency list would create a dependency cycle. Nothing is written."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Epic id to check (may be a not-yet-created epic)"),
		),
		dependsOnParam(),
	)
}

// Handle processes the epic_cycle_check tool call.
func (t *CycleCheckTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, deps, errResult := proposal(req)
	if errResult != nil {
		return errResult, nil
	}

	check, err := t.planner.CheckCycle(ctx, id, deps)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to check cycle: %v", err)), nil
	}
	if check.Cyclic {
		return mcp.NewToolResultText("Cycle: " + strings.Join(check.Path, " → ")), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("No cycle: %s can depend on [%s]", id, strings.Join(deps, ", "))), nil
}

// ─── PreviewTool ─────────────────────────────────────────────────────────────

// PreviewTool handles the epic_phase_preview MCP tool.
type PreviewTool struct {
	planner *planner.Planner
}

// NewPreviewTool creates a PreviewTool.
func NewPreviewTool(p *planner.Planner) *PreviewTool {
	return &PreviewTool{planner: p}
}

// Definition returns the MCP tool definition for epic_phase_preview.
func (t *PreviewTool) Definition() mcp.Tool {
	return mcp.NewTool("epic_phase_preview",
		mcp.WithDescription("Show which phase an epic would land in with a proposed dependency list. Nothing is written."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Epic id"),
		),
		dependsOnParam(),
	)
}

// Handle processes the epic_phase_preview tool call.
func (t *PreviewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, deps, errResult := proposal(req)
	if errResult != nil {
		return errResult, nil
	}

	preview, err := t.planner.Preview(ctx, id, deps)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to preview: %v", err)), nil
	}
	if preview.Cyclic {
		return mcp.NewToolResultError("Would create a cycle: " + strings.Join(preview.Path, " → ")), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s would be in phase %d", id, preview.Phase)), nil
}

// ─── SetDependenciesTool ─────────────────────────────────────────────────────

// SetDependenciesTool handles the epic_set_dependencies MCP tool.
type SetDependenciesTool struct {
	planner *planner.Planner
}

// NewSetDependenciesTool creates a SetDependenciesTool.
func NewSetDependenciesTool(p *planner.Planner) *SetDependenciesTool {
	return &SetDependenciesTool{planner: p}
}

// Definition returns the MCP tool definition for epic_set_dependencies.
func (t *SetDependenciesTool) Definition() mcp.Tool {
	return mcp.NewTool("epic_set_dependencies",
		mcp.WithDescription("Replace an epic's dependency list. Refused if it would create a dependency cycle."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Existing epic id"),
		),
		dependsOnParam(),
	)
}

// Handle processes the epic_set_dependencies tool call.
func (t *SetDependenciesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, deps, errResult := proposal(req)
	if errResult != nil {
		return errResult, nil
	}

	updated, err := t.planner.SetDependsOn(ctx, id, deps)
	if err != nil {
		var cycleErr *domain.CycleError
		switch {
		case errors.As(err, &cycleErr):
			return mcp.NewToolResultError("Refused, would create a cycle: " + strings.Join(cycleErr.Path, " → ")), nil
		case errors.Is(err, domain.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("epic %q not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to set dependencies: %v", err)), nil
	}

	phase, err := t.planner.PhaseOf(ctx, id)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Updated %s: dependsOn [%s]", id, strings.Join(updated.DependsOn, ", "))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated %s: dependsOn [%s], now in phase %d",
		id, strings.Join(updated.DependsOn, ", "), phase)), nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func dependsOnParam() mcp.ToolOption {
	return mcp.WithArray("depends_on",
		mcp.Description("Epic ids this epic depends on. A comma-separated string is accepted too."),
		mcp.Items(map[string]any{"type": "string"}),
	)
}

// proposal reads the id and depends_on arguments
func proposal(req mcp.CallToolRequest) (string, []string, *mcp.CallToolResult) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return "", nil, mcp.NewToolResultError("'id' is required")
	}
	deps, err := domain.ParseDependsOn(req.GetArguments()["depends_on"])
	if err != nil {
		return "", nil, mcp.NewToolResultError(err.Error())
	}
	return id, deps, nil
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}
