package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/services/planner"
)

// HealthResponse is the response body for GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// EpicResponse is an epic together with its computed placement
type EpicResponse struct {
	domain.Epic
	// Phase is zero when the epic lies on or behind a cycle
	Phase   int  `json:"phase,omitempty"`
	InCycle bool `json:"inCycle"`
}

// UnmarshalJSON decodes the epic and its placement separately, since the
// embedded Epic's decoder would otherwise swallow the whole object
func (r *EpicResponse) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &r.Epic); err != nil {
		return err
	}
	var placement struct {
		Phase   int  `json:"phase"`
		InCycle bool `json:"inCycle"`
	}
	if err := json.Unmarshal(data, &placement); err != nil {
		return err
	}
	r.Phase = placement.Phase
	r.InCycle = placement.InCycle
	return nil
}

// CreateEpicRequest is the request body for POST /api/v1/epics.
// dependsOn may be a list or a comma-separated string.
type CreateEpicRequest = domain.Epic

// StatusRequest is the request body for PUT /api/v1/epics/:id/status
type StatusRequest struct {
	Status string `json:"status"`
}

// DependenciesRequest is the request body for PUT /api/v1/epics/:id/dependencies
type DependenciesRequest struct {
	DependsOn any `json:"dependsOn"`
}

// ProposalRequest is the request body for the cycle-check and preview endpoints
type ProposalRequest struct {
	ID        string `json:"id"`
	DependsOn any    `json:"dependsOn"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleListEpics(c echo.Context) error {
	view, err := s.planner.View(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]EpicResponse, 0, len(view.Epics))
	for _, e := range view.Epics {
		out = append(out, epicResponse(e, view))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetEpic(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	e, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	view, err := s.planner.View(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, epicResponse(e, view))
}

func (s *Server) handleCreateEpic(c echo.Context) error {
	var req CreateEpicRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid create request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	created, err := s.store.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleDeleteEpic(c echo.Context) error {
	if err := s.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleUpdateStatus(c echo.Context) error {
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleSetDependencies(c echo.Context) error {
	var req DependenciesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	deps, err := domain.ParseDependsOn(req.DependsOn)
	if err != nil {
		return err
	}

	updated, err := s.planner.SetDependsOn(c.Request().Context(), c.Param("id"), deps)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handlePhases(c echo.Context) error {
	view, err := s.planner.View(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleCycleCheck(c echo.Context) error {
	id, deps, err := bindProposal(c)
	if err != nil {
		return err
	}
	check, err := s.planner.CheckCycle(c.Request().Context(), id, deps)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, check)
}

func (s *Server) handlePreview(c echo.Context) error {
	id, deps, err := bindProposal(c)
	if err != nil {
		return err
	}
	preview, err := s.planner.Preview(c.Request().Context(), id, deps)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, preview)
}

func bindProposal(c echo.Context) (string, []string, error) {
	var req ProposalRequest
	if err := c.Bind(&req); err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "id field is required")
	}
	deps, err := domain.ParseDependsOn(req.DependsOn)
	if err != nil {
		return "", nil, err
	}
	return id, deps, nil
}

func epicResponse(e domain.Epic, view planner.View) EpicResponse {
	return EpicResponse{
		Epic:    e,
		Phase:   view.Phase[e.ID],
		InCycle: view.InCycle(e.ID),
	}
}
