// Package preset exposes criteria preset CRUD.
package preset

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	presetrepo "github.com/Ramsey-B/graft/internal/repositories/preset"
	"github.com/Ramsey-B/graft/pkg/criteria"
	"github.com/Ramsey-B/graft/pkg/events"
	"github.com/Ramsey-B/graft/pkg/models"
)

// Register registers criteria preset routes
func Register(g *echo.Group) {
	g.GET("", ListPresets)
	g.GET("/:id", GetPreset)
	g.POST("", CreatePreset)
	g.PUT("/:id", UpdatePreset)
	g.DELETE("/:id", DeletePreset)
}

// ListPresets lists criteria presets, newest first
func ListPresets(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	activeOnly := c.QueryParam("active") == "true"

	ctx, repo, err := ectoinject.GetContext[*presetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	presets, totalCount, err := repo.List(ctx, activeOnly, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.CriteriaPresetListResponse{
		Items:      presets,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// GetPreset gets a criteria preset by ID
func GetPreset(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*presetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	preset, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, preset)
}

// CreatePreset creates a new criteria preset
func CreatePreset(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateCriteriaPresetRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Reject criteria the engine would refuse to run
	if _, err := criteria.Normalize(req.Criteria); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*presetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := repo.Create(ctx, req)
	if err != nil {
		return err
	}

	ctx, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	if emitter != nil {
		_ = emitter.EmitPresetCreated(ctx, created)
	}

	return c.JSON(http.StatusCreated, created)
}

// UpdatePreset updates a criteria preset
func UpdatePreset(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")

	var req models.UpdateCriteriaPresetRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Criteria != nil {
		if _, err := criteria.Normalize(*req.Criteria); err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	ctx, repo, err := ectoinject.GetContext[*presetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	updated, err := repo.Update(ctx, id, req)
	if err != nil {
		return err
	}

	ctx, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	if emitter != nil {
		_ = emitter.EmitPresetUpdated(ctx, updated)
	}

	return c.JSON(http.StatusOK, updated)
}

// DeletePreset soft deletes a criteria preset
func DeletePreset(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*presetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	ctx, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	if emitter != nil {
		_ = emitter.EmitPresetDeleted(ctx, existing.ID, existing.Name)
	}

	return c.NoContent(http.StatusNoContent)
}
