// Package match exposes the matching API.
package match

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/graft/pkg/matching"
	"github.com/Ramsey-B/graft/pkg/models"
)

// Register registers match routes
func Register(g *echo.Group) {
	g.POST("", RunMatch)
	g.GET("/algorithms", ListAlgorithms)
}

// RunMatch executes a match run over the two entity sets in the body
func RunMatch(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.MatchRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := svc.Match(ctx, req)
	if err != nil {
		return mapEngineError(err)
	}

	return c.JSON(http.StatusOK, models.NewMatchResponse(result))
}

// ListAlgorithms returns the closed set of algorithm selectors
func ListAlgorithms(c echo.Context) error {
	ctx := c.Request().Context()

	_, svc, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"algorithms": svc.Algorithms(),
		"default":    models.DefaultAlgorithm,
	})
}

// mapEngineError translates engine sentinels into HTTP statuses. Errors that
// already carry a status (preset lookups, request shape problems) pass
// through untouched.
func mapEngineError(err error) error {
	if httperror.IsHTTPError(err) {
		return err
	}

	switch {
	case errors.Is(err, matching.ErrInvalidCriteria),
		errors.Is(err, matching.ErrUnknownAlgorithm),
		errors.Is(err, matching.ErrEmptyInput):
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, matching.ErrInputTooLarge):
		return httperror.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, matching.ErrInternalAlgorithm):
		return httperror.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return err
}
