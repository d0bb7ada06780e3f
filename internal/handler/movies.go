package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-wizard/internal/logger"
)

// MovieHandler lists movies for the movie step of the theater-first flow.
type MovieHandler struct {
	movies MovieLookup
	log    logger.Logger
}

func NewMovieHandler(movies MovieLookup, log logger.Logger) *MovieHandler {
	return &MovieHandler{movies: movies, log: log}
}

// NowPlaying handles GET /v1/movies.
func (h *MovieHandler) NowPlaying(c echo.Context) error {
	ctx := c.Request().Context()
	list, err := h.movies.NowPlaying(ctx)
	if err != nil {
		h.log.Warnf(ctx, "handler.MovieHandler.NowPlaying: %v", err)
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": list})
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return badRequest(c, "invalid movie id")
	}
	mv, err := h.movies.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, mv)
}
