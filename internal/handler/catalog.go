package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-wizard/internal/catalog"
)

// CatalogHandler serves the static lists the wizard steps choose from.
type CatalogHandler struct {
	windowDays int
	now        func() time.Time
}

func NewCatalogHandler(windowDays int) *CatalogHandler {
	return &CatalogHandler{windowDays: windowDays, now: time.Now}
}

func (h *CatalogHandler) Theaters(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"theaters": catalog.Theaters()})
}

func (h *CatalogHandler) Showtimes(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"showtimes": catalog.Showtimes()})
}

// Dates returns the booking window starting today.
func (h *CatalogHandler) Dates(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"dates": catalog.BuildDateWindow(h.now(), h.windowDays)})
}

func (h *CatalogHandler) Concessions(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"concessions": catalog.Concessions()})
}

func (h *CatalogHandler) PaymentMethods(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"payment_methods": catalog.PaymentMethods()})
}
