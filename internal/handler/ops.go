package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-wizard/internal/model"
	"github.com/iliyamo/cinema-booking-wizard/internal/repository"
)

// JournalReader lists recent submission runs.
type JournalReader interface {
	Recent(ctx context.Context, outcome string, limit int) ([]model.SubmissionRecord, error)
}

// OpsHandler exposes the submission journal for reconciling partial
// bookings.  journal is nil when the journal is disabled.
type OpsHandler struct {
	journal  JournalReader
	validate *validator.Validate
}

func NewOpsHandler(journal JournalReader) *OpsHandler {
	return &OpsHandler{journal: journal, validate: validator.New()}
}

type submissionsQuery struct {
	Outcome string `query:"outcome" validate:"omitempty,oneof=completed rejected partial"`
	Limit   int    `query:"limit" validate:"omitempty,min=1,max=200"`
}

// Submissions handles GET /v1/ops/submissions.
func (h *OpsHandler) Submissions(c echo.Context) error {
	if h.journal == nil {
		return writeError(c, repository.ErrDisabled, nil)
	}
	var q submissionsQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	if err := h.validate.Struct(q); err != nil {
		return badRequest(c, err.Error())
	}
	recs, err := h.journal.Recent(c.Request().Context(), q.Outcome, q.Limit)
	if err != nil {
		return writeError(c, err, nil)
	}
	if recs == nil {
		recs = []model.SubmissionRecord{}
	}
	return c.JSON(http.StatusOK, echo.Map{"submissions": recs})
}
