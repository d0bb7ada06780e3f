package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-wizard/internal/backend"
	"github.com/iliyamo/cinema-booking-wizard/internal/booking"
	"github.com/iliyamo/cinema-booking-wizard/internal/catalog"
	"github.com/iliyamo/cinema-booking-wizard/internal/handler"
	"github.com/iliyamo/cinema-booking-wizard/internal/identity"
	"github.com/iliyamo/cinema-booking-wizard/internal/idgen"
	"github.com/iliyamo/cinema-booking-wizard/internal/logger"
	"github.com/iliyamo/cinema-booking-wizard/internal/middleware"
	"github.com/iliyamo/cinema-booking-wizard/internal/model"
	"github.com/iliyamo/cinema-booking-wizard/internal/router"
	"github.com/iliyamo/cinema-booking-wizard/internal/session"
)

const secret = "handler-secret"

type moviesStub struct{}

func (moviesStub) Get(_ context.Context, id int64) (model.Movie, error) {
	if id != 1 {
		return model.Movie{}, backend.ErrMovieNotFound
	}
	return model.Movie{ID: 1, Title: "M1", TicketPrice: 90000}, nil
}

func (moviesStub) NowPlaying(context.Context) ([]model.Movie, error) {
	return []model.Movie{{ID: 1, Title: "M1", TicketPrice: 90000}}, nil
}

type server struct {
	e     *echo.Echo
	api   *backend.BookingMock
	token string
}

func newServer(t *testing.T) *server {
	t.Helper()
	api := &backend.BookingMock{Booked: map[string][]string{}}
	log := logger.NewNop()
	pipeline := booking.NewPipeline(api, idgen.NewSequence("KKT00000000000A"), log)

	e := echo.New()
	router.Register(e, router.Handlers{
		Health:  handler.NewHealthHandler(nil, nil),
		Catalog: handler.NewCatalogHandler(7),
		Movies:  handler.NewMovieHandler(moviesStub{}, log),
		Wizard:  handler.NewWizardHandler(session.NewMemoryStore(time.Hour), api, pipeline, moviesStub{}, 7, log),
		Ops:     handler.NewOpsHandler(nil),
	}, router.Middlewares{Identity: middleware.Identity(secret)})

	tok, err := identity.Issue(secret, "0900000000", time.Hour)
	require.NoError(t, err)
	return &server{e: e, api: api, token: tok}
}

type state struct {
	SessionID string       `json:"session_id"`
	Step      int          `json:"step"`
	StepKind  string       `json:"step_kind"`
	Seats     []string     `json:"seats"`
	Totals    model.Totals `json:"totals"`
	BookingID string       `json:"booking_id"`
	Complete  bool         `json:"complete"`
	Message   string       `json:"message"`
	SeatGrid  []model.Seat `json:"seat_grid"`
}

type errResp struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Partial   bool   `json:"partial"`
	BookingID string `json:"booking_id"`
	State     *state `json:"state"`
}

func (s *server) do(t *testing.T, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func today() string {
	return catalog.BuildDateWindow(time.Now(), 7)[0].Label
}

// walkToPayment creates a movie-first wizard and drives it to the payment
// step with seats A3 and B5 and two popcorns.
func (s *server) walkToPayment(t *testing.T, auth bool) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/wizards", `{"flow":"movie_first","movie_id":1}`, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[state](t, rec).SessionID
	base := "/v1/wizards/" + id

	steps := []struct{ method, path, body string }{
		{http.MethodPut, base + "/theater", `{"theater_id":1}`},
		{http.MethodPut, base + "/date", `{"date":"` + today() + `"}`},
		{http.MethodPost, base + "/advance", ""},
		{http.MethodPut, base + "/time", `{"time":"10:00"}`},
		{http.MethodPost, base + "/advance", ""},
		{http.MethodPost, base + "/seats/A3", ""},
		{http.MethodPost, base + "/seats/B5", ""},
		{http.MethodPost, base + "/advance", ""},
		{http.MethodPut, base + "/concessions/popcorn", `{"quantity":2}`},
		{http.MethodPost, base + "/advance", ""},
	}
	for _, st := range steps {
		rec := s.do(t, st.method, st.path, st.body, auth)
		require.Equal(t, http.StatusOK, rec.Code, "%s %s: %s", st.method, st.path, rec.Body.String())
	}
	return id
}

func TestWizardHappyPath(t *testing.T) {
	s := newServer(t)
	id := s.walkToPayment(t, true)

	rec := s.do(t, http.MethodGet, "/v1/wizards/"+id, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[state](t, rec)
	assert.Equal(t, "payment", st.StepKind)
	assert.Equal(t, []string{"A3", "B5"}, st.Seats)
	assert.Equal(t, int64(320000), st.Totals.Total)
	assert.Len(t, st.SeatGrid, 80)

	rec = s.do(t, http.MethodPost, "/v1/wizards/"+id+"/confirm", "", true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, "/v1/wizards/"+id+"/payment", `{"method":"momo"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/wizards/"+id+"/confirm", "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st = decode[state](t, rec)
	assert.True(t, st.Complete)
	assert.Equal(t, "KKT00000000000A", st.BookingID)
	assert.Equal(t, 2, s.api.TicketCount())

	rec = s.do(t, http.MethodPut, "/v1/wizards/"+id+"/theater", `{"theater_id":2}`, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWizardValidationKeepsStep(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodPost, "/v1/wizards", `{"flow":"theater_first"}`, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[state](t, rec).SessionID

	rec = s.do(t, http.MethodPost, "/v1/wizards/"+id+"/advance", "", false)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[errResp](t, rec)
	assert.Equal(t, "validation", body.Error)
	assert.Equal(t, "please select a theater", body.Message)
	require.NotNil(t, body.State)
	assert.Equal(t, 1, body.State.Step)

	rec = s.do(t, http.MethodPost, "/v1/wizards/"+id+"/retreat", "", false)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWizardBadRequests(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/v1/wizards", `{"flow":"sideways"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/wizards", `{"flow":"movie_first"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/wizards", `{"flow":"movie_first","movie_id":7}`, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/wizards/nope", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/wizards", `{"flow":"theater_first"}`, false)
	id := decode[state](t, rec).SessionID
	rec = s.do(t, http.MethodPut, "/v1/wizards/"+id+"/concessions/popcorn", `{}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPut, "/v1/wizards/"+id+"/concessions/nachos", `{"quantity":1}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPut, "/v1/wizards/"+id+"/theater", `{"theater_id":42}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizardConfirmNeedsSignIn(t *testing.T) {
	s := newServer(t)
	id := s.walkToPayment(t, false)
	rec := s.do(t, http.MethodPut, "/v1/wizards/"+id+"/payment", `{"method":"atm"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/wizards/"+id+"/confirm", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, s.api.Bookings)
}

func TestWizardInvalidTokenRejected(t *testing.T) {
	s := newServer(t)
	s.token = "garbage"
	rec := s.do(t, http.MethodPost, "/v1/wizards", `{"flow":"theater_first"}`, true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWizardConfirmSeatTaken(t *testing.T) {
	s := newServer(t)
	id := s.walkToPayment(t, true)
	s.do(t, http.MethodPut, "/v1/wizards/"+id+"/payment", `{"method":"vnpay"}`, true)
	s.api.FailBooking = &backend.APIError{Op: "create booking", Status: 400, Message: "Seat already booked"}

	rec := s.do(t, http.MethodPost, "/v1/wizards/"+id+"/confirm", "", true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode[errResp](t, rec)
	assert.Equal(t, "seat_taken", body.Error)
	assert.Equal(t, "Seat already booked", body.Message)
	require.NotNil(t, body.State)
	assert.False(t, body.State.Complete)
	assert.Equal(t, []string{"A3", "B5"}, body.State.Seats)
	assert.Zero(t, s.api.TicketCount())
}

func TestWizardConfirmPartial(t *testing.T) {
	s := newServer(t)
	id := s.walkToPayment(t, true)
	s.do(t, http.MethodPut, "/v1/wizards/"+id+"/payment", `{"method":"zalopay"}`, true)
	s.api.FailTickets = map[string]error{"A3": &backend.APIError{Op: "create ticket", Status: 500}}

	rec := s.do(t, http.MethodPost, "/v1/wizards/"+id+"/confirm", "", true)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode[errResp](t, rec)
	assert.True(t, body.Partial)
	assert.Equal(t, "some tickets were not created", body.Message)
	assert.Equal(t, "KKT00000000000A", body.BookingID)
	assert.False(t, body.State.Complete)
}

func TestWizardSeatFetchFailure(t *testing.T) {
	s := newServer(t)
	s.api.FailBookedSeats = &backend.APIError{Op: "booked seats", Status: 500}
	rec := s.do(t, http.MethodPost, "/v1/wizards", `{"flow":"movie_first","movie_id":1}`, false)
	id := decode[state](t, rec).SessionID
	base := "/v1/wizards/" + id
	s.do(t, http.MethodPut, base+"/theater", `{"theater_id":3}`, false)
	s.do(t, http.MethodPut, base+"/date", `{"date":"`+today()+`"}`, false)
	s.do(t, http.MethodPost, base+"/advance", "", false)
	s.do(t, http.MethodPut, base+"/time", `{"time":"20:00"}`, false)

	rec = s.do(t, http.MethodPost, base+"/advance", "", false)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode[errResp](t, rec)
	assert.Equal(t, "fetch_failed", body.Error)
	assert.Equal(t, 2, body.State.Step)
}

func TestWizardDelete(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodPost, "/v1/wizards", `{"flow":"theater_first"}`, false)
	id := decode[state](t, rec).SessionID

	rec = s.do(t, http.MethodDelete, "/v1/wizards/"+id, "", false)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/v1/wizards/"+id, "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWizardConcurrentConfirmBooksOnce(t *testing.T) {
	s := newServer(t)
	id := s.walkToPayment(t, true)
	s.do(t, http.MethodPut, "/v1/wizards/"+id+"/payment", `{"method":"momo"}`, true)
	s.api.BeforeBooking = func(context.Context) { time.Sleep(50 * time.Millisecond) }

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/v1/wizards/"+id+"/confirm", nil)
			req.Header.Set("Authorization", "Bearer "+s.token)
			rec := httptest.NewRecorder()
			s.e.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusConflict}, codes)
	assert.Equal(t, 1, s.api.BookingCount())
	assert.Equal(t, 2, s.api.TicketCount())
}

func TestWizardConfirmSurvivesClientDisconnect(t *testing.T) {
	s := newServer(t)
	id := s.walkToPayment(t, true)
	s.do(t, http.MethodPut, "/v1/wizards/"+id+"/payment", `{"method":"momo"}`, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.api.BeforeBooking = func(context.Context) { cancel() }

	req := httptest.NewRequest(http.MethodPost, "/v1/wizards/"+id+"/confirm", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, s.api.TicketCount())
	assert.Empty(t, s.api.Canceled)

	rec = s.do(t, http.MethodGet, "/v1/wizards/"+id, "", true)
	assert.True(t, decode[state](t, rec).Complete)
}

func TestWizardBelongsToCreator(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodPost, "/v1/wizards", `{"flow":"theater_first"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[state](t, rec).SessionID

	other, err := identity.Issue(secret, "0911111111", time.Hour)
	require.NoError(t, err)
	s.token = other
	rec = s.do(t, http.MethodPut, "/v1/wizards/"+id+"/theater", `{"theater_id":1}`, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decode[errResp](t, rec).Error)

	rec = s.do(t, http.MethodGet, "/v1/wizards/"+id, "", false)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodDelete, "/v1/wizards/"+id, "", true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
