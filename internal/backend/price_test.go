package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-wizard/internal/catalog"
	"github.com/iliyamo/cinema-booking-wizard/internal/logger"
	"github.com/iliyamo/cinema-booking-wizard/internal/model"
)

type priceStub map[int64]int64

func (p priceStub) TicketPrice(ctx context.Context, id int64) (int64, error) {
	if v, ok := p[id]; ok {
		return v, nil
	}
	return 0, errors.New("boom")
}

type movieStub struct{}

func (movieStub) Movie(ctx context.Context, id int64) (model.Movie, error) {
	return model.Movie{ID: id, Title: "M"}, nil
}

func (movieStub) NowPlaying(ctx context.Context) ([]model.Movie, error) {
	return []model.Movie{{ID: 1}, {ID: 2}}, nil
}

func TestPricerFallsBackToDefault(t *testing.T) {
	p := NewPricer(priceStub{1: 120000}, nil, time.Minute, logger.NewNop())

	assert.Equal(t, int64(120000), p.TicketPrice(context.Background(), 1))
	assert.Equal(t, catalog.DefaultTicketPrice, p.TicketPrice(context.Background(), 2))
}

func TestMoviesFillsPrices(t *testing.T) {
	m := NewMovies(movieStub{}, NewPricer(priceStub{1: 100000}, nil, 0, logger.NewNop()))

	mv, err := m.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), mv.TicketPrice)

	list, err := m.NowPlaying(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100000), list[0].TicketPrice)
	assert.Equal(t, catalog.DefaultTicketPrice, list[1].TicketPrice)
}

func TestMovieClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		switch r.URL.Path {
		case "/movie/550":
			_, _ = w.Write([]byte(`{"id":550,"title":"Fight Club","poster_path":"/p.jpg","release_date":"1999-10-15"}`))
		case "/movie/now_playing":
			assert.Equal(t, "1", r.URL.Query().Get("page"))
			_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"A"},{"id":2,"title":"B"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := NewMovieClient(srv.URL, "key", "vi-VN", time.Second)

	mv, err := c.Movie(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", mv.Title)
	assert.Equal(t, "/p.jpg", mv.PosterPath)

	_, err = c.Movie(context.Background(), 1)
	assert.ErrorIs(t, err, ErrMovieNotFound)

	list, err := c.NowPlaying(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
