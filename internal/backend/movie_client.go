package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking-wizard/internal/model"
)

// PosterBaseURL is prefixed to poster paths sent with bookings.
const PosterBaseURL = "https://image.tmdb.org/t/p/w500"

// MovieClient reads movie metadata from a TMDB-compatible API.
type MovieClient struct {
	baseURL  string
	apiKey   string
	language string
	client   *http.Client
}

func NewMovieClient(baseURL, apiKey, language string, timeout time.Duration) *MovieClient {
	return &MovieClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		language: language,
		client:   &http.Client{Timeout: timeout},
	}
}

type tmdbMovie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
}

func (m tmdbMovie) toModel() model.Movie {
	return model.Movie{
		ID:          m.ID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
	}
}

// Movie fetches one movie.  TicketPrice is left zero.
func (c *MovieClient) Movie(ctx context.Context, id int64) (model.Movie, error) {
	var m tmdbMovie
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), &m); err != nil {
		return model.Movie{}, fmt.Errorf("fetch movie %d: %w", id, err)
	}
	if m.ID == 0 {
		return model.Movie{}, fmt.Errorf("fetch movie %d: %w", id, ErrMovieNotFound)
	}
	return m.toModel(), nil
}

// NowPlaying fetches the first page of movies currently showing.
func (c *MovieClient) NowPlaying(ctx context.Context) ([]model.Movie, error) {
	var resp struct {
		Results []tmdbMovie `json:"results"`
	}
	if err := c.get(ctx, "/movie/now_playing", &resp, "page", "1"); err != nil {
		return nil, fmt.Errorf("fetch now playing: %w", err)
	}
	out := make([]model.Movie, 0, len(resp.Results))
	for _, m := range resp.Results {
		out = append(out, m.toModel())
	}
	return out, nil
}

func (c *MovieClient) get(ctx context.Context, path string, into any, extra ...string) error {
	v := url.Values{}
	v.Set("api_key", c.apiKey)
	v.Set("language", c.language)
	for i := 0; i+1 < len(extra); i += 2 {
		v.Set(extra[i], extra[i+1])
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+v.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrMovieNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return apiError("movie api", resp.StatusCode, body)
	}
	return json.Unmarshal(body, into)
}
