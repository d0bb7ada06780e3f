package backend

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-booking-wizard/internal/catalog"
	"github.com/iliyamo/cinema-booking-wizard/internal/logger"
	"github.com/iliyamo/cinema-booking-wizard/internal/model"
)

// PriceSource returns the backend ticket price for a movie.
type PriceSource interface {
	TicketPrice(ctx context.Context, movieID int64) (int64, error)
}

// MovieSource returns movie metadata.
type MovieSource interface {
	Movie(ctx context.Context, id int64) (model.Movie, error)
	NowPlaying(ctx context.Context) ([]model.Movie, error)
}

// Pricer resolves ticket prices.  Lookups never fail: any error falls back
// to catalog.DefaultTicketPrice.  Successful lookups are cached in Redis
// when a client is configured.
type Pricer struct {
	src PriceSource
	rdb *redis.Client
	ttl time.Duration
	l   logger.Logger
}

func NewPricer(src PriceSource, rdb *redis.Client, ttl time.Duration, l logger.Logger) *Pricer {
	return &Pricer{src: src, rdb: rdb, ttl: ttl, l: l}
}

func priceKey(movieID int64) string {
	return fmt.Sprintf("price:movie:%d", movieID)
}

// TicketPrice returns the price for movieID.
func (p *Pricer) TicketPrice(ctx context.Context, movieID int64) int64 {
	if p.rdb != nil {
		if s, err := p.rdb.Get(ctx, priceKey(movieID)).Result(); err == nil {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
				return n
			}
		}
	}

	price, err := p.src.TicketPrice(ctx, movieID)
	if err != nil {
		p.l.Warnf(ctx, "backend.Pricer.TicketPrice: movie %d: %v; using default", movieID, err)
		return catalog.DefaultTicketPrice
	}
	if p.rdb != nil && p.ttl > 0 {
		if err := p.rdb.Set(ctx, priceKey(movieID), price, p.ttl).Err(); err != nil {
			p.l.Debugf(ctx, "backend.Pricer.TicketPrice: cache set: %v", err)
		}
	}
	return price
}

// Movies combines metadata and prices.
type Movies struct {
	src    MovieSource
	pricer *Pricer
}

func NewMovies(src MovieSource, pricer *Pricer) *Movies {
	return &Movies{src: src, pricer: pricer}
}

// Get returns a movie with its ticket price filled in.
func (m *Movies) Get(ctx context.Context, id int64) (model.Movie, error) {
	mv, err := m.src.Movie(ctx, id)
	if err != nil {
		return model.Movie{}, err
	}
	mv.TicketPrice = m.pricer.TicketPrice(ctx, id)
	return mv, nil
}

// NowPlaying returns the movies on show with their ticket prices.
func (m *Movies) NowPlaying(ctx context.Context) ([]model.Movie, error) {
	list, err := m.src.NowPlaying(ctx)
	if err != nil {
		return nil, err
	}
	var g errgroup.Group
	for i := range list {
		g.Go(func() error {
			list[i].TicketPrice = m.pricer.TicketPrice(ctx, list[i].ID)
			return nil
		})
	}
	_ = g.Wait()
	return list, nil
}
