package backend

import "errors"

// ErrMovieNotFound is returned when the movie API does not know a movie.
var ErrMovieNotFound = errors.New("movie not found")
