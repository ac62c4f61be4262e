package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/quickshow/quickshow-api/api"
	"github.com/quickshow/quickshow-api/internal/domain"
)

func (app *Application) GetMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := app.movieRepo.GetNowPlaying(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.MovieListResponse{
		Movies: toApiMovies(movies),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMovieDetails(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie, err := app.movieRepo.GetById(r.Context(), movieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	shows, err := app.showRepo.GetUpcomingByMovieId(r.Context(), movieId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.MovieDetailsResponse{
		Movie: toApiMovie(movie),
		Shows: toApiShows(shows),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var input api.CreateMovieRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	releaseDate, err := time.Parse("2006-01-02", input.ReleaseDate)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie := domain.Movie{
		Title:       input.Title,
		Overview:    input.Overview,
		Genres:      input.Genres,
		Language:    input.Language,
		Tagline:     input.Tagline,
		ReleaseDate: releaseDate,
		Runtime:     input.Runtime,
		Rating:      input.Rating,
		PosterUrl:   input.PosterUrl,
		BackdropUrl: input.BackdropUrl,
	}

	err = app.movieRepo.Create(r.Context(), &movie)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toApiMovie(&movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie, err := app.movieRepo.GetById(r.Context(), movieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	var input api.UpdateMovieRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	applyMovieUpdate(movie, input)

	err = app.movieRepo.Update(r.Context(), movie)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toApiMovie(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.movieRepo.Delete(r.Context(), movieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) ToggleMovieNowPlaying(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	nowPlaying, err := app.movieRepo.ToggleNowPlaying(r.Context(), movieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := map[string]bool{"now_playing": nowPlaying}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func applyMovieUpdate(movie *domain.Movie, input api.UpdateMovieRequest) {
	if input.Title != nil {
		movie.Title = *input.Title
	}
	if input.Overview != nil {
		movie.Overview = *input.Overview
	}
	if input.Genres != nil {
		movie.Genres = *input.Genres
	}
	if input.Language != nil {
		movie.Language = *input.Language
	}
	if input.Tagline != nil {
		movie.Tagline = *input.Tagline
	}
	if input.ReleaseDate != nil {
		if releaseDate, err := time.Parse("2006-01-02", *input.ReleaseDate); err == nil {
			movie.ReleaseDate = releaseDate
		}
	}
	if input.Runtime != nil {
		movie.Runtime = *input.Runtime
	}
	if input.Rating != nil {
		movie.Rating = *input.Rating
	}
	if input.PosterUrl != nil {
		movie.PosterUrl = *input.PosterUrl
	}
	if input.BackdropUrl != nil {
		movie.BackdropUrl = *input.BackdropUrl
	}
}

func toApiMovie(movie *domain.Movie) api.Movie {
	if movie == nil {
		return api.Movie{}
	}

	return api.Movie{
		Id:          movie.ID,
		Title:       movie.Title,
		Overview:    movie.Overview,
		Genres:      movie.Genres,
		Language:    movie.Language,
		Tagline:     movie.Tagline,
		ReleaseDate: movie.ReleaseDate,
		Runtime:     movie.Runtime,
		Rating:      movie.Rating,
		PosterUrl:   movie.PosterUrl,
		BackdropUrl: movie.BackdropUrl,
		NowPlaying:  movie.NowPlaying,
		CreatedAt:   movie.CreatedAt,
	}
}

func toApiMovies(movies []*domain.Movie) []api.Movie {
	apiMovies := make([]api.Movie, len(movies))
	for i, movie := range movies {
		apiMovies[i] = toApiMovie(movie)
	}

	return apiMovies
}
