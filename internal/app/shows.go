package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quickshow/quickshow-api/api"
	"github.com/quickshow/quickshow-api/internal/domain"
)

func (app *Application) CreateShow(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.CreateShowRequest

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

	if !input.Price.IsPositive() {
		app.badRequestResponse(w, r, fmt.Errorf("price must be greater than zero"))
		return
	}

	if input.StartsAt.Before(time.Now()) {
		app.badRequestResponse(w, r, fmt.Errorf("show time must be in the future"))
		return
	}

	_, err = app.movieRepo.GetById(r.Context(), movieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	show := domain.Show{
		MovieID:  movieId,
		StartsAt: input.StartsAt,
		Price:    input.Price,
		Active:   true,
	}

	err = app.showRepo.Create(r.Context(), &show)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toApiShow(&show), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetShowsByMovie(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	_, err = app.movieRepo.GetById(r.Context(), movieId)
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

	resp := api.ShowListResponse{
		Shows: toApiShows(shows),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetOccupiedSeats returns the seat labels currently held for a show, both
// paid and still inside the hold window.
func (app *Application) GetOccupiedSeats(w http.ResponseWriter, r *http.Request) {
	showId, err := app.readIDParam(r, "showId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	_, err = app.showRepo.GetById(r.Context(), showId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	occupiedSeats, err := app.seatRepo.GetOccupiedSeats(r.Context(), showId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.OccupiedSeatsResponse{
		ShowId:        showId,
		OccupiedSeats: occupiedSeats,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteShow(w http.ResponseWriter, r *http.Request) {
	showId, err := app.readIDParam(r, "showId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.showRepo.Delete(r.Context(), showId)
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

func (app *Application) ToggleShowActive(w http.ResponseWriter, r *http.Request) {
	showId, err := app.readIDParam(r, "showId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	active, err := app.showRepo.ToggleActive(r.Context(), showId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := map[string]bool{"active": active}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiShow(show *domain.Show) api.Show {
	if show == nil {
		return api.Show{}
	}

	return api.Show{
		Id:       show.ID,
		MovieId:  show.MovieID,
		StartsAt: show.StartsAt,
		Price:    show.Price,
		Active:   show.Active,
	}
}

func toApiShows(shows []*domain.Show) []api.Show {
	apiShows := make([]api.Show, len(shows))
	for i, show := range shows {
		apiShows[i] = toApiShow(show)
	}

	return apiShows
}
