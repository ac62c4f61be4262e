package app

import (
	"net/http"

	"github.com/quickshow/quickshow-api/api"
)

func (app *Application) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := app.bookingRepo.GetDashboardStats(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.DashboardResponse{
		TotalBookings:    stats.TotalBookings,
		TotalRevenue:     stats.TotalRevenue,
		TotalUsers:       stats.TotalUsers,
		TotalActiveShows: stats.TotalActiveShows,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetAllBookingsHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := app.bookingRepo.GetAllSummaries(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.AdminBookingsResponse{
		Total:    len(summaries),
		Bookings: toApiBookingSummaries(summaries),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetAllShowsHandler(w http.ResponseWriter, r *http.Request) {
	shows, err := app.showRepo.GetUpcoming(r.Context())
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
