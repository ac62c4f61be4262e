package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/quickshow/quickshow-api/api"
	"github.com/quickshow/quickshow-api/internal/domain"
)

func (app *Application) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userId := app.contextGetUserId(r)

	user, err := app.userRepo.GetById(r.Context(), userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.UserResponse{
		Id:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// EnsureAdmin creates the admin user on startup when it does not exist yet.
// Registration always produces regular users, so this is the only way an
// admin account comes into being.
func (app *Application) EnsureAdmin(ctx context.Context) error {
	if app.config.admin.email == "" || app.config.admin.password == "" {
		app.logger.Warn("admin credentials not configured, skipping admin seeding")
		return nil
	}

	_, err := app.userRepo.GetByEmail(ctx, app.config.admin.email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}

	admin := domain.User{
		Name:  app.config.admin.name,
		Email: app.config.admin.email,
		Role:  domain.RoleAdmin,
	}

	err = admin.Password.Set(app.config.admin.password)
	if err != nil {
		return err
	}

	err = app.userRepo.Create(ctx, &admin)
	if err != nil && !errors.Is(err, domain.ErrUserAlreadyExists) {
		return err
	}

	app.logger.Info("admin user seeded", "email", admin.Email)

	return nil
}
