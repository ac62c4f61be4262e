package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/quickshow/quickshow-api/api"
	"github.com/quickshow/quickshow-api/internal/domain"
	"github.com/quickshow/quickshow-api/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuthTestSuite struct {
	suite.Suite
	app      *Application
	userRepo *mocks.MockUserRepo
}

func (s *AuthTestSuite) SetupTest() {
	s.userRepo = new(mocks.MockUserRepo)

	s.app = newTestApplication(func(a *Application) {
		a.userRepo = s.userRepo
	})
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}

func (s *AuthTestSuite) TestRegisterUser() {
	tests := []struct {
		name           string
		body           any
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:           "should fail when email is invalid",
			body:           api.RegisterRequest{Name: "Jane", Email: "not-an-email", Password: "Str0ng!Pass"},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be a valid email address",
		},
		{
			name:       "should fail when password is weak",
			body:       api.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "password"},
			wantStatus: http.StatusUnprocessableEntity,
			wantErrMessage: "must be at least 8 characters long and include at least one uppercase letter, one lowercase letter, " +
				"one number, and one special character (!@#$%^&*).",
		},
		{
			name: "should not leak existing emails",
			body: api.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "Str0ng!Pass"},
			setupMocks: func() {
				s.userRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrUserAlreadyExists)
			},
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "invalid input data",
		},
		{
			name: "should fail when database error occurs",
			body: api.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "Str0ng!Pass"},
			setupMocks: func() {
				s.userRepo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("database error"))
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
		{
			name: "should create user with valid input",
			body: api.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "Str0ng!Pass"},
			setupMocks: func() {
				s.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.userRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/users", tt.body)

			s.app.RegisterUser(w, r)

			s.Equal(tt.wantStatus, w.Code)

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *AuthTestSuite) TestLogin() {
	validUser := func() *domain.User {
		user := &domain.User{ID: 7, Name: "Jane", Email: "jane@example.com", Role: domain.RoleUser}
		err := user.Password.Set("Str0ng!Pass")
		s.Require().NoError(err)
		return user
	}

	tests := []struct {
		name           string
		body           any
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:           "should fail with malformed email",
			body:           api.LoginRequest{Email: "nope", Password: "whatever"},
			wantStatus:     http.StatusUnauthorized,
			wantErrMessage: ErrInvalidCredentials,
		},
		{
			name: "should fail for unknown user",
			body: api.LoginRequest{Email: "jane@example.com", Password: "Str0ng!Pass"},
			setupMocks: func() {
				s.userRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, domain.ErrRecordNotFound)
			},
			wantStatus:     http.StatusUnauthorized,
			wantErrMessage: ErrInvalidCredentials,
		},
		{
			name: "should fail with wrong password",
			body: api.LoginRequest{Email: "jane@example.com", Password: "Wrong!Pass1"},
			setupMocks: func() {
				s.userRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(validUser(), nil)
			},
			wantStatus:     http.StatusUnauthorized,
			wantErrMessage: ErrInvalidCredentials,
		},
		{
			name: "should log in with valid credentials",
			body: api.LoginRequest{Email: "jane@example.com", Password: "Str0ng!Pass"},
			setupMocks: func() {
				s.userRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(validUser(), nil)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.userRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/auth/login", tt.body)
			r = withSession(s.T(), s.app, r)

			s.app.Login(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusNoContent {
				s.Equal(7, s.app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String()))
				s.Equal("user", s.app.sessionManager.GetString(r.Context(), SessionKeyUserRole.String()))
			}
		})
	}
}

func (s *AuthTestSuite) TestLogoutWithoutSessionReturnsNotFound() {
	w, r := executeRequest(s.T(), http.MethodPost, "/auth/logout", nil)
	r = withSession(s.T(), s.app, r)

	s.app.Logout(w, r)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *AuthTestSuite) TestLogoutDestroysSession() {
	w, r := executeRequest(s.T(), http.MethodPost, "/auth/logout", nil)
	r = withSession(s.T(), s.app, r)

	s.app.sessionManager.Put(r.Context(), SessionKeyUserId.String(), 7)

	s.app.Logout(w, r)

	s.Equal(http.StatusNoContent, w.Code)
	s.Equal(0, s.app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String()))
}

func (s *AuthTestSuite) TestGetCurrentUser() {
	s.userRepo.On("GetById", mock.Anything, 7).Return(&domain.User{ID: 7, Name: "Jane", Email: "jane@example.com"}, nil)

	w, r := executeRequest(s.T(), http.MethodGet, "/users/me", nil)
	r = asUser(r, 7)

	s.app.GetCurrentUser(w, r)

	s.Require().Equal(http.StatusOK, w.Code)

	var resp api.UserResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal("jane@example.com", resp.Email)
}
