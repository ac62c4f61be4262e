package app

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quickshow/quickshow-api/api"
	"github.com/quickshow/quickshow-api/internal/domain"
	"github.com/quickshow/quickshow-api/internal/mailer"
	"github.com/quickshow/quickshow-api/internal/mocks"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WebhookTestSuite struct {
	suite.Suite
	app         *Application
	bookingRepo *mocks.MockBookingRepo
	redisClient *mocks.MockRedisClient
	mailer      *mailer.MockMailer
}

func (s *WebhookTestSuite) SetupTest() {
	s.bookingRepo = new(mocks.MockBookingRepo)
	s.redisClient = new(mocks.MockRedisClient)
	s.mailer = mailer.NewMockMailer()

	s.app = newTestApplication(func(a *Application) {
		a.bookingRepo = s.bookingRepo
		a.redis = s.redisClient
		a.mailer = s.mailer
	})
}

func TestWebhookSuite(t *testing.T) {
	suite.Run(t, new(WebhookTestSuite))
}

// signPayload builds a Stripe-Signature header the same way Stripe does:
// an HMAC-SHA256 of "<timestamp>.<payload>" keyed with the webhook secret.
func signPayload(payload []byte, secret string, at time.Time) string {
	signedContent := fmt.Sprintf("%d.%s", at.Unix(), payload)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedContent))

	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func checkoutEvent(eventId, eventType, bookingId string) []byte {
	return fmt.Appendf(nil, `{
		"id": %q,
		"type": %q,
		"data": {
			"object": {
				"id": "cs_test_1",
				"metadata": {"booking_id": %q}
			}
		}
	}`, eventId, eventType, bookingId)
}

func (s *WebhookTestSuite) postWebhook(payload []byte, signature string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(payload))
	r.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()

	s.app.StripeWebhookHandler(w, r)

	return w
}

func (s *WebhookTestSuite) expectDedup(seenBefore bool) {
	s.redisClient.On("SetNX", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.Anything).
		Return(redis.NewBoolResult(!seenBefore, nil))
}

func (s *WebhookTestSuite) TestRejectsInvalidSignature() {
	payload := checkoutEvent("evt_1", "checkout.session.completed", "booking-1")

	w := s.postWebhook(payload, signPayload(payload, "whsec_wrong_secret", time.Now()))

	s.Equal(http.StatusBadRequest, w.Code)
	s.bookingRepo.AssertNotCalled(s.T(), "MarkPaid", mock.Anything, mock.Anything)
}

func (s *WebhookTestSuite) TestRejectsStaleSignature() {
	payload := checkoutEvent("evt_1", "checkout.session.completed", "booking-1")

	w := s.postWebhook(payload, signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour)))

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *WebhookTestSuite) TestCompletedSessionMarksBookingPaid() {
	s.expectDedup(false)
	s.bookingRepo.On("MarkPaid", mock.Anything, "booking-1").Return(true, nil)
	s.bookingRepo.On("GetDetailById", mock.Anything, "booking-1").Return(&domain.BookingDetail{
		Booking: domain.Booking{
			ID:     "booking-1",
			Seats:  []string{"A1", "A2"},
			Amount: decimal.NewFromInt(30),
			Paid:   true,
		},
		UserName:   "Jane",
		UserEmail:  "jane@example.com",
		MovieTitle: "Inception",
		ShowTime:   time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC),
	}, nil)

	payload := checkoutEvent("evt_1", "checkout.session.completed", "booking-1")

	w := s.postWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))

	s.Require().Equal(http.StatusOK, w.Code)

	var resp api.WebhookResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.True(resp.Received)

	s.app.wg.Wait()

	emails := s.mailer.GetSentEmails()
	s.Require().Len(emails, 1)
	s.Equal("jane@example.com", emails[0].Recipient)
	s.Equal("booking_confirmation.tmpl", emails[0].TemplateFile)

	s.bookingRepo.AssertExpectations(s.T())
}

func (s *WebhookTestSuite) TestReplayedCompletedSessionIsNoOp() {
	s.expectDedup(false)
	s.bookingRepo.On("MarkPaid", mock.Anything, "booking-1").Return(false, nil)

	payload := checkoutEvent("evt_2", "checkout.session.completed", "booking-1")

	w := s.postWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))

	s.Equal(http.StatusOK, w.Code)

	s.app.wg.Wait()
	s.Empty(s.mailer.GetSentEmails(), "no email for an already paid booking")
}

func (s *WebhookTestSuite) TestDuplicateEventIsSkipped() {
	s.expectDedup(true)

	payload := checkoutEvent("evt_3", "checkout.session.completed", "booking-1")

	w := s.postWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))

	s.Equal(http.StatusOK, w.Code)
	s.bookingRepo.AssertNotCalled(s.T(), "MarkPaid", mock.Anything, mock.Anything)
}

func (s *WebhookTestSuite) TestExpiredSessionReleasesSeats() {
	s.expectDedup(false)
	s.bookingRepo.On("DeleteIfUnpaid", mock.Anything, "booking-1").Return(true, nil)

	payload := checkoutEvent("evt_4", "checkout.session.expired", "booking-1")

	w := s.postWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))

	s.Equal(http.StatusOK, w.Code)
	s.bookingRepo.AssertExpectations(s.T())
}

func (s *WebhookTestSuite) TestUnknownEventTypeIsAcknowledged() {
	s.expectDedup(false)

	payload := checkoutEvent("evt_5", "payment_intent.created", "booking-1")

	w := s.postWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))

	s.Require().Equal(http.StatusOK, w.Code)

	var resp api.WebhookResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.True(resp.Received)

	s.bookingRepo.AssertNotCalled(s.T(), "MarkPaid", mock.Anything, mock.Anything)
	s.bookingRepo.AssertNotCalled(s.T(), "DeleteIfUnpaid", mock.Anything, mock.Anything)
}

func (s *WebhookTestSuite) TestProcessingErrorReturnsServerError() {
	s.expectDedup(false)
	s.bookingRepo.On("MarkPaid", mock.Anything, "booking-1").Return(false, fmt.Errorf("database error"))

	payload := checkoutEvent("evt_6", "checkout.session.completed", "booking-1")

	w := s.postWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))

	s.Equal(http.StatusInternalServerError, w.Code)
}

func (s *WebhookTestSuite) TestMissingBookingMetadataIsAcknowledged() {
	s.expectDedup(false)

	payload := checkoutEvent("evt_7", "checkout.session.completed", "")

	w := s.postWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))

	s.Equal(http.StatusOK, w.Code)
	s.bookingRepo.AssertNotCalled(s.T(), "MarkPaid", mock.Anything, mock.Anything)
}
