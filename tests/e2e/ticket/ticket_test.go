//go:build e2e

package ticket_test

import (
	"context"
	"net/http"
	"testing"

	"keypool/internal/domain/identity"
	"keypool/internal/handler/dto/response"
	"keypool/tests/common/authtest"
	"keypool/tests/common/dbtest"
	"keypool/tests/common/httptest"
	"keypool/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	ticketsURL  = "/api/tickets"
	waitlistURL = "/api/waitlist"
)

type TicketSuite struct {
	e2e.SharedSuite
}

func (s *TicketSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestTicketSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(TicketSuite))
}

func (s *TicketSuite) tokens() (*authtest.JWTHelper, uuid.UUID, string) {
	helper := authtest.NewJWTHelper(s.Config.JWT)
	requesterID := uuid.New()
	requesterToken := helper.GenerateToken(s.T(), requesterID, identity.RoleRequester)
	return helper, requesterID, requesterToken
}

// =============================================================================
// TestTicketLifecycle - pending -> claimed -> completed
// =============================================================================

func (s *TicketSuite) TestTicketLifecycle() {
	s.Run("Normal case: full lifecycle debits stock and schedules a restock", func() {
		t := s.T()

		helper, _, requesterToken := s.tokens()
		supplierID := dbtest.CreateTestSupplier(t, s.DB)
		supplierToken := helper.GenerateToken(t, supplierID, identity.RoleSupplier)
		managerToken := helper.GenerateToken(t, uuid.New(), identity.RoleManager)

		itemID := dbtest.CreateTestItem(t, s.DB, "standard-slot", false)
		dbtest.AddTestStock(t, s.DB, supplierID, itemID, 3)

		// Create
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, ticketsURL,
			map[string]any{"item_id": itemID.String()}, requesterToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created map[string]string
		_ = httptest.DecodeResponseBody(t, w.Body, &created)
		require.Equal(t, "pending", created["status"])
		ticketID := created["id"]
		require.NotEmpty(t, ticketID)

		// Claim
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, ticketsURL+"/"+ticketID+"/claim", nil, supplierToken)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		// Completion before evidence verification must be rejected
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, ticketsURL+"/"+ticketID+"/complete",
			map[string]any{"proof": "handover log"}, supplierToken)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		// Verify (manager), then complete
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, ticketsURL+"/"+ticketID+"/verify", nil, managerToken)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, ticketsURL+"/"+ticketID+"/complete",
			map[string]any{"proof": "handover log"}, supplierToken)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		// The requester sees the completed ticket
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, ticketsURL+"/"+ticketID, nil, requesterToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var view response.TicketResponse
		_ = httptest.DecodeResponseBody(t, w.Body, &view)
		require.Equal(t, "completed", view.Status)
		require.NotNil(t, view.SupplierID)
		require.Equal(t, supplierID, *view.SupplierID)
		require.NotNil(t, view.CompletedAt)

		// Stock was debited and the deferred restock enqueued
		var quantity int
		err := s.DB.QueryRow(context.Background(),
			"SELECT quantity FROM stock_entries WHERE supplier_id = $1 AND item_id = $2",
			supplierID, itemID).Scan(&quantity)
		require.NoError(t, err)
		require.Equal(t, 2, quantity)
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "restock_queue"))
	})

	s.Run("Error case: second request during cooldown is rejected", func() {
		t := s.T()

		helper, _, requesterToken := s.tokens()
		supplierID := dbtest.CreateTestSupplier(t, s.DB)
		supplierToken := helper.GenerateToken(t, supplierID, identity.RoleSupplier)
		managerToken := helper.GenerateToken(t, uuid.New(), identity.RoleManager)

		itemID := dbtest.CreateTestItem(t, s.DB, "cooldown-slot", false)
		dbtest.AddTestStock(t, s.DB, supplierID, itemID, 5)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, ticketsURL,
			map[string]any{"item_id": itemID.String()}, requesterToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created map[string]string
		_ = httptest.DecodeResponseBody(t, w.Body, &created)
		ticketID := created["id"]

		for _, step := range []string{"/claim", "/verify", "/complete"} {
			token := supplierToken
			if step == "/verify" {
				token = managerToken
			}
			var body map[string]any
			if step == "/complete" {
				body = map[string]any{"proof": "done"}
			}
			w = httptest.PerformRequest(t, s.Router, http.MethodPost, ticketsURL+"/"+ticketID+step, body, token)
			require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
		}

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, ticketsURL,
			map[string]any{"item_id": itemID.String()}, requesterToken)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})
}

// =============================================================================
// TestNoStock - empty pool offers the waitlist
// =============================================================================

func (s *TicketSuite) TestNoStock() {
	s.Run("Error case: empty pool returns 409 with a waitlist offer", func() {
		t := s.T()

		_, _, requesterToken := s.tokens()
		itemID := dbtest.CreateTestItem(t, s.DB, "sold-out-slot", false)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, ticketsURL,
			map[string]any{"item_id": itemID.String()}, requesterToken)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		var body map[string]any
		_ = httptest.DecodeResponseBody(t, w.Body, &body)
		detail, ok := body["detail"].(map[string]any)
		require.True(t, ok, w.Body.String())
		require.Equal(t, true, detail["waitlist_offer"])

		// Take the offer
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, waitlistURL,
			map[string]any{"item_id": itemID.String()}, requesterToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var joined map[string]any
		_ = httptest.DecodeResponseBody(t, w.Body, &joined)
		require.Equal(t, true, joined["joined"])
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "waitlist_entries"))
	})
}

// =============================================================================
// TestAuthorization - role gates on the ticket surface
// =============================================================================

func (s *TicketSuite) TestAuthorization() {
	s.Run("Error case: requester cannot claim tickets", func() {
		t := s.T()

		_, _, requesterToken := s.tokens()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			ticketsURL+"/"+uuid.NewString()+"/claim", nil, requesterToken)
		require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	})

	s.Run("Error case: missing token is rejected", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, ticketsURL,
			map[string]any{"item_id": uuid.NewString()}, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	})

	s.Run("Error case: expired token is rejected", func() {
		t := s.T()

		helper := authtest.NewJWTHelper(s.Config.JWT)
		expired := helper.CreateExpiredToken(t, uuid.New(), identity.RoleRequester)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, ticketsURL, nil, expired)
		require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	})
}
