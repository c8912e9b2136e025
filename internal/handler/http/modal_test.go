package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openModal(t *testing.T, router http.Handler, productID string) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/modal",
		map[string]string{"product_id": productID})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOpenModal_Defaults(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)

	openModal(t, router, "prod-1")

	rec := doRequest(t, router, http.MethodGet, "/api/v1/sessions/rec-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	modal := decodeData(t, rec)["modal"].(map[string]any)
	product := modal["product"].(map[string]any)
	assert.Equal(t, "prod-1", product["product_id"])
	assert.EqualValues(t, 1, modal["quantity"])
	assert.EqualValues(t, 0, modal["image_index"])
	assert.Equal(t, true, modal["carousel_active"])
}

func TestOpenModal_UnknownProduct(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/modal",
		map[string]string{"product_id": "prod-404"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCloseModal_Endpoint(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)
	openModal(t, router, "prod-1")

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/sessions/rec-1/modal", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeData(t, rec)["modal"])
}

func TestModalQuantity_IncrementDecrement(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)
	openModal(t, router, "prod-1")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/modal/quantity/increment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	modal := decodeData(t, rec)["modal"].(map[string]any)
	assert.EqualValues(t, 2, modal["quantity"])

	rec = doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/modal/quantity/decrement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	modal = decodeData(t, rec)["modal"].(map[string]any)
	assert.EqualValues(t, 1, modal["quantity"])
}

func TestModalQuantity_DirectEntry(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)
	openModal(t, router, "prod-1")

	rec := doRequest(t, router, http.MethodPut, "/api/v1/sessions/rec-1/modal/quantity",
		map[string]int{"quantity": 4})

	require.Equal(t, http.StatusOK, rec.Code)
	modal := decodeData(t, rec)["modal"].(map[string]any)
	assert.EqualValues(t, 4, modal["quantity"])
}

func TestModalQuantity_OutOfRangeDirectEntryIgnored(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)
	openModal(t, router, "prod-1")

	rec := doRequest(t, router, http.MethodPut, "/api/v1/sessions/rec-1/modal/quantity",
		map[string]int{"quantity": 4})
	require.Equal(t, http.StatusOK, rec.Code)

	for _, qty := range []int{0, -3, 9999} {
		rec = doRequest(t, router, http.MethodPut, "/api/v1/sessions/rec-1/modal/quantity",
			map[string]int{"quantity": qty})
		require.Equal(t, http.StatusOK, rec.Code)
		modal := decodeData(t, rec)["modal"].(map[string]any)
		assert.EqualValues(t, 4, modal["quantity"])
	}
}

func TestModalQuantity_WithoutOpenModal(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/modal/quantity/increment", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestModalImage_SelectPausesCarousel(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)
	openModal(t, router, "prod-1")

	rec := doRequest(t, router, http.MethodPut, "/api/v1/sessions/rec-1/modal/image",
		map[string]int{"index": 1})

	require.Equal(t, http.StatusOK, rec.Code)
	modal := decodeData(t, rec)["modal"].(map[string]any)
	assert.EqualValues(t, 1, modal["image_index"])
	assert.Equal(t, false, modal["carousel_active"])
}

func TestModalImage_IndexOutOfRange(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)
	openModal(t, router, "prod-1")

	rec := doRequest(t, router, http.MethodPut, "/api/v1/sessions/rec-1/modal/image",
		map[string]int{"index": 9})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModalHover_PauseResume(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)
	openModal(t, router, "prod-1")

	rec := doRequest(t, router, http.MethodPut, "/api/v1/sessions/rec-1/modal/hover",
		map[string]bool{"hovering": true})
	require.Equal(t, http.StatusOK, rec.Code)
	modal := decodeData(t, rec)["modal"].(map[string]any)
	assert.Equal(t, false, modal["carousel_active"])

	rec = doRequest(t, router, http.MethodPut, "/api/v1/sessions/rec-1/modal/hover",
		map[string]bool{"hovering": false})
	require.Equal(t, http.StatusOK, rec.Code)
	modal = decodeData(t, rec)["modal"].(map[string]any)
	assert.Equal(t, true, modal["carousel_active"])
}

func TestModalConfirm_AddsToCartAndCloses(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)
	openModal(t, router, "prod-1")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/modal/quantity/increment", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/modal/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	assert.Nil(t, data["modal"])
	cart := data["cart"].(map[string]any)
	lines := cart["lines"].([]any)
	require.Len(t, lines, 1)
	assert.EqualValues(t, 2, lines[0].(map[string]any)["quantity"])
}

// ============================================================================
// Submission routes
// ============================================================================

func TestSubmit_Success(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)
	addCartLine(t, router, "prod-1", 2)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/submit", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "summary", data["mode"])
	assert.EqualValues(t, 3, data["countdown_remaining"])
}

func TestSubmit_EmptyCart(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/submit", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_RemoteFailure(t *testing.T) {
	router := newTestRouterWithOrders(t, &stubOrders{err: assert.AnError})
	readyBrowseState(t, router)
	addCartLine(t, router, "prod-1", 2)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/submit", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// Cart stays intact for retry.
	rec = doRequest(t, router, http.MethodGet, "/api/v1/sessions/rec-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "browse", data["mode"])
	cart := data["cart"].(map[string]any)
	assert.Len(t, cart["lines"], 1)
}

func TestCloseSummary_Endpoint(t *testing.T) {
	router := newTestRouter(t)
	readyBrowseState(t, router)
	addCartLine(t, router, "prod-1", 2)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/sessions/rec-1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	assert.Equal(t, "browse", data["mode"])
	assert.Equal(t, "related_records", data["pending_navigation"])
	cart := data["cart"].(map[string]any)
	assert.Empty(t, cart["lines"])

	rec = doRequest(t, router, http.MethodPost, "/api/v1/sessions/rec-1/navigation/ack", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/sessions/rec-1", nil)
	data = decodeData(t, rec)
	assert.Nil(t, data["pending_navigation"])
}
