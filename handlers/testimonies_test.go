package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harvestchapel/testimony-live/internal/testimony"
)

const submitBody = `{"date":"2026-03-01","service":"1st","name":"Sister Mary Watson","description":"testimony body","phone":"555-123-4567","email":"mary@example.com"}`

func TestSubmitListReviewFlow(t *testing.T) {
	g, _, _ := newTestRouter()

	// submit
	w := do(t, g, http.MethodPost, "/api/testimonies", submitBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	decode(t, w, &created)
	id := created["id"]
	require.NotEmpty(t, id)

	// fresh submissions are pending
	w = do(t, g, http.MethodGet, "/api/testimonies/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got testimony.Testimony
	decode(t, w, &got)
	require.Equal(t, testimony.StatusPending, got.Status)

	// scoped list sees it
	w = do(t, g, http.MethodGet, "/api/testimonies?date=2026-03-01&service=1st", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []testimony.Testimony
	decode(t, w, &list)
	require.Len(t, list, 1)

	// approve via the reviewer surface
	w = do(t, g, http.MethodPatch, "/api/testimonies/"+id+"/status", `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// reviewer cannot send it back to pending
	w = do(t, g, http.MethodPatch, "/api/testimonies/"+id+"/status", `{"status":"pending"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	// admin edit can
	w = do(t, g, http.MethodPut, "/api/testimonies/"+id, `{"status":"pending"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// delete
	w = do(t, g, http.MethodDelete, "/api/testimonies/"+id, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, g, http.MethodGet, "/api/testimonies/"+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitValidationInline(t *testing.T) {
	g, _, _ := newTestRouter()

	w := do(t, g, http.MethodPost, "/api/testimonies", `{"date":"2026-03-01","service":"1st","name":"Ann"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	decode(t, w, &resp)
	require.Equal(t, "description", resp["field"])
}

func TestListStatusFilterRejectsUnknown(t *testing.T) {
	g, _, _ := newTestRouter()
	w := do(t, g, http.MethodGet, "/api/testimonies?date=2026-03-01&service=1st&status=bogus", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPhoneLookupEndpoint(t *testing.T) {
	g, _, _ := newTestRouter()

	w := do(t, g, http.MethodPost, "/api/testimonies", submitBody)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, g, http.MethodGet, "/api/phone-lookup?phone=%28555%29%20123-4567", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got testimony.PhoneLookup
	decode(t, w, &got)
	require.Equal(t, "Sister Mary Watson", got.Name)
	require.Equal(t, "mary@example.com", got.Email)

	// short number: miss without error
	w = do(t, g, http.MethodGet, "/api/phone-lookup?phone=12345", "")
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestMutateUnknownIDIs404(t *testing.T) {
	g, _, _ := newTestRouter()

	w := do(t, g, http.MethodPatch, "/api/testimonies/nope/status", `{"status":"approved"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, g, http.MethodPut, "/api/testimonies/nope", `{"name":"X"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, g, http.MethodDelete, "/api/testimonies/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCreateFullRecord(t *testing.T) {
	g, _, _ := newTestRouter()

	w := do(t, g, http.MethodPost, "/api/admin/testimonies",
		`{"date":"2026-03-01","service":"1st","name":"Imported","description":"d","status":"approved","createdAt":123}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	decode(t, w, &created)

	w = do(t, g, http.MethodGet, "/api/testimonies/"+created["id"], "")
	require.Equal(t, http.StatusOK, w.Code)
	var got testimony.Testimony
	decode(t, w, &got)
	require.Equal(t, testimony.StatusApproved, got.Status)
	require.Equal(t, int64(123), got.CreatedAt)
}
