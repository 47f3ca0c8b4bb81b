package routes

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimreview/claimintake/internal/validator"
)

// Does a request and forwards errors to the error handler like the normal execution path
func doRequest(e *echo.Echo, c echo.Context, handler echo.HandlerFunc) {
	err := handler(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

func newContext(e *echo.Echo, method string, claimID string, payload string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetPath("/v1/insurance/claims/:claim_id/")
	c.SetParamNames("claim_id")
	c.SetParamValues(claimID)
	return c, rec
}

var blocksTestTable = map[string]struct {
	claimID              string
	payload              string
	expectedBodyFragment string
	expectedStatus       int
}{
	"Valid": {
		claimID:              "C1",
		payload:              `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair"}`,
		expectedStatus:       http.StatusOK,
		expectedBodyFragment: `"updated":["engineer_review_of_damages","engineer_suggested_work"]`,
	},
	"InvalidEmpty": {
		claimID:              "C1",
		payload:              `{}`,
		expectedStatus:       http.StatusBadRequest,
		expectedBodyFragment: "no blocks",
	},
	"InvalidNonString": {
		claimID:              "C1",
		payload:              `{"engineer_review_of_damages": 4}`,
		expectedStatus:       http.StatusBadRequest,
		expectedBodyFragment: "string values",
	},
	"MissingClaim": {
		claimID:              MissingClaimPrefix + "C1",
		payload:              `{"engineer_review_of_damages": "ok"}`,
		expectedStatus:       http.StatusNotFound,
		expectedBodyFragment: "claim not found",
	},
}

func TestUpdateBlocks(t *testing.T) {
	e := echo.New()
	validate := validator.Create()
	e.Validator = &validate

	for testName, testData := range blocksTestTable {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			h := NewHandler(NewStore())
			c, rec := newContext(e, http.MethodPatch, testData.claimID, testData.payload)

			doRequest(e, c, h.UpdateBlocks)

			assert.Equal(t, testData.expectedStatus, rec.Code, "Status code does not match")
			assert.Contains(
				t,
				rec.Body.String(),
				testData.expectedBodyFragment,
				"Body missing expected fragment",
			)
		})
	}
}

var attachmentTestTable = map[string]struct {
	claimID              string
	payload              string
	expectedBodyFragment string
	expectedStatus       int
}{
	"Valid": {
		claimID:              "C1",
		payload:              `{"filename": "a.jpg", "mime_type": "image/jpeg", "data_base64": "` + base64.StdEncoding.EncodeToString([]byte("abc")) + `"}`,
		expectedStatus:       http.StatusCreated,
		expectedBodyFragment: `"size":3`,
	},
	"InvalidMissingFilename": {
		claimID:              "C1",
		payload:              `{"mime_type": "image/jpeg", "data_base64": "YWJj"}`,
		expectedStatus:       http.StatusUnprocessableEntity,
		expectedBodyFragment: `"filename":`,
	},
	"InvalidNotBase64": {
		claimID:              "C1",
		payload:              `{"filename": "a.jpg", "mime_type": "image/jpeg", "data_base64": "not base64!"}`,
		expectedStatus:       http.StatusUnprocessableEntity,
		expectedBodyFragment: `"data_base64":`,
	},
	"InvalidJSON": {
		claimID:              "C1",
		payload:              `{"filename": `,
		expectedStatus:       http.StatusBadRequest,
		expectedBodyFragment: "failed parsing request data",
	},
	"MissingClaim": {
		claimID:              MissingClaimPrefix + "C1",
		payload:              `{"filename": "a.jpg", "mime_type": "image/jpeg", "data_base64": "YWJj"}`,
		expectedStatus:       http.StatusNotFound,
		expectedBodyFragment: "claim not found",
	},
}

func TestUploadAttachment(t *testing.T) {
	e := echo.New()
	validate := validator.Create()
	e.Validator = &validate

	for testName, testData := range attachmentTestTable {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			h := NewHandler(NewStore())
			c, rec := newContext(e, http.MethodPost, testData.claimID, testData.payload)

			doRequest(e, c, h.UploadAttachment)

			assert.Equal(t, testData.expectedStatus, rec.Code, "Status code does not match")
			assert.Contains(
				t,
				rec.Body.String(),
				testData.expectedBodyFragment,
				"Body missing expected fragment",
			)
		})
	}
}

func TestGetClaimKeepsUploadOrder(t *testing.T) {
	e := echo.New()
	validate := validator.Create()
	e.Validator = &validate

	h := NewHandler(NewStore())

	c, rec := newContext(e, http.MethodGet, "C1", "")
	doRequest(e, c, h.GetClaim)
	assert.Equal(t, http.StatusNotFound, rec.Code, "untouched claim")

	for _, name := range []string{"1.jpg", "2.jpg", "3.jpg"} {
		c, rec := newContext(e, http.MethodPost, "C1",
			`{"filename": "`+name+`", "mime_type": "image/jpeg", "data_base64": "YWJj"}`)
		doRequest(e, c, h.UploadAttachment)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	claim, ok := h.store.Get("C1")
	require.True(t, ok)
	require.Len(t, claim.Attachments, 3)
	for i, name := range []string{"1.jpg", "2.jpg", "3.jpg"} {
		assert.Equal(t, name, claim.Attachments[i].Filename)
	}

	c, rec = newContext(e, http.MethodGet, "C1", "")
	doRequest(e, c, h.GetClaim)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"claim_id":"C1"`)
}
