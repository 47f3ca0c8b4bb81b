package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/claimreview/claimintake/internal/config"
	"github.com/claimreview/claimintake/internal/intake"
	"github.com/claimreview/claimintake/internal/types"
)

func image(name string, size int) string {
	return fmt.Sprintf(
		`{"name": "%s", "type": "image/jpeg", "size": %d, "data": "%s"}`,
		name,
		size,
		base64String(size),
	)
}

func images(names ...string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, image(name, 12))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func errorBodyTester(field string, reason string) func(t *testing.T, body map[string]any) {
	return func(t *testing.T, body map[string]any) {
		assert.Contains(t, body, "error", "contains error key")
		assert.Equal(t, "validation", body["kind"])
		assert.Equal(t, field, body["field"])
		assert.Equal(t, reason, body["reason"])
	}
}

func (s *ServerTestSuite) Test_EngineerReviewSubmission() {
	tests := []struct {
		name            string
		claimNumber     string
		payload         string
		failBlocks      int
		failAttachments map[string]int
		bodyTester      func(t *testing.T, body map[string]any)
		expectedCalls   int
		expectedUploads []string
		expectedStatus  int
	}{
		{
			name:        "Valid",
			claimNumber: "C1",
			payload: `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair", "images": [` +
				`{"name": "a.jpg", "type": "image/jpeg", "size": 1000, "data": "` + base64String(1000) + `"}]}`,
			expectedStatus:  http.StatusOK,
			expectedCalls:   2,
			expectedUploads: []string{"a.jpg"},
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Claim blocks updated and attachments uploaded successfully.", body["message"])
				assert.EqualValues(t, 1, body["uploaded"])
				assert.NotEmpty(t, body["submission_id"])
			},
		},
		{
			name:            "ValidNoImages",
			claimNumber:     "C1",
			payload:         `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair"}`,
			expectedStatus:  http.StatusOK,
			expectedCalls:   1,
			expectedUploads: []string{},
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.EqualValues(t, 0, body["uploaded"])
			},
		},
		{
			name:            "ValidFiveImagesInOrder",
			claimNumber:     "C1",
			payload:         `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair", "images": ` + images("1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg") + `}`,
			expectedStatus:  http.StatusOK,
			expectedCalls:   6,
			expectedUploads: []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg"},
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.EqualValues(t, 5, body["uploaded"])
			},
		},
		{
			name:            "InvalidMissingReview",
			claimNumber:     "C1",
			payload:         `{"engineer_suggested_work": "repair", "images": ` + images("a.jpg") + `}`,
			expectedStatus:  http.StatusBadRequest,
			expectedUploads: []string{},
			bodyTester:      errorBodyTester("engineer_review_of_damages", "required"),
		},
		{
			name:            "InvalidMissingSuggestedWork",
			claimNumber:     "C1",
			payload:         `{"engineer_review_of_damages": "ok"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedUploads: []string{},
			bodyTester:      errorBodyTester("engineer_suggested_work", "required"),
		},
		{
			name:            "InvalidSixImages",
			claimNumber:     "C1",
			payload:         `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair", "images": ` + images("1", "2", "3", "4", "5", "6") + `}`,
			expectedStatus:  http.StatusBadRequest,
			expectedUploads: []string{},
			bodyTester: func(t *testing.T, body map[string]any) {
				errorBodyTester("images", "too_many")(t, body)
				assert.Equal(t, "You can upload a maximum of 5 images.", body["error"])
			},
		},
		{
			name:        "InvalidImageTooLarge",
			claimNumber: "C1",
			payload: `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair", "images": [` +
				image("a.jpg", 12) + `, {"name": "big.jpg", "size": 4194305, "data": "YWJj"}, ` + image("c.jpg", 12) + `]}`,
			expectedStatus:  http.StatusBadRequest,
			expectedUploads: []string{},
			bodyTester: func(t *testing.T, body map[string]any) {
				errorBodyTester("images", "too_large")(t, body)
				assert.Equal(t, "big.jpg", body["filename"])
				assert.Equal(t, `Image "big.jpg" is larger than 4MB.`, body["error"])
			},
		},
		{
			name:            "InvalidImagesNotArray",
			claimNumber:     "C1",
			payload:         `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair", "images": {"name": "a.jpg"}}`,
			expectedStatus:  http.StatusBadRequest,
			expectedUploads: []string{},
			bodyTester:      errorBodyTester("images", "not_an_array"),
		},
		{
			name:            "InvalidImagesNull",
			claimNumber:     "C1",
			payload:         `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair", "images": null}`,
			expectedStatus:  http.StatusBadRequest,
			expectedUploads: []string{},
			bodyTester:      errorBodyTester("images", "not_an_array"),
		},
		{
			name:            "InvalidJSON",
			claimNumber:     "C1",
			payload:         `{"engineer_review_of_damages": `,
			expectedStatus:  http.StatusBadRequest,
			expectedUploads: []string{},
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body, "error", "contains error key")
				assert.Equal(t, "malformed", body["kind"])
			},
		},
		{
			name:            "BlocksRejected",
			claimNumber:     "C1",
			payload:         `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair", "images": ` + images("a.jpg", "b.jpg") + `}`,
			failBlocks:      http.StatusNotFound,
			expectedStatus:  http.StatusInternalServerError,
			expectedCalls:   1,
			expectedUploads: []string{},
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "remote", body["kind"])
				assert.EqualValues(t, http.StatusNotFound, body["remote_status"])
				assert.Equal(t, `Root API error (404): {"error":"blocks rejected"}`, body["error"])
			},
		},
		{
			name:            "AttachmentRejectedStopsSequence",
			claimNumber:     "C1",
			payload:         `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair", "images": ` + images("a.jpg", "b.jpg", "c.jpg") + `}`,
			failAttachments: map[string]int{"b.jpg": http.StatusUnprocessableEntity},
			expectedStatus:  http.StatusInternalServerError,
			expectedCalls:   3,
			expectedUploads: []string{"a.jpg", "b.jpg"},
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "remote", body["kind"])
				assert.Equal(t, "b.jpg", body["filename"])
				assert.Equal(t, "Root API error (422): attachment rejected: b.jpg", body["error"])
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.platform.reset()
			s.platform.failBlocks = tt.failBlocks
			for name, status := range tt.failAttachments {
				s.platform.failAttachments[name] = status
			}

			req, err := http.NewRequest(
				http.MethodPost,
				fmt.Sprintf("%s/submit-claim/%s", s.server.URL, tt.claimNumber),
				strings.NewReader(tt.payload),
			)
			s.Require().NoError(err, "failed to construct http request")

			req.Header.Add("Content-Type", "application/json")

			resp, err := doRequest(s.T(), req)
			s.Require().NoError(err)

			s.Equal(tt.expectedStatus, resp.code, "incorrect status code")
			body := make(map[string]any)
			s.Require().NoError(json.Unmarshal([]byte(resp.body), &body))

			tt.bodyTester(s.T(), body)

			calls := s.platform.recorded()
			s.Len(calls, tt.expectedCalls, "unexpected number of platform calls")
			s.Equal(tt.expectedUploads, s.platform.uploadedNames(), "uploads out of order")

			for i, call := range calls {
				s.Equal("Bearer "+platformKey, call.Auth)
				s.Equal(tt.claimNumber, call.ClaimID)
				if i == 0 {
					s.Equal(http.MethodPatch, call.Method)
					s.Equal("blocks", call.Resource)
					s.Equal(map[string]any{
						"engineer_review_of_damages": "ok",
						"engineer_suggested_work":    "repair",
					}, call.Body)
				} else {
					s.Equal(http.MethodPost, call.Method)
					s.Equal("attachments", call.Resource)
				}
			}
		})
	}
}

func (s *ServerTestSuite) Test_EngineerReviewAttachmentPayload() {
	data := base64String(1000)
	payload := `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair", "images": [` +
		`{"name": "a.jpg", "type": "image/jpeg", "size": 1000, "data": "` + data + `"}]}`

	req, err := http.NewRequest(
		http.MethodPost,
		s.server.URL+"/submit-claim/C1/",
		strings.NewReader(payload),
	)
	s.Require().NoError(err, "failed to construct http request")
	req.Header.Add("Content-Type", "application/json")

	resp, err := doRequest(s.T(), req)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.code)

	calls := s.platform.recorded()
	s.Require().Len(calls, 2)
	s.Equal(map[string]any{
		"filename":    "a.jpg",
		"mime_type":   "image/jpeg",
		"data_base64": data,
	}, calls[1].Body)
}

func (s *ServerTestSuite) Test_GenericSubmission() {
	tests := []struct {
		name           string
		payload        string
		bodyTester     func(t *testing.T, body map[string]any)
		expectedBlocks map[string]any
		expectedStatus int
		expectedCalls  int
	}{
		{
			name:           "Valid",
			payload:        `{"claimId": "C7", "description": "hail damage", "email": "eng@example.com", "reference": "R-1", "images": ` + images("a.jpg", "b.jpg") + `}`,
			expectedStatus: http.StatusOK,
			expectedCalls:  3,
			expectedBlocks: map[string]any{
				"description": "hail damage",
				"reference":   "R-1",
			},
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Claim blocks updated and attachments uploaded successfully.", body["message"])
				assert.EqualValues(t, 2, body["uploaded"])
			},
		},
		{
			name:           "InvalidMissingClaimID",
			payload:        `{"description": "hail damage", "email": "eng@example.com"}`,
			expectedStatus: http.StatusBadRequest,
			bodyTester:     errorBodyTester("claimId", "required"),
		},
		{
			name:           "InvalidFiveImages",
			payload:        `{"claimId": "C7", "description": "hail damage", "email": "eng@example.com", "images": ` + images("1", "2", "3", "4", "5") + `}`,
			expectedStatus: http.StatusBadRequest,
			bodyTester: func(t *testing.T, body map[string]any) {
				errorBodyTester("images", "too_many")(t, body)
				assert.Equal(t, "You can upload a maximum of 4 images.", body["error"])
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.platform.reset()

			req, err := http.NewRequest(
				http.MethodPost,
				s.server.URL+"/submit-claim",
				strings.NewReader(tt.payload),
			)
			s.Require().NoError(err, "failed to construct http request")

			req.Header.Add("Content-Type", "application/json")

			resp, err := doRequest(s.T(), req)
			s.Require().NoError(err)

			s.Equal(tt.expectedStatus, resp.code, "incorrect status code")
			body := make(map[string]any)
			s.Require().NoError(json.Unmarshal([]byte(resp.body), &body))

			tt.bodyTester(s.T(), body)

			calls := s.platform.recorded()
			s.Len(calls, tt.expectedCalls, "unexpected number of platform calls")
			if tt.expectedBlocks != nil {
				s.Equal(tt.expectedBlocks, calls[0].Body)
				s.Equal("C7", calls[0].ClaimID)
			}
		})
	}
}

func (s *ServerTestSuite) Test_MethodNotAllowed() {
	paths := []string{"/submit-claim", "/submit-claim/", "/submit-claim/C1", "/submit-claim/C1/"}
	methods := []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete}

	for _, path := range paths {
		for _, method := range methods {
			s.Run(method+" "+path, func() {
				req, err := http.NewRequest(method, s.server.URL+path, nil)
				s.Require().NoError(err, "failed to construct http request")

				resp, err := doRequest(s.T(), req)
				s.Require().NoError(err)

				s.Equal(http.StatusMethodNotAllowed, resp.code)
				s.Equal("POST", resp.header.Get("Allow"))

				body := make(map[string]any)
				s.Require().NoError(json.Unmarshal([]byte(resp.body), &body))
				s.Equal("Method not allowed", body["error"])
				s.Equal("method_not_allowed", body["kind"])
				s.Empty(s.platform.recorded())
			})
		}
	}
}

func (s *ServerTestSuite) Test_BodyLimit() {
	payload := `{"engineer_review_of_damages": "` + longString(70*1024) + `", "engineer_suggested_work": "repair"}`

	for _, path := range []string{"/submit-claim/C1", "/submit-claim"} {
		s.Run(path, func() {
			s.platform.reset()

			req, err := http.NewRequest(http.MethodPost, s.server.URL+path, strings.NewReader(payload))
			s.Require().NoError(err, "failed to construct http request")
			req.Header.Add("Content-Type", "application/json")

			resp, err := doRequest(s.T(), req)
			s.Require().NoError(err)

			s.Equal(http.StatusRequestEntityTooLarge, resp.code)
			body := make(map[string]any)
			s.Require().NoError(json.Unmarshal([]byte(resp.body), &body))
			s.Contains(body, "error")
			s.Empty(s.platform.recorded())
		})
	}
}

func (s *ServerTestSuite) Test_EscapedClaimNumber() {
	payload := `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair", "images": ` + images("a.jpg") + `}`

	for _, path := range []string{"/submit-claim/C%2F1", "/submit-claim/C%2F1/"} {
		s.Run(path, func() {
			s.platform.reset()

			req, err := http.NewRequest(http.MethodPost, s.server.URL+path, strings.NewReader(payload))
			s.Require().NoError(err, "failed to construct http request")
			req.Header.Add("Content-Type", "application/json")

			resp, err := doRequest(s.T(), req)
			s.Require().NoError(err)
			s.Equal(http.StatusOK, resp.code, resp.body)

			calls := s.platform.recorded()
			s.Require().Len(calls, 2)
			for _, call := range calls {
				s.Equal("C/1", call.ClaimID)
			}
		})
	}
}

// Full size images with the limits a deployment gets when it sets none
func (s *ServerTestSuite) Test_MaxSizeSubmission() {
	cfg := *s.config
	cfg.Limits = &config.LimitsConfig{
		GenericBody: config.DefaultGenericBodyLimit,
		ClaimBody:   config.DefaultClaimBodyLimit,
	}

	e, err := newRouter(&cfg, nil)
	s.Require().NoError(err, "failed to construct router")
	server := httptest.NewServer(e)
	defer server.Close()

	maxImages := func(count int) string {
		parts := make([]string, 0, count)
		for i := range count {
			parts = append(parts, image(fmt.Sprintf("%d.jpg", i+1), int(types.MaxAttachmentBytes)))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}

	tests := []struct {
		name    string
		path    string
		payload string
		uploads int
	}{
		{
			name:    "Generic",
			path:    "/submit-claim",
			payload: `{"claimId": "C7", "description": "hail damage", "email": "eng@example.com", "images": ` + maxImages(intake.GenericForm.MaxAttachments) + `}`,
			uploads: intake.GenericForm.MaxAttachments,
		},
		{
			name:    "EngineerReview",
			path:    "/submit-claim/C1",
			payload: `{"engineer_review_of_damages": "ok", "engineer_suggested_work": "repair", "images": ` + maxImages(intake.EngineerReviewForm.MaxAttachments) + `}`,
			uploads: intake.EngineerReviewForm.MaxAttachments,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.platform.reset()

			req, err := http.NewRequest(http.MethodPost, server.URL+tt.path, strings.NewReader(tt.payload))
			s.Require().NoError(err, "failed to construct http request")
			req.Header.Add("Content-Type", "application/json")

			resp, err := doRequest(s.T(), req)
			s.Require().NoError(err)

			s.Equal(http.StatusOK, resp.code, "full size submission rejected")
			s.Len(s.platform.uploadedNames(), tt.uploads)
		})
	}
}

func (s *ServerTestSuite) Test_Health() {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/health", nil)
	s.Require().NoError(err)

	resp, err := doRequest(s.T(), req)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.code)
}
