package routes

import (
	"encoding/base64"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/claimreview/claimintake/internal/validator"
)

// Claim ids with this prefix answer 404, handy for exercising the intake failure path
const MissingClaimPrefix = "missing-"

type Error struct {
	Fields  *map[string]string `json:"fields,omitempty"`
	Message string             `json:"error"`
}

func StringError(err string) Error {
	return Error{Message: err}
}

func ValidationError(err error) Error {
	fields := validator.FieldErrors(err)
	if fields == nil {
		return Error{Message: "validation error"}
	}
	return Error{Message: "validation error", Fields: &fields}
}

type AttachmentRequest struct {
	ClaimID    string `param:"claim_id" json:"-"           validate:"required"`
	Filename   string `json:"filename"    validate:"required"`
	MimeType   string `json:"mime_type"   validate:"required"`
	DataBase64 string `json:"data_base64" validate:"required,base64"`
}

type BlocksResponse struct {
	ClaimID string   `json:"claim_id"`
	Updated []string `json:"updated"`
}

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) claimID(c echo.Context) (string, error) {
	claimID := c.Param("claim_id")
	if claimID == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, StringError("missing claim id"))
	}
	if strings.HasPrefix(claimID, MissingClaimPrefix) {
		return "", echo.NewHTTPError(http.StatusNotFound, StringError("claim not found"))
	}
	return claimID, nil
}

// PATCH /v1/insurance/claims/:claim_id/blocks
func (h *Handler) UpdateBlocks(c echo.Context) error {
	claimID, err := h.claimID(c)
	if err != nil {
		return err
	}

	blocks := map[string]string{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &blocks); err != nil {
		return echo.NewHTTPError(
			http.StatusBadRequest,
			StringError("blocks must be an object of string values"),
		)
	}
	if len(blocks) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, StringError("no blocks to update"))
	}

	h.store.UpdateBlocks(claimID, blocks)

	updated := make([]string, 0, len(blocks))
	for k := range blocks {
		updated = append(updated, k)
	}
	sort.Strings(updated)

	return c.JSON(http.StatusOK, BlocksResponse{ClaimID: claimID, Updated: updated})
}

// POST /v1/insurance/claims/:claim_id/attachments
func (h *Handler) UploadAttachment(c echo.Context) error {
	if _, err := h.claimID(c); err != nil {
		return err
	}

	var rdata AttachmentRequest
	if err := c.Bind(&rdata); err != nil {
		return echo.NewHTTPError(
			http.StatusBadRequest,
			StringError("failed parsing request data"),
		)
	}

	if err := c.Validate(rdata); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, ValidationError(err))
	}

	data, err := base64.StdEncoding.DecodeString(rdata.DataBase64)
	if err != nil {
		// unreachable under nominal conditions
		return echo.NewHTTPError(http.StatusUnprocessableEntity, Error{
			Message: "failed to decode base64",
			Fields:  &map[string]string{"data_base64": "must be valid base64"},
		})
	}

	stored := StoredAttachment{
		UploadedAt: time.Now().UTC(),
		ID:         uuid.NewString(),
		Filename:   rdata.Filename,
		MimeType:   rdata.MimeType,
		Size:       len(data),
	}
	h.store.AddAttachment(rdata.ClaimID, stored)

	return c.JSON(http.StatusCreated, stored)
}

// GET /v1/insurance/claims/:claim_id
func (h *Handler) GetClaim(c echo.Context) error {
	claimID, err := h.claimID(c)
	if err != nil {
		return err
	}

	claim, ok := h.store.Get(claimID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, StringError("claim not found"))
	}

	return c.JSON(http.StatusOK, claim)
}

// Wires the handlers under group, which should already carry auth
func (h *Handler) AddRoutes(group *echo.Group) {
	claimGroup := group.Group("/claims/:claim_id")

	claimGroup.GET("/", h.GetClaim)
	claimGroup.PATCH("/blocks/", h.UpdateBlocks)
	claimGroup.POST("/attachments/", h.UploadAttachment)
}
