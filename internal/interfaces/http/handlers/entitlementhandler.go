package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	"github.com/orris-inc/licensegate/internal/shared/constants"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// EntitlementHandler serves the store-facing license endpoints. Every route
// runs behind a middleware that has already authenticated the store.
type EntitlementHandler struct {
	service entitlementService
	logger  logger.Interface
}

func NewEntitlementHandler(service entitlementService, logger logger.Interface) *EntitlementHandler {
	return &EntitlementHandler{
		service: service,
		logger:  logger,
	}
}

// ReserveLicense handles POST /api/v1/licenses/reserve
//
// @Summary Reserve a license slot
// @Description Atomically claims one slot against the store's plan limit before a license is created
// @Tags Licenses
// @Accept json
// @Produce json
// @Param X-Store-Token header string true "Store token"
// @Param X-Timestamp header string true "Unix seconds"
// @Param X-Signature header string true "hex(HMAC-SHA256(secret_material, token:timestamp:body))"
// @Param request body ReserveLicenseRequest true "Reservation"
// @Success 200 {object} utils.APIResponse{data=dto.ReserveResult}
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse{data=dto.ReserveResult}
// @Failure 404 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Router /licenses/reserve [post]
func (h *EntitlementHandler) ReserveLicense(c *gin.Context) {
	var req ReserveLicenseRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.service.Reserve(c.Request.Context(), dto.ReserveRequest{
		StoreToken:     c.GetString(constants.ContextKeyStoreToken),
		LicenseKeyHash: req.LicenseKeyHash,
		ProductID:      req.ProductID,
		SourceAddress:  c.ClientIP(),
	})
	if err != nil {
		if result != nil {
			utils.DeniedResponse(c, err, result)
			return
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ReleaseLicense handles POST /api/v1/licenses/release
//
// @Summary Release a license slot
// @Description Returns one slot to the store. The count never drops below zero.
// @Tags Licenses
// @Accept json
// @Produce json
// @Param X-Store-Token header string true "Store token"
// @Param X-Timestamp header string true "Unix seconds"
// @Param X-Signature header string true "Request signature"
// @Param request body ReleaseLicenseRequest true "Release"
// @Success 200 {object} utils.APIResponse{data=dto.ReleaseResult}
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /licenses/release [post]
func (h *EntitlementHandler) ReleaseLicense(c *gin.Context) {
	var req ReleaseLicenseRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.service.Release(c.Request.Context(), dto.ReleaseRequest{
		StoreToken:     c.GetString(constants.ContextKeyStoreToken),
		LicenseKeyHash: req.LicenseKeyHash,
		SourceAddress:  c.ClientIP(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// SyncLicenses handles POST /api/v1/licenses/sync
//
// @Summary Reconcile the client's count
// @Description Compares the store's local count with the ledger. The ledger count is never overwritten.
// @Tags Licenses
// @Accept json
// @Produce json
// @Param X-Store-Token header string true "Store token"
// @Param X-Timestamp header string true "Unix seconds"
// @Param X-Signature header string true "Request signature"
// @Param request body SyncLicensesRequest true "Reported count"
// @Success 200 {object} utils.APIResponse{data=dto.SyncResult}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /licenses/sync [post]
func (h *EntitlementHandler) SyncLicenses(c *gin.Context) {
	var req SyncLicensesRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.service.Sync(c.Request.Context(), dto.SyncRequest{
		StoreToken:    c.GetString(constants.ContextKeyStoreToken),
		ReportedCount: *req.ReportedCount,
		SourceAddress: c.ClientIP(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetStoreStatus handles GET /api/v1/stores/:token/status
//
// @Summary Store entitlement status
// @Description Current plan, count, limit and upgrade hints. Unsigned but rate limited.
// @Tags Stores
// @Produce json
// @Param token path string true "Store token"
// @Param X-Plugin-Version header string false "Installed plugin version"
// @Success 200 {object} utils.APIResponse{data=dto.StatusResult}
// @Failure 404 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Router /stores/{token}/status [get]
func (h *EntitlementHandler) GetStoreStatus(c *gin.Context) {
	pluginVersion := c.GetHeader(constants.HeaderPluginVersion)
	if pluginVersion == "" {
		pluginVersion = c.Query("plugin_version")
	}

	result, err := h.service.Status(c.Request.Context(), dto.StatusRequest{
		StoreToken:    c.GetString(constants.ContextKeyStoreToken),
		PluginVersion: pluginVersion,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return false
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return false
	}
	return true
}
