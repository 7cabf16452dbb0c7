package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/shared/constants"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

const maxNotificationBytes = 64 << 10

// AdminHandler serves the subscription system's notification webhook and
// the operator read endpoints.
type AdminHandler struct {
	notifications notificationService
	stores        storeAdminService
	logger        logger.Interface
}

func NewAdminHandler(notifications notificationService, stores storeAdminService, logger logger.Interface) *AdminHandler {
	return &AdminHandler{
		notifications: notifications,
		stores:        stores,
		logger:        logger,
	}
}

// ReceiveNotification handles POST /api/v1/admin/notifications
//
// @Summary Apply a licensing notification
// @Description Accepts license.activated, license.deactivated and plan.changed from the subscription system
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body object true "Notification"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/notifications [post]
func (h *AdminHandler) ReceiveNotification(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBytes))
	if err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("unreadable request body"))
		return
	}

	result, err := h.notifications.HandlePayload(c.Request.Context(), payload)
	if err != nil {
		h.logger.Warnw("notification rejected",
			"error", err,
			"admin", c.GetString(constants.ContextKeyAdminSub),
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "notification applied", result)
}

// GetStore handles GET /api/v1/admin/stores/:token
//
// @Summary Store detail
// @Description Store state without signing material
// @Tags Admin
// @Produce json
// @Security Bearer
// @Param token path string true "Store token"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/stores/{token} [get]
func (h *AdminHandler) GetStore(c *gin.Context) {
	result, err := h.stores.StoreDetail(c.Request.Context(), c.Param("token"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetStoreUsage handles GET /api/v1/admin/stores/:token/usage
//
// @Summary Daily store usage
// @Description Reserved, released, denied and sync counts per UTC day
// @Tags Admin
// @Produce json
// @Security Bearer
// @Param token path string true "Store token"
// @Param days query int false "Days back, 1-90" default(30)
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/stores/{token}/usage [get]
func (h *AdminHandler) GetStoreUsage(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.ErrorResponseWithError(c, apperrors.NewValidationError("days must be an integer"))
			return
		}
		days = parsed
	}

	result, err := h.stores.StoreUsage(c.Request.Context(), c.Param("token"), days)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}
