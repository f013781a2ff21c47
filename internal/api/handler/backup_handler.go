package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gerenciadorpro/roster-api/internal/api/metrics"
	"github.com/gerenciadorpro/roster-api/internal/core/domain"
	"github.com/gerenciadorpro/roster-api/internal/core/ports"
)

// BackupHandler handles snapshot export, restore, and the cloud copies.
type BackupHandler struct {
	service ports.BackupService
}

func NewBackupHandler(service ports.BackupService) *BackupHandler {
	return &BackupHandler{service: service}
}

type cloudRestoreRequest struct {
	Key string `json:"key" validate:"required"`
}

type cloudUploadResponse struct {
	Key string `json:"key"`
}

type backupObjectResponse struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Export handles GET /v1/backup. The response is the backup document itself,
// served as a download.
//
// @Summary      Download a backup of the roster
// @Tags         backup
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/backup [get]
func (h *BackupHandler) Export(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	data, err := h.service.Export(c.Request().Context(), uid)
	if err != nil {
		metrics.BackupOperationsTotal.WithLabelValues("export", "error").Inc()
		return err
	}
	metrics.BackupOperationsTotal.WithLabelValues("export", "ok").Inc()

	filename := "backup_gerenciador_clientes_" + time.Now().Format("2006-01-02") + ".json"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// Restore handles POST /v1/restore. The request body is a backup document.
//
// @Summary      Restore the roster from a backup document
// @Tags         backup
// @Accept       json
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/restore [post]
func (h *BackupHandler) Restore(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	if err := h.service.Restore(c.Request().Context(), uid, c.Request().Body); err != nil {
		metrics.BackupOperationsTotal.WithLabelValues("restore", "error").Inc()
		return err
	}
	metrics.BackupOperationsTotal.WithLabelValues("restore", "ok").Inc()
	metrics.MutationsTotal.WithLabelValues("restore").Inc()

	return c.NoContent(http.StatusNoContent)
}

// CloudUpload handles POST /v1/backup/cloud.
//
// @Summary      Upload a backup to cloud storage
// @Tags         backup
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  cloudUploadResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/backup/cloud [post]
func (h *BackupHandler) CloudUpload(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	key, err := h.service.CloudUpload(c.Request().Context(), uid)
	if err != nil {
		metrics.BackupOperationsTotal.WithLabelValues("cloud_upload", "error").Inc()
		return err
	}
	metrics.BackupOperationsTotal.WithLabelValues("cloud_upload", "ok").Inc()

	return c.JSON(http.StatusCreated, cloudUploadResponse{Key: key})
}

// CloudList handles GET /v1/backup/cloud.
//
// @Summary      List cloud backups, newest first
// @Tags         backup
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   backupObjectResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/backup/cloud [get]
func (h *BackupHandler) CloudList(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	objects, err := h.service.CloudList(c.Request().Context(), uid)
	if err != nil {
		return err
	}

	out := make([]backupObjectResponse, len(objects))
	for i, obj := range objects {
		out[i] = backupObjectResponse{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified}
	}
	return c.JSON(http.StatusOK, out)
}

// CloudRestore handles POST /v1/restore/cloud. The key must belong to the
// authenticated user; keys are namespaced by user id.
//
// @Summary      Restore the roster from a cloud backup
// @Tags         backup
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  cloudRestoreRequest  true  "Cloud object key"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/restore/cloud [post]
func (h *BackupHandler) CloudRestore(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	var req cloudRestoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if !strings.HasPrefix(req.Key, uid+"/") {
		return domain.ErrForbidden
	}

	if err := h.service.CloudRestore(c.Request().Context(), uid, req.Key); err != nil {
		metrics.BackupOperationsTotal.WithLabelValues("cloud_restore", "error").Inc()
		return err
	}
	metrics.BackupOperationsTotal.WithLabelValues("cloud_restore", "ok").Inc()
	metrics.MutationsTotal.WithLabelValues("restore").Inc()

	return c.NoContent(http.StatusNoContent)
}
