package handler

import (
	"net/http"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/auth"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/service"
	"go.uber.org/zap"
)

type BackupHandler struct {
	backupService *service.BackupService
	logger        *zap.Logger
}

func NewBackupHandler(backupService *service.BackupService, logger *zap.Logger) *BackupHandler {
	return &BackupHandler{backupService: backupService, logger: logger}
}

// Create godoc
// @Summary Write a backup of the caller's customers
// @Tags Backups
// @Produce json
// @Success 201 {object} domain.BackupDTO
// @Security BearerAuth
// @Router /backups [post]
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	backup, err := h.backupService.Export(r.Context(), auth.OwnerFromContext(r.Context()))
	if err != nil {
		respondDomainError(w, h.logger, err, "export backup")
		return
	}
	respondJSON(w, http.StatusCreated, backup)
}

// List godoc
// @Summary List stored backups, newest first
// @Tags Backups
// @Produce json
// @Success 200 {array} domain.BackupDTO
// @Security BearerAuth
// @Router /backups [get]
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backupService.List(r.Context(), auth.OwnerFromContext(r.Context()))
	if err != nil {
		respondDomainError(w, h.logger, err, "list backups")
		return
	}
	respondJSON(w, http.StatusOK, backups)
}

// Import godoc
// @Summary Restore a stored backup
// @Description Records with an existing id are overwritten
// @Tags Backups
// @Accept json
// @Produce json
// @Param request body domain.ImportBackupRequest true "Backup key"
// @Success 200 {object} domain.ImportResultDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /backups/import [post]
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req domain.ImportBackupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.backupService.ImportFromStorage(r.Context(), auth.OwnerFromContext(r.Context()), req.Key)
	if err != nil {
		respondDomainError(w, h.logger, err, "import backup")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Upload godoc
// @Summary Restore a backup document sent in the request body
// @Description The body is the JSON array written by a backup export
// @Tags Backups
// @Accept json
// @Produce json
// @Success 200 {object} domain.ImportResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Security BearerAuth
// @Router /backups/upload [post]
func (h *BackupHandler) Upload(w http.ResponseWriter, r *http.Request) {
	result, err := h.backupService.Import(r.Context(), auth.OwnerFromContext(r.Context()), r.Body)
	if err != nil {
		respondDomainError(w, h.logger, err, "import backup")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
