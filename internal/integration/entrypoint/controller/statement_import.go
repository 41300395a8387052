package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/application/usecase/statementimport"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
	"github.com/finance-tracker/importer/internal/integration/entrypoint/dto"
)

const (
	formFieldFile          = "file"
	formFieldConfiguration = "configuration"
)

// ImportController handles statement uploads and the import history.
type ImportController struct {
	importUseCase  *statementimport.ImportStatementUseCase
	historyUseCase *statementimport.ListImportBatchesUseCase
	maxUploadBytes int64
}

// NewImportController creates a new import controller instance.
func NewImportController(
	importUseCase *statementimport.ImportStatementUseCase,
	historyUseCase *statementimport.ListImportBatchesUseCase,
	maxUploadBytes int64,
) *ImportController {
	return &ImportController{
		importUseCase:  importUseCase,
		historyUseCase: historyUseCase,
		maxUploadBytes: maxUploadBytes,
	}
}

// Import handles POST /imports requests.
// The body is multipart: "file" carries the statement, "configuration" the JSON ImportConfiguration.
func (c *ImportController) Import(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	if c.maxUploadBytes > 0 {
		// Leave room for the configuration part and multipart framing
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadBytes+1<<20)
	}

	header, err := ctx.FormFile(formFieldFile)
	if err != nil {
		c.uploadError(ctx, err)
		return
	}

	content, err := c.readUpload(header)
	if err != nil {
		c.uploadError(ctx, err)
		return
	}

	var req dto.ImportConfigurationRequest
	if err := json.Unmarshal([]byte(ctx.PostForm(formFieldConfiguration)), &req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid import configuration",
			Code:    string(domainerror.ErrCodeInvalidImportConfig),
			Details: err.Error(),
		})
		return
	}

	cfg, err := req.ToEntity()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid import configuration",
			Code:    string(domainerror.ErrCodeInvalidImportConfig),
			Details: err.Error(),
		})
		return
	}

	// The acting user comes from the token; a configuration may only name that same user.
	if cfg.UserID != uuid.Nil && cfg.UserID != userID {
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error: "Cannot import statements for another user",
			Code:  string(domainerror.ErrCodeUserNotResolved),
		})
		return
	}

	result, err := c.importUseCase.Execute(ctx.Request.Context(), statementimport.ImportStatementInput{
		FileName: header.Filename,
		Content:  content,
		Config:   cfg,
	})
	if err != nil {
		c.handleImportError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToImportResultResponse(result))
}

// List handles GET /imports requests.
func (c *ImportController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	output, err := c.historyUseCase.Execute(ctx.Request.Context(), statementimport.ListImportBatchesInput{UserID: userID})
	if err != nil {
		slog.Error("Failed to list imports", "user_id", userID, "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToImportBatchListResponse(output.Batches))
}

var errUploadTooLarge = errors.New("statement file is too large")

func (c *ImportController) readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	reader := io.Reader(file)
	if c.maxUploadBytes > 0 {
		reader = io.LimitReader(file, c.maxUploadBytes+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if c.maxUploadBytes > 0 && int64(len(content)) > c.maxUploadBytes {
		return nil, errUploadTooLarge
	}
	return content, nil
}

func (c *ImportController) uploadError(ctx *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.Is(err, errUploadTooLarge) || errors.As(err, &maxBytesErr) {
		ctx.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
			Error: fmt.Sprintf("Statement file exceeds %d bytes", c.maxUploadBytes),
			Code:  string(domainerror.ErrCodeUnreadableUpload),
		})
		return
	}

	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "A statement file is required in the 'file' form field",
		Code:    string(domainerror.ErrCodeUnreadableUpload),
		Details: err.Error(),
	})
}

// handleImportError separates rejections, fatal parse failures and rolled back commits.
func (c *ImportController) handleImportError(ctx *gin.Context, err error) {
	var importErr *domainerror.ImportError
	if errors.As(err, &importErr) {
		ctx.JSON(c.getStatusCodeForImportError(importErr.Code), dto.ErrorResponse{
			Error:   importErr.Message,
			Code:    string(importErr.Code),
			Details: detailsOf(importErr),
		})
		return
	}

	slog.Error("Statement import failed", "error", err)
	internalError(ctx)
}

// getStatusCodeForImportError maps import error codes to HTTP status codes.
func (c *ImportController) getStatusCodeForImportError(code domainerror.ImportErrorCode) int {
	switch code {
	case domainerror.ErrCodeUserNotResolved:
		return http.StatusUnauthorized
	case domainerror.ErrCodeDefaultReferenceNotFound:
		return http.StatusUnprocessableEntity
	case domainerror.ErrCodeInvalidImportConfig,
		domainerror.ErrCodePercentagesNotWhole,
		domainerror.ErrCodeInvalidPercentage,
		domainerror.ErrCodeDuplicateResponsible,
		domainerror.ErrCodeNoCategoryPath,
		domainerror.ErrCodeMissingCSVConfiguration,
		domainerror.ErrCodeEmptyResponsibilities:
		return http.StatusBadRequest
	case domainerror.ErrCodeUnrecognizedFormat,
		domainerror.ErrCodeMalformedOFX,
		domainerror.ErrCodeDuplicateUnderFail,
		domainerror.ErrCodeMissingColumn,
		domainerror.ErrCodeUnreadableDelimitedText,
		domainerror.ErrCodeUnreadableUpload:
		return http.StatusUnprocessableEntity
	case domainerror.ErrCodeCommitConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// detailsOf adds the rollback note to commit failures.
func detailsOf(err *domainerror.ImportError) string {
	if err.IsCommitFailure() {
		return "no transactions were created; the import was rolled back"
	}
	return ""
}
