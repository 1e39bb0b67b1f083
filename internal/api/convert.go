package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mediaconv/internal/apperr"
	"mediaconv/internal/logger"
	"mediaconv/internal/models"
	"mediaconv/internal/scratch"
	"mediaconv/internal/service/conversion"
)

// limitBody caps the request body at the configured upload size.
func (h *Handler) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > h.maxUpload {
			writeError(c, apperr.New(apperr.KindPayloadTooLarge, "File too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
		c.Next()
	}
}

func (h *Handler) convert(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(c, apperr.Wrap(apperr.KindPayloadTooLarge, "File too large", err))
		case errors.Is(err, http.ErrNotMultipart):
			writeError(c, apperr.New(apperr.KindMissingInput, "No file uploaded"))
		default:
			writeError(c, apperr.Wrap(apperr.KindInvalidRequest, "invalid multipart form", err))
		}
		return
	}
	defer func() {
		if err := c.Request.MultipartForm.RemoveAll(); err != nil {
			log.Warn("remove multipart temp files failed", "error", err)
		}
	}()

	file, err := c.FormFile("file")
	if err != nil {
		writeError(c, apperr.New(apperr.KindMissingInput, "No file uploaded"))
		return
	}
	if strings.TrimSpace(file.Filename) == "" {
		writeError(c, apperr.New(apperr.KindMissingInput, "No file selected"))
		return
	}
	filename := scratch.SecureFilename(file.Filename)
	if filename == "" {
		writeError(c, apperr.New(apperr.KindInvalidRequest, "Invalid file name"))
		return
	}
	mode, err := models.ParseMode(c.PostForm("conversion_type"))
	if err != nil {
		writeError(c, apperr.Wrap(apperr.KindInvalidRequest,
			fmt.Sprintf("Invalid conversion type: %q", c.PostForm("conversion_type")), err))
		return
	}
	summarize := c.PostForm("summarize") == "true"

	record := &models.ConversionRecord{
		RequestID: requestID(c),
		Mode:      string(mode),
		FileName:  filename,
		Size:      file.Size,
		Summarize: summarize,
		Status:    models.ConversionSucceeded,
	}
	var runErr error
	defer func() {
		if runErr != nil {
			record.Status = models.ConversionFailed
			record.ErrorCode = classify(runErr).Kind.Code()
		}
		record.DurationMS = time.Since(start).Milliseconds()
		h.record(c, record)
	}()

	release, err := h.limiter.TryAcquire()
	if err != nil {
		runErr = err
		writeError(c, err)
		return
	}
	defer release()

	ws, err := h.scratch.Acquire()
	if err != nil {
		runErr = fmt.Errorf("acquire workspace: %w", err)
		writeError(c, runErr)
		return
	}
	defer func() {
		if err := ws.Release(); err != nil {
			log.Error("release workspace failed", "workspace", ws.ID, "error", err)
		}
	}()

	uploadPath := ws.Path(filename)
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		runErr = fmt.Errorf("save upload: %w", err)
		writeError(c, runErr)
		return
	}
	log.Info("upload saved", "file", filename, "size", file.Size, "mode", mode, "workspace", ws.ID)

	result, err := h.converter.Run(ctx, models.ConversionRequest{
		RequestID: record.RequestID,
		FilePath:  uploadPath,
		FileName:  filename,
		WorkDir:   ws.Dir,
		Mode:      mode,
		Summarize: summarize,
	})
	if err != nil {
		runErr = err
		writeError(c, err)
		return
	}

	if result.AudioPath != "" {
		c.FileAttachment(result.AudioPath, conversion.ConvertedAudioName)
		return
	}
	resp := gin.H{"text": result.Text}
	if result.Summary != "" {
		resp["summary"] = result.Summary
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) record(c *gin.Context, rec *models.ConversionRecord) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.Record(c.Request.Context(), rec); err != nil {
		logger.FromContext(c.Request.Context()).Warn("record conversion failed", "error", err)
	}
}
