package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mediaconv/internal/apperr"
	"mediaconv/internal/logger"
	"mediaconv/internal/worker"
)

// classify converts err into the apperr taxonomy used on the wire.
func classify(err error) *apperr.Error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, worker.ErrBusy):
		return apperr.Wrap(apperr.KindBusy, worker.ErrBusy.Error(), err)
	case errors.As(err, &maxErr):
		return apperr.Wrap(apperr.KindPayloadTooLarge, "File too large", err)
	}
	return apperr.Wrap(apperr.KindInternal, "", err)
}

// writeError aborts the request with {"error": message, "code": kind}.
// Classified errors expose only their own message; the cause is logged.
func writeError(c *gin.Context, err error) {
	ae := classify(err)
	msg := ae.Message
	if msg == "" {
		msg = err.Error()
	}
	log := logger.FromContext(c.Request.Context())
	if ae.Kind == apperr.KindInternal || ae.Kind == apperr.KindExternalService {
		log.Error("request failed", "code", ae.Kind.Code(), "error", err)
	} else {
		log.Info("request rejected", "code", ae.Kind.Code(), "error", err)
	}
	c.AbortWithStatusJSON(ae.Kind.Status(), gin.H{"error": msg, "code": ae.Kind.Code()})
}
