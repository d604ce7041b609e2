package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	internalerrors "github.com/banbrick/collector/internal/errors"
	middlewareinternal "github.com/banbrick/collector/internal/middleware"
	"github.com/banbrick/collector/internal/service"
)

func Router(
	logger *zap.SugaredLogger,
	collector *service.CollectorService,
) chi.Router {
	router := chi.NewRouter()
	router.Use(middlewareinternal.LoggingMiddleware(logger))
	router.Use(middlewareinternal.GzipMiddleware)
	router.Use(middlewareinternal.DecompressMiddleware)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(15 * time.Second))
	router.Post("/collect", func(w http.ResponseWriter, r *http.Request) {
		CollectHandler(w, r, collector, logger)
	})
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		PingHandler(w, r, collector, logger)
	})
	return router
}

// CollectHandler accepts a value submission envelope and maps the ingestion
// outcome onto the response contract: 400 bad envelope, 401 bad key, 404
// unresolvable project or item, 406 unconvertible value, 202 recorded.
func CollectHandler(
	w http.ResponseWriter,
	r *http.Request,
	collector *service.CollectorService,
	logger *zap.SugaredLogger,
) {
	req, err := DecodeEnvelope(r.Body)
	if err != nil {
		WriteResponse(w, http.StatusBadRequest, false, err.Error())
		return
	}

	result, err := collector.Collect(r.Context(), req, r.RemoteAddr)
	if err != nil {
		var coercionErr *internalerrors.CoercionError
		var fieldErr *internalerrors.FieldError
		switch {
		case errors.Is(err, internalerrors.ErrAuthenticationFailed):
			WriteResponse(w, http.StatusUnauthorized, false, err.Error())
		case errors.Is(err, internalerrors.ErrProjectNotFound):
			WriteResponse(w, http.StatusNotFound, false,
				fmt.Sprintf("enabled project(%s) not found", req.Project))
		case errors.Is(err, internalerrors.ErrItemNotFound):
			WriteResponse(w, http.StatusNotFound, false,
				fmt.Sprintf("enabled item(%s) not found", req.Item))
		case errors.As(err, &coercionErr), errors.As(err, &fieldErr):
			value := ""
			if req.Value != nil {
				value = *req.Value
			}
			WriteResponse(w, http.StatusNotAcceptable, false,
				fmt.Sprintf("value(%s) of item(%s) save failed", value, req.Item))
		default:
			logger.Errorf("collect failed: %v", err)
			WriteResponse(w, http.StatusInternalServerError, false, "internal error")
		}
		return
	}

	WriteResponse(w, http.StatusAccepted, true, result)
}

func PingHandler(w http.ResponseWriter, r *http.Request, collector *service.CollectorService, logger *zap.SugaredLogger) {
	if err := collector.Ping(r.Context()); err != nil {
		logger.Errorf("storage ping failed: %v", err)
		http.Error(w, "Failed to connect to storage: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
