package api

import (
	"errors"
	"net/http"
	"time"

	"LoanPredictor/internal/domain/models"
	domrepo "LoanPredictor/internal/domain/repository"
	"LoanPredictor/internal/usecase"
	xhttp "LoanPredictor/pkg/http"
	"LoanPredictor/pkg/http/middleware"
	xlogger "LoanPredictor/pkg/logger"
	"LoanPredictor/pkg/util"

	"github.com/labstack/echo/v4"
)

// decisionsWindow is the lookback used when /api/decisions has no "from".
const decisionsWindow = 24 * time.Hour

// RateLimit configures the token bucket in front of the scoring routes.
// A nil Limiter disables it.
type RateLimit struct {
	Limiter      middleware.Allower
	Capacity     float64
	RefillPerSec float64
}

// PredictEchoHandler serves the scoring, health, model and history routes.
type PredictEchoHandler struct {
	logger   *xlogger.Logger
	assessor *usecase.LoanAssessor
	store    domrepo.DecisionStore
	limit    RateLimit
	now      func() time.Time
}

// NewPredictEchoHandler creates the handler. store may be nil when decision
// history is disabled.
func NewPredictEchoHandler(logger *xlogger.Logger, assessor *usecase.LoanAssessor, store domrepo.DecisionStore, limit RateLimit) *PredictEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PredictEchoHandler{
		logger:   logger,
		assessor: assessor,
		store:    store,
		limit:    limit,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (h *PredictEchoHandler) RegisterRoutes(e *echo.Echo) {
	var scoring []echo.MiddlewareFunc
	if h.limit.Limiter != nil {
		scoring = append(scoring, middleware.RateLimit(h.limit.Limiter, h.limit.Capacity, h.limit.RefillPerSec))
	}

	e.POST("/predict", h.Predict, scoring...)
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.POST("/predict", h.Predict, scoring...)
	g.GET("/health", h.Health)
	g.GET("/model", h.Model)
	g.GET("/decisions", h.Decisions)
}

// Predict scores one application.
func (h *PredictEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.logger.Debug("predict request rejected", xlogger.Error(verr))
		return xhttp.ErrorResponse(c, verr)
	}

	res, err := h.assessor.Assess(c.Request().Context(), req.ToInput())
	if err != nil {
		return h.fail(c, "predict", err)
	}
	return xhttp.SuccessResponse(c, models.NewPredictResponse(res))
}

// Health always reports healthy; it does not check dependencies.
func (h *PredictEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, xhttp.HealthResponse{Status: "healthy"})
}

func (h *PredictEchoHandler) Model(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.assessor.Info())
}

// Decisions lists recent decisions, newest first.
func (h *PredictEchoHandler) Decisions(c echo.Context) error {
	if h.store == nil {
		return xhttp.ErrorResponse(c, xhttp.ServiceUnavailableError(xhttp.CodeServiceUnavailable, "decision history disabled"))
	}

	req := &models.DecisionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ErrorResponse(c, verr)
	}
	from, to, err := util.ParseRange(req.From, req.To, decisionsWindow, h.now())
	if err != nil {
		return xhttp.ErrorResponse(c, xhttp.InvalidInputError("from", err.Error()))
	}

	rows, err := h.store.List(c.Request().Context(), from, to, req.Limit)
	if err != nil {
		return h.fail(c, "decisions", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PredictEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := ToAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", xlogger.String("code", appErr.Code), xlogger.Error(err))
	} else {
		h.logger.Debug(op+" rejected", xlogger.String("code", appErr.Code), xlogger.Error(err))
	}
	return xhttp.ErrorResponse(c, appErr)
}

// ToAppError maps assessment errors to their HTTP form. Only the generic
// client message leaves the process; the cause stays on Err for logging.
func ToAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch usecase.ErrorKind(err) {
	case "invalid_input":
		return xhttp.InvalidInputError("", "invalid input").WithError(err)
	case "division_by_zero":
		return xhttp.NewAppError(xhttp.CodeDivisionByZero, "monthly_income",
			"monthly income must be greater than zero", http.StatusBadRequest).WithError(err)
	case "model_not_ready":
		return xhttp.ServiceUnavailableError(xhttp.CodeModelNotReady, "model not ready").WithError(err)
	default:
		return xhttp.InternalError("internal server error").WithError(err)
	}
}
