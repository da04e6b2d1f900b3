package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"LoanPredictor/internal/domain/models"
	"LoanPredictor/internal/handler/api"
	"LoanPredictor/internal/usecase"
	xhttp "LoanPredictor/pkg/http"
	xlogger "LoanPredictor/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	maxFrameBytes = 64 * 1024
	writeWait     = 5 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PredictWSHandler scores applications streamed over a WebSocket. Every
// text frame gets exactly one reply, in order.
type PredictWSHandler struct {
	logger   *xlogger.Logger
	assessor *usecase.LoanAssessor
}

func NewPredictWSHandler(logger *xlogger.Logger, assessor *usecase.LoanAssessor) *PredictWSHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PredictWSHandler{logger: logger, assessor: assessor}
}

func (h *PredictWSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/predict", h.Serve)
}

func (h *PredictWSHandler) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already wrote the HTTP error
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	conn.SetReadLimit(maxFrameBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writes := make(chan interface{})
	done := make(chan struct{})
	go h.writeLoop(conn, writes, done)

	h.logger.Debug("websocket client connected", xlogger.String("remote", c.RealIP()))
	defer func() {
		close(writes)
		<-done
	}()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read failed", xlogger.Error(err))
			}
			return nil
		}
		if mt != websocket.TextMessage {
			continue
		}

		reply := h.handleFrame(ctx, data)
		select {
		case writes <- reply:
		case <-done:
			return nil
		}
	}
}

// writeLoop owns every write on conn, including keepalive pings.
func (h *PredictWSHandler) writeLoop(conn *websocket.Conn, writes <-chan interface{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case v, ok := <-writes:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(v); err != nil {
				h.logger.Warn("websocket write failed", xlogger.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame turns one application frame into the /predict response body
// or an {"error": ...} body.
func (h *PredictWSHandler) handleFrame(ctx context.Context, data []byte) interface{} {
	req := &models.PredictRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return xhttp.ErrorBody{Error: "invalid request body"}
	}
	if err := xhttp.ValidateStruct(ctx, req); err != nil {
		return errorBody(err)
	}

	res, err := h.assessor.AssessFrom(ctx, req.ToInput(), models.SourceWebSocket)
	if err != nil {
		appErr := api.ToAppError(err)
		if appErr.Status >= http.StatusInternalServerError {
			h.logger.Error("websocket predict failed", xlogger.Error(err))
		}
		return xhttp.ErrorBody{Error: appErr.Message}
	}
	return models.NewPredictResponse(res)
}

func errorBody(err error) xhttp.ErrorBody {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return xhttp.ErrorBody{Error: appErr.Message}
	}
	return xhttp.ErrorBody{Error: "invalid request"}
}
