package reply

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"prodi/pkg/contextx"
	"prodi/pkg/errcodes"
	"prodi/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SupportID string `json:"supportId"`
}

func (e *errorResponse) WithDefaultCode(code errcodes.ErrorCode) {
	if e.Code == "" {
		e.Code = code.String()
	}
}

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func OK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

func Error(ctx context.Context, w http.ResponseWriter, err error) {
	response := errorResponse{
		Code:      errcodes.CodeOf(err).String(),
		Message:   errcodes.DescriptionOf(err),
		SupportID: supportID(ctx),
	}

	switch errcodes.KindOf(err) {
	case errcodes.KindInvalidArgument:
		logger(ctx).Warn("invalid argument", logx.Error(err))
		response.WithDefaultCode(errcodes.ValidationError)
		JSON(ctx, w, http.StatusBadRequest, response)
	case errcodes.KindNotFound:
		logger(ctx).Warn("not found", logx.Error(err))
		response.WithDefaultCode(errcodes.NotFound)
		JSON(ctx, w, http.StatusNotFound, response)
	case errcodes.KindUnauthorized:
		logger(ctx).Warn("unauthorized", logx.Error(err))
		response.WithDefaultCode(errcodes.WalletNotConnected)
		JSON(ctx, w, http.StatusUnauthorized, response)
	case errcodes.KindForbidden:
		logger(ctx).Warn("forbidden", logx.Error(err))
		response.WithDefaultCode(errcodes.Forbidden)
		JSON(ctx, w, http.StatusForbidden, response)
	case errcodes.KindConflict:
		logger(ctx).Warn("conflict", logx.Error(err))
		response.WithDefaultCode(errcodes.Conflict)
		JSON(ctx, w, http.StatusConflict, response)
	case errcodes.KindUnprocessableEntity:
		logger(ctx).Warn("unprocessable entity", logx.Error(err))
		JSON(ctx, w, http.StatusUnprocessableEntity, response)
	default:
		logger(ctx).Error("error", logx.Error(err))
		response.WithDefaultCode(errcodes.InternalServerError)
		response.Message = "internal server error"
		JSON(ctx, w, http.StatusInternalServerError, response)
	}
}

func supportID(ctx context.Context) string {
	traceID, err := contextx.TraceIDFromContext(ctx)
	if err != nil {
		return "unsupported"
	}

	return traceID.String()
}
