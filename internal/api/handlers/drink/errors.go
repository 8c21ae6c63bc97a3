package drink

import (
	"errors"
	"net/http"

	"cocktail-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 依錯誤類型回傳狀態碼，debug 模式才附上詳細信息
func respondError(c *gin.Context, err error, debug bool) {
	resp := common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: common.ErrInternalError.Message,
	}
	status := http.StatusInternalServerError

	var ve *common.ValidationError
	var ce *common.CustomError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		resp.Code = common.ErrCodeInvalidRequest
		resp.Message = ve.Error()
	case errors.As(err, &ce):
		status = ce.Status
		resp.Code = ce.Code
		resp.Message = ce.Message
	}

	if debug {
		resp.Details = err.Error()
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("request_id", requestid.Get(c)),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求無效", fields...)
	}

	c.AbortWithStatusJSON(status, resp)
}

// respondBindError 請求格式錯誤
func respondBindError(c *gin.Context, err error, debug bool) {
	respondError(c, common.NewValidationError("Invalid request format: "+err.Error()), debug)
}
