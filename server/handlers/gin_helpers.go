package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"kijunserver/dataset"
	apperrors "kijunserver/server/errors"
	"kijunserver/server/middleware"
)

// SendJSONResponse JSON レスポンスを返す
func SendJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendJSONError JSON エラーを返してログに残す
func SendJSONError(c *gin.Context, statusCode int, message string) {
	slog.Error("Gin HTTP error",
		"error", message,
		"status_code", statusCode,
		"request_id", middleware.GetRequestIDFromGin(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

// HandleServiceError サービス層のエラーを HTTP レスポンスに写す。
// AppError はそのステータスとメッセージ、その他は 500 に畳む。
func HandleServiceError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	slog.Error("Unhandled service error", "error", err)
	SendJSONError(c, http.StatusInternalServerError, "サーバ内部エラー")
}

// queryBool クエリパラメータを bool として読む
func queryBool(c *gin.Context, name string) bool {
	v := strings.ToLower(c.Query(name))
	return v == "true" || v == "1"
}

// queryInt クエリパラメータを int として読む。欠損・不正はデフォルト値。
func queryInt(c *gin.Context, name string, defaultValue int) int {
	v := c.Query(name)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

// parseBedCountRanges "区分:最小:最大" 形式の繰り返しパラメータを
// レンジフィルタに変換する。書式が崩れた要素はエラーにする。
func parseBedCountRanges(values []string) (map[string]dataset.BedCountRange, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ranges := make(map[string]dataset.BedCountRange, len(values))
	for _, v := range values {
		parts := strings.Split(v, ":")
		if len(parts) != 3 || parts[0] == "" {
			return nil, apperrors.NewValidationError("bed_count の書式が不正です（区分:最小:最大）: "+v, nil)
		}
		minVal, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, apperrors.NewValidationError("bed_count の最小値が不正です: "+v, nil)
		}
		maxVal, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, apperrors.NewValidationError("bed_count の最大値が不正です: "+v, nil)
		}
		if minVal > maxVal {
			return nil, apperrors.NewValidationError("bed_count の範囲が逆転しています: "+v, nil)
		}
		ranges[parts[0]] = dataset.BedCountRange{Min: minVal, Max: maxVal}
	}
	return ranges, nil
}
