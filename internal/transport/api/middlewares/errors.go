package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// statusTexts тексты для статусов, которые реально отдают хендлеры магазина.
var statusTexts = map[int]string{
	http.StatusBadRequest:          "bad request",
	http.StatusUnauthorized:        "unauthorized",
	http.StatusForbidden:           "forbidden",
	http.StatusNotFound:            "not found",
	http.StatusConflict:            "conflict",
	http.StatusUnprocessableEntity: "unprocessable entity",
}

// Errors отдает клиенту первую накопленную ошибку запроса. API отвечает только
// JSON, поэтому согласование формата по заголовку Accept не делается. Текст
// приватных ошибок наружу не уходит, клиент видит только текст статуса.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		firstErr := c.Errors[0]
		msg := statusTexts[c.Writer.Status()]
		if msg == "" {
			msg = "internal server error"
		}
		if firstErr.IsType(gin.ErrorTypePublic) {
			msg = firstErr.Error()
		}

		c.JSON(c.Writer.Status(), gin.H{"error": msg})
		c.Abort()
	}
}
