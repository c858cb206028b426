package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParam разбирает числовой параметр маршрута и кладет его в
// контекст под ключом contextKey. Идентификаторы последовательные,
// поэтому ноль отклоняется наравне с нечисловыми значениями.
// Обработчики дальше по цепочке читают значение через c.MustGet(contextKey).(uint).
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		value, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || value == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName)})
			c.Abort()
			return
		}
		c.Set(contextKey, uint(value))
		c.Next()
	}
}
