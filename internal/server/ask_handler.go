package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eryajf/qaloop/internal/llm"
	"github.com/eryajf/qaloop/internal/model"
	"github.com/eryajf/qaloop/internal/resolver"
)

// AskRequest 提问请求
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse 提问响应
type AskResponse struct {
	Source  string       `json:"source"` // cache / db / llm
	Row     *model.Query `json:"row"`
	Message string       `json:"message"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// handleAsk 处理提问请求
// 错误映射:空问题 -> 400;生成端传输或格式错误 -> 502;持久层错误 -> 500
func (s *HTTPGinServer) handleAsk(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Invalid request: " + err.Error()})
		return
	}

	res, err := s.resolver.Resolve(c.Request.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrEmptyQuestion):
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Pregunta vacía"})
		case errors.Is(err, resolver.ErrGenerator), errors.Is(err, llm.ErrMalformedPayload):
			c.JSON(http.StatusBadGateway, ErrorResponse{Detail: err.Error()})
		default:
			s.log.Errorf("Failed to resolve question: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, AskResponse{
		Source:  res.Source,
		Row:     res.Row,
		Message: rowMessage(res.Row),
	})
}

// rowMessage 渲染固定的三行结果文本
func rowMessage(row *model.Query) string {
	return fmt.Sprintf("Pregunta: %s\nRespuesta: %s\nScore (1-10): %d",
		row.Title, row.Answer, row.Score)
}
