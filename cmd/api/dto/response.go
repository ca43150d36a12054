package dto

import "social-content/models"

// ErrorResponseDTO 는 공통 에러 응답 형식이다.
type ErrorResponseDTO struct {
	Error     string   `json:"error"`
	Fields    []string `json:"fields,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

type FailedProcessLogsResponse struct {
	Data []models.FailedProcessLog `json:"data"`
}
