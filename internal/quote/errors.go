package quote

import (
	"errors"
	"net/http"
	"regexp"
)

// User-facing messages, in the product's display language
const (
	msgFormParse      = "Erro ao processar o formulário"
	msgNoImage        = "Nenhuma imagem foi enviada"
	msgNotAnImage     = "O arquivo enviado não é uma imagem válida"
	msgImageTooLarge  = "A imagem é muito grande. Tamanho máximo: %dMB"
	msgImageProcess   = "Erro ao processar a imagem"
	msgQuotaExceeded  = "Limite de uso da API atingido ou problema de cobrança"
	msgExtractionFail = "Erro ao analisar a imagem com IA"
)

// InvalidInputError is a user-correctable problem with the submitted image
type InvalidInputError struct {
	Message string
	Err     error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// QuotaExceededError means the upstream model refused the call for quota or billing reasons
type QuotaExceededError struct {
	Err error
}

func (e *QuotaExceededError) Error() string { return "quota exceeded: " + e.Err.Error() }

func (e *QuotaExceededError) Unwrap() error { return e.Err }

// ExtractionError is any other failure of the upstream model call
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return "extracting exams: " + e.Err.Error() }

func (e *ExtractionError) Unwrap() error { return e.Err }

// InternalError is an unexpected failure while handling the request
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *InternalError) Unwrap() error { return e.Err }

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// toErrorResponse maps an error to its HTTP status and body
func toErrorResponse(err error) (int, errorResponse) {
	var (
		invalid    *InvalidInputError
		quota      *QuotaExceededError
		extraction *ExtractionError
		internal   *InternalError
	)

	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, errorResponse{Error: invalid.Message, Details: causeOf(invalid.Err)}
	case errors.As(err, &quota):
		return http.StatusTooManyRequests, errorResponse{Error: msgQuotaExceeded, Details: causeOf(quota.Err)}
	case errors.As(err, &extraction):
		return http.StatusInternalServerError, errorResponse{Error: msgExtractionFail, Details: causeOf(extraction.Err)}
	case errors.As(err, &internal):
		return http.StatusInternalServerError, errorResponse{Error: internal.Message, Details: causeOf(internal.Err)}
	default:
		return http.StatusInternalServerError, errorResponse{Error: msgImageProcess, Details: causeOf(err)}
	}
}

// apiKeyParam matches API keys that HTTP clients echo back inside request URLs
var apiKeyParam = regexp.MustCompile(`(?i)(key=)[^&\s"']+`)

// causeOf renders err for the details field with credentials masked
func causeOf(err error) string {
	if err == nil {
		return ""
	}
	return apiKeyParam.ReplaceAllString(err.Error(), "${1}REDACTED")
}
