package remote

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"studyrag/internal/domain"
)

// FromOpenAI converts a go-openai error into a domain.ServiceError.
func FromOpenAI(service string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ServiceError{Service: service, Kind: domain.KindForStatus(apiErr.HTTPStatusCode), Status: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &domain.ServiceError{Service: service, Kind: domain.KindForStatus(reqErr.HTTPStatusCode), Status: reqErr.HTTPStatusCode, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return domain.NewServiceError(service, domain.KindNetwork, err)
	}
	return domain.TransportError(service, err)
}
