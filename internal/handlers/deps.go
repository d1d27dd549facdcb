package handlers

import (
	"log/slog"

	"github.com/honari/reading-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Validator       requestValidator
	SessionSvc      SessionService
	CatalogSvc      CatalogService
}

type requestValidator interface {
	Validate(s any) error
}
