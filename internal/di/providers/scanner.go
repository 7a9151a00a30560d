package providers

import (
	"github.com/samber/do/v2"

	"github.com/Ishan-Karpe/ShelfSense/internal/config"
	apperrors "github.com/Ishan-Karpe/ShelfSense/internal/errors"
	"github.com/Ishan-Karpe/ShelfSense/internal/logger"
	"github.com/Ishan-Karpe/ShelfSense/internal/shelfscan"
)

// ProvideScanner provides the shelf photo scanner.
func ProvideScanner(i do.Injector) (*shelfscan.Scanner, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Vision.APIKey == "" {
		return nil, apperrors.Internal("OPENAI_API_KEY is required for shelf scanning")
	}

	return shelfscan.NewScanner(cfg.Vision.APIKey, cfg.Vision.Model, log.Logger), nil
}
