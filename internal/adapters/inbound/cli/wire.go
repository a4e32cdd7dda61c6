package cli

import (
	"fmt"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/cache"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/config"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/fsstore"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/gitinfo"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/history"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/nixparser"
	registryAdapter "github.com/imp-refactor/imp-refactor/internal/adapters/outbound/registry"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/scanner"
	"github.com/imp-refactor/imp-refactor/internal/application"
	"github.com/imp-refactor/imp-refactor/internal/domain"
)

func (a *app) loadConfig() (domain.ProjectConfig, error) {
	cfg, err := config.New().Load(a.project)
	if err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func (a *app) registryService() *application.RegistryService {
	var evaluator domain.RegistryEvaluator = registryAdapter.New()
	if a.evaluator != nil {
		evaluator = a.evaluator
	}
	return application.NewRegistryService(evaluator, gitinfo.New(), cache.New(), a.logger)
}

func (a *app) detectService() *application.DetectService {
	return application.NewDetectService(scanner.New(), nixparser.New(), fsstore.New(), a.registryService(), a.logger)
}

func (a *app) applyService(detect *application.DetectService) *application.ApplyService {
	return application.NewApplyService(detect, fsstore.New(), history.New(), gitinfo.New(), a.logger)
}
