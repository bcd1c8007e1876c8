package authflow

import (
	"context"

	"github.com/shandysiswandi/numsphere/internal/authflow/inbound"
	"github.com/shandysiswandi/numsphere/internal/authflow/usecase"
	"github.com/shandysiswandi/numsphere/internal/pkg/clock"
	"github.com/shandysiswandi/numsphere/internal/pkg/config"
	"github.com/shandysiswandi/numsphere/internal/pkg/goroutine"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/shandysiswandi/numsphere/internal/pkg/router"
	"github.com/shandysiswandi/numsphere/internal/pkg/uid"
	"github.com/shandysiswandi/numsphere/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	Provider   usecase.IdentityProvider   `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// New wires the auth flow module and starts evicting idle flows. The returned
// usecase must be shut down with the application.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		Provider:   dep.Provider,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Clock:      dep.Clock,
		UUID:       dep.UUID,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	dep.Goroutine.Go(dep.Ctx, uc.RunJanitor)

	return uc, nil
}
