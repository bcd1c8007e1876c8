package app

import (
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/numsphere/internal/authflow"
	authflowidentity "github.com/shandysiswandi/numsphere/internal/authflow/outbound/identity"
	"github.com/shandysiswandi/numsphere/internal/identity"
	"github.com/shandysiswandi/numsphere/internal/notification"
)

func (a *App) initModules() error {
	if a.config.GetBool("modules.identity.enabled") {
		if err := a.initIdentity(); err != nil {
			return err
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:        a.ctx,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Mail:       a.mail,
		}); err != nil {
			return fmt.Errorf("notification: %w", err)
		}
	}

	return nil
}

// initIdentity mounts the identity module and the auth flows driven by it.
func (a *App) initIdentity() error {
	identityUC, err := identity.New(identity.Dependency{
		Ctx:        a.ctx,
		DBConn:     a.dbConn,
		CacheConn:  a.cacheConn,
		Router:     a.router,
		Messaging:  a.messaging,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		OID:        a.oid,
		HMAC:       a.hmac,
		Bcrypt:     a.bcrypt,
		Clock:      a.clock,
		OTP:        a.otp,
		Validator:  a.validator,
		JWT:        a.jwt,
	})
	if err != nil {
		return fmt.Errorf("identity: %w", err)
	}

	flowUC, err := authflow.New(authflow.Dependency{
		Ctx:        a.ctx,
		Provider:   authflowidentity.NewProvider(identityUC, a.ins),
		Router:     a.router,
		Goroutine:  a.goroutine,
		Config:     a.config,
		Instrument: a.ins,
		Clock:      a.clock,
		UUID:       a.uuid,
		Validator:  a.validator,
	})
	if err != nil {
		return fmt.Errorf("authflow: %w", err)
	}

	// open flow streams only end once their flows are disposed
	closeFlows := func() {
		if err := flowUC.Shutdown(); err != nil {
			slog.Error("failed to close resources", "name", "AuthFlow", "error", err)
		}
	}
	a.httpServer.RegisterOnShutdown(closeFlows)
	a.sseServer.RegisterOnShutdown(closeFlows)

	return nil
}
