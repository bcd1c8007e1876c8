package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/numsphere/internal/pkg/clock"
	"github.com/shandysiswandi/numsphere/internal/pkg/config"
	"github.com/shandysiswandi/numsphere/internal/pkg/goroutine"
	"github.com/shandysiswandi/numsphere/internal/pkg/hash"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/shandysiswandi/numsphere/internal/pkg/jwt"
	"github.com/shandysiswandi/numsphere/internal/pkg/mail"
	"github.com/shandysiswandi/numsphere/internal/pkg/messaging"
	"github.com/shandysiswandi/numsphere/internal/pkg/otp"
	"github.com/shandysiswandi/numsphere/internal/pkg/router"
	"github.com/shandysiswandi/numsphere/internal/pkg/uid"
	"github.com/shandysiswandi/numsphere/internal/pkg/validator"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	bcrypt    hash.Hash
	uid       uid.NumberID
	oid       uid.StringID
	uuid      uid.StringID
	otp       otp.OTP
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	mail      mail.Mail
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	// closers are registered as resources come up and run in reverse on Stop
	closers []closer
}

// New wires every dependency and module. When a step fails, whatever was
// already opened is released before the error is returned.
func New() (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: ctx, cancel: cancel}

	steps := []struct {
		name string
		fn   func() error
	}{
		{name: "config", fn: a.initConfig},
		{name: "instrument", fn: a.initInstrument},
		{name: "libraries", fn: a.initLibraries},
		{name: "jwt", fn: a.initJWT},
		{name: "database", fn: a.initDatabase},
		{name: "cache", fn: a.initCache},
		{name: "mail", fn: a.initMail},
		{name: "messaging", fn: a.initMessaging},
		{name: "http server", fn: a.initHTTPServer},
		{name: "modules", fn: a.initModules},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			cancel()
			a.release(context.Background())
			return nil, fmt.Errorf("init %s: %w", step.name, err)
		}
	}

	return a, nil
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}
