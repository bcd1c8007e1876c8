package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shandysiswandi/numsphere/internal/app"
)

// @title           NumSphere API
// @version         1.0
// @description     NumSphere provides interactive sign in, sign up and password recovery flows.
// @termsOfService  https://numsphere.dev/terms
// @contact.name    Contact Support
// @contact.url     https://numsphere.dev/contact
// @contact.email   support@numsphere.dev
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @server          https://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT.
func main() {
	application, err := app.New() // Initialize the application
	if err != nil {
		slog.Error("failed to init application", "error", err)
		os.Exit(1)
	}

	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}
