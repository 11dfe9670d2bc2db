// @title           LabQuote API
// @version         1.0
// @description     Sales backend for a contract research organisation: leads, customers, quotations, contracts and documents.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"

	"labquote/config"
	"labquote/logger"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var (
	version = "dev"
	cli     struct {
		Config config.Config `embed:""`

		Dev     bool `help:"console logging at debug level" env:"DEV"`
		Version kong.VersionFlag

		Serve       ServeCmd       `cmd:"" default:"1" help:"Run the HTTP API and scheduled jobs"`
		Migrate     MigrateCmd     `cmd:"" help:"Create or update database tables"`
		Seed        SeedCmd        `cmd:"" help:"Load the test catalog into the database"`
		CreateAdmin CreateAdminCmd `cmd:"" name:"create-admin" help:"Create the first admin account when no user exists"`
	}
)

// Globals is passed to every command's Run.
type Globals struct {
	Config  *config.Config
	Log     zerolog.Logger
	Version string
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("labquote"),
		kong.Description("Quotation and contract management for non-clinical testing services."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	err := cmd.Run(&Globals{
		Config:  &cli.Config,
		Log:     logger.Setup(cli.Dev),
		Version: version,
	})
	cmd.FatalIfErrorf(err)
}
