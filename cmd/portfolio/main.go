package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/app"
	"github.com/aTrapDeer/portfolio-backend/internal/config"
	apihttp "github.com/aTrapDeer/portfolio-backend/internal/http"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/seed"
	"github.com/aTrapDeer/portfolio-backend/internal/services"
)

var (
	envFile string

	adminName     string
	adminEmail    string
	adminPassword string

	seedFile string
)

var rootCmd = &cobra.Command{
	Use:           "portfolio",
	Short:         "Portfolio content API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Long: `Create an admin account that can sign in to the admin API.

The password can also be passed through ADMIN_PASSWORD so it stays out of
shell history.`,
	RunE: runCreateAdmin,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load portfolio content from a YAML file",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")

	createAdminCmd.Flags().StringVar(&adminName, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password, at least 8 characters (or ADMIN_PASSWORD)")
	_ = createAdminCmd.MarkFlagRequired("email")

	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "content.yaml", "seed file")

	rootCmd.AddCommand(serveCmd, createAdminCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

// bootstrap loads configuration and wires the application.
func bootstrap(ctx context.Context) (*app.App, error) {
	loaded := config.LoadDotEnv(envFile)

	log, err := logger.New(config.GetEnv("LOG_MODE", "development", nil))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if !loaded {
		log.Info("No .env file found")
	}
	cfg := config.Load(log)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	a.WarnIfNoAdmin(ctx)
	srv := apihttp.NewServer(":"+a.Cfg.Port, a.Router, a.Log)
	return srv.Run(ctx)
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	password := adminPassword
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	name := adminName
	if name == "" {
		name = strings.Split(adminEmail, "@")[0]
	}
	u, err := a.Services.Auth.CreateUser(cmd.Context(), services.CreateUserInput{
		Name:     name,
		Email:    adminEmail,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return err
	}
	a.Log.Info("Admin user created", "id", u.ID, "email", u.Email)
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	f, err := os.Open(seedFile)
	if err != nil {
		return err
	}
	defer f.Close()
	content, err := seed.Load(f)
	if err != nil {
		return err
	}

	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	_, err = seed.Apply(cmd.Context(), a.Services, content, a.Log)
	return err
}

// describe adds field messages to validation errors.
func describe(err error) string {
	e, ok := apierr.As(err)
	if !ok || len(e.Fields) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return e.Error() + " (" + strings.Join(parts, "; ") + ")"
}
