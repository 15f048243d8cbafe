package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/config"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/client"
	v1 "github.com/dmehra2102/prod-golang-projects/spabook/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/service"
	"github.com/dmehra2102/prod-golang-projects/spabook/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/spabook/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/spabook/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/spabook/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/spabook/pkg/tracer"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	root := &cobra.Command{
		Use:           "spabook",
		Short:         "Spa appointment booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), staffCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap loads .env (when present), the configuration and the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	log = log.With(
		zap.String("service", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)
	return cfg, log, nil
}

// stores bundles the repositories behind one DB_DRIVER choice.
type stores struct {
	appointments appointment.Repository
	clients      client.Repository
	users        service.UserRepository
	audit        service.AuditRepository
	ping         func(ctx context.Context) error
	close        func()
}

func openStores(cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("using in-memory store; data is lost on exit")
		s := memory.NewStore()
		return &stores{
			appointments: s.Appointments(),
			clients:      s.Clients(),
			users:        s.Users(),
			audit:        s.Audit(),
			close:        func() {},
		}, nil
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	return &stores{
		appointments: postgres.NewAppointmentRepository(db),
		clients:      postgres.NewClientRepository(db),
		users:        postgres.NewUserRepository(db),
		audit:        postgres.NewAuditRepository(db),
		ping:         sqlDB.PingContext,
		close: func() {
			if err := sqlDB.Close(); err != nil {
				log.Warn("closing database", zap.Error(err))
			}
		},
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(parent context.Context, cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("initialising tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector("spabook", reg)

	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	loc, err := cfg.Business.Location()
	if err != nil {
		return err
	}
	hours := appointment.BusinessHours{Location: loc, OpenHour: cfg.Business.OpenHour, CloseHour: cfg.Business.CloseHour}

	auditSvc := service.NewAuditService(st.audit, m, log.Named("audit"))
	defer auditSvc.Shutdown()

	jwt := auth.NewJWTManager(cfg.JWT)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := v1.NewRouter(v1.RouterDeps{
		Appointments:    service.NewAppointmentService(st.appointments, st.clients, hours, auditSvc, m, log.Named("scheduling")),
		Clients:         service.NewClientService(st.clients, auditSvc, m, log.Named("clients")),
		Auth:            service.NewAuthService(st.users, jwt, auditSvc, log.Named("auth")),
		JWT:             jwt,
		Metrics:         m,
		Hours:           hours,
		CORS:            cfg.CORS,
		Log:             log.Named("http"),
		RateLimiter:     middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.BurstSize),
		AuthRateLimiter: middleware.NewRateLimiter(ctx, rate.Every(time.Minute/time.Duration(max(cfg.RateLimit.AuthRequestsPerMinute, 1))), max(cfg.RateLimit.AuthRequestsPerMinute, 1)),
		Ping:            st.ping,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           otelhttp.NewHandler(router, cfg.App.Name),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting",
			zap.String("addr", srv.Addr),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("business_timezone", cfg.Business.Timezone),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	log.Info("http server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create schemas, tables and constraints",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Database.Driver == "memory" {
				log.Info("memory driver selected, nothing to migrate")
				return nil
			}

			db, err := database.Connect(cfg.Database)
			if err != nil {
				return err
			}
			return database.Migrate(db, log)
		},
	}
}

func staffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage desk staff accounts",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a staff user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")
			password, _ := cmd.Flags().GetString("password")

			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Database.Driver == "memory" {
				return errors.New("staff accounts need a persistent store; set DB_DRIVER=postgres")
			}

			st, err := openStores(cfg, log)
			if err != nil {
				return err
			}
			defer st.close()

			auditSvc := service.NewAuditService(st.audit, nil, log)
			defer auditSvc.Shutdown()

			svc := service.NewAuthService(st.users, auth.NewJWTManager(cfg.JWT), auditSvc, log)
			u, err := svc.CreateStaff(cmd.Context(), &service.CreateStaffCommand{
				Email:    email,
				Name:     name,
				Role:     domain.Role(role),
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) %s\n", u.Email, u.Role, u.ID)
			return nil
		},
	}
	create.Flags().String("email", "", "Login email")
	create.Flags().String("name", "", "Display name")
	create.Flags().String("role", string(domain.RoleReceptionist), "admin, receptionist or therapist")
	create.Flags().String("password", "", "Initial password (at least 12 characters)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
