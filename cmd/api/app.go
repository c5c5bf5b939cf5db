package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/splitsettle/docs"
	"github.com/fkhayef/splitsettle/internal/activity"
	"github.com/fkhayef/splitsettle/internal/config"
	"github.com/fkhayef/splitsettle/internal/database"
	"github.com/fkhayef/splitsettle/internal/expense"
	"github.com/fkhayef/splitsettle/internal/group"
	"github.com/fkhayef/splitsettle/internal/metrics"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/settlement"
	"github.com/fkhayef/splitsettle/internal/settlement/cache"
	"github.com/fkhayef/splitsettle/internal/splitbill"
	"github.com/fkhayef/splitsettle/internal/splitbill/split"
	"github.com/fkhayef/splitsettle/internal/user"
	mw "github.com/fkhayef/splitsettle/pkg/middleware"
	"github.com/fkhayef/splitsettle/pkg/response"
)

// app wires the feature slices together
type app struct {
	db       *database.DB
	codec    money.Codec
	registry *prometheus.Registry
	plans    cache.Cache
	closers  []func() error

	groups     *group.Service
	expenses   *expense.Service
	bills      *splitbill.Service
	settlement *settlement.Service
	activity   *activity.Service
	users      *user.Service
}

func newApp(ctx context.Context, cfg *config.Config, db *database.DB) (*app, error) {
	a := &app{
		db:       db,
		codec:    money.NewCodec(cfg.CurrencyExponent),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(a.registry)

	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.plans = redisCache
		a.closers = append(a.closers, redisCache.Close)
		slog.Info("Using Redis plan cache")
	} else {
		a.plans = cache.NewMemory()
		slog.Info("Using in-memory plan cache")
	}

	// Group feature
	groupRepo := group.NewRepository(db)
	a.groups = group.NewService(groupRepo)

	expenseRepo := expense.NewRepository(db)

	// Settlement queries read split bills straight from the repository
	billRepo := splitbill.NewRepository(db)
	a.settlement = settlement.NewService(a.groups, expenseRepo, billRepo, a.plans, m)

	// Activity records transitions; it looks bills up through the split bill service
	a.activity = activity.NewService(activity.NewRepository(db), nil)

	a.bills = splitbill.NewService(billRepo, a.groups, split.NewSplitStrategyFactory(), a.codec, splitbill.Hooks{
		Recorder:    a.activity,
		Invalidator: a.settlement,
		Metrics:     m,
	})
	a.activity.SetBillFinder(a.bills)

	// Expense feature; shared expenses point at a split bill of the same group
	a.expenses = expense.NewService(expenseRepo, a.groups, a.bills, a.codec)

	a.users = user.NewService(a.groups, a.settlement)

	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			slog.Warn("Failed to close resource", "error", err)
		}
	}
}

func (a *app) router(auth *mw.Authenticator) http.Handler {
	groupHandler := group.NewHandler(a.groups)
	expenseHandler := expense.NewHandler(a.expenses, a.codec)
	billHandler := splitbill.NewHandler(a.bills, a.codec)
	settlementHandler := settlement.NewHandler(a.settlement, a.codec)
	activityHandler := activity.NewHandler(a.activity)
	userHandler := user.NewHandler(a.users, a.codec)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := a.db.PingContext(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Mount("/groups", groupHandler.Routes(
			settlementHandler.GroupRoutes,
			billHandler.GroupRoutes,
			expenseHandler.GroupRoutes,
		))
		r.Mount("/users", userHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/split-bills", billHandler.Routes(
			settlementHandler.SplitBillRoutes,
			activityHandler.SplitBillRoutes,
		))
	})

	return r
}

func openDatabase(ctx context.Context, cfg *config.Config, migrate bool) (*database.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	slog.Info("Connected to database", "dialect", db.Dialect)
	return db, nil
}
