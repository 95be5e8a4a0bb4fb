package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkhere/docs" //this is required to generate swagger docs
	"parkhere/internal/auth"
	"parkhere/internal/domain/storage"
	"parkhere/internal/mailer"
	"parkhere/internal/notifications"
	"parkhere/internal/ratelimiter"
	"parkhere/internal/service"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	push          notifications.PushSender
	bookingSvc    *service.BookingService
	paymentSvc    *service.PaymentService
	slotSvc       *service.SlotService
}

type config struct {
	addr              string
	db                dbConfig
	env               string
	apiURL            string
	mail              mailConfig
	frontendURL       string
	auth              authConfig
	rateLimiter       ratelimiter.Config
	reconcileInterval time.Duration
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}
type tokenConfig struct {
	refreshSecret   string
	secret          string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}
type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// Request-scoped timeout; handlers observe ctx.Done()
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", app.listLocationsHandler)
			r.Get("/{locationID}", app.getLocationHandler)
			r.Get("/{locationID}/slots", app.listSlotsHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware, app.RequireAdmin)
				r.Post("/", app.createLocationHandler)
				r.Post("/{locationID}/photos", app.uploadLocationPhotoHandler)
				r.Delete("/{locationID}/photos", app.deleteLocationPhotoHandler) // DELETE /locations/{locationID}/photos?photo_url={url}
				r.Post("/{locationID}/slots", app.addSlotHandler)
			})
		})

		r.Route("/slots", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware, app.RequireAdmin)
			r.Patch("/{slotID}", app.updateSlotHandler)
			r.Delete("/{slotID}", app.deleteSlotHandler)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.createBookingHandler)
			r.Get("/", app.listBookingsHandler)
			r.Get("/{bookingID}", app.getBookingHandler)
			r.Post("/{bookingID}/cancel", app.cancelBookingHandler)
			r.Post("/{bookingID}/extend", app.extendBookingHandler)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/initiate", app.initiatePaymentHandler)
			r.Post("/verify", app.verifyPaymentHandler)
			r.Get("/history", app.paymentHistoryHandler)
			r.Get("/{paymentID}", app.getPaymentHandler)
			r.Post("/{paymentID}/refund", app.requestRefundHandler)
			r.With(app.RequireAdmin).Post("/{paymentID}/refund/process", app.processRefundHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getProfileHandler)
			r.Put("/me", app.updateProfileHandler)
			r.Put("/change-password", app.changePasswordHandler)
			r.Post("/push-tokens", app.savePushTokenHandler)
			r.Delete("/push-tokens", app.removePushTokenHandler)
			r.Post("/logout", app.logoutHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
