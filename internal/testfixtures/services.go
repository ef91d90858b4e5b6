package testfixtures

import (
	"time"

	"github.com/example/classroom-booking/internal/application"
	"github.com/example/classroom-booking/internal/notification"
	"github.com/example/classroom-booking/internal/store"
)

// Services bundles the application services wired over one store with
// deterministic identifiers, tokens, and time.
type Services struct {
	Auth       *application.AuthService
	Bookings   *application.BookingService
	Classrooms *application.ClassroomService
	Users      *application.UserService
	Imports    *application.ImportService

	Clock *Clock
	IDs   *IDGenerator
}

// ServiceOption configures the generated service bundle.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	clock       *Clock
	ids         *IDGenerator
	tokens      *IDGenerator
	gateway     notification.Gateway
	emailDomain string
	sessionTTL  time.Duration
}

// WithClock overrides the clock driving session expiry.
func WithClock(clock *Clock) ServiceOption {
	return func(cfg *serviceConfig) { cfg.clock = clock }
}

// WithIDGenerator overrides the entity identifier generator.
func WithIDGenerator(ids *IDGenerator) ServiceOption {
	return func(cfg *serviceConfig) { cfg.ids = ids }
}

// WithGateway overrides the notification gateway.
func WithGateway(gateway notification.Gateway) ServiceOption {
	return func(cfg *serviceConfig) { cfg.gateway = gateway }
}

// WithEmailDomain overrides the domain new accounts must belong to.
func WithEmailDomain(domain string) ServiceOption {
	return func(cfg *serviceConfig) { cfg.emailDomain = domain }
}

// WithSessionTTL overrides the session lifetime.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(cfg *serviceConfig) { cfg.sessionTTL = ttl }
}

// NewServices constructs the full application service set over the given
// store. Defaults: "id-N" identifiers, "tok-N" session tokens, a log-only
// notification gateway, the @xtec.cat domain, and a one hour session TTL.
func NewServices(s store.Store, opts ...ServiceOption) *Services {
	cfg := &serviceConfig{
		clock:       NewClock(time.Time{}),
		ids:         NewIDGenerator("id"),
		tokens:      NewIDGenerator("tok"),
		gateway:     notification.NewLogGateway(nil),
		emailDomain: "@xtec.cat",
		sessionTTL:  time.Hour,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Services{
		Auth:       application.NewAuthService(s, cfg.tokens.NextFunc(), cfg.clock.NowFunc(), cfg.sessionTTL),
		Bookings:   application.NewBookingService(s, cfg.gateway, cfg.ids.NextFunc()),
		Classrooms: application.NewClassroomService(s, cfg.gateway, cfg.ids.NextFunc()),
		Users:      application.NewUserService(s, cfg.gateway, cfg.ids.NextFunc(), cfg.emailDomain),
		Imports:    application.NewImportService(s, cfg.ids.NextFunc()),
		Clock:      cfg.clock,
		IDs:        cfg.ids,
	}
}
