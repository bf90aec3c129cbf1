package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/agrimind/internal/adapters/file"
	"github.com/aretw0/agrimind/internal/config"
	"github.com/aretw0/agrimind/pkg/actions"
	httpAdapter "github.com/aretw0/agrimind/pkg/adapters/http"
	"github.com/aretw0/agrimind/pkg/adapters/geocode"
	"github.com/aretw0/agrimind/pkg/adapters/llm"
	loamAdapter "github.com/aretw0/agrimind/pkg/adapters/loam"
	"github.com/aretw0/agrimind/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/agrimind/pkg/adapters/redis"
	"github.com/aretw0/agrimind/pkg/adapters/sms"
	"github.com/aretw0/agrimind/pkg/chat"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/invoker"
	"github.com/aretw0/agrimind/pkg/observability"
	"github.com/aretw0/agrimind/pkg/persistence/middleware"
	"github.com/aretw0/agrimind/pkg/ports"
	"github.com/aretw0/agrimind/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ErrMissingAPIKey is returned when a real provider is selected without a key.
var ErrMissingAPIKey = errors.New("provider api_key is required")

// App is the fully wired application shared by every command.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Invoker  *invoker.Invoker
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Streams  *httpAdapter.StreamManager
	Sessions *session.Manager
	Chat     *chat.Service
	Geocoder ports.Geocoder
	SMS      ports.SMSGateway

	closers []func() error
}

// NewApp builds the application from cfg. When requireGenerator is false a
// missing API key is tolerated and only surfaces once an action calls out,
// so listing, conversation and config commands work offline.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, requireGenerator bool) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}

	gen, err := NewGenerator(ctx, cfg.Provider)
	if err != nil {
		if requireGenerator || !errors.Is(err, ErrMissingAPIKey) {
			return nil, err
		}
		gen = unavailable{err: err}
	}

	deps := actions.Deps{SMS: newSMSGateway(cfg.SMS, logger)}
	app.SMS = deps.SMS
	if cfg.Prompts.Dir != "" {
		prompts, err := loamAdapter.Open(cfg.Prompts.Dir)
		if err != nil {
			return nil, fmt.Errorf("open prompts: %w", err)
		}
		deps.Prompts = prompts
	}

	reg, err := actions.NewRegistry(ctx, deps)
	if err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.Metrics = observability.NewMetrics(promReg)
	app.Gatherer = promReg
	app.Streams = httpAdapter.NewStreamManager()

	hooks := app.Metrics.Hooks().
		Merge(observability.LoggingHooks(logger)).
		Merge(app.Streams.Hooks())

	app.Invoker = invoker.New(reg, gen,
		invoker.WithLogger(logger),
		invoker.WithHooks(hooks),
		invoker.WithTimeout(cfg.Invoker.Timeout),
		invoker.WithMaxConcurrent(cfg.Invoker.MaxConcurrent),
		invoker.WithMaxInputSize(cfg.Input.MaxSize),
	)

	store, sessionOpts, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}
	sessionOpts = append(sessionOpts, session.WithLogger(logger))
	if cfg.Store.LockTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithLockTTL(cfg.Store.LockTTL))
	}
	app.Sessions = session.NewManager(store, sessionOpts...)
	app.Chat = chat.NewService(app.Invoker, app.Sessions, chat.WithMaxHistory(cfg.Chat.MaxHistory))

	app.Geocoder = geocode.NewNominatim(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent, cfg.Geocoding.Timeout)

	return app, nil
}

// NewGenerator builds the configured provider. The API key is only
// required here so commands that never call a model work without one.
func NewGenerator(ctx context.Context, cfg config.ProviderConfig) (ports.Generator, error) {
	name := strings.ToLower(cfg.Name)
	if name != llm.ProviderFake && cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for %s (set AGRIMIND_PROVIDER_API_KEY)", ErrMissingAPIKey, name)
	}
	return llm.New(ctx, llm.Config{
		Provider:        name,
		Model:           cfg.Model,
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		MaxOutputTokens: cfg.MaxOutputTokens,
	})
}

// unavailable stands in for a provider that could not be configured.
type unavailable struct{ err error }

func (u unavailable) Generate(context.Context, ports.GenerateRequest) (*ports.GenerateResponse, error) {
	return nil, u.err
}

func newSMSGateway(cfg config.SMSConfig, logger *slog.Logger) ports.SMSGateway {
	if cfg.Gateway == "command" {
		return sms.NewCommand(cfg.Command, cfg.Args, logger)
	}
	return sms.NewSimulated(logger)
}

// openStore builds the conversation store with its middleware chain.
func (a *App) openStore(ctx context.Context) (ports.ConversationStore, []session.Option, error) {
	cfg := a.Config.Store
	var (
		base ports.ConversationStore
		opts []session.Option
	)

	switch cfg.Backend {
	case "memory":
		base = memory.NewStore()
	case "file", "":
		base = file.New(cfg.Path)
	case "redis":
		rs := redisAdapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redisAdapter.WithPrefix(cfg.Prefix),
			redisAdapter.WithTTL(cfg.TTL),
		)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		a.closers = append(a.closers, rs.Close)
		base = rs
		opts = append(opts, session.WithLocker(redisAdapter.NewLocker(rs.Client(), cfg.Prefix+"lock:")))
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	var mws []middleware.Middleware
	if cfg.MaskPII {
		mws = append(mws, middleware.NewPIIMiddleware(nil))
	}
	if cfg.EncryptionKey != "" {
		enc, err := encryptionConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}

	a.Logger.Debug("conversation store ready",
		"backend", cfg.Backend,
		"encrypted", cfg.EncryptionKey != "",
		"mask_pii", cfg.MaskPII)
	return middleware.Chain(base, mws...), opts, nil
}

func encryptionConfig(cfg config.StoreConfig) (middleware.EncryptionConfig, error) {
	active, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return middleware.EncryptionConfig{}, fmt.Errorf("store.encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

// HTTPHandler returns the REST API with every optional surface mounted.
func (a *App) HTTPHandler() *httpAdapter.Server {
	return httpAdapter.NewServer(a.Invoker,
		httpAdapter.WithChat(a.Chat),
		httpAdapter.WithGeocoder(a.Geocoder, a.Config.Weather.DefaultLocation),
		httpAdapter.WithMetrics(a.Metrics, a.Gatherer),
		httpAdapter.WithStreams(a.Streams),
		httpAdapter.WithLogger(a.Logger),
	)
}

// Run invokes one action and returns its result envelope.
func (a *App) Run(ctx context.Context, action string, input map[string]any) domain.ActionResult {
	return a.Invoker.Run(ctx, action, input)
}

// Close releases backend connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
