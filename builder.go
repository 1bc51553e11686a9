package goRedact

import (
	"errors"

	"github.com/MrEthical07/goRedact/internal/artifact"
	"github.com/MrEthical07/goRedact/session"
	"github.com/MrEthical07/goRedact/token"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goRedact APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	detector  Detector
	auditSink AuditSink

	built bool
}

// New returns a Builder pre-loaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing session state.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDetector supplies the object-detection boundary. [detect.NewRemote]
// is the shipped implementation.
func (b *Builder) WithDetector(d Detector) *Builder {
	b.detector = d
	return b
}

// WithAuditSink supplies the audit event consumer. Events are only emitted
// when [Config.Audit] is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the render latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires every subsystem, and returns a
// ready Engine. A Builder can build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.detector == nil {
		return nil, errors.New("detector required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- SESSION STORE --------
	store := session.NewStore(
		b.redis,
		cfg.Session.RedisPrefix,
		cfg.Session.TTL,
		cfg.Session.Retention,
	)

	// -------- ARTIFACT STORE --------
	files, err := artifact.New(cfg.Storage.Root)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		sessionStore: store,
		artifacts:    files,
		detector:     b.detector,
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	if cfg.Token.Enabled {
		tm, err := token.NewManager(token.Config{
			AccessTTL:     cfg.Token.AccessTTL,
			SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
			PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
			PublicKey:     cloneBytes(cfg.Token.PublicKey),
			Issuer:        cfg.Token.Issuer,
		})
		if err != nil {
			return nil, err
		}
		engine.tokens = tm
	}

	engine.startSweeper()

	b.built = true

	return engine, nil
}
