package goRedact

import (
	"errors"
	"time"
)

// Config defines a public type used by goRedact APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Blur      BlurConfig
	Detection DetectionConfig
	FaceMatch FaceMatchConfig
	Session   SessionConfig
	Storage   StorageConfig
	Token     TokenConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
BLUR CONFIG
====================================
*/

// BlurConfig defines a public type used by goRedact APIs.
//
// BlurConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BlurConfig struct {
	MinKernelSize int
	MaxKernelSize int
	FocusExponent float64
	BaseWeight    float64
}

/*
====================================
DETECTION CONFIG
====================================
*/

// DetectionConfig defines a public type used by goRedact APIs.
//
// DetectionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type DetectionConfig struct {
	MinConfidence float64
	// Classes limits which detection classes are redacted. Empty means all.
	Classes []string
}

/*
====================================
FACE MATCH CONFIG
====================================
*/

// FaceMatchConfig defines a public type used by goRedact APIs.
//
// FaceMatchConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FaceMatchConfig struct {
	Tolerance float64
	// SelectiveKernelSize is the fixed blur kernel for non-matching faces.
	SelectiveKernelSize int
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goRedact APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
	// TTL is the sliding idle timeout; every successful resolve resets it.
	TTL time.Duration
	// Retention keeps logically expired sessions readable (and sweepable)
	// for this long so expiry can be reported distinctly from not-found.
	Retention     time.Duration
	SweepInterval time.Duration
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig defines a public type used by goRedact APIs.
//
// StorageConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StorageConfig struct {
	// Root is the artifact directory; one sub-directory per session.
	Root string
	// OutputFormat is "png" (default) or "jpeg".
	OutputFormat string
	JPEGQuality  int
	// MaxPixels rejects images whose width*height exceeds it. 0 disables.
	MaxPixels int
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by goRedact APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	Enabled       bool
	AccessTTL     time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
}

// AuditConfig defines a public type used by goRedact APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goRedact APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration applied when no explicit
// config is supplied to the builder. Callers may mutate the returned value
// freely before passing it to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Blur: BlurConfig{
			MinKernelSize: 9,
			MaxKernelSize: 45,
			FocusExponent: 2.5,
			BaseWeight:    0.35,
		},
		Detection: DetectionConfig{
			MinConfidence: 0.25,
			Classes:       nil,
		},
		FaceMatch: FaceMatchConfig{
			Tolerance:           0.75,
			SelectiveKernelSize: 51,
		},
		Session: SessionConfig{
			RedisPrefix:   "rs",
			TTL:           30 * time.Minute,
			Retention:     30 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		Storage: StorageConfig{
			Root:         "redact-artifacts",
			OutputFormat: "png",
			JPEGQuality:  90,
			MaxPixels:    0,
		},
		Token: TokenConfig{
			Enabled:       false,
			AccessTTL:     5 * time.Minute,
			SigningMethod: "hs256",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Detection.Classes = cloneStrings(cfg.Detection.Classes)
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Blur
	if c.Blur.MinKernelSize <= 0 || c.Blur.MaxKernelSize <= 0 {
		return errors.New("Blur kernel sizes must be > 0")
	}
	if c.Blur.FocusExponent < 0 {
		return errors.New("Blur FocusExponent must be >= 0")
	}
	if c.Blur.BaseWeight < 0 || c.Blur.BaseWeight > 1 {
		return errors.New("Blur BaseWeight must be in [0,1]")
	}

	// Detection
	if c.Detection.MinConfidence < 0 || c.Detection.MinConfidence > 1 {
		return errors.New("Detection MinConfidence must be in [0,1]")
	}

	// FaceMatch
	if c.FaceMatch.Tolerance < 0 || c.FaceMatch.Tolerance > 1 {
		return errors.New("FaceMatch Tolerance must be in [0,1]")
	}
	if c.FaceMatch.SelectiveKernelSize <= 0 {
		return errors.New("FaceMatch SelectiveKernelSize must be > 0")
	}

	// Session
	if c.Session.RedisPrefix == "" {
		return errors.New("Session RedisPrefix must not be empty")
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}
	if c.Session.Retention < 0 {
		return errors.New("Session Retention must be >= 0")
	}
	if c.Session.SweepInterval < 0 {
		return errors.New("Session SweepInterval must be >= 0")
	}

	// Storage
	if c.Storage.Root == "" {
		return errors.New("Storage Root must not be empty")
	}
	if c.Storage.OutputFormat != "png" && c.Storage.OutputFormat != "jpeg" {
		return errors.New("Storage OutputFormat must be 'png' or 'jpeg'")
	}
	if c.Storage.OutputFormat == "jpeg" && (c.Storage.JPEGQuality < 1 || c.Storage.JPEGQuality > 100) {
		return errors.New("Storage JPEGQuality must be in [1,100]")
	}
	if c.Storage.MaxPixels < 0 {
		return errors.New("Storage MaxPixels must be >= 0")
	}

	// Token
	if c.Token.Enabled {
		if c.Token.AccessTTL <= 0 {
			return errors.New("Token AccessTTL must be > 0")
		}
		if c.Token.SigningMethod != "hs256" && c.Token.SigningMethod != "ed25519" {
			return errors.New("unsupported Token signing method")
		}
		if len(c.Token.PrivateKey) == 0 {
			return errors.New("Token requires PrivateKey")
		}
		if c.Token.SigningMethod == "ed25519" && len(c.Token.PublicKey) == 0 {
			return errors.New("ed25519 requires PublicKey")
		}
	}

	return nil
}
