package mockapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// FakeToken is the opaque bearer credential issued when no token secret
// is configured.
const FakeToken = "fake-jwt-token-abc123xyz"

// Validation messages rendered verbatim by the login form.
const (
	MsgEmailTooShort    = "El correo electrónico debe tener al menos 8 caracteres"
	MsgPasswordTooShort = "La contraseña debe tener al menos 8 caracteres"
	MsgEmailInvalid     = "Por favor ingrese un correo electrónico válido"
	MsgBadCredentials   = "Credenciales inválidas"
)

// Config describes the mock backend. Parse it with pkg/config.
type Config struct {
	// TokenSecret enables signed JWT issuance when non-empty.
	TokenSecret string `env:"MOCKAPI_TOKEN_SECRET"`

	// LoginDelay simulates backend latency on the login endpoint.
	LoginDelay time.Duration `env:"MOCKAPI_LOGIN_DELAY" envDefault:"0s"`

	// AccountsFile optionally points at a YAML fixture of registered accounts.
	AccountsFile string `env:"MOCKAPI_ACCOUNTS_FILE"`
}

// Option configures a Server.
type Option func(*Server)

// WithTokenSecret switches token issuance to signed HS256 JWTs.
func WithTokenSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

// WithLoginDelay simulates backend latency on login.
func WithLoginDelay(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.loginDelay = d
		}
	}
}

// WithAccounts restricts login to the given registered accounts.
func WithAccounts(accounts ...Account) Option {
	return func(s *Server) {
		for _, account := range accounts {
			s.accounts[account.Email] = account
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.logger = log
		}
	}
}

// Server is the in-process mock backend.
type Server struct {
	secret     []byte
	loginDelay time.Duration
	accounts   map[string]Account
	logger     *slog.Logger
}

// New creates a mock backend with the given options.
func New(opts ...Option) *Server {
	s := &Server{
		accounts: make(map[string]Account),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig creates a server from environment-driven configuration.
func NewFromConfig(cfg Config, opts ...Option) (*Server, error) {
	base := []Option{
		WithTokenSecret(cfg.TokenSecret),
		WithLoginDelay(cfg.LoginDelay),
	}
	if cfg.AccountsFile != "" {
		accounts, err := LoadAccountsFile(cfg.AccountsFile)
		if err != nil {
			return nil, err
		}
		base = append(base, WithAccounts(accounts...))
	}
	return New(append(base, opts...)...), nil
}

// Handler returns the HTTP routes of the mock backend.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/login", s.handleLogin)
	r.Get("/api/users", s.handleUsers)
	return r
}
