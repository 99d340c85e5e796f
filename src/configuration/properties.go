package configuration

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type (
	Properties struct {
		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

		Auth   AuthProperties       `envPrefix:"AUTH_"`
		S3     S3Properties         `envPrefix:"S3_"`
		Server HttpServerProperties `envPrefix:"HTTP_"`
		Mail   MailProperties       `envPrefix:"SENDGRID_"`
	}

	AuthProperties struct {
		// AdminEmails is the fixed allow-list of administrator identities.
		// Resolved once at boot; there is no runtime mutation path.
		AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`
		// SignInPath is the platform sign-in endpoint anonymous users are
		// redirected to on protected routes.
		SignInPath string `env:"SIGNIN_PATH" envDefault:"/.auth/login/aad"`
	}

	HttpServerProperties struct {
		Port        string        `env:"PORT" envDefault:"3000"`
		StaticDir   string        `env:"STATIC_DIR" envDefault:"./public"`
		ReadTimeout time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	}

	S3Properties struct {
		Host      string `env:"HOST"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"photos"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
		// PublicURL is the browser-facing base for stored objects. Empty
		// falls back to the endpoint/bucket form.
		PublicURL string `env:"PUBLIC_URL"`
	}

	MailProperties struct {
		APIKey string `env:"API_KEY"`
		From   string `env:"FROM"`
		// Seller receives the interest notifications.
		Seller string `env:"SELLER"`
	}
)

func ReadProperties() *Properties {
	config := &Properties{}

	if err := env.Parse(config); err != nil {
		panic(fmt.Errorf("read config error: %w", err))
	}
	return config
}
