// Package config resolves library configuration from the environment for
// embedding applications and the bundled CLI.
package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		Readwise
		Reader
		Debug bool
	}

	Readwise struct {
		Token string
	}
	Reader struct {
		// Token for the Reader API. Falls back to the main Readwise token,
		// which is valid for both surfaces.
		Token string
	}
)

func New() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("readwise_token", "")
	v.SetDefault("readwise_reader_token", "")
	v.SetDefault("readwise_debug", false)

	token := v.GetString("READWISE_TOKEN")
	readerToken := v.GetString("READWISE_READER_TOKEN")
	if readerToken == "" {
		readerToken = token
	}

	return &Config{
		Readwise: Readwise{
			Token: token,
		},
		Reader: Reader{
			Token: readerToken,
		},
		Debug: v.GetBool("READWISE_DEBUG"),
	}
}
