package config

import (
	"os"
	"strconv"
)

// IsDebug is read before any config struct is parsed so the logger can be
// set up first. It accepts the same boolean spellings as the DEBUG field on
// AppConfig.
func IsDebug() bool {
	debug, err := strconv.ParseBool(os.Getenv("DEBUG"))
	return err == nil && debug
}
