package lg

import (
	"log"
	"os"
)

func env(name, defaultValue string) string {
	if v := os.Getenv(name); v != "" {
		log.Println("# ", name, " = ", v)
		return v
	}
	return defaultValue
}

type secret string

func (s secret) String() string {
	if s == "" {
		return "(nil)"
	}
	return "***"
}
func (s secret) Secret() string {
	return string(s)
}

func envSecret(name, defaultValue string) secret {
	if v := os.Getenv(name); v != "" {
		log.Println("# ", name, " = ", secret(v))
		return secret(v)
	}
	return secret(defaultValue)
}
