package config

import (
	"os"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	BlobBasePath string // note uploads live under this directory

	AuthSecret string

	// AI study assistant (Ollama-compatible endpoint). Empty disables the routes.
	LLMBaseURL string
	LLMModel   string

	// Password-reset email. With no API key the console mailer is used.
	SendgridAPIKey string
	MailFrom       string
	MailFromName   string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:      mode,
		HTTPAddr:  addr,
		PublicURL: strings.TrimSuffix(os.Getenv("PUBLIC_URL"), "/"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		AuthSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),

		LLMBaseURL: os.Getenv("LLM_BASE_URL"),
		LLMModel:   envOr("LLM_MODEL", "mistral"),

		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       envOr("MAIL_FROM", "noreply@studyhub.local"),
		MailFromName:   envOr("MAIL_FROM_NAME", "StudyHub"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://app.studyhub.example.com"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
