package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"logboard/backend/config"
	"logboard/backend/crypto"
)

// box encrypts log message bodies at rest. Set once at startup.
var box *crypto.Box

// InitCrypto builds the message cipher from the configured AES secret.
func InitCrypto() error {
	b, err := crypto.New(config.C.AESSecret)
	if err != nil {
		return err
	}
	box = b
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "source", "http", "error", err.Error())
		}
	}
}

// writeError sends the uniform {"error": ...} body. Internal detail never
// reaches the caller; handlers log it server-side before calling this.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
