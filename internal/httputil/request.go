package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// MaxBodyBytes bounds request bodies. Forms carry base64 logos and signatures.
const MaxBodyBytes = 10 << 20

// ParseJSON decodes the request body into dest.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
