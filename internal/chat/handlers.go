package chat

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"taskchat-backend/internal/auth"
)

// Handler serves POST /api/chat. The owner always comes from the verified
// token, never from the request body.
func Handler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Message        string `json:"message"`
			ConversationID string `json:"conversation_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(body.Message) == "" {
			http.Error(w, "message is required", http.StatusBadRequest)
			return
		}

		resp := svc.Process(r.Context(), uid, body.Message, body.ConversationID)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Println("chat: encode error:", err)
		}
	}
}
