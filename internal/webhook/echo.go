package webhook

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mylxsw/telegram-monitor/internal/domain"
)

// EchoHandler — обработчик тестового эхо-сервера: принимает полезную нагрузку
// монитора, логирует ее и отвечает статусом 200. Никакой фильтрации или
// логики доставки здесь нет, только приемная сторона контракта.
func EchoHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload domain.Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			log.Warn("Failed to decode incoming payload", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid JSON"})
			return
		}

		log.Info("Received message",
			"chat", payload.ChatName,
			"chat_id", payload.ChatID,
			"sender", payload.SenderName,
			"sender_id", payload.SenderID,
			"message_id", payload.MessageID,
			"date", payload.Date,
			"media", payload.Media,
			"text", payload.Text,
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
