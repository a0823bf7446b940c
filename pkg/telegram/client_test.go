package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bloomstack/bloomstack-backend/pkg/config"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

func testConfig(baseURL string) config.TelegramConfig {
	return config.TelegramConfig{
		BotToken: "123:test-token",
		BaseURL:  baseURL,
		Timeout:  2 * time.Second,
	}
}

func TestSendMessage(t *testing.T) {
	var captured sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/bot123:test-token/sendMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	keyboard := &InlineKeyboard{
		InlineKeyboard: [][]InlineButton{{
			{Text: "Confirm", CallbackData: "order:confirm:abc"},
		}},
	}
	if err := client.SendMessage(context.Background(), 42, "New order received", keyboard); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if captured.ChatID != 42 || captured.Text != "New order received" {
		t.Fatalf("unexpected payload %+v", captured)
	}
	if captured.ReplyMarkup == nil || captured.ReplyMarkup.InlineKeyboard[0][0].CallbackData != "order:confirm:abc" {
		t.Fatalf("unexpected keyboard %+v", captured.ReplyMarkup)
	}
}

func TestSendMessageSurfacesAPIRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "chat not found"})
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	err = client.SendMessage(context.Background(), 42, "hello", nil)
	if err == nil {
		t.Fatal("expected error for ok=false response")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestAnswerCallbackQuery(t *testing.T) {
	var captured answerCallbackRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/answerCallbackQuery") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if err := client.AnswerCallbackQuery(context.Background(), "cb-1", "Order confirmed"); err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if captured.CallbackQueryID != "cb-1" || captured.Text != "Order confirmed" {
		t.Fatalf("unexpected payload %+v", captured)
	}
}

func TestClientValidation(t *testing.T) {
	if _, err := NewClient(config.TelegramConfig{}); err == nil {
		t.Fatal("expected error for missing bot token")
	}

	client, err := NewClient(testConfig("http://unused"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.SendMessage(context.Background(), 0, "x", nil); err == nil {
		t.Fatal("expected error for zero chat id")
	}
	if err := client.SendMessage(context.Background(), 1, "  ", nil); err == nil {
		t.Fatal("expected error for empty text")
	}
	if err := client.AnswerCallbackQuery(context.Background(), "", "x"); err == nil {
		t.Fatal("expected error for empty callback id")
	}
}
