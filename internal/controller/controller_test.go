package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ai-chatbot-be/internal/channel/twilio"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/pkg/orchestrator"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeChat struct {
	last orchestrator.Message
}

func (f *fakeChat) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	return &dto.ChatResponse{Reply: "echo " + req.Text, QuickReplies: []string{"Ver menú"}}, nil
}

func (f *fakeChat) Process(ctx context.Context, msg orchestrator.Message) *orchestrator.Result {
	f.last = msg
	return &orchestrator.Result{Reply: "echo " + msg.Text, QuickReplies: []string{"Ver menú"}, DialogueActive: true}
}

func (f *fakeChat) Search(ctx context.Context, query string, topK int) *dto.SearchResponse {
	return &dto.SearchResponse{Query: query, Hits: []dto.SearchHit{}}
}

func (f *fakeChat) PublicConfig() *dto.PublicConfigResponse {
	return &dto.PublicConfigResponse{BusinessName: "Pizzería Roma"}
}

type fakeFAQs struct{}

func (fakeFAQs) GetAll(ctx context.Context, query string) ([]*dto.FAQResponse, error) {
	return []*dto.FAQResponse{}, nil
}

func (fakeFAQs) Create(ctx context.Context, req *dto.FAQRequest) (*dto.FAQResponse, error) {
	return &dto.FAQResponse{Id: uuid.New(), Question: req.Question, Answer: req.Answer}, nil
}

func (fakeFAQs) Update(ctx context.Context, req *dto.FAQRequest) (*dto.FAQResponse, error) {
	return nil, service.ErrFAQNotFound
}

func (fakeFAQs) Delete(ctx context.Context, id uuid.UUID) error { return service.ErrFAQNotFound }

type fakeOrders struct{ service.IOrderService }

func (fakeOrders) UpdateStatus(ctx context.Context, req *dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	return &dto.OrderResponse{Id: req.Id, Status: req.Status}, nil
}

type fakeAuth struct{}

func (fakeAuth) LoginAdmin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Password != "ok" {
		return nil, service.ErrInvalidCredentials
	}
	return &dto.LoginResponse{Token: "t", ExpiresAt: time.Now()}, nil
}

func newTestApp(chat *fakeChat) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	admin := serverutils.AdminMiddleware(testSecret)

	api := app.Group("/api")
	NewChatController(chat).RegisterRoutes(api)
	NewAuthController(fakeAuth{}).RegisterRoutes(api)
	NewAdminController(fakeFAQs{}, nil, fakeOrders{}, nil, nil, nil, nil).RegisterRoutes(api, admin)

	tw := twilio.NewWebhook("AC123", chat, logger.NewNopLogger())
	NewWebhookController(chat, nil, "", tw, logger.NewNopLogger()).RegisterRoutes(app, admin)
	return app
}

func adminToken(t *testing.T) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "admin@example.com", "role": serverutils.RoleAdmin, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, app *fiber.App, method, target, body, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestChatEndpoint(t *testing.T) {
	app := newTestApp(&fakeChat{})

	resp, body := do(t, app, "POST", "/api/chat", `{"user_id":"u1","text":"hola"}`, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "echo hola", data["reply"])

	resp, body = do(t, app, "POST", "/api/chat", `{"user_id":"u1"}`, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["errors"], "text")
}

func TestSearchRequiresQuery(t *testing.T) {
	app := newTestApp(&fakeChat{})

	resp, _ := do(t, app, "GET", "/api/search", "", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, app, "GET", "/api/search?q=pizza&top_k=3", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "pizza", body["data"].(map[string]interface{})["query"])
}

func TestWebWebhookUsesSessionID(t *testing.T) {
	chat := &fakeChat{}
	app := newTestApp(chat)

	resp, body := do(t, app, "POST", "/webhook/web", `{"text":"hola","session_id":"s-1"}`, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "echo hola", body["message"])
	assert.Equal(t, true, body["flow_active"])
	assert.Equal(t, "s-1", chat.last.UserID)
	assert.Equal(t, ChannelWeb, chat.last.Channel)

	resp, _ = do(t, app, "POST", "/webhook/web", `{"text":"hola"}`, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func twilioRequest(app *fiber.App, account string) (*http.Response, error) {
	form := url.Values{"From": {"whatsapp:+5215551234"}, "Body": {"hola"}, "MessageSid": {"SM1"}, "AccountSid": {account}}
	req := httptest.NewRequest("POST", "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return app.Test(req)
}

func TestTwilioWebhook(t *testing.T) {
	chat := &fakeChat{}
	app := newTestApp(chat)

	resp, err := twilioRequest(app, "AC123")
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "<Response><Message><Body>echo hola")
	assert.Equal(t, "+5215551234", chat.last.UserID)

	resp, err = twilioRequest(app, "AC999")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestTelegramSetWebhookWithoutBot(t *testing.T) {
	app := newTestApp(&fakeChat{})

	resp, _ := do(t, app, "POST", "/webhook/telegram/set-webhook", `{"url":"https://example.com/hook"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, app, "POST", "/webhook/telegram/set-webhook", `{"url":"https://example.com/hook"}`, adminToken(t))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestAdminLogin(t *testing.T) {
	app := newTestApp(&fakeChat{})

	resp, _ := do(t, app, "POST", "/api/admin/login", `{"email":"admin@example.com","password":"ok"}`, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, "POST", "/api/admin/login", `{"email":"admin@example.com","password":"bad"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminLoginThrottled(t *testing.T) {
	app := newTestApp(&fakeChat{})

	for i := 0; i < loginAttempts; i++ {
		resp, _ := do(t, app, "POST", "/api/admin/login", `{"email":"admin@example.com","password":"bad"}`, "")
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	}
	resp, _ := do(t, app, "POST", "/api/admin/login", `{"email":"admin@example.com","password":"ok"}`, "")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp(&fakeChat{})
	token := adminToken(t)
	id := uuid.NewString()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		token  string
		status int
	}{
		{name: "no token", method: "GET", target: "/api/admin/faqs", status: fiber.StatusUnauthorized},
		{name: "list faqs", method: "GET", target: "/api/admin/faqs", token: token, status: fiber.StatusOK},
		{name: "create faq", method: "POST", target: "/api/admin/faqs", body: `{"question":"¿Horario?","answer":"9 a 18"}`, token: token, status: fiber.StatusCreated},
		{name: "create faq invalid", method: "POST", target: "/api/admin/faqs", body: `{"question":"¿Horario?"}`, token: token, status: fiber.StatusBadRequest},
		{name: "update missing faq", method: "PUT", target: "/api/admin/faqs/" + id, body: `{"question":"q","answer":"a"}`, token: token, status: fiber.StatusNotFound},
		{name: "bad id", method: "DELETE", target: "/api/admin/faqs/nope", token: token, status: fiber.StatusBadRequest},
		{name: "order status", method: "PATCH", target: "/api/admin/orders/" + id + "/status", body: `{"status":"confirmed"}`, token: token, status: fiber.StatusOK},
		{name: "order status invalid", method: "PATCH", target: "/api/admin/orders/" + id + "/status", body: `{"status":"shipped"}`, token: token, status: fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, app, tt.method, tt.target, tt.body, tt.token)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
