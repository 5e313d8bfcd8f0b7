package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/zh-translator/internal/domain/translator"
	"github.com/yanqian/zh-translator/internal/infra/config"
	"github.com/yanqian/zh-translator/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/zh-translator/pkg/errors"
)

func TestRouter_TranslateSuccess(t *testing.T) {
	resp := translator.Response{Translation: "Hello", Keywords: []string{"greeting", "hello", "polite"}}
	svc := &stubTranslator{
		translateFn: func(ctx context.Context, req translator.Request) (translator.Response, error) {
			require.Equal(t, "你好", req.Text)
			return resp, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/translate", `{"text":"你好"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got translator.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, resp, got)
	require.NotEmpty(t, recorder.Header().Get(requestIDHeader))
}

func TestRouter_TranslateInvalidJSON(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/translate", `{"text":123}`, newRouterUnderTest(t, &stubTranslator{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.NotEmpty(t, decodeDetail(t, recorder.Body.Bytes()))
}

func TestRouter_TranslateErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "empty input",
			err:        apperrors.Wrap(translator.CodeInvalidInput, "text cannot be empty", nil),
			wantStatus: http.StatusBadRequest,
			wantDetail: "text cannot be empty",
		},
		{
			name:       "misconfigured",
			err:        apperrors.Wrap(translator.CodeMisconfigured, "service misconfigured", chatgpt.ErrMissingAPIKey),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "service misconfigured: api key is not set",
		},
		{
			name:       "upstream status propagated",
			err:        apperrors.Wrap(translator.CodeUpstream, "upstream request failed", &chatgpt.APIError{StatusCode: http.StatusTooManyRequests, Body: "slow down"}),
			wantStatus: http.StatusTooManyRequests,
			wantDetail: "upstream request failed: chat completion failed: status=429 body=slow down",
		},
		{
			name:       "unexpected failure",
			err:        apperrors.Wrap(translator.CodeFailed, "translation failed", context.DeadlineExceeded),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "translation failed: context deadline exceeded",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubTranslator{
				translateFn: func(ctx context.Context, req translator.Request) (translator.Response, error) {
					return translator.Response{}, tt.err
				},
			}
			recorder := performRequest(http.MethodPost, "/translate", `{"text":"x"}`, newRouterUnderTest(t, svc))
			require.Equal(t, tt.wantStatus, recorder.Code)
			require.Equal(t, tt.wantDetail, decodeDetail(t, recorder.Body.Bytes()))
		})
	}
}

func TestRouter_HealthWithoutAPIKey(t *testing.T) {
	server := newServerWithUpstream(t, "", "http://127.0.0.1:1")

	recorder := performRequest(http.MethodGet, "/", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, body["message"])
}

func TestRouter_CORS(t *testing.T) {
	server := newRouterUnderTest(t, &stubTranslator{})

	req := httptest.NewRequest(http.MethodOptions, "/translate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type, x-custom")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	require.Equal(t, "content-type, x-custom", rec.Header().Get("Access-Control-Allow-Headers"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))

	simple := performRequest(http.MethodGet, "/", "", server)
	require.Equal(t, "*", simple.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_EndToEndAgainstUpstream(t *testing.T) {
	tests := []struct {
		name         string
		apiKey       string
		body         string
		upstreamCode int
		upstreamBody string
		wantStatus   int
		wantCalls    int32
		want         *translator.Response
		wantDetail   string
	}{
		{
			name:         "well formed reply",
			apiKey:       "sk-test",
			body:         `{"text":"你好"}`,
			upstreamCode: http.StatusOK,
			upstreamBody: completionBody(`{"translation":"Hi","keywords":["a","b","c"]}`),
			wantStatus:   http.StatusOK,
			wantCalls:    1,
			want:         &translator.Response{Translation: "Hi", Keywords: []string{"a", "b", "c"}},
		},
		{
			name:         "fenced reply",
			apiKey:       "sk-test",
			body:         `{"text":"你好"}`,
			upstreamCode: http.StatusOK,
			upstreamBody: completionBody("```json\n{\"translation\":\"Hi\",\"keywords\":[\"a\",\"b\",\"c\"]}\n```"),
			wantStatus:   http.StatusOK,
			wantCalls:    1,
			want:         &translator.Response{Translation: "Hi", Keywords: []string{"a", "b", "c"}},
		},
		{
			name:         "unparseable reply degrades",
			apiKey:       "sk-test",
			body:         `{"text":"你好世界"}`,
			upstreamCode: http.StatusOK,
			upstreamBody: completionBody("Hello world"),
			wantStatus:   http.StatusOK,
			wantCalls:    1,
			want:         &translator.Response{Translation: "Hello world", Keywords: []string{"翻译", "内容", "结果"}},
		},
		{
			name:         "upstream 503",
			apiKey:       "sk-test",
			body:         `{"text":"你好"}`,
			upstreamCode: http.StatusServiceUnavailable,
			upstreamBody: `{"error":"busy"}`,
			wantStatus:   http.StatusServiceUnavailable,
			wantCalls:    1,
			wantDetail:   `upstream request failed: chat completion failed: status=503 body={"error":"busy"}`,
		},
		{
			name:       "empty text",
			apiKey:     "sk-test",
			body:       `{"text":""}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "text cannot be empty",
		},
		{
			name:       "whitespace text",
			apiKey:     "sk-test",
			body:       `{"text":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "text cannot be empty",
		},
		{
			name:       "missing api key",
			body:       `{"text":"你好"}`,
			wantStatus: http.StatusInternalServerError,
			wantDetail: "service misconfigured: api key is not set",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.upstreamCode)
				_, _ = w.Write([]byte(tt.upstreamBody))
			}))
			defer upstream.Close()

			recorder := performRequest(http.MethodPost, "/translate", tt.body, newServerWithUpstream(t, tt.apiKey, upstream.URL))
			require.Equal(t, tt.wantStatus, recorder.Code)
			require.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))

			if tt.want != nil {
				var got translator.Response
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
				require.Equal(t, *tt.want, got)
				return
			}
			require.Equal(t, tt.wantDetail, decodeDetail(t, recorder.Body.Bytes()))
		})
	}
}

func completionBody(content string) string {
	payload, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(payload)
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		API:    config.APIConfig{TimeoutSeconds: 2},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8000},
	}
}

func newRouterUnderTest(t *testing.T, svc translator.Service) *http.Server {
	t.Helper()
	return NewRouter(testConfig(), NewHandler(svc, newTestLogger()))
}

func newServerWithUpstream(t *testing.T, apiKey, baseURL string) *http.Server {
	t.Helper()
	client := chatgpt.NewClient(chatgpt.Options{APIKey: apiKey, BaseURL: baseURL})
	svc := translator.NewService(translator.Config{
		Model:        "glm-4.7",
		Temperature:  0.7,
		MaxTokens:    2000,
		KeywordCount: 3,
		SystemPrompt: "JSON only.",
	}, client, newTestLogger())
	return newRouterUnderTest(t, svc)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubTranslator struct {
	translateFn func(ctx context.Context, req translator.Request) (translator.Response, error)
}

func (s *stubTranslator) Translate(ctx context.Context, req translator.Request) (translator.Response, error) {
	if s.translateFn != nil {
		return s.translateFn(ctx, req)
	}
	return translator.Response{}, nil
}

func decodeDetail(t *testing.T, raw []byte) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body["detail"]
}
