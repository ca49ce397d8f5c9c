// Package telegramtest provides a fake Bot API server for tests.
package telegramtest

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
)

// Token is the bot token used by bots built with Server.Bot.
const Token = "123456:TEST-TOKEN"

// Request is one recorded Bot API call.
type Request struct {
	Method string
	Params map[string]string
	// Files maps multipart field names to uploaded file names.
	Files map[string]string
}

type failure struct {
	code        int
	description string
}

// Server is an in-process Bot API that records every call and answers with
// a canned success unless told to fail.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	failures map[string]failure // key: method + "/" + chat_id
	nextID   int
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{failures: make(map[string]failure)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Bot returns a bot client pointed at s.
func (s *Server) Bot(t testing.TB, opts ...bot.Option) *bot.Bot {
	t.Helper()
	opts = append([]bot.Option{
		bot.WithSkipGetMe(),
		bot.WithServerURL(s.URL),
	}, opts...)
	b, err := bot.New(Token, opts...)
	if err != nil {
		t.Fatalf("failed to create bot: %v", err)
	}
	return b
}

// Fail makes method calls addressed to chatID fail with the given HTTP/API
// error code.
func (s *Server) Fail(method string, chatID int64, code int, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[fmt.Sprintf("%s/%d", method, chatID)] = failure{code: code, description: description}
}

// Requests returns a copy of every recorded call.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Calls returns the recorded calls of one method.
func (s *Server) Calls(method string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

// Texts returns the text of every sendMessage call, in order.
func (s *Server) Texts() []string {
	var out []string
	for _, r := range s.Calls("sendMessage") {
		out = append(out, r.Params["text"])
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	req := Request{
		Method: path.Base(r.URL.Path),
		Params: make(map[string]string),
		Files:  make(map[string]string),
	}
	parseParams(r, &req)

	s.mu.Lock()
	s.requests = append(s.requests, req)
	f, failed := s.failures[req.Method+"/"+req.Params["chat_id"]]
	s.nextID++
	messageID := s.nextID
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if failed {
		resp := map[string]any{"ok": false, "error_code": f.code, "description": f.description}
		if f.code == http.StatusTooManyRequests {
			resp["parameters"] = map[string]any{"retry_after": 1}
		}
		w.WriteHeader(f.code)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	var result any = true
	switch req.Method {
	case "sendMessage", "forwardMessage", "sendPhoto", "sendVideo", "sendDocument":
		var chatID int64
		_, _ = fmt.Sscan(req.Params["chat_id"], &chatID)
		result = map[string]any{
			"message_id": messageID,
			"date":       0,
			"chat":       map[string]any{"id": chatID, "type": "private"},
		}
	case "getMe":
		result = map[string]any{"id": 123456, "is_bot": true, "first_name": "Promo", "username": "promo_bot"}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func parseParams(r *http.Request, req *Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				req.Params[k] = v[0]
			}
		}
		for k, v := range r.MultipartForm.File {
			if len(v) > 0 {
				req.Files[k] = v[0].Filename
			}
		}
	case "application/json":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return
		}
		for k, v := range body {
			switch val := v.(type) {
			case string:
				req.Params[k] = val
			case float64:
				req.Params[k] = fmt.Sprintf("%.0f", val)
			default:
				raw, _ := json.Marshal(val)
				req.Params[k] = string(raw)
			}
		}
	default:
		if err := r.ParseForm(); err != nil {
			return
		}
		for k, v := range r.Form {
			if len(v) > 0 {
				req.Params[k] = v[0]
			}
		}
	}
}
