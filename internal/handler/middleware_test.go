package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/whatsoo/backend/internal/model"
	"github.com/whatsoo/backend/internal/token"
)

func newGateRouter(t *testing.T) (*gin.Engine, *token.Codec) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := token.NewCodec([]byte("gate-test-secret"))
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}

	router := gin.New()
	router.GET("/protected", AuthMiddleware(codec), func(c *gin.Context) {
		user := GetAuthUser(c)
		if user == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing"})
			return
		}
		c.JSON(http.StatusOK, model.MeResponse{UserID: user.ID, Username: user.Username, Email: user.Email})
	})
	return router, codec
}

func TestGateRejectsMissingToken(t *testing.T) {
	router, _ := newGateRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Code != codeMissingToken {
		t.Fatalf("code = %q, want %q", body.Code, codeMissingToken)
	}
}

func TestGateRejectsBadTokens(t *testing.T) {
	router, codec := newGateRouter(t)

	expired, err := codec.Encode(token.Claims{UserID: 1, Username: "u", Email: "u@example.com"}, -time.Minute)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	other, err := token.NewCodec([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	forged, err := other.Encode(token.Claims{UserID: 1, Username: "u", Email: "u@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "garbage"},
		{name: "expired", token: expired},
		{name: "wrong-secret", token: forged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set(TokenHeader, tt.token)
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
			var body model.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("bad body: %v", err)
			}
			if body.Code != codeInvalidToken {
				t.Fatalf("code = %q, want %q", body.Code, codeInvalidToken)
			}
		})
	}
}

func TestGateAttachesIdentity(t *testing.T) {
	router, codec := newGateRouter(t)

	valid, err := codec.Encode(token.Claims{UserID: 42, Username: "alice", Email: "alice@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(TokenHeader, valid)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	var body model.MeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.UserID != 42 || body.Username != "alice" || body.Email != "alice@example.com" {
		t.Fatalf("identity = %+v, want the token claims", body)
	}
}
