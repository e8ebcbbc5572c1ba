package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/craftwork/handwerk/api"
	"github.com/craftwork/handwerk/pkg/models"
	"github.com/craftwork/handwerk/pkg/repository/mock"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthHandlers(t *testing.T) {
	secret := "testsecret"
	tokenDur := 1 * time.Hour

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret99"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		prepare    func(m *mock.Mocks)
		wantStatus int
		checkBody  func(t *testing.T, m *mock.Mocks, body []byte)
	}{
		{
			name:       "Signup_InvalidRequest",
			method:     http.MethodPost,
			path:       "/signup",
			body:       "not a json",
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_MissingPassword",
			method:     http.MethodPost,
			path:       "/signup",
			body:       map[string]string{"email": "alice@example.com"},
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_ShortPassword",
			method:     http.MethodPost,
			path:       "/signup",
			body:       map[string]string{"email": "alice@example.com", "password": "abc"},
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_AdminRoleRejected",
			method:     http.MethodPost,
			path:       "/signup",
			body:       map[string]string{"email": "root@example.com", "password": "s3cret99", "role": "ADMIN"},
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_DefaultsToCustomer",
			method:     http.MethodPost,
			path:       "/signup",
			body:       map[string]string{"email": "alice@example.com", "password": "s3cret99"},
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusCreated,
			checkBody: func(t *testing.T, m *mock.Mocks, b []byte) {
				claims := parseToken(t, b, secret)
				if claims["role"] != string(models.RoleCustomer) {
					t.Fatalf("expected CUSTOMER role claim, got %v", claims["role"])
				}
				if m.ProfileRepo.Customer == nil || m.ProfileRepo.Customer.AccountID != 1 {
					t.Fatalf("expected customer profile row, got %#v", m.ProfileRepo.Customer)
				}
			},
		},
		{
			name:       "Signup_Craftsman",
			method:     http.MethodPost,
			path:       "/signup",
			body:       map[string]string{"email": "bob@example.com", "password": "s3cret99", "role": "CRAFTSMAN"},
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusCreated,
			checkBody: func(t *testing.T, m *mock.Mocks, b []byte) {
				claims := parseToken(t, b, secret)
				if claims["role"] != string(models.RoleCraftsman) {
					t.Fatalf("expected CRAFTSMAN role claim, got %v", claims["role"])
				}
				if m.ProfileRepo.Craftsman == nil {
					t.Fatalf("expected craftsman profile row")
				}
			},
		},
		{
			name:   "Signup_DuplicateEmail",
			method: http.MethodPost,
			path:   "/signup",
			body:   map[string]string{"email": "taken@example.com", "password": "s3cret99"},
			prepare: func(m *mock.Mocks) {
				m.AccountRepo.Stored = &models.Account{ID: 1, Email: "taken@example.com", Role: models.RoleCustomer}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "Signin_OK",
			method: http.MethodPost,
			path:   "/signin",
			body:   map[string]string{"email": "alice@example.com", "password": "s3cret99"},
			prepare: func(m *mock.Mocks) {
				m.AccountRepo.Stored = &models.Account{ID: 7, Email: "alice@example.com", Role: models.RoleCustomer, PasswordHash: string(hash)}
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, m *mock.Mocks, b []byte) {
				claims := parseToken(t, b, secret)
				if claims["account_id"] != float64(7) {
					t.Fatalf("expected account_id 7, got %v", claims["account_id"])
				}
			},
		},
		{
			name:   "Signin_WrongPassword",
			method: http.MethodPost,
			path:   "/signin",
			body:   map[string]string{"email": "alice@example.com", "password": "wrongpass"},
			prepare: func(m *mock.Mocks) {
				m.AccountRepo.Stored = &models.Account{ID: 7, Email: "alice@example.com", Role: models.RoleCustomer, PasswordHash: string(hash)}
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Signin_UnknownEmail",
			method:     http.MethodPost,
			path:       "/signin",
			body:       map[string]string{"email": "ghost@example.com", "password": "s3cret99"},
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Signin_MissingFields",
			method:     http.MethodPost,
			path:       "/signin",
			body:       map[string]string{"email": "alice@example.com"},
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signout_OK",
			method:     http.MethodPost,
			path:       "/signout",
			body:       nil,
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := mock.NewMocks()
			tc.prepare(m)

			h := api.NewAuthHandler(m.AccountRepo, m.ProfileRepo, secret, tokenDur)

			var buf bytes.Buffer
			switch body := tc.body.(type) {
			case nil:
			case string:
				buf.WriteString(body)
			default:
				if err := json.NewEncoder(&buf).Encode(body); err != nil {
					t.Fatalf("encode body: %v", err)
				}
			}

			req := httptest.NewRequest(tc.method, tc.path, &buf)
			w := httptest.NewRecorder()

			switch tc.path {
			case "/signup":
				h.Signup(w, req)
			case "/signin":
				h.Signin(w, req)
			case "/signout":
				h.Signout(w, req)
			}

			res := w.Result()
			defer res.Body.Close()
			if res.StatusCode != tc.wantStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tc.wantStatus, res.StatusCode, w.Body.String())
			}
			if tc.checkBody != nil {
				tc.checkBody(t, m, w.Body.Bytes())
			}
		})
	}
}

func parseToken(t *testing.T, body []byte, secret string) jwt.MapClaims {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode auth response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected token in response, got %s", body)
	}

	token, err := jwt.Parse(resp.Token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse token: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", token.Claims)
	}
	return claims
}
