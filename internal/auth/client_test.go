package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginReturnsUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding login body: %v", err)
		}
		if body["email"] != "dispatcher@swiftlogistics.lk" {
			t.Errorf("email = %q", body["email"])
		}

		json.NewEncoder(w).Encode(map[string]string{
			"id":    "u-17",
			"name":  "Dispatcher",
			"email": "dispatcher@swiftlogistics.lk",
			"token": "tok-abc",
		})
	}))
	defer srv.Close()

	user, err := NewClient(srv.URL).Login(
		context.Background(), "dispatcher@swiftlogistics.lk", "hunter2",
	)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != "u-17" || user.Token != "tok-abc" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), "x@y.z", "wrong")
	if err == nil {
		t.Fatal("expected error for rejected login")
	}
	if !IsLoginError(err) {
		t.Fatalf("expected LoginError, got %T: %v", err, err)
	}
}

func TestSignupMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/signup" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id": "u-1", "name": "New User", "email": "new@x.y",
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Signup(context.Background(), "New User", "new@x.y", "pw")
	if err == nil {
		t.Fatal("expected error when response carries no token")
	}
	if IsLoginError(err) {
		t.Fatalf("tokenless 200 should not be a LoginError: %v", err)
	}
}
