// Package fakeapi is an in-process stand-in for the remote auth and
// positions API, used by tests across the module.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"positions-console/internal/model"
)

// Request is a recorded call as the server saw it.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

type failure struct {
	status  int
	message string
}

type user struct {
	id       int64
	password string
	role     string
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	secret    []byte
	users     map[string]user
	nextUser  int64
	tokens    map[string]string
	positions []model.Position
	nextID    int64
	failures  map[string]failure
	requests  []Request
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret:   []byte("fakeapi-secret"),
		users:    map[string]user{},
		tokens:   map[string]string{},
		nextID:   1,
		failures: map[string]failure{},
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/login", s.login)
	r.Post("/register", s.register)
	r.Route("/positions", func(r chi.Router) {
		r.Use(s.requireBearer)
		r.Get("/", s.listPositions)
		r.Post("/", s.createPosition)
		r.Put("/{id}", s.updatePosition)
		r.Delete("/{id}", s.deletePosition)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) AddUser(username string, password string, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	s.users[username] = user{id: s.nextUser, password: password, role: role}
}

// Seed appends rows, assigning ids to rows that carry none.
func (s *Server) Seed(rows ...model.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range rows {
		if p.PositionID == 0 {
			p.PositionID = s.nextID
		}
		if p.PositionID >= s.nextID {
			s.nextID = p.PositionID + 1
		}
		s.positions = append(s.positions, p)
	}
}

// IssueToken returns a valid bearer token for a known user.
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(username)
}

// Expire revokes every issued token.
func (s *Server) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]string{}
}

// FailNext makes the next request matching method and path answer with
// status. An empty message sends no body.
func (s *Server) FailNext(method string, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo filters the recorded requests by method and path.
func (s *Server) RequestsTo(method string, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) Positions() []model.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Position, len(s.positions))
	copy(out, s.positions)
	return out
}

func (s *Server) issueLocked(username string) string {
	u := s.users[username]
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      u.id,
		"username": username,
		"role":     u.role,
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
		"jti":      strconv.FormatInt(now.UnixNano(), 36),
	}).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	s.tokens[token] = username
	return token
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		f, injected := s.failures[r.Method+" "+r.URL.Path]
		if injected {
			delete(s.failures, r.Method+" "+r.URL.Path)
		}
		s.mu.Unlock()

		if injected {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, model.MessageBody{Message: f.message})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		_, valid := s.tokens[token]
		s.mu.Unlock()

		if !ok || !valid {
			writeJSON(w, http.StatusUnauthorized, model.MessageBody{Message: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, model.MessageBody{Message: "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[creds.Username]
	if !ok || u.password != creds.Password {
		writeJSON(w, http.StatusUnauthorized, model.MessageBody{Message: "Invalid credentials"})
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{AccessToken: s.issueLocked(creds.Username)})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, model.MessageBody{Message: "Invalid request body"})
		return
	}
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		writeJSON(w, http.StatusBadRequest, model.MessageBody{Message: "Username and password are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[creds.Username]; exists {
		writeJSON(w, http.StatusConflict, model.MessageBody{Message: "Username already exists"})
		return
	}
	s.nextUser++
	s.users[creds.Username] = user{id: s.nextUser, password: creds.Password, role: "User"}

	writeJSON(w, http.StatusCreated, model.MessageBody{Message: "User registered"})
}

func (s *Server) listPositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Positions())
}

func (s *Server) createPosition(w http.ResponseWriter, r *http.Request) {
	var in model.PositionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, model.MessageBody{Message: "Invalid request body"})
		return
	}
	if strings.TrimSpace(in.PositionCode) == "" {
		writeJSON(w, http.StatusBadRequest, model.MessageBody{Message: "position_code is required"})
		return
	}

	s.mu.Lock()
	p := model.Position{PositionID: s.nextID, PositionCode: in.PositionCode, PositionName: in.PositionName}
	s.nextID++
	s.positions = append(s.positions, p)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updatePosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.MessageBody{Message: "Invalid position id"})
		return
	}

	var in model.PositionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, model.MessageBody{Message: "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.positions {
		if s.positions[i].PositionID != id {
			continue
		}
		if in.PositionCode != "" {
			s.positions[i].PositionCode = in.PositionCode
		}
		if in.PositionName != "" {
			s.positions[i].PositionName = in.PositionName
		}
		writeJSON(w, http.StatusOK, s.positions[i])
		return
	}

	writeJSON(w, http.StatusNotFound, model.MessageBody{Message: "Position not found"})
}

func (s *Server) deletePosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.MessageBody{Message: "Invalid position id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.positions {
		if s.positions[i].PositionID == id {
			s.positions = append(s.positions[:i], s.positions[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	writeJSON(w, http.StatusNotFound, model.MessageBody{Message: "Position not found"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
