// Package testutil provides test infrastructure for the smoke harness: an
// in-memory stand-in for the meal service and a filesystem/database harness.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
)

// difficultyModifiers match the service's battle scoring.
var difficultyModifiers = map[string]float64{
	"HIGH": 1,
	"MED":  2,
	"LOW":  3,
}

type stubMeal struct {
	ID         int     `json:"id"`
	Name       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
	Deleted    bool    `json:"-"`
	Battles    int     `json:"-"`
	Wins       int     `json:"-"`
}

// MealServer is an in-memory meal service used to test the harness without
// a live deployment. It mirrors the real service's endpoints, validation
// rules, and battle arithmetic, with an injectable randomness source so
// battle outcomes are deterministic in tests.
type MealServer struct {
	mu         sync.Mutex
	nextID     int
	meals      []*stubMeal
	combatants []*stubMeal
	random     func() float64
	healthy    bool
	dbHealthy  bool

	srv *httptest.Server
}

// NewMealServer starts a stub service on a random local port.
func NewMealServer() *MealServer {
	s := &MealServer{
		nextID:    1,
		random:    func() float64 { return 0.42 },
		healthy:   true,
		dbHealthy: true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/db-check", s.handleDBCheck)
	mux.HandleFunc("POST /api/create-meal", s.handleCreateMeal)
	mux.HandleFunc("DELETE /api/clear-meals", s.handleClearMeals)
	mux.HandleFunc("DELETE /api/delete-meal/{id}", s.handleDeleteMeal)
	mux.HandleFunc("GET /api/get-meal-by-id/{id}", s.handleGetMealByID)
	mux.HandleFunc("GET /api/get-meal-by-name/{name}", s.handleGetMealByName)
	mux.HandleFunc("POST /api/prep-combatant", s.handlePrepCombatant)
	mux.HandleFunc("GET /api/get-combatants", s.handleGetCombatants)
	mux.HandleFunc("POST /api/clear-combatants", s.handleClearCombatants)
	mux.HandleFunc("GET /api/battle", s.handleBattle)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)

	s.srv = httptest.NewServer(mux)
	return s
}

// URL returns the stub service's base URL.
func (s *MealServer) URL() string {
	return s.srv.URL
}

// Close shuts the stub down.
func (s *MealServer) Close() {
	s.srv.Close()
}

// SetRandom injects the battle randomness source.
func (s *MealServer) SetRandom(fn func() float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.random = fn
}

// SetHealthy controls the health endpoint.
func (s *MealServer) SetHealthy(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = ok
}

// SetDBHealthy controls the db-check endpoint.
func (s *MealServer) SetDBHealthy(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbHealthy = ok
}

// MealCount returns the number of non-deleted meals.
func (s *MealServer) MealCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.meals {
		if !m.Deleted {
			n++
		}
	}
	return n
}

// The real service renders JSON with ": " separators; substring assertions
// in the suite depend on that, so the stub indents too.
func writeJSON(w http.ResponseWriter, code int, v any) {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(buf)
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, struct {
		Error string `json:"error"`
	}{Error: msg})
}

func (s *MealServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	healthy := s.healthy
	s.mu.Unlock()

	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, struct {
			Status string `json:"status"`
		}{Status: "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "healthy"})
}

func (s *MealServer) handleDBCheck(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ok := s.dbHealthy
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "database check failed")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		DatabaseStatus string `json:"database_status"`
	}{DatabaseStatus: "healthy"})
}

func (s *MealServer) handleCreateMeal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Meal       string  `json:"meal"`
		Cuisine    string  `json:"cuisine"`
		Price      float64 `json:"price"`
		Difficulty string  `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid price: %v. Price must be a positive number.", req.Price))
		return
	}
	if _, ok := difficultyModifiers[req.Difficulty]; !ok {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid difficulty level: %s. Must be 'LOW', 'MED', or 'HIGH'.", req.Difficulty))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.meals {
		if m.Name == req.Meal {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Meal with name '%s' already exists", req.Meal))
			return
		}
	}

	m := &stubMeal{
		ID:         s.nextID,
		Name:       req.Meal,
		Cuisine:    req.Cuisine,
		Price:      req.Price,
		Difficulty: req.Difficulty,
	}
	s.nextID++
	s.meals = append(s.meals, m)

	writeJSON(w, http.StatusCreated, struct {
		Status string `json:"status"`
		Meal   string `json:"meal"`
	}{Status: "success", Meal: m.Name})
}

func (s *MealServer) handleClearMeals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.meals = nil
	s.combatants = nil
	s.nextID = 1
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "success"})
}

func (s *MealServer) findByID(id int) *stubMeal {
	for _, m := range s.meals {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *MealServer) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid meal id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.findByID(id)
	if m == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Meal with ID %d not found", id))
		return
	}
	if m.Deleted {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Meal with ID %d has been deleted", id))
		return
	}
	m.Deleted = true

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "success"})
}

func (s *MealServer) handleGetMealByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid meal id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.findByID(id)
	if m == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Meal with ID %d not found", id))
		return
	}
	if m.Deleted {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Meal with ID %d has been deleted", id))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Status string    `json:"status"`
		Meal   *stubMeal `json:"meal"`
	}{Status: "success", Meal: m})
}

func (s *MealServer) handleGetMealByName(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.meals {
		if m.Name == name {
			if m.Deleted {
				writeError(w, http.StatusNotFound, fmt.Sprintf("Meal with name %s has been deleted", name))
				return
			}
			writeJSON(w, http.StatusOK, struct {
				Status string    `json:"status"`
				Meal   *stubMeal `json:"meal"`
			}{Status: "success", Meal: m})
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Meal with name %s not found", name))
}

func (s *MealServer) handlePrepCombatant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Meal string `json:"meal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.combatants) >= 2 {
		writeError(w, http.StatusBadRequest, "Combatant list is full, cannot add more combatants.")
		return
	}

	for _, m := range s.meals {
		if m.Name == req.Meal && !m.Deleted {
			s.combatants = append(s.combatants, m)
			writeJSON(w, http.StatusOK, struct {
				Status    string `json:"status"`
				Combatant string `json:"combatant"`
			}{Status: "success", Combatant: m.Name})
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Meal with name %s not found", req.Meal))
}

func (s *MealServer) handleGetCombatants(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	combatants := make([]*stubMeal, len(s.combatants))
	copy(combatants, s.combatants)

	writeJSON(w, http.StatusOK, struct {
		Status     string      `json:"status"`
		Combatants []*stubMeal `json:"combatants"`
	}{Status: "success", Combatants: combatants})
}

func (s *MealServer) handleClearCombatants(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.combatants = nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "success"})
}

func battleScore(m *stubMeal) float64 {
	return m.Price*float64(len(m.Cuisine)) - difficultyModifiers[m.Difficulty]
}

func (s *MealServer) handleBattle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.combatants) < 2 {
		writeError(w, http.StatusBadRequest, "Two combatants must be prepped for a battle.")
		return
	}

	c1, c2 := s.combatants[0], s.combatants[1]
	score1 := battleScore(c1)
	score2 := battleScore(c2)
	delta := score1 - score2
	if delta < 0 {
		delta = -delta
	}
	delta /= 100

	winner, loser := c2, c1
	if s.random() < delta {
		winner, loser = c1, c2
	}

	winner.Battles++
	winner.Wins++
	loser.Battles++

	// Loser leaves the ring; winner stays for the next challenger.
	s.combatants = []*stubMeal{winner}

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		Winner string `json:"winner"`
	}{Status: "battle complete", Winner: winner.Name})
}

type leaderboardRow struct {
	ID         int     `json:"id"`
	Name       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
	Battles    int     `json:"battles"`
	Wins       int     `json:"wins"`
	WinPct     float64 `json:"win_pct"`
}

func (s *MealServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = "wins"
	}
	if sortBy != "wins" && sortBy != "win_pct" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid sort_by parameter: %s", sortBy))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []leaderboardRow
	for _, m := range s.meals {
		if m.Deleted || m.Battles == 0 {
			continue
		}
		rows = append(rows, leaderboardRow{
			ID:         m.ID,
			Name:       m.Name,
			Cuisine:    m.Cuisine,
			Price:      m.Price,
			Difficulty: m.Difficulty,
			Battles:    m.Battles,
			Wins:       m.Wins,
			WinPct:     100 * float64(m.Wins) / float64(m.Battles),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if sortBy == "wins" {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].WinPct > rows[j].WinPct
	})

	if rows == nil {
		rows = []leaderboardRow{}
	}
	writeJSON(w, http.StatusOK, struct {
		Status      string           `json:"status"`
		Leaderboard []leaderboardRow `json:"leaderboard"`
	}{Status: "success", Leaderboard: rows})
}
