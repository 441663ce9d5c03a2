package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RowBudgetConfig limits how many records a client may request within a window
type RowBudgetConfig struct {
	// Rows is the record budget per client within the window
	Rows int
	// Window is the time window for the budget
	Window time.Duration
	// KeyFunc identifies the client (defaults to IP)
	KeyFunc func(c echo.Context) string
	// CostFunc returns how many rows a request consumes (defaults to the "count" query param, 1 if absent)
	CostFunc func(c echo.Context) int
	// Message is the error message returned when the budget is exhausted
	Message string
}

type budgetEntry struct {
	used      int
	expiresAt time.Time
}

// RowBudget is a per-client record budget for generation endpoints
type RowBudget struct {
	config RowBudgetConfig
	store  map[string]*budgetEntry
	mu     sync.Mutex
	stop   chan struct{}
	once   sync.Once
}

// NewRowBudget creates a budget limiter and starts its cleanup loop
func NewRowBudget(config RowBudgetConfig) *RowBudget {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.CostFunc == nil {
		config.CostFunc = CountParamCost
	}
	if config.Message == "" {
		config.Message = "Record budget exceeded. Please try again later."
	}

	rb := &RowBudget{
		config: config,
		store:  make(map[string]*budgetEntry),
		stop:   make(chan struct{}),
	}

	go rb.cleanup()

	return rb
}

// CountParamCost charges the "count" query parameter, or 1 when it is missing or invalid
func CountParamCost(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("count"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Middleware returns the budget enforcing middleware
func (rb *RowBudget) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rb.config.KeyFunc(c)
			cost := rb.config.CostFunc(c)
			now := time.Now()

			rb.mu.Lock()
			entry, exists := rb.store[key]
			if !exists || now.After(entry.expiresAt) {
				entry = &budgetEntry{expiresAt: now.Add(rb.config.Window)}
				rb.store[key] = entry
			}
			if entry.used+cost > rb.config.Rows {
				rb.mu.Unlock()
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(time.Until(entry.expiresAt).Seconds())+1))
				return echo.NewHTTPError(http.StatusTooManyRequests, rb.config.Message)
			}
			entry.used += cost
			rb.mu.Unlock()

			return next(c)
		}
	}
}

// Remaining returns the unused budget for key
func (rb *RowBudget) Remaining(key string) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	entry, ok := rb.store[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return rb.config.Rows
	}
	return rb.config.Rows - entry.used
}

// Close stops the cleanup loop
func (rb *RowBudget) Close() {
	rb.once.Do(func() { close(rb.stop) })
}

// cleanup removes expired entries every minute
func (rb *RowBudget) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rb.stop:
			return
		case <-ticker.C:
			rb.mu.Lock()
			now := time.Now()
			for key, entry := range rb.store {
				if now.After(entry.expiresAt) {
					delete(rb.store, key)
				}
			}
			rb.mu.Unlock()
		}
	}
}
