// mock_service.go - Mock dashboard service for handler tests
package testutil

import (
	"context"
	"sync"

	"github.com/foreign-arrivals/dashboard/internal/models"
)

// MockDashboardService records the selections it receives and answers with
// the configured functions.
type MockDashboardService struct {
	OptionsFunc func(ctx context.Context) (models.Options, error)
	QueryFunc   func(ctx context.Context, in models.SelectionInput) (*models.Dashboard, error)
	IsReady     bool

	mu     sync.Mutex
	inputs []models.SelectionInput
}

// NewMockDashboardService creates a ready mock that returns empty results.
func NewMockDashboardService() *MockDashboardService {
	return &MockDashboardService{IsReady: true}
}

func (m *MockDashboardService) Options(ctx context.Context) (models.Options, error) {
	if m.OptionsFunc != nil {
		return m.OptionsFunc(ctx)
	}
	return models.Options{}, nil
}

func (m *MockDashboardService) Query(ctx context.Context, in models.SelectionInput) (*models.Dashboard, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()

	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, in)
	}
	return &models.Dashboard{}, nil
}

func (m *MockDashboardService) Ready() bool {
	return m.IsReady
}

// Inputs returns every selection passed to Query, in call order.
func (m *MockDashboardService) Inputs() []models.SelectionInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SelectionInput(nil), m.inputs...)
}

// LastInput returns the most recent selection, or the zero value.
func (m *MockDashboardService) LastInput() models.SelectionInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		return models.SelectionInput{}
	}
	return m.inputs[len(m.inputs)-1]
}

// MockMetrics counts ObserveQuery calls by view and outcome.
type MockMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{counts: make(map[string]int)}
}

func (m *MockMetrics) ObserveQuery(view, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[view+"/"+outcome]++
}

// Count returns how often (view, outcome) was observed.
func (m *MockMetrics) Count(view, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[view+"/"+outcome]
}
