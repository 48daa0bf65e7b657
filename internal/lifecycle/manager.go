package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/logging"
)

// Manager orchestrates component startup and shutdown. Components start in
// dependency order and stop in reverse start order. A failed start rolls
// back everything started so far.
type Manager struct {
	components   []Component
	dependencies map[Component][]Component
	running      map[Component]bool
	started      []Component // start order, for reverse shutdown

	shutdownTimeout time.Duration
	mu              sync.RWMutex
	regMu           sync.Mutex
	logger          *logging.Logger
}

// NewManager creates a lifecycle manager with a 30 second per-component
// shutdown grace period.
func NewManager() *Manager {
	return &Manager{
		dependencies:    make(map[Component][]Component),
		running:         make(map[Component]bool),
		shutdownTimeout: 30 * time.Second,
		logger:          logging.GetLogger("lifecycle"),
	}
}

// Register adds a component. Dependencies must already be registered, and
// the component starts only after all of them. Duplicate registration and
// dependency cycles are rejected.
func (m *Manager) Register(component Component, dependsOn ...Component) error {
	m.regMu.Lock()
	defer m.regMu.Unlock()

	if component == nil {
		return fmt.Errorf("cannot register nil component")
	}
	if component.Name() == "" {
		return fmt.Errorf("component must have a non-empty name")
	}

	for _, c := range m.components {
		if c == component {
			return fmt.Errorf("component %s is already registered", component.Name())
		}
	}

	for _, dep := range dependsOn {
		registered := false
		for _, c := range m.components {
			if c == dep {
				registered = true
				break
			}
		}
		if !registered {
			return fmt.Errorf("dependency %s is not registered", dep.Name())
		}
	}

	if m.wouldCreateCycle(component, dependsOn) {
		return fmt.Errorf("registering %s would create a circular dependency", component.Name())
	}

	m.components = append(m.components, component)
	m.dependencies[component] = dependsOn
	m.running[component] = false

	m.logger.Debug("registered component %s with %d dependencies", component.Name(), len(dependsOn))
	return nil
}

func (m *Manager) wouldCreateCycle(component Component, dependsOn []Component) bool {
	visited := make(map[Component]bool)
	var reaches func(from Component) bool
	reaches = func(from Component) bool {
		if from == component {
			return true
		}
		if visited[from] {
			return false
		}
		visited[from] = true
		for _, dep := range m.dependencies[from] {
			if reaches(dep) {
				return true
			}
		}
		return false
	}
	for _, dep := range dependsOn {
		if reaches(dep) {
			return true
		}
	}
	return false
}

// Start starts every registered component in dependency order. On failure
// the already started components are stopped in reverse order and the
// error is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.regMu.Lock()
	defer m.regMu.Unlock()

	m.started = nil
	for _, component := range m.topologicalSort() {
		m.logger.Info("starting %s", component.Name())
		startTime := time.Now()

		if err := component.Start(ctx); err != nil {
			m.logger.Error("failed to start %s: %v", component.Name(), err)
			m.rollback()
			return fmt.Errorf("initialization failed for %s: %w", component.Name(), err)
		}

		m.mu.Lock()
		m.running[component] = true
		m.started = append(m.started, component)
		m.mu.Unlock()

		m.logger.Info("%s started (took %dms)", component.Name(), time.Since(startTime).Milliseconds())
	}

	m.logger.Info("all components started")
	return nil
}

// topologicalSort returns components with dependencies before dependents.
func (m *Manager) topologicalSort() []Component {
	visited := make(map[Component]bool)
	var sorted []Component

	var visit func(Component)
	visit = func(c Component) {
		visited[c] = true
		for _, dep := range m.dependencies[c] {
			if !visited[dep] {
				visit(dep)
			}
		}
		sorted = append(sorted, c)
	}

	for _, c := range m.components {
		if !visited[c] {
			visit(c)
		}
	}
	return sorted
}

// rollback stops components started during a failed Start, newest first.
func (m *Manager) rollback() {
	for i := len(m.started) - 1; i >= 0; i-- {
		component := m.started[i]
		m.logger.Debug("rolling back: stopping %s", component.Name())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := component.Stop(ctx); err != nil {
			m.logger.Warn("error stopping %s during rollback: %v", component.Name(), err)
		}
		cancel()

		m.mu.Lock()
		m.running[component] = false
		m.mu.Unlock()
	}
}

// Stop stops started components in reverse start order. Each component
// gets its own grace period. Shutdown errors are logged, not returned, so
// a stuck component never prevents the rest from stopping.
func (m *Manager) Stop(ctx context.Context) error {
	m.regMu.Lock()
	defer m.regMu.Unlock()

	m.logger.Info("stopping all components")

	for i := len(m.started) - 1; i >= 0; i-- {
		component := m.started[i]
		if !m.IsRunning(component) {
			continue
		}

		m.logger.Info("stopping %s", component.Name())
		startTime := time.Now()

		componentCtx, cancel := context.WithTimeout(ctx, m.shutdownTimeout)
		err := component.Stop(componentCtx)
		cancel()

		if err != nil {
			if err == context.DeadlineExceeded {
				m.logger.Warn("%s exceeded grace period (%dms)", component.Name(), m.shutdownTimeout.Milliseconds())
			} else {
				m.logger.Error("error stopping %s: %v", component.Name(), err)
			}
		} else {
			m.logger.Info("%s stopped (took %dms)", component.Name(), time.Since(startTime).Milliseconds())
		}

		m.mu.Lock()
		m.running[component] = false
		m.mu.Unlock()
	}

	m.logger.Info("all components stopped")
	return nil
}

// IsRunning reports whether the component started and has not stopped.
func (m *Manager) IsRunning(component Component) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running[component]
}

// SetShutdownTimeout overrides the per-component shutdown grace period.
func (m *Manager) SetShutdownTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownTimeout = timeout
}
