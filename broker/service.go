// Package broker runs the ingestion pipeline: MQTT feeds, collectors,
// solidifiers, the archiver and the syncer.
package broker

// ServiceStatus is the lifecycle state of a broker component.
type ServiceStatus string

const (
	StatusStarting     ServiceStatus = "Starting"
	StatusInitializing ServiceStatus = "Initializing"
	StatusRunning      ServiceStatus = "Running"
	StatusDegraded     ServiceStatus = "Degraded"
	StatusStopping     ServiceStatus = "Stopping"
	StatusStopped      ServiceStatus = "Stopped"
)

// Service is a status snapshot of a component and its children.
type Service struct {
	Name     string        `json:"name"`
	Status   ServiceStatus `json:"status"`
	Children []Service     `json:"children,omitempty"`
}

// IsRunning reports whether the component is serving, possibly degraded.
func (s ServiceStatus) IsRunning() bool {
	return s == StatusRunning || s == StatusDegraded
}
