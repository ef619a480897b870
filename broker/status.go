package broker

import "sync/atomic"

type statusBox struct {
	v atomic.Value
}

func (s *statusBox) set(status ServiceStatus) { s.v.Store(status) }

func (s *statusBox) get() ServiceStatus {
	if status, ok := s.v.Load().(ServiceStatus); ok {
		return status
	}
	return StatusStarting
}
