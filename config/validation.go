package config

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"permanode/logger"
)

var keyspaceNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,47}$`)

var validConsistencies = map[string]bool{
	"ANY": true, "ONE": true, "TWO": true, "THREE": true, "QUORUM": true,
	"ALL": true, "LOCAL_QUORUM": true, "EACH_QUORUM": true, "LOCAL_ONE": true,
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	var errs []error

	if len(c.Storage.Keyspaces) == 0 {
		errs = append(errs, errors.New("storage.keyspaces must list at least one keyspace"))
	}
	seen := make(map[string]bool)
	for i, ks := range c.Storage.Keyspaces {
		if ks.Name == "" {
			errs = append(errs, fmt.Errorf("storage.keyspaces[%d].name is required", i))
			continue
		}
		if !keyspaceNamePattern.MatchString(ks.Name) {
			errs = append(errs, fmt.Errorf("storage.keyspaces[%d].name %q is not a valid keyspace name", i, ks.Name))
		}
		if seen[ks.Name] {
			errs = append(errs, fmt.Errorf("storage.keyspaces[%d].name %q is duplicated", i, ks.Name))
		}
		seen[ks.Name] = true
		if len(ks.DataCenters) == 0 {
			errs = append(errs, fmt.Errorf("storage.keyspaces[%d].data_centers must not be empty", i))
		}
		for j, dc := range ks.DataCenters {
			if dc.Name == "" {
				errs = append(errs, fmt.Errorf("storage.keyspaces[%d].data_centers[%d].name is required", i, j))
			}
			if dc.ReplicationFactor <= 0 {
				errs = append(errs, fmt.Errorf("storage.keyspaces[%d].data_centers[%d].replication_factor must be positive", i, j))
			}
		}
	}
	if len(c.Storage.Nodes) == 0 {
		errs = append(errs, errors.New("storage.nodes must list at least one node"))
	}
	for i, node := range c.Storage.Nodes {
		if err := ValidateNodeAddress(node); err != nil {
			errs = append(errs, fmt.Errorf("storage.nodes[%d]: %w", i, err))
		}
	}
	if !validConsistencies[strings.ToUpper(c.Storage.Consistency)] {
		errs = append(errs, fmt.Errorf("storage.consistency %q is unknown", c.Storage.Consistency))
	}
	if c.Storage.ThreadCount.Count > 0 && c.Storage.ThreadCount.CoreMultiple > 0 {
		errs = append(errs, errors.New("storage.thread_count sets both count and core_multiple"))
	}
	if c.Storage.ThreadCount.Count < 0 || c.Storage.ThreadCount.CoreMultiple < 0 {
		errs = append(errs, errors.New("storage.thread_count must not be negative"))
	}

	if c.API.DefaultPageSize <= 0 || c.API.MaxPageSize <= 0 {
		errs = append(errs, errors.New("api page sizes must be positive"))
	} else if c.API.DefaultPageSize > c.API.MaxPageSize {
		errs = append(errs, errors.New("api.default_page_size exceeds api.max_page_size"))
	}

	if c.Broker.CollectorsCount <= 0 || c.Broker.CollectorsCount > 255 {
		errs = append(errs, fmt.Errorf("broker.collectors_count %d must be within [1, 255]", c.Broker.CollectorsCount))
	}
	if c.Broker.RetriesPerEndpoint <= 0 {
		errs = append(errs, errors.New("broker.retries_per_endpoint must be positive"))
	}
	if c.Broker.LogsDir == "" {
		errs = append(errs, errors.New("broker.logs_dir is required"))
	}
	if c.Broker.MaxLogSize <= 0 {
		errs = append(errs, errors.New("broker.max_log_size must be positive"))
	}
	if c.Broker.SyncInterval <= 0 {
		errs = append(errs, fmt.Errorf("broker.sync_interval %s must be positive", c.Broker.SyncInterval))
	}
	if c.Broker.SolidifyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("broker.solidify_timeout %s must be positive", c.Broker.SolidifyTimeout))
	}
	if c.API.RequestTimeout < 0 {
		errs = append(errs, errors.New("api.request_timeout must not be negative"))
	}
	if err := c.Broker.SyncRange.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("broker.sync_range: %w", err))
	}

	if c.Websocket.Address == "" {
		errs = append(errs, errors.New("websocket.address is required"))
	}

	if !logger.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// ValidateNodeAddress checks a storage node address of the form host:port.
func ValidateNodeAddress(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid node address %q: %w", addr, err)
	}
	if host == "" {
		return fmt.Errorf("invalid node address %q: empty host", addr)
	}
	if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid node address %q: bad port", addr)
	}
	return nil
}
