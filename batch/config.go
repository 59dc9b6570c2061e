package batch

import (
	"fmt"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config retrieves the config values used by a Debouncer. If these values
// are constant, NewConstantConfig can be used to create an implementation
// of the interface.
//
// The config is read every time the flush timer is armed, so a dynamic
// implementation can change the delay while the Debouncer is running.
type Config interface {
	// Get returns the values for configuration.
	//
	// If the config values may be modified while a Debouncer is running,
	// Get must properly handle concurrency issues.
	Get() ConfigValues
}

// ConfigValues contains the Debouncer config values.
type ConfigValues struct {
	// Delay is the debounce window. Each pull from the source is raced
	// against a timer of this length; if the timer wins, whatever has been
	// buffered so far is handed to the oldest waiting Next call. Items that
	// keep arriving less than Delay apart are coalesced into one batch.
	//
	// Delay must be positive.
	Delay time.Duration `json:"delay" toml:"delay"`
}

// Validate reports whether the values can be used by a Debouncer.
func (v ConfigValues) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Delay, validation.Required, validation.Min(time.Nanosecond)),
	)
}

// validateConfig checks the values of c, using DefaultDelay for a nil c.
func validateConfig(c Config) (ConfigValues, error) {
	if c == nil {
		return ConfigValues{Delay: DefaultDelay}, nil
	}

	values := c.Get()
	if err := values.Validate(); err != nil {
		return ConfigValues{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return values, nil
}

// fixConfig replaces an invalid delay returned by a dynamic Config with the
// last delay that was valid.
func fixConfig(c ConfigValues, last time.Duration) ConfigValues {
	if c.Delay <= 0 {
		c.Delay = last
	}
	return c
}

// NewConstantConfig returns a Config with constant values. If values
// is nil, the default values are used.
func NewConstantConfig(values *ConfigValues) *ConstantConfig {
	if values == nil {
		return &ConstantConfig{
			values: ConfigValues{Delay: DefaultDelay},
		}
	}

	return &ConstantConfig{
		values: *values,
	}
}

// ConstantConfig is a Config with constant values. Create one with
// NewConstantConfig.
//
// This implementation is safe to use concurrently since the values
// never change after initialization.
type ConstantConfig struct {
	values ConfigValues
}

// Get implements the Config interface.
func (b *ConstantConfig) Get() ConfigValues {
	return b.values
}

// NewDynamicConfig creates a configuration that can be adjusted at runtime.
// It is thread-safe and suitable for tuning the debounce window in response
// to load, for example widening it when the consumer falls behind.
//
// If values is nil, the default values are used.
func NewDynamicConfig(values *ConfigValues) *DynamicConfig {
	if values == nil {
		return &DynamicConfig{delay: DefaultDelay}
	}

	return &DynamicConfig{
		delay: values.Delay,
	}
}

// DynamicConfig implements the Config interface with values that can be
// modified at runtime.
//
// A change takes effect the next time the flush timer is armed; a timer that
// is already running keeps its original delay.
type DynamicConfig struct {
	mu    sync.RWMutex
	delay time.Duration
}

// Get implements the Config interface by returning the current configuration values.
func (c *DynamicConfig) Get() ConfigValues {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ConfigValues{
		Delay: c.delay,
	}
}

// UpdateDelay updates the debounce window.
// A non-positive delay is ignored by running Debouncers, which keep using the
// last valid value.
func (c *DynamicConfig) UpdateDelay(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = delay
}

// Update replaces all configuration values at once.
func (c *DynamicConfig) Update(config ConfigValues) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = config.Delay
}
