package location

import (
	"errors"
	"fmt"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"go.uber.org/zap"
)

// Availability says which location modes this deployment can serve.
type Availability struct {
	DeviceEnabled    bool
	FusedEnabled     bool
	SimulatedEnabled bool
	Fused            FusedConfig
	Simulated        SimulatedConfig
}

// Factory builds a fresh location provider per navigation session.
type Factory struct {
	avail  Availability
	logger *zap.Logger
}

// NewFactory creates a Factory.
func NewFactory(avail Availability, logger *zap.Logger) *Factory {
	return &Factory{avail: avail, logger: logger}
}

// ErrModeUnavailable is wrapped by NewProvider for modes that are disabled.
var ErrModeUnavailable = errors.New("location mode unavailable")

// NewProvider returns a stopped provider for mode.
func (f *Factory) NewProvider(mode navigation.LocationMode) (engine.LocationProvider, error) {
	switch mode {
	case navigation.LocationModeDevice:
		if !f.avail.DeviceEnabled {
			return nil, fmt.Errorf("%w: %s", ErrModeUnavailable, mode)
		}
		return NewDevice(f.logger.Named("device")), nil
	case navigation.LocationModeFused:
		if !f.avail.FusedEnabled {
			return nil, fmt.Errorf("%w: %s", ErrModeUnavailable, mode)
		}
		return NewFused(f.avail.Fused, f.logger.Named("fused")), nil
	case navigation.LocationModeSimulated:
		if !f.avail.SimulatedEnabled {
			return nil, fmt.Errorf("%w: %s", ErrModeUnavailable, mode)
		}
		return NewSimulated(f.avail.Simulated, f.logger.Named("simulated")), nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrModeUnavailable, mode)
	}
}
