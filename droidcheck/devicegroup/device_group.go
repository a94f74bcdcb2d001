package devicegroup

import (
	"context"
	"fmt"
	"sort"
	"sync"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/steelcutops/droidcheck/droidcheck/device"
	"github.com/steelcutops/droidcheck/logger"
)

const defaultConcurrency = 10

type DeviceGroup struct {
	sync.RWMutex
	Devices map[string]*device.Device
	Log     logger.Logger
}

// NewDeviceGroup creates a new DeviceGroup with the given devices.
func NewDeviceGroup(devices ...*device.Device) *DeviceGroup {
	deviceMap := make(map[string]*device.Device)
	for _, d := range devices {
		deviceMap[d.Key()] = d
	}
	return &DeviceGroup{Devices: deviceMap}
}

func (dg *DeviceGroup) log() logger.Logger {
	if dg.Log == nil {
		return logger.Default()
	}
	return dg.Log
}

// AddDevice adds a device, replacing any device with the same key.
func (dg *DeviceGroup) AddDevice(d *device.Device) {
	dg.Lock()
	defer dg.Unlock()
	dg.Devices[d.Key()] = d
}

// RemoveDevice removes a device by its key.
func (dg *DeviceGroup) RemoveDevice(key string) {
	dg.Lock()
	defer dg.Unlock()
	delete(dg.Devices, key)
}

func (dg *DeviceGroup) HasDevice(key string) bool {
	dg.RLock()
	defer dg.RUnlock()
	_, exists := dg.Devices[key]
	return exists
}

// Get looks a device up by key, or by bare serial when the serial is unique
// within the group.
func (dg *DeviceGroup) Get(keyOrSerial string) (*device.Device, bool) {
	dg.RLock()
	defer dg.RUnlock()

	if d, ok := dg.Devices[keyOrSerial]; ok {
		return d, true
	}

	var found *device.Device
	for _, d := range dg.Devices {
		if d.Serial != keyOrSerial {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = d
	}
	return found, found != nil
}

// List returns the devices ordered by key.
func (dg *DeviceGroup) List() []*device.Device {
	dg.RLock()
	defer dg.RUnlock()

	devices := make([]*device.Device, 0, len(dg.Devices))
	for _, d := range dg.Devices {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Key() < devices[j].Key()
	})
	return devices
}

func (dg *DeviceGroup) Len() int {
	dg.RLock()
	defer dg.RUnlock()
	return len(dg.Devices)
}

// Process runs action on every device with at most concurrency actions in
// flight. Errors from all devices are collected into a multierror.
func (dg *DeviceGroup) Process(ctx context.Context, action func(ctx context.Context, d *device.Device) error, concurrency int) error {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	devices := dg.List()
	sem := make(chan struct{}, concurrency)
	errCh := make(chan error, len(devices))
	var wg sync.WaitGroup

	for _, d := range devices {
		wg.Add(1)
		go func(d *device.Device) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errCh <- fmt.Errorf("device %s: %w", d.Key(), err)
				return
			}
			if err := action(ctx, d); err != nil {
				errCh <- fmt.Errorf("error while processing device %s: %w", d.Key(), err)
			}
		}(d)
	}

	wg.Wait()
	close(errCh)

	var result *multierror.Error
	for err := range errCh {
		result = multierror.Append(result, err)
	}

	if result != nil {
		for _, err := range result.Errors {
			dg.log().Error("Device processing error", "error", err)
		}
		return result
	}
	return nil
}
