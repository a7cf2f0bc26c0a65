//go:build darwin

package beep

import (
	"encoding/binary"
	"sync"

	"github.com/gen2brain/malgo"
)

var (
	malgoCtx *malgo.AllocatedContext
	initOnce sync.Once
	initErr  error

	deviceMu sync.Mutex
	device   *malgo.Device

	playMu  sync.Mutex
	pending []byte // drained by the device callback
)

func initDevice() error {
	initOnce.Do(func() {
		malgoCtx, initErr = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	})
	if initErr != nil {
		return initErr
	}
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	d, err := malgo.InitDevice(malgoCtx.Context, config, malgo.DeviceCallbacks{Data: dataCallback})
	if err != nil {
		return err
	}
	device = d
	return nil
}

func dataCallback(out, _ []byte, _ uint32) {
	playMu.Lock()
	n := copy(out, pending)
	pending = pending[n:]
	playMu.Unlock()
	clear(out[n:])
}

func playSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	buf := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(s))
	}

	deviceMu.Lock()
	defer deviceMu.Unlock()
	if device == nil {
		if err := initDevice(); err != nil {
			return
		}
	}
	device.Stop()
	playMu.Lock()
	pending = buf
	playMu.Unlock()
	if err := device.Start(); err != nil {
		// Recreate after sleep/wake.
		device.Uninit()
		device = nil
		if err := initDevice(); err == nil {
			device.Start()
		}
	}
}
