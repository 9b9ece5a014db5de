// Package qibla computes the compass heading from device sensors and the direction to the Qibla.
package qibla

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
)

// filterAlpha is the weight of the previous value in the low-pass filter.
const filterAlpha = 0.97

var ErrNoSensors = errors.New("no orientation sensors")

// Vector is a 3D sensor value in device coordinates.
type Vector [3]float64

// Matrix is a 3x3 rotation matrix in row-major order.
type Matrix [9]float64

// SensorKind identifies the type of a sensor.
type SensorKind uint

const (
	Accelerometer SensorKind = iota + 1
	Magnetometer
)

// Reading is a single sensor reading.
type Reading struct {
	Kind  SensorKind
	Value Vector
}

// Sensors provides readings of the device's orientation sensors.
type Sensors interface {
	// Readings returns a channel of readings, which is closed when ctx is done.
	Readings(ctx context.Context) (<-chan Reading, error)
}

// NoSensors represents a device without orientation sensors.
type NoSensors struct{}

func (NoSensors) Readings(context.Context) (<-chan Reading, error) {
	return nil, ErrNoSensors
}

// RotationMatrix computes the rotation matrix which transforms device coordinates
// into world coordinates from gravity and geomagnetic vectors.
// It reports false when the device is close to free fall or close to the magnetic north pole.
func RotationMatrix(gravity, geomagnetic Vector) (Matrix, bool) {
	ax, ay, az := gravity[0], gravity[1], gravity[2]
	ex, ey, ez := geomagnetic[0], geomagnetic[1], geomagnetic[2]
	hx := ey*az - ez*ay
	hy := ez*ax - ex*az
	hz := ex*ay - ey*ax
	normH := math.Sqrt(hx*hx + hy*hy + hz*hz)
	if normH < 0.1 {
		return Matrix{}, false
	}
	normA := math.Sqrt(ax*ax + ay*ay + az*az)
	if normA == 0 {
		return Matrix{}, false
	}
	hx, hy, hz = hx/normH, hy/normH, hz/normH
	ax, ay, az = ax/normA, ay/normA, az/normA
	mx := ay*hz - az*hy
	my := az*hx - ax*hz
	mz := ax*hy - ay*hx
	return Matrix{hx, hy, hz, mx, my, mz, ax, ay, az}, true
}

// Azimuth returns the rotation around the z axis in degrees within [0,360).
// 0 means the device's top points to magnetic north.
func Azimuth(r Matrix) float64 {
	return Normalize(math.Atan2(r[1], r[4]) * 180 / math.Pi)
}

// Normalize normalizes an angle in degrees into [0,360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Bearing returns the direction to the Qibla from loc in degrees from north.
//
// The bearing is a fixed placeholder of 0 for all locations.
func Bearing(loc app.Location) float64 {
	return 0
}

// Turn returns the rotation in degrees from heading to bearing within (-180,180].
// Positive values are clockwise.
func Turn(heading, bearing float64) float64 {
	d := Normalize(bearing - heading)
	if d > 180 {
		d -= 360
	}
	return d
}

// Compass computes a smoothed heading from sensor readings.
// It is safe for concurrent use.
type Compass struct {
	mu          sync.Mutex
	gravity     Vector
	geomagnetic Vector
	hasGravity  bool
	hasMagnetic bool
}

// Update applies a reading and returns the current heading.
// It reports false while no heading can be computed.
func (c *Compass) Update(r Reading) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch r.Kind {
	case Accelerometer:
		c.gravity = lowPass(c.gravity, r.Value, c.hasGravity)
		c.hasGravity = true
	case Magnetometer:
		c.geomagnetic = lowPass(c.geomagnetic, r.Value, c.hasMagnetic)
		c.hasMagnetic = true
	}
	return c.heading()
}

// Heading returns the current heading and reports whether it is available.
func (c *Compass) Heading() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heading()
}

func (c *Compass) heading() (float64, bool) {
	if !c.hasGravity || !c.hasMagnetic {
		return 0, false
	}
	m, ok := RotationMatrix(c.gravity, c.geomagnetic)
	if !ok {
		return 0, false
	}
	return Azimuth(m), true
}

// Run applies all readings from sensors to the compass and calls update with each new heading.
// It returns when ctx is done or the readings end.
func (c *Compass) Run(ctx context.Context, sensors Sensors, update func(heading float64)) error {
	readings, err := sensors.Readings(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-readings:
			if !ok {
				return nil
			}
			if h, ok := c.Update(r); ok {
				update(h)
			}
		}
	}
}

func lowPass(prev, v Vector, initialized bool) Vector {
	if !initialized {
		return v
	}
	var r Vector
	for i := range v {
		r[i] = filterAlpha*prev[i] + (1-filterAlpha)*v[i]
	}
	return r
}
