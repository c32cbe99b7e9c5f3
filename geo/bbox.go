// Package geo holds the bounding box of a rendered map and the degree/kilometer conversions around it.
//
// The earth is treated as a perfect sphere and the projection is equirectangular with a latitude correction,
// which is precise enough for the character-sized cells the box is eventually divided into.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/go-spatial/geom"
	"github.com/pdok/asciimap/mathhelp"
)

const (
	KmPerDegreeLat = 110.574
	KmPerDegreeLon = 111.320 // at the equator
)

var ErrInvalidZoomFactor = errors.New("zoom factor must be greater than 0")

// BoundingBox is a rectangular region defined by min/max latitude and longitude.
// It is a value type: all operations return a new box and the derived
// dimensions are always recomputed, so they are never stale.
type BoundingBox struct {
	minLat, minLon, maxLat, maxLon float64

	dLatDeg, dLonDeg float64
	dLatKm, dLonKm   float64
}

// New returns a bounding box normalized to a square (in kilometers).
func New(minLat, minLon, maxLat, maxLon float64) BoundingBox {
	return FromCorners(minLat, minLon, maxLat, maxLon).Normalize()
}

// FromCorners returns a bounding box exactly as given, with its dimensions computed but not squared.
func FromCorners(minLat, minLon, maxLat, maxLon float64) BoundingBox {
	b := BoundingBox{minLat: minLat, minLon: minLon, maxLat: maxLat, maxLon: maxLon}
	b.computeSize()
	return b
}

func (b BoundingBox) MinLat() float64 { return b.minLat }
func (b BoundingBox) MinLon() float64 { return b.minLon }
func (b BoundingBox) MaxLat() float64 { return b.maxLat }
func (b BoundingBox) MaxLon() float64 { return b.maxLon }

// DLatDeg is the height of the box in degrees.
func (b BoundingBox) DLatDeg() float64 { return b.dLatDeg }

// DLonDeg is the width of the box in degrees.
func (b BoundingBox) DLonDeg() float64 { return b.dLonDeg }

// DLatKm is the height of the box in kilometers.
func (b BoundingBox) DLatKm() float64 { return b.dLatKm }

// DLonKm is the width of the box in kilometers.
func (b BoundingBox) DLonKm() float64 { return b.dLonKm }

// Center returns the (lat, lon) center of the box.
func (b BoundingBox) Center() (lat, lon float64) {
	return b.minLat + b.dLatDeg/2, b.minLon + b.dLonDeg/2
}

// Extent returns the box as a geom.Extent, x being the longitude and y the latitude.
func (b BoundingBox) Extent() geom.Extent {
	return geom.Extent{b.minLon, b.minLat, b.maxLon, b.maxLat}
}

// Contains reports whether the point lies in the box, edges included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	e := b.Extent()
	return e.ContainsPoint([2]float64{lon, lat})
}

// IsDegenerate reports whether the box has no area, in which case nothing can be projected onto it.
func (b BoundingBox) IsDegenerate() bool {
	return !(b.dLatDeg > 0) || !(b.dLonDeg > 0)
}

// String returns the box in Overpass order: "minLat,minLon,maxLat,maxLon".
func (b BoundingBox) String() string {
	return fmt.Sprintf("%s,%s,%s,%s", ftoa(b.minLat), ftoa(b.minLon), ftoa(b.maxLat), ftoa(b.maxLon))
}

// Normalize shrinks the larger side of the box (in kilometers) to the smaller one, keeping it centered.
// The result is square in physical distance, even though its degree-width is not.
func (b BoundingBox) Normalize() BoundingBox {
	newKm := math.Min(b.dLatKm, b.dLonKm)
	newLatDeg, newLonDeg := KmToDeg(newKm, newKm)

	deltaLat := (b.dLatDeg - newLatDeg) / 2
	deltaLon := (b.dLonDeg - newLonDeg) / 2

	b.minLat += deltaLat
	b.maxLat -= deltaLat
	b.minLon += deltaLon
	b.maxLon -= deltaLon

	b.computeSize()
	return b
}

// Zoom shrinks (factor > 1) or grows (factor < 1) the box around its center, then squares it again.
func (b BoundingBox) Zoom(factor float64) (BoundingBox, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return b, fmt.Errorf("%w, got %v", ErrInvalidZoomFactor, factor)
	}
	newLatDeg := b.dLatDeg / factor
	newLonDeg := b.dLonDeg / factor

	deltaLat := (b.dLatDeg - newLatDeg) / 2
	deltaLon := (b.dLonDeg - newLonDeg) / 2

	b.minLat += deltaLat
	b.maxLat -= deltaLat
	b.minLon += deltaLon
	b.maxLon -= deltaLon

	b.computeSize()
	return b.Normalize(), nil
}

// Translate moves the box by the given vector (in degrees), then squares it again.
func (b BoundingBox) Translate(dLat, dLon float64) BoundingBox {
	b.minLat += dLat
	b.maxLat += dLat
	b.minLon += dLon
	b.maxLon += dLon

	b.computeSize()
	return b.Normalize()
}

func (b *BoundingBox) computeSize() {
	b.dLatDeg = b.maxLat - b.minLat
	b.dLonDeg = b.maxLon - b.minLon
	b.dLatKm, b.dLonKm = DegToKm(b.dLatDeg, b.dLonDeg)
}

// DegToKm converts a (lat, lon) vector in degrees to kilometers.
// The longitude correction uses the latitude component of the vector itself.
func DegToKm(latDeg, lonDeg float64) (latKm, lonKm float64) {
	latRad := mathhelp.Deg2Rad(latDeg)
	return latDeg * KmPerDegreeLat, lonDeg * KmPerDegreeLon * math.Cos(latRad)
}

// KmToDeg is the inverse of DegToKm.
func KmToDeg(latKm, lonKm float64) (latDeg, lonDeg float64) {
	latDeg = latKm / KmPerDegreeLat
	latRad := mathhelp.Deg2Rad(latDeg)
	return latDeg, lonKm / KmPerDegreeLon / math.Cos(latRad)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
