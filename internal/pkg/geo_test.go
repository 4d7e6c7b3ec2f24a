package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// 同一点
	assert.Zero(t, HaversineKm(49.41, 8.71, 49.41, 8.71))

	// 海德堡 - 曼海姆，实际约 18km
	d := HaversineKm(49.4094, 8.6947, 49.4875, 8.4660)
	assert.InDelta(t, 18.6, d, 1.0)

	// 赤道上经度差 1 度约 111km
	d = HaversineKm(0, 0, 0, 1)
	assert.InDelta(t, 111.2, d, 0.5)

	// 对称
	assert.InDelta(t,
		HaversineKm(49.41, 8.71, 52.52, 13.40),
		HaversineKm(52.52, 13.40, 49.41, 8.71),
		1e-9)
}

func TestBoundingBox(t *testing.T) {
	minLat, maxLat, minLng, maxLng := BoundingBox(49.41, 8.71, 10)

	assert.Less(t, minLat, 49.41)
	assert.Greater(t, maxLat, 49.41)
	assert.Less(t, minLng, 8.71)
	assert.Greater(t, maxLng, 8.71)

	// 包围盒必须盖住半径内的点（这里取正北 10km）
	north := 49.41 + 10.0/111.0
	assert.LessOrEqual(t, north, maxLat)

	// 高纬度经度跨度更大
	_, _, minLngPolar, maxLngPolar := BoundingBox(70, 8.71, 10)
	assert.Greater(t, maxLngPolar-minLngPolar, maxLng-minLng)
}
