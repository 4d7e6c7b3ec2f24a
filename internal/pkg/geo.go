package pkg

import "math"

const earthRadiusKm = 6371.0

// HaversineKm 两点间大圆距离（公里）
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// BoundingBox 以 (lat,lng) 为中心、radiusKm 为半径的经纬度包围盒，用于先粗筛再精算
func BoundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusKm / 111.0 // 每纬度约 111km
	minLat, maxLat = lat-dLat, lat+dLat

	// 纬度越高，每经度对应的距离越短
	cos := math.Cos(lat * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01
	}
	dLng := radiusKm / (111.0 * cos)
	minLng, maxLng = lng-dLng, lng+dLng
	return
}
