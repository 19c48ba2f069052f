package device

func sumi32(a, b, c []int32) {
	for i := range a {
		sum := int64(a[i]) + int64(b[i])
		if sum > 0x7fffffff {
			sum = 0x7fffffff
		} else if sum < -0x80000000 {
			sum = -0x80000000
		}
		c[i] = int32(sum)
	}
}

func alloci32(n int) []int32 {
	return make([]int32, n)
}

func clampi32(v float64) int32 {
	if v > 0x7fffffff {
		return 0x7fffffff
	} else if v < -0x80000000 {
		return -0x80000000
	}
	return int32(v)
}
