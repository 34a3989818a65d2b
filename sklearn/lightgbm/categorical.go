package lightgbm

// bitsetValues lists the positions of the set bits, lowest first. Word i
// covers the values 32*i to 32*i+31.
func bitsetValues(words []uint32) []int {
	var values []int
	for i, word := range words {
		for bit := 0; bit < 32; bit++ {
			if word&(1<<uint(bit)) != 0 {
				values = append(values, i*32+bit)
			}
		}
	}
	return values
}
