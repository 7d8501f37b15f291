package auth

import (
	"math/rand/v2"
	"strconv"
)

// generateCode returns a uniform 6-digit code in [100000, 999999].
func generateCode() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}
