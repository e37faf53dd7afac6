package bytex

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/rand"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetTestKey returns fixed width keys so byte order matches numeric order
func GetTestKey(x int) []byte {
	return []byte(fmt.Sprintf("couloy-key-%09d", x))
}

func IntToBytes(x int) []byte {
	return []byte(strconv.Itoa(x))
}

func RandomBytes(length int) []byte {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return b
}

// Args turns strings into a command line
func Args(words ...string) [][]byte {
	args := make([][]byte, len(words))
	for i, w := range words {
		args[i] = []byte(w)
	}
	return args
}
