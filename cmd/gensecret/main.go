package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// Prints fresh random signing secrets, one per line. The server needs
// two that differ, one per token kind, hence two by default.
func main() {
	bytesLen := pflag.IntP("bytes", "b", 32, "secret length in bytes")
	count := pflag.IntP("count", "n", 2, "how many secrets to print")
	pflag.Parse()

	for range *count {
		b := make([]byte, *bytesLen)
		if _, err := rand.Read(b); err != nil {
			fmt.Printf("error while generating secret key: %v", err)
			os.Exit(1)
		}
		fmt.Println(hex.EncodeToString(b))
	}
}
