// The issue2mbox command archives a repository's issues as local
// mailboxes, one container per issue.
package main

import (
	"fmt"
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Failed: %v", err)
	}
	fmt.Print("Success!\n")
}
