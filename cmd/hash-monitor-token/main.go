// Command hash-monitor-token prints the bcrypt hash to put in MONITOR_TOKEN_HASH.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"proofok-api/utils"
)

func main() {
	var token string
	flag.StringVar(&token, "token", "", "monitor token to hash (read from stdin when empty)")
	flag.Parse()

	if token == "" {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			token = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			log.Fatalf("failed to read token: %v", err)
		}
	}

	hashed, err := utils.HashMonitorToken(token)
	if err != nil {
		log.Fatalf("failed to hash token: %v", err)
	}
	fmt.Println(hashed)
}
