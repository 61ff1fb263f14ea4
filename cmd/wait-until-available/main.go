package main

import (
	"fmt"
	"net/http"
	"time"
)

// Polls the contact list endpoint until the service answers 200, so that
// CI pipelines can wait for the stack to come up.
func main() {
	totalWaitTime := 0
	for {
		res, err := http.Get("http://localhost:8080/api/contatti")
		if err == nil {
			if res.StatusCode == http.StatusOK {
				fmt.Println(res)
				break
			}
			fmt.Println(res)
		} else {
			fmt.Println(err)
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds\n", totalWaitTime)
		time.Sleep(5 * time.Second)
	}
}
