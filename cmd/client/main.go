package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

const serverPort = 8080

// Measures POST, PUT, GET and DELETE round-trip times against a running
// instance and prints a table with the averages in microseconds.
//
// Usage example on the command line:
// > go run main.go
func main() {
	fmt.Println()
	fmt.Println("  Elements      POST       PUT       GET    DELETE ")
	fmt.Println("---------------------------------------------------")
	sizes := []int{1000, 5000, 10000, 50000, 100000}
	jsonBody := []byte(`{
		"nome": "Marco",
		"cognome": "Antonio",
		"telefono": "+39 999 777 555",
		"email": "marco.antonio@example.com"
	}`)
	for _, loops := range sizes {
		firstID, _ := sendPostRequest(bytes.NewReader(jsonBody))
		fmt.Printf("%10d", loops)
		{
			var duration int64
			for i := 0; i < loops; i++ {
				_, d := sendPostRequest(bytes.NewReader(jsonBody))
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		{
			f := func(id int64) int64 {
				return sendPutGetDeleteRequest(id, http.MethodPut, bytes.NewReader(jsonBody))
			}
			callInLoop(firstID, loops, f)
		}
		{
			f := func(id int64) int64 {
				return sendPutGetDeleteRequest(id, http.MethodGet, nil)
			}
			callInLoop(firstID, loops, f)
		}
		{
			f := func(id int64) int64 {
				return sendPutGetDeleteRequest(id, http.MethodDelete, nil)
			}
			callInLoop(firstID, loops, f)
		}
		sendPutGetDeleteRequest(firstID, http.MethodDelete, nil)
		fmt.Println()
	}
}

func callInLoop(firstID int64, loops int, f func(id int64) int64) {
	ids := createRandomSliceWithIDs(firstID+1, loops)
	var duration int64
	for _, id := range ids {
		duration += f(id)
	}
	fmt.Printf("%10d", duration/int64(loops*1000))
}

func createRandomSliceWithIDs(firstID int64, loops int) []int64 {
	ids := make([]int64, 0, loops)
	for i := 0; i < loops; i++ {
		ids = append(ids, firstID+int64(i))
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids
}

// sendPostRequest creates a contact and returns the assigned id together
// with the call duration in nanoseconds.
func sendPostRequest(body io.Reader) (int64, int64) {
	url := fmt.Sprintf("http://localhost:%d/api/contatti", serverPort)
	start := time.Now()
	res, err := http.Post(url, "application/json", body)
	duration := time.Since(start).Nanoseconds()
	if err != nil {
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		panic(err)
	}
	var created struct {
		Id int64 `json:"id"`
	}
	if err := json.Unmarshal(resBody, &created); err != nil {
		panic(err)
	}
	return created.Id, duration
}

// sendPutGetDeleteRequest sends the given request against the contact with
// the given id and returns the call duration in nanoseconds.
func sendPutGetDeleteRequest(id int64, method string, body io.Reader) int64 {
	url := fmt.Sprintf("http://localhost:%d/api/contatti/%d", serverPort, id)
	request, err := http.NewRequest(method, url, body)
	if err != nil {
		panic(err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	start := time.Now()
	res, err := http.DefaultClient.Do(request)
	duration := time.Since(start).Nanoseconds()
	if err != nil {
		panic(err)
	}
	res.Body.Close()
	return duration
}
