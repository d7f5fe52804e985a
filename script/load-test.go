package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"
)

// creditRequest funds a fan account with tokens
type creditRequest struct {
	Amount      int64  `json:"amount"`
	ReferenceID string `json:"referenceId"`
}

// transferRequest is the payload fired during the run
type transferRequest struct {
	PayerID     string `json:"payerId"`
	PayeeID     string `json:"payeeId"`
	Amount      int64  `json:"amount"`
	Kind        string `json:"kind"`
	ReferenceID string `json:"referenceId"`
}

type requestResult struct {
	ok       bool
	status   int
	duration time.Duration
	err      error
}

type runStats struct {
	mu        sync.Mutex
	succeeded int
	failed    int
	durations []time.Duration
	statuses  map[int]int
}

func (s *runStats) record(r requestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ok {
		s.succeeded++
	} else {
		s.failed++
	}
	s.durations = append(s.durations, r.duration)
	if r.status != 0 {
		s.statuses[r.status]++
	}
}

func main() {
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	totalRequests := flag.Int("n", 500, "Total number of transfers to send")
	fans := flag.Int("fans", 5, "Number of fan accounts to seed")
	creators := flag.Int("creators", 3, "Number of creator accounts to seed")
	funding := flag.Int64("funding", 100000, "Tokens credited to each fan before the run")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	fanIDs := make([]string, *fans)
	for i := range fanIDs {
		fanIDs[i] = fmt.Sprintf("loadtest_fan_%d", i)
	}
	creatorIDs := make([]string, *creators)
	for i := range creatorIDs {
		creatorIDs[i] = fmt.Sprintf("loadtest_creator_%d", i)
	}

	fmt.Printf("Seeding %d fans and %d creators...\n", len(fanIDs), len(creatorIDs))
	for _, id := range append(append([]string{}, fanIDs...), creatorIDs...) {
		url := fmt.Sprintf("%s/account/%s/ensure", *baseURL, id)
		if err := post(client, url, nil); err != nil {
			fmt.Printf("seed ensure %s failed: %v\n", id, err)
			return
		}
	}
	for _, id := range fanIDs {
		url := fmt.Sprintf("%s/account/%s/credit", *baseURL, id)
		if err := post(client, url, creditRequest{Amount: *funding, ReferenceID: "loadtest-funding"}); err != nil {
			fmt.Printf("seed credit %s failed: %v\n", id, err)
			return
		}
	}

	amounts := []int64{5, 10, 25, 50, 100}

	stats := &runStats{statuses: make(map[int]int)}
	jobs := make(chan int, *totalRequests)
	var wg sync.WaitGroup

	fmt.Printf("Sending %d transfers with %d workers...\n", *totalRequests, *concurrency)
	start := time.Now()

	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for jobID := range jobs {
				payload := transferRequest{
					PayerID:     fanIDs[rand.Intn(len(fanIDs))],
					PayeeID:     creatorIDs[rand.Intn(len(creatorIDs))],
					Amount:      amounts[rand.Intn(len(amounts))],
					Kind:        "tip",
					ReferenceID: fmt.Sprintf("loadtest-%d-%d", workerID, jobID),
				}
				stats.record(send(client, *baseURL+"/transfer", payload))
			}
		}(w)
	}

	for i := 0; i < *totalRequests; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(start)
	printResults(stats, elapsed, *totalRequests)
	verifyReconciliation(client, *baseURL, append(fanIDs, creatorIDs...))
}

func post(client *http.Client, url string, payload any) error {
	result := send(client, url, payload)
	if result.err != nil {
		return result.err
	}
	if !result.ok {
		return fmt.Errorf("HTTP status %d", result.status)
	}
	return nil
}

func send(client *http.Client, url string, payload any) requestResult {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return requestResult{err: err}
		}
	}

	start := time.Now()
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	duration := time.Since(start)
	if err != nil {
		return requestResult{duration: duration, err: err}
	}
	defer resp.Body.Close()

	return requestResult{
		ok:       resp.StatusCode >= 200 && resp.StatusCode < 300,
		status:   resp.StatusCode,
		duration: duration,
	}
}

func printResults(stats *runStats, elapsed time.Duration, total int) {
	stats.mu.Lock()
	defer stats.mu.Unlock()

	sort.Slice(stats.durations, func(i, j int) bool { return stats.durations[i] < stats.durations[j] })
	percentile := func(p int) time.Duration {
		if len(stats.durations) == 0 {
			return 0
		}
		return stats.durations[len(stats.durations)*p/100]
	}

	fmt.Println("\n================= RESULTS =================")
	fmt.Printf("Requests:    %d (%d ok, %d failed)\n", total, stats.succeeded, stats.failed)
	fmt.Printf("Elapsed:     %.2fs\n", elapsed.Seconds())
	fmt.Printf("Throughput:  %.1f transfers/s\n", float64(stats.succeeded)/elapsed.Seconds())
	fmt.Printf("P50:         %v\n", percentile(50))
	fmt.Printf("P95:         %v\n", percentile(95))
	fmt.Printf("P99:         %v\n", percentile(99))
	for status, count := range stats.statuses {
		fmt.Printf("HTTP %d:    %d\n", status, count)
	}
}

// verifyReconciliation checks that every touched account's balance still
// matches the sum of its ledger entries after the run.
func verifyReconciliation(client *http.Client, baseURL string, accountIDs []string) {
	fmt.Println("\n============= RECONCILIATION =============")
	allBalanced := true
	for _, id := range accountIDs {
		resp, err := client.Get(fmt.Sprintf("%s/account/%s/reconcile", baseURL, id))
		if err != nil {
			fmt.Printf("%s: reconcile request failed: %v\n", id, err)
			allBalanced = false
			continue
		}
		var report struct {
			Balance  int64 `json:"balance"`
			EntrySum int64 `json:"entrySum"`
			Balanced bool  `json:"balanced"`
		}
		err = json.NewDecoder(resp.Body).Decode(&report)
		resp.Body.Close()
		if err != nil {
			fmt.Printf("%s: bad reconcile response: %v\n", id, err)
			allBalanced = false
			continue
		}
		if !report.Balanced {
			fmt.Printf("%s: MISMATCH balance=%d entrySum=%d\n", id, report.Balance, report.EntrySum)
			allBalanced = false
		}
	}
	if allBalanced {
		fmt.Println("All accounts reconcile.")
	}
}
