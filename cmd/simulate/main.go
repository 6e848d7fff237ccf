package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Drives concurrent fake conversations against a running api-server to
// exercise the full flow: greeting, scheduling intent, date, slot choice.

type simConfig struct {
	apiBaseURL string
	duration   time.Duration
	workers    int
}

type triageRequest struct {
	SenderID    string `json:"senderId"`
	SenderName  string `json:"senderName,omitempty"`
	MessageText string `json:"messageText"`
	Timestamp   string `json:"timestamp"`
}

type triageResponse struct {
	UserStatus   string `json:"userStatus"`
	NextAction   string `json:"nextAction"`
	ResponseText string `json:"responseText"`
}

type counters struct {
	turns     atomic.Int64
	errors    atomic.Int64
	bookings  atomic.Int64
	apologies atomic.Int64
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := simConfig{}
	flag.StringVar(&cfg.apiBaseURL, "api", "http://127.0.0.1:8080", "api server base URL")
	flag.DurationVar(&cfg.duration, "duration", 30*time.Second, "how long to run")
	flag.IntVar(&cfg.workers, "workers", 8, "concurrent conversations")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.duration)
	defer cancel()

	client := &http.Client{Timeout: 10 * time.Second}
	var stats counters
	var wg sync.WaitGroup

	log.Printf("simulating %d concurrent conversations for %s against %s", cfg.workers, cfg.duration, cfg.apiBaseURL)

	for i := 0; i < cfg.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				runConversation(ctx, client, cfg.apiBaseURL, &stats)
			}
		}()
	}

	wg.Wait()

	log.Printf("done: turns=%d bookings=%d apologies=%d errors=%d",
		stats.turns.Load(), stats.bookings.Load(), stats.apologies.Load(), stats.errors.Load())
}

func runConversation(ctx context.Context, client *http.Client, baseURL string, stats *counters) {
	senderID := fmt.Sprintf("55%d9%d@c.us", gofakeit.Number(11, 99), gofakeit.Number(10000000, 99999999))
	name := gofakeit.Name()

	script := []string{
		"Olá, tudo bem?",
		"Quero marcar uma consulta",
		name, // answer to the full-name question for new leads
		[]string{"amanhã", "25/12", "semana que vem"}[rand.Intn(3)],
		fmt.Sprintf("%dh", 9+rand.Intn(9)),
	}

	for _, text := range script {
		if ctx.Err() != nil {
			return
		}

		resp, err := postTriage(ctx, client, baseURL, triageRequest{
			SenderID:    senderID,
			SenderName:  name,
			MessageText: text,
			Timestamp:   time.Now().Format(time.RFC3339),
		})
		stats.turns.Add(1)
		if err != nil {
			stats.errors.Add(1)
			return
		}

		switch resp.NextAction {
		case "booking_confirmed":
			stats.bookings.Add(1)
			return
		case "retry":
			stats.apologies.Add(1)
			return
		}

		time.Sleep(time.Duration(100+rand.Intn(400)) * time.Millisecond)
	}
}

func postTriage(ctx context.Context, client *http.Client, baseURL string, req triageRequest) (*triageResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/triage", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("triage returned %d: %s", httpResp.StatusCode, data)
	}

	var resp triageResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
