package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/banbrick/collector/internal/agent"
	models "github.com/banbrick/collector/internal/model"
)

var retryDelays = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

func isRetryableError(err error) bool {
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "connection reset by peer") {
		return true
	}
	return false
}

func buildEnvelope(config *agent.AgentConfig, reading agent.Reading) models.CollectRequest {
	value := reading.Value
	return models.CollectRequest{
		Auth:    config.Key,
		Project: config.Project,
		Item:    reading.Item,
		Value:   &value,
	}
}

func sendReading(client *http.Client, url string, envelope models.CollectRequest) error {
	jsonData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("error creating json: %w", err)
	}

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(jsonData); err != nil {
		return fmt.Errorf("error compressing body: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("error compressing body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, &compressed)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		var response models.CollectResponse
		if err := json.NewDecoder(resp.Body).Decode(&response); err == nil {
			return fmt.Errorf("collector rejected %s: %d %v", envelope.Item, resp.StatusCode, response.Detail)
		}
		return fmt.Errorf("collector rejected %s: %d", envelope.Item, resp.StatusCode)
	}
	return nil
}

func sendWithRetry(client *http.Client, url string, envelope models.CollectRequest) error {
	err := sendReading(client, url, envelope)
	if err == nil || !isRetryableError(err) {
		return err
	}
	for _, delay := range retryDelays {
		log.Printf("retrying %s after %v: %v", envelope.Item, delay, err)
		time.Sleep(delay)
		err = sendReading(client, url, envelope)
		if err == nil || !isRetryableError(err) {
			return err
		}
	}
	return err
}

func report(client *http.Client, config *agent.AgentConfig) {
	readings, err := agent.CollectReadings()
	if err != nil {
		log.Printf("error collecting readings: %v", err)
		return
	}
	url := fmt.Sprintf("http://%s/collect", config.Address)
	for _, reading := range readings {
		if err := sendWithRetry(client, url, buildEnvelope(config, reading)); err != nil {
			log.Printf("error sending reading: %v", err)
		}
	}
}

func main() {
	config, err := agent.NewAgentConfig()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	if config.Key == "" || config.Project == "" {
		log.Fatal("agent key and project are required")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	ticker := time.NewTicker(time.Duration(config.ReportInterval) * time.Second)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	report(client, config)
	for {
		select {
		case <-ticker.C:
			report(client, config)
		case sig := <-sigChan:
			log.Printf("received signal %v, stopping agent", sig)
			return
		}
	}
}
