package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "Think Tank server URL")
	fast := flag.Bool("fast", false, "Use fast reasoning mode")
	flag.Parse()

	fmt.Println("Think Tank CLI")
	fmt.Printf("Server: %s\n", *server)
	fmt.Println("Type 'exit' or 'quit' to leave.")
	fmt.Println("Commands: /capabilities, /analytics, /retrieve <query>")
	fmt.Println("---")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Bye!")
			return
		}
		if input == "/capabilities" {
			fetchCapabilities(*server)
			continue
		}
		if input == "/analytics" {
			fetchAnalytics(*server)
			continue
		}
		if q, ok := strings.CutPrefix(input, "/retrieve "); ok {
			retrieve(*server, strings.TrimSpace(q))
			continue
		}

		reason(*server, input, *fast)
	}
}

func reason(server, query string, fast bool) {
	body, _ := json.Marshal(map[string]interface{}{
		"query":     query,
		"fast_mode": fast,
	})

	client := &http.Client{Timeout: 65 * time.Second}
	resp, err := client.Post(server+"/api/reason", "application/json", bytes.NewReader(body))
	if err != nil {
		printError("Request failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		printError("Server error (%d): %s", resp.StatusCode, string(data))
		return
	}

	var chain struct {
		Steps []struct {
			Kind       string  `json:"kind"`
			Confidence float64 `json:"confidence"`
		} `json:"steps"`
		FinalDecision *struct {
			SelectedCapabilities []string          `json:"selected_capabilities"`
			Parameters           map[string]string `json:"parameters"`
			ExecutionStrategy    string            `json:"execution_strategy"`
			ReasoningSummary     string            `json:"reasoning_summary"`
			Confidence           float64           `json:"confidence"`
		} `json:"final_decision"`
		AggregateConfidence float64 `json:"aggregate_confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chain); err != nil {
		printError("Failed to parse response: %v", err)
		return
	}

	for _, s := range chain.Steps {
		fmt.Printf("  \033[90m%-22s %.2f\033[0m\n", s.Kind, s.Confidence)
	}
	if chain.FinalDecision == nil {
		fmt.Println("No decision reached.")
		return
	}
	fmt.Printf("\033[36mCapabilities:\033[0m %s\n", strings.Join(chain.FinalDecision.SelectedCapabilities, ", "))
	fmt.Printf("\033[36mStrategy:\033[0m %s\n", chain.FinalDecision.ExecutionStrategy)
	fmt.Printf("\033[36mConfidence:\033[0m %.2f\n", chain.FinalDecision.Confidence)
	fmt.Println(chain.FinalDecision.ReasoningSummary)
}

func retrieve(server, query string) {
	body, _ := json.Marshal(map[string]string{"query": query})

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(server+"/api/retrieve", "application/json", bytes.NewReader(body))
	if err != nil {
		printError("Request failed: %v", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Context string `json:"context"`
		Metrics struct {
			VectorRelevance float64 `json:"vector_relevance"`
			MemoryRelevance float64 `json:"memory_relevance"`
		} `json:"metrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		printError("Failed to parse response: %v", err)
		return
	}
	if result.Context == "" {
		fmt.Println("Nothing relevant found.")
		return
	}
	fmt.Println(result.Context)
	fmt.Printf("\033[90m(vector %.2f, memory %.2f)\033[0m\n", result.Metrics.VectorRelevance, result.Metrics.MemoryRelevance)
}

func fetchCapabilities(server string) {
	resp, err := http.Get(server + "/api/capabilities")
	if err != nil {
		printError("Failed to fetch capabilities: %v", err)
		return
	}
	defer resp.Body.Close()

	var caps []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&caps); err != nil {
		printError("Failed to parse capabilities: %v", err)
		return
	}
	if len(caps) == 0 {
		fmt.Println("No capabilities registered.")
		return
	}
	fmt.Println("Capabilities:")
	for _, c := range caps {
		fmt.Printf("  %s — %s\n", c.Name, c.Description)
	}
}

func fetchAnalytics(server string) {
	resp, err := http.Get(server + "/api/analytics")
	if err != nil {
		printError("Failed to fetch analytics: %v", err)
		return
	}
	defer resp.Body.Close()

	var body struct {
		Reasoning struct {
			TotalChains   int     `json:"total_chains"`
			AvgConfidence float64 `json:"avg_confidence"`
			AvgSteps      float64 `json:"avg_steps"`
		} `json:"reasoning"`
		Capabilities struct {
			TotalExecutions int     `json:"total_executions"`
			SuccessRate     float64 `json:"success_rate"`
		} `json:"capabilities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		printError("Failed to parse analytics: %v", err)
		return
	}
	fmt.Printf("Chains: %d (avg confidence %.2f, avg steps %.1f)\n",
		body.Reasoning.TotalChains, body.Reasoning.AvgConfidence, body.Reasoning.AvgSteps)
	fmt.Printf("Executions: %d (success rate %.0f%%)\n",
		body.Capabilities.TotalExecutions, body.Capabilities.SuccessRate*100)
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\033[31m"+format+"\033[0m\n", args...)
}
