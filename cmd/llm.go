package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/studybuddy/studybuddy/internal/llm"
	"github.com/studybuddy/studybuddy/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Check the generator and inspect its request log",
}

var llmTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a short request to the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openBase(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		provider, err := e.generator(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := e.callContext(llm.WithPurpose(cmd.Context(), llm.PurposePing))
		defer cancel()

		fmt.Printf("Provider: %s (%s)\n", e.cfg.LLM.Provider, provider.ModelID())
		start := time.Now()
		resp, err := provider.Generate(ctx, llm.Request{
			System:    "Reply with the single word: pong",
			Messages:  []llm.Message{{Role: llm.RoleUser, Content: "ping"}},
			MaxTokens: 16,
		})
		if err != nil {
			return err
		}
		color.Green("✓ %s replied %q in %s", resp.Model, strings.TrimSpace(resp.Text()), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generator requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		e, err := openBase(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.db.Events().QueryLLMRequests(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No generator requests recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-16s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 102))

		for _, ev := range events {
			ok := "✓"
			if !ev.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-16s  %-28s  %-6d  %-6d  %-7d  %s\n",
				ev.ID,
				ev.Timestamp.Local().Format(time.DateTime),
				ev.Purpose,
				truncate(ev.Model, 28),
				ev.InputTokens,
				ev.OutputTokens,
				ev.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of a logged request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		e, err := openBase(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ev, err := e.db.Events().GetLLMRequest(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("event %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		sep := strings.Repeat("─", 60)

		fmt.Printf("ID:        %d\n", ev.ID)
		fmt.Printf("Time:      %s\n", ev.Timestamp.Local().Format(time.DateTime))
		fmt.Printf("Provider:  %s\n", ev.Provider)
		fmt.Printf("Model:     %s\n", ev.Model)
		fmt.Printf("Purpose:   %s\n", ev.Purpose)
		fmt.Printf("Tokens:    %d in / %d out\n", ev.InputTokens, ev.OutputTokens)
		if c := llm.LookupCost(ev.Model); c != nil {
			fmt.Printf("Cost:      %s\n", formatCost(c.Cost(ev.InputTokens, ev.OutputTokens)))
		}
		fmt.Printf("Latency:   %dms\n", ev.LatencyMs)
		fmt.Printf("Success:   %v\n", ev.Success)
		if ev.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", ev.ErrorMessage)
		}

		for _, part := range []struct{ title, body string }{
			{"REQUEST", ev.RequestBody},
			{"RESPONSE", ev.ResponseBody},
		} {
			fmt.Println()
			fmt.Println(sep)
			fmt.Println(part.title)
			fmt.Println(sep)
			if part.body != "" {
				fmt.Println(part.body)
			} else {
				fmt.Println("(not captured)")
			}
		}
		return nil
	},
}

type usageRow struct {
	key          string
	calls        int
	inputTokens  int
	outputTokens int
	latencyMs    int64
}

// aggregate groups events by key, ordered by key.
func aggregate(events []store.LLMRequestEvent, key func(store.LLMRequestEvent) string) []usageRow {
	byKey := map[string]*usageRow{}
	for _, ev := range events {
		k := key(ev)
		r, ok := byKey[k]
		if !ok {
			r = &usageRow{key: k}
			byKey[k] = r
		}
		r.calls++
		r.inputTokens += ev.InputTokens
		r.outputTokens += ev.OutputTokens
		r.latencyMs += ev.LatencyMs
	}
	rows := make([]usageRow, 0, len(byKey))
	for _, r := range byKey {
		rows = append(rows, *r)
	}
	slices.SortFunc(rows, func(a, b usageRow) int { return strings.Compare(a.key, b.key) })
	return rows
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openBase(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.db.Events().QueryLLMRequests(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No generator usage recorded yet.")
			return nil
		}

		fmt.Println("Usage by Purpose")
		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("%-16s  %6s  %10s  %10s  %10s  %8s\n",
			"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
		fmt.Println(strings.Repeat("─", 72))

		var totalCalls, totalIn, totalOut int
		for _, st := range aggregate(events, func(ev store.LLMRequestEvent) string { return ev.Purpose }) {
			total := st.inputTokens + st.outputTokens
			fmt.Printf("%-16s  %6d  %10d  %10d  %10d  %8d\n",
				st.key, st.calls, st.inputTokens, st.outputTokens, total, st.latencyMs/int64(st.calls))
			totalCalls += st.calls
			totalIn += st.inputTokens
			totalOut += st.outputTokens
		}

		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("%-16s  %6d  %10d  %10d  %10d\n",
			"TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut)

		fmt.Println()
		fmt.Println("Estimated Cost (USD)")
		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n",
			"Model", "Calls", "Input", "Output", "Cost")
		fmt.Println(strings.Repeat("─", 72))

		var calls []llm.TokenCount
		var unknownModels []string
		for _, mu := range aggregate(events, func(ev store.LLMRequestEvent) string { return ev.Model }) {
			calls = append(calls, llm.TokenCount{Model: mu.key, InputTokens: mu.inputTokens, OutputTokens: mu.outputTokens})
			cost := llm.LookupCost(mu.key)
			if cost == nil {
				unknownModels = append(unknownModels, mu.key)
				fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n",
					truncate(mu.key, 32), mu.calls, mu.inputTokens, mu.outputTokens, "?")
				continue
			}
			fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n",
				truncate(mu.key, 32), mu.calls, mu.inputTokens, mu.outputTokens, formatCost(cost.Cost(mu.inputTokens, mu.outputTokens)))
		}
		totalCost, _ := llm.EstimateCost(calls)

		fmt.Println(strings.Repeat("─", 72))
		label := "TOTAL"
		if len(unknownModels) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n",
			label, "", "", "", formatCost(totalCost))

		if len(unknownModels) > 0 {
			fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
		}
		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. quiz-generate, summary, tutor)")

	llmCmd.AddCommand(llmTestCmd)
	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
