// Package mock is a deterministic provider for local development. It answers
// every prompt with a canned brief built around the product named in it.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
)

type Provider struct {
	// Delay simulates upstream latency.
	Delay time.Duration
	// Fenced wraps the JSON in a markdown code block like chatty models do.
	Fenced bool
}

func New() *Provider {
	return &Provider{Fenced: true}
}

func (p *Provider) Name() string { return "mock" }

func (p *Provider) Generate(ctx context.Context, req llm.Request) (string, error) {
	if p.Delay > 0 {
		t := time.NewTimer(p.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", llm.Wrap(p.Name(), ctx.Err())
		case <-t.C:
		}
	}

	product := productName(req.Messages)
	brief := map[string]any{
		"spoken_hook_options": []map[string]string{
			{"text": fmt.Sprintf("Stop scrolling if you still have not tried %s", product), "family": "pattern_interrupt"},
			{"text": fmt.Sprintf("Why is nobody talking about %s?", product), "family": "curiosity_gap"},
			{"text": fmt.Sprintf("POV: %s finally fixed my morning routine", product), "family": "pov"},
			{"text": fmt.Sprintf("Everyone keeps asking what %s is", product), "family": "social_proof"},
			{"text": fmt.Sprintf("Last chance to grab %s before it sells out", product), "family": "fomo"},
		},
		"visual_hook_options": []string{
			"Hand slaps over the lens, pulls away to reveal the product",
			"Product half hidden behind a hand, slow reveal on the beat",
			"First-person handheld shot reaching for the product",
		},
		"text_overlay_options": []string{
			"Wait for it",
			fmt.Sprintf("Nobody talks about %s", product),
			"My morning fix",
		},
		"cta_options": []string{
			"Grab yours before it sells out",
			"Find out why at the link in bio",
			"Tag a friend who needs this",
		},
		"emotional_driver": "curiosity",
		"script": map[string]any{
			"hook": fmt.Sprintf("Stop scrolling if you still have not tried %s", product),
			"body": fmt.Sprintf("Show %s in use, call out the one result that surprised you, then show the before and after.", product),
			"cta":  "Grab yours before it sells out",
			"scenes": []map[string]string{
				{"duration": "0-3s", "action": "Hook straight to camera"},
				{"duration": "3-12s", "action": "Demo the product in use"},
				{"duration": "12-15s", "action": "Result and call to action"},
			},
		},
	}
	b, err := json.MarshalIndent(brief, "", "  ")
	if err != nil {
		return "", llm.Wrap(p.Name(), err)
	}
	if p.Fenced {
		return "Here is your brief:\n```json\n" + string(b) + "\n```", nil
	}
	return string(b), nil
}

func productName(msgs []llm.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		for _, line := range strings.Split(msgs[i].Content, "\n") {
			line = strings.TrimSpace(line)
			if len(line) > len("product:") && strings.EqualFold(line[:len("product:")], "product:") {
				if v := strings.TrimSpace(line[len("product:"):]); v != "" {
					return v
				}
			}
		}
	}
	return "this product"
}
