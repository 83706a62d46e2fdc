package brief

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"text/template"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/domain/catalog"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/taxonomy"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
)

// PromptInput is everything the brief prompt can mention. Empty fields render as nothing.
type PromptInput struct {
	ProductName string
	Category    string
	Notes       string
	Audience    string
	Benefits    []string
	PainPoints  []string

	Tone         string
	TargetLength string
	ContentType  string
	HookFamilies []string
	Reference    string

	Families    []string
	Banned      []string
	Exemplars   []string
	Winners     []string
	Avoid       []string
	RecentHooks []string
}

const systemPrompt = `You write short-form video creative briefs for product marketing.
Reply with a single JSON object and nothing else. Keys:
  spoken_hook_options: array of {"text","family","emotion"} (6 to 10 items, under 15 words each)
  visual_hook_options: array of strings (3 to 5)
  text_overlay_options: array of strings (3 to 5, under 8 words each)
  cta_options: array of strings (3 to 5)
  emotional_driver: one of {{join .Emotions ", "}}
  script: {"hook","body","cta","scenes":[{"duration","action"}]}
family must be one of: {{join .Families ", "}}.
Never open with: {{join .Banned "; "}}.`

const userPrompt = `Product: {{.ProductName}}
{{- if .Category}}
Category: {{.Category}}{{end}}
{{- if .Audience}}
Audience: {{.Audience}}{{end}}
{{- if .Benefits}}
Benefits: {{join .Benefits "; "}}{{end}}
{{- if .PainPoints}}
Pain points: {{join .PainPoints "; "}}{{end}}
{{- if .Notes}}
Notes: {{.Notes}}{{end}}
{{- if .Tone}}
Tone: {{.Tone}}{{end}}
{{- if .TargetLength}}
Target length: {{.TargetLength}}{{end}}
{{- if .ContentType}}
Content type: {{.ContentType}}{{end}}
{{- if .HookFamilies}}
Focus on hook families: {{join .HookFamilies ", "}}{{end}}
{{- if .Exemplars}}

Strong hooks to learn from:
{{range .Exemplars}}- {{.}}
{{end}}{{end}}
{{- if .Winners}}
Hooks that won before for this product:
{{range .Winners}}- {{.}}
{{end}}{{end}}
{{- if .Avoid}}
Hooks that were rejected, do not repeat their angle:
{{range .Avoid}}- {{.}}
{{end}}{{end}}
{{- if .RecentHooks}}
Recently used hooks, do not reuse:
{{range .RecentHooks}}- {{.}}
{{end}}{{end}}
{{- if .Reference}}

Reference material:
{{.Reference}}{{end}}`

var funcs = template.FuncMap{"join": strings.Join}

var (
	systemTemplate = template.Must(template.New("system").Funcs(funcs).Option("missingkey=zero").Parse(systemPrompt))
	userTemplate   = template.Must(template.New("user").Funcs(funcs).Option("missingkey=zero").Parse(userPrompt))
)

// NewPromptInput gathers the prompt fields from the product, the request and history.
func NewPromptInput(p *catalog.Product, req types.GenerationRequest, snap types.SignalSnapshot) PromptInput {
	in := PromptInput{
		Tone:         req.Tuning.Tone,
		TargetLength: req.Tuning.TargetLength,
		ContentType:  req.Tuning.ContentType,
		Reference:    strings.TrimSpace(req.Reference),
		Families:     taxonomy.Families(),
		Banned:       taxonomy.BannedPhrases(),
		Exemplars:    limitStrings(snap.Exemplars, 8),
		Avoid:        limitStrings(snap.Rejected(), 8),
		RecentHooks:  limitStrings(snap.RecentHooks, 10),
	}
	for _, f := range req.Tuning.HookFamilies {
		if c := taxonomy.CanonicalFamily(f); c != "" {
			in.HookFamilies = append(in.HookFamilies, c)
		}
	}
	for _, key := range sortedSignalKeys(snap) {
		if sig := snap.Signals[key]; sig.Winners > 0 {
			in.Winners = append(in.Winners, sig.Text)
		}
	}
	in.Winners = limitStrings(in.Winners, 5)
	if p != nil {
		in.ProductName = p.Name
		in.Category = p.Category
		in.Notes = p.Notes
		in.Audience = p.Audience
		in.Benefits = jsonStrings(p.Benefits)
		in.PainPoints = jsonStrings(p.PainPoints)
	}
	return in
}

// BuildMessages renders the system and user messages for one generation.
func BuildMessages(in PromptInput) []llm.Message {
	data := struct {
		PromptInput
		Emotions []string
	}{in, taxonomy.Emotions()}
	render := func(t *template.Template) string {
		var b bytes.Buffer
		_ = t.Execute(&b, data)
		return strings.TrimSpace(b.String())
	}
	return []llm.Message{llm.System(render(systemTemplate)), llm.User(render(userTemplate))}
}

func jsonStrings(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func limitStrings(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}

func sortedSignalKeys(snap types.SignalSnapshot) []string {
	keys := make([]string, 0, len(snap.Signals))
	for k := range snap.Signals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
