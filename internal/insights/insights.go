// Package insights turns ranked products and portfolio summaries into short
// human-readable notes. A text Generator is optional: without one, or when it
// fails, a deterministic summary is returned instead.
package insights

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"yieldvest/internal/models"
	"yieldvest/internal/portfolio"
)

// Sources reported alongside generated text.
const (
	SourceGenerated = "generated"
	SourceFallback  = "fallback"
)

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Insight is a short note and where it came from.
type Insight struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Writer produces insights, preferring the generator when one is configured.
type Writer struct {
	gen Generator
	log *zap.SugaredLogger
}

// NewWriter creates a Writer. gen may be nil.
func NewWriter(gen Generator, log *zap.SugaredLogger) *Writer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Writer{gen: gen, log: log}
}

// Enabled reports whether a generator is configured.
func (w *Writer) Enabled() bool { return w.gen != nil }

// Recommendations describes a ranked product list for a risk profile.
func (w *Writer) Recommendations(ctx context.Context, profile models.RiskLevel, ranked []models.Product) Insight {
	fallback := RecommendationSummary(profile, ranked)
	if len(ranked) == 0 {
		return Insight{Text: fallback, Source: SourceFallback}
	}
	return w.generate(ctx, "recommendations", recommendationPrompt(profile, ranked), fallback)
}

// Portfolio describes a portfolio summary and its diversification score.
func (w *Writer) Portfolio(ctx context.Context, snap portfolio.Snapshot, score int) Insight {
	fallback := PortfolioSummary(snap, score)
	if snap.InvestmentCount == 0 {
		return Insight{Text: fallback, Source: SourceFallback}
	}
	return w.generate(ctx, "portfolio", portfolioPrompt(snap, score), fallback)
}

func (w *Writer) generate(ctx context.Context, kind, prompt, fallback string) Insight {
	if w.gen == nil {
		return Insight{Text: fallback, Source: SourceFallback}
	}

	text, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		w.log.Warnw("Text generation failed, using fallback", "kind", kind, "error", err)
		return Insight{Text: fallback, Source: SourceFallback}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		w.log.Warnw("Text generation returned no content, using fallback", "kind", kind)
		return Insight{Text: fallback, Source: SourceFallback}
	}
	return Insight{Text: text, Source: SourceGenerated}
}

// RecommendationSummary is the deterministic description of a ranked list.
func RecommendationSummary(profile models.RiskLevel, ranked []models.Product) string {
	if len(ranked) == 0 {
		return fmt.Sprintf("No active %s-risk products are available right now.", profile)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Top %d %s-risk product", len(ranked), profile)
	if len(ranked) > 1 {
		sb.WriteString("s")
	}
	sb.WriteString(" by annual yield: ")
	for i, p := range ranked {
		if i > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%s (%s, %s%% over %d months)", p.Name, p.Type, p.AnnualYield.StringFixed(2), p.TenureMonths)
	}
	sb.WriteString(".")
	return sb.String()
}

// PortfolioSummary is the deterministic description of a portfolio.
func PortfolioSummary(snap portfolio.Snapshot, score int) string {
	if snap.InvestmentCount == 0 {
		return "You have no investments yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d investment", snap.InvestmentCount)
	if snap.InvestmentCount > 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " totalling %s, now worth %s (%s%%). ",
		snap.TotalInvested.StringFixed(2), snap.TotalCurrentValue.StringFixed(2), snap.TotalGainPercentage.StringFixed(2))
	fmt.Fprintf(&sb, "Diversification score %d/100", score)
	if top, ok := largest(snap.ByType); ok {
		fmt.Fprintf(&sb, "; largest holding type is %s at %s%%", top.Key, top.Percentage.StringFixed(2))
	}
	sb.WriteString(".")
	return sb.String()
}

func largest(buckets []portfolio.Bucket) (portfolio.Bucket, bool) {
	if len(buckets) == 0 {
		return portfolio.Bucket{}, false
	}
	top := buckets[0]
	for _, b := range buckets[1:] {
		if b.CurrentValue.GreaterThan(top.CurrentValue) {
			top = b
		}
	}
	return top, true
}

func recommendationPrompt(profile models.RiskLevel, ranked []models.Product) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "An investor with a %s risk profile is choosing between these fixed-tenure products:\n", profile)
	for _, p := range ranked {
		fmt.Fprintf(&sb, "- %s: type %s, %s%% annual yield, %d months, minimum %s\n",
			p.Name, p.Type, p.AnnualYield.StringFixed(2), p.TenureMonths, p.MinInvestment.StringFixed(2))
	}
	sb.WriteString("\nIn at most three sentences, explain how they compare. Do not recommend products not listed. Plain text only.")
	return sb.String()
}

func portfolioPrompt(snap portfolio.Snapshot, score int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Portfolio: %d investments, %s invested, current value %s, gain %s%%, diversification score %d/100.\n",
		snap.InvestmentCount, snap.TotalInvested.StringFixed(2), snap.TotalCurrentValue.StringFixed(2),
		snap.TotalGainPercentage.StringFixed(2), score)
	writeAxis(&sb, "By type", snap.ByType)
	writeAxis(&sb, "By risk", snap.ByRisk)
	writeAxis(&sb, "By tenure", snap.ByTenure)
	sb.WriteString("\nIn at most three sentences, comment on concentration and diversification. Plain text only.")
	return sb.String()
}

func writeAxis(sb *strings.Builder, label string, buckets []portfolio.Bucket) {
	if len(buckets) == 0 {
		return
	}
	sb.WriteString(label)
	sb.WriteString(":")
	for _, b := range buckets {
		fmt.Fprintf(sb, " %s %s%%", b.Key, b.Percentage.StringFixed(2))
	}
	sb.WriteString("\n")
}
