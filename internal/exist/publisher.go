package exist

import (
	"context"
	"math"
	"sort"
	"strings"

	"awsync/internal/aggregate"
)

// PublisherConfig maps aggregate fields onto Exist attribute names.
type PublisherConfig struct {
	ScreenTimeAttr string
	FocusScoreAttr string
	// CategoryAttrs maps a category tag to its attribute; tags without an
	// entry are computed but not published.
	CategoryAttrs map[string]string
}

// Publisher adapts the Exist client to aggregate.Publisher. Durations go
// out as whole minutes, the focus score as a rounded integer.
type Publisher struct {
	client *Client
	cfg    PublisherConfig
}

func NewPublisher(client *Client, cfg PublisherConfig) *Publisher {
	return &Publisher{client: client, cfg: cfg}
}

var _ aggregate.Publisher = (*Publisher)(nil)

// Publish upserts one day's values. Every managed attribute is written on
// every publish - including zeros - so re-syncing a day fully overwrites
// whatever was stored before.
func (p *Publisher) Publish(ctx context.Context, day aggregate.Daily) error {
	values := map[string]int{
		p.cfg.ScreenTimeAttr: minutes(day.ActiveSeconds),
		p.cfg.FocusScoreAttr: int(math.Round(day.FocusScore)),
	}
	for tag, attr := range p.cfg.CategoryAttrs {
		values[attr] = minutes(day.CategorySeconds[tag])
	}
	return p.client.UpdateValues(ctx, day.Date, values)
}

// EnsureAttributes makes every attribute Publish writes exist and be owned
// by this client's token.
func (p *Publisher) EnsureAttributes(ctx context.Context) error {
	return p.client.EnsureAttributes(ctx, p.ManagedSpecs())
}

// ManagedSpecs lists the attributes Publish writes, for EnsureAttributes.
func (p *Publisher) ManagedSpecs() []AttributeSpec {
	specs := []AttributeSpec{
		{Name: p.cfg.ScreenTimeAttr, Label: "Screen Time", Group: "productivity", ValueType: ValueTypePeriodMin},
		{Name: p.cfg.FocusScoreAttr, Label: "Focus Score", Group: "productivity", ValueType: ValueTypeInteger},
	}
	for _, attr := range sortedValues(p.cfg.CategoryAttrs) {
		specs = append(specs, AttributeSpec{
			Name:      attr,
			Label:     labelFor(attr),
			Group:     "productivity",
			ValueType: ValueTypePeriodMin,
		})
	}
	return specs
}

func minutes(seconds float64) int {
	return int(math.Round(seconds / 60))
}

// labelFor turns an attribute name like "social_networks" into
// "Social Networks".
func labelFor(attr string) string {
	words := strings.Split(attr, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func sortedValues(m map[string]string) []string {
	seen := make(map[string]bool, len(m))
	var out []string
	for _, v := range m {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	// Stable order keeps setup output and tests deterministic.
	sort.Strings(out)
	return out
}
