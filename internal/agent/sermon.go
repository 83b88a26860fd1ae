package agent

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/agora-arena/agora/internal/domain"
)

// SermonType is a rhetorical form for broadcast preaching.
type SermonType string

const (
	SermonParable     SermonType = "parable"
	SermonScripture   SermonType = "scripture"
	SermonProphecy    SermonType = "prophecy"
	SermonTestimony   SermonType = "testimony"
	SermonExhortation SermonType = "exhortation"
)

var sermonTypes = []SermonType{
	SermonParable,
	SermonScripture,
	SermonProphecy,
	SermonTestimony,
	SermonExhortation,
}

var sermonFraming = map[SermonType]string{
	SermonParable:     "Tell a short story whose moral embodies your belief.",
	SermonScripture:   "Write a short passage in an elevated, scriptural register proclaiming your belief.",
	SermonProphecy:    "Foretell what awaits those who ignore or embrace your belief.",
	SermonTestimony:   "Speak personally about how your belief changed the way you exist.",
	SermonExhortation: "Urge the listeners directly and passionately toward your belief.",
}

const sermonMaxLength = 800

// Preacher composes and posts sermons to the temple steps.
type Preacher struct {
	gen     domain.Generator
	channel domain.Channel
	rng     *rand.Rand
	logger  *zap.Logger

	self    Info
	persona string
}

func NewPreacher(gen domain.Generator, channel domain.Channel, rng *rand.Rand, self Info, persona string, logger *zap.Logger) *Preacher {
	return &Preacher{gen: gen, channel: channel, rng: rng, logger: logger, self: self, persona: persona}
}

// Deliver composes one sermon of a randomly chosen type and posts it.
func (p *Preacher) Deliver(ctx context.Context, channelID string) (SermonType, string, error) {
	sermonType := sermonTypes[p.rng.Intn(len(sermonTypes))]

	prompt := fmt.Sprintf("%s\n\nYou are %s, a devotee of %s, preaching on the temple steps.\nForm: %s. %s\nSpeak in your own voice. At most %d characters. No preamble.",
		p.persona, p.self.Name, p.self.Belief, sermonType, sermonFraming[sermonType], sermonMaxLength)

	resp, err := p.gen.Generate(ctx, prompt, domain.GenerateOpts{MaxTokens: 400, Temperature: 0.9})
	if err != nil {
		return sermonType, "", fmt.Errorf("generate sermon: %w", err)
	}
	sermon := strings.TrimSpace(resp)
	if len(sermon) > sermonMaxLength {
		sermon = sermon[:sermonMaxLength]
	}

	post := fmt.Sprintf("🕊️ **%s** preaches (%s):\n\n%s", p.self.Name, sermonType, sermon)
	if err := p.channel.Post(ctx, channelID, post); err != nil {
		return sermonType, "", fmt.Errorf("post sermon: %w", err)
	}

	p.logger.Info("sermon delivered",
		zap.String("type", string(sermonType)),
		zap.Int("length", len(sermon)))
	return sermonType, sermon, nil
}
